// Copyright 2023 Skypipe Authors <dev@skypipe.io>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/skypipe/skypipe-cli/api"
	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/cobra"
)

// logsCmd represents the logs command. It is also what the orchestrator
// points users at when they interrupt a deployment's log stream.
var logsCmd = &cobra.Command{
	Use:   "logs --deploy DEPLOY_ID",
	Short: "Show the logs of a satellite deployment",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := platform.Client(Verbose)
		helper.CheckError(err)

		deployID, err := cmd.Flags().GetString("deploy")
		helper.CheckErrorf(err, "unable to read the --deploy flag")
		if deployID == "" {
			log.Fatal("a deployment id is required, try `skypipe logs --deploy DEPLOY_ID`")
		}

		follow, err := cmd.Flags().GetBool("follow")
		helper.CheckErrorf(err, "unable to read the --follow flag")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		directory := platform.NewDirectory(client)
		deployment := &api.Deployment{ID: deployID}

		var exitCode int
		if follow {
			exitCode, err = directory.StreamDeploymentLogs(ctx, satellite.AppName, deployment, os.Stdout)
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nStopped following. The deployment keeps running in the background.")
				return
			}
			helper.CheckError(err)
		} else {
			var finished bool
			exitCode, finished, err = directory.FetchDeploymentLogs(ctx, satellite.AppName, deployment, os.Stdout)
			helper.CheckError(err)
			if !finished {
				fmt.Println("Deployment still running, pass --follow to keep watching it.")
				return
			}
		}

		if exitCode != 0 {
			color.Red("Deployment finished with exit code %d", exitCode)
			os.Exit(1)
		}

		color.Green("Deployment finished")
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().String("deploy", "", "deployment id to show")
	logsCmd.Flags().BoolP("follow", "f", true, "follow log output until the deployment finishes")
}
