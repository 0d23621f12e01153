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
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/skypipe/skypipe-cli/api"
	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// endpointCmd represents the endpoint command
var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Print a verified endpoint for the skypipe satellite",
	Long: `Looks up the satellite deployed under your account and verifies it
answers. When the satellite is missing or unresponsive a fresh one is
deployed first, unless --no-deploy is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		client, err := platform.Client(Verbose)
		helper.CheckError(err)

		noDeploy, err := cmd.Flags().GetBool("no-deploy")
		helper.CheckErrorf(err, "unable to read the --no-deploy flag")

		timeout, err := cmd.Flags().GetDuration("timeout")
		helper.CheckErrorf(err, "unable to read the --timeout flag")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		orchestrator := newOrchestrator(client, os.Stdout, timeout)

		endpoint, err := runEndpointCmd(ctx, orchestrator, !noDeploy)
		if err != nil {
			if errors.Is(err, satellite.ErrDetached) {
				os.Exit(0)
			}
			if errors.Is(err, satellite.ErrNoEndpoint) {
				fmt.Println("No working satellite found. Run without --no-deploy to launch one.")
				os.Exit(1)
			}
			helper.CheckError(err)
		}

		fmt.Println(endpoint)
	},
}

func runEndpointCmd(ctx context.Context, orchestrator *satellite.Orchestrator, deploy bool) (string, error) {
	if deploy {
		// Catch a broken payload before any remote state is touched.
		if _, err := api.LoadPayloadConfig(payloadPath()); err != nil {
			return "", err
		}
	}

	return orchestrator.Discover(ctx, deploy)
}

func newOrchestrator(client *resty.Client, out io.Writer, probeTimeout time.Duration) *satellite.Orchestrator {
	directory := platform.NewDirectory(client)
	directory.SetSSHKeyPath(helper.CurrentConfig("ssh_key"))

	return satellite.New(directory, satellite.Config{
		PayloadPath:       payloadPath(),
		VerbosePush:       Verbose,
		ProbeTimeout:      probeTimeout,
		Out:               out,
		CredentialsLoaded: helper.CurrentConfig("token") != "",
	})
}

func payloadPath() string {
	if payload := viper.GetString("payload"); payload != "" {
		return payload
	}
	return "./satellite"
}

func init() {
	rootCmd.AddCommand(endpointCmd)

	endpointCmd.Flags().Bool("no-deploy", false, "never deploy, only report an existing satellite")
	endpointCmd.Flags().Duration("timeout", satellite.DefaultProbeTimeout, "endpoint validation timeout")
}
