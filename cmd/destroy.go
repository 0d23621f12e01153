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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/cobra"
)

// destroyCmd represents the destroy command
var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete the satellite application",

	Run: func(cmd *cobra.Command, args []string) {
		client, err := platform.Client(Verbose)
		helper.CheckError(err)

		directory := platform.NewDirectory(client)
		helper.CheckError(runDestroyCmd(context.Background(), directory, os.Stdin))

		fmt.Printf("Satellite application %s destroyed\n", satellite.AppName)
	},
}

func getAcceptDestroy(stdin io.Reader) string {
	reader := bufio.NewReader(stdin)

	fmt.Printf("Do you want to destroy %s and any data it holds (y/N): ", satellite.AppName)
	accept, _ := reader.ReadString('\n')
	accept = strings.TrimSpace(accept)
	return accept
}

func runDestroyCmd(ctx context.Context, directory *platform.Directory, stdin io.Reader) error {
	accept := getAcceptDestroy(stdin)
	if accept != "y" {
		fmt.Println("Destroy aborted")
		os.Exit(0)
	}

	return directory.DestroyApplication(ctx, satellite.AppName)
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}
