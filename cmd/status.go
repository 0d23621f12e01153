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
	"fmt"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	"github.com/ryanuber/columnize"
	"github.com/skypipe/skypipe-cli/api"
	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the satellite application",

	Run: func(cmd *cobra.Command, args []string) {
		client, err := platform.Client(Verbose)
		helper.CheckError(err)

		details, err := runStatusCmd(client)
		helper.CheckError(err)

		if Verbose {
			fmt.Println(helper.PrettyPrint(details))
		}

		fmt.Printf("Application %s: %s\n", details.Name, coloredState(details.Status))
		if details.ErrorReason != "" {
			fmt.Printf("Reason: %s\n", details.ErrorReason)
		}

		var output []string
		output = append(output, strings.Join([]string{"SERVICE", "STATE", "ENDPOINTS"}, "|"))
		for name, service := range details.Services {
			row := []string{
				name,
				coloredState(service.State),
				strings.Join(service.Endpoints, ","),
			}
			output = append(output, strings.Join(row, "|"))
		}
		fmt.Println(columnize.SimpleFormat(output))
	},
}

func coloredState(state string) string {
	switch state {
	case "running", "ready", "done":
		return color.GreenString(state)
	case "failed", "error", "crashed":
		return color.RedString(state)
	}
	return color.YellowString(state)
}

func runStatusCmd(client *resty.Client) (*api.ApplicationDetails, error) {
	resp, err := client.R().
		SetResult(&api.ApplicationDetails{}).
		Get(fmt.Sprintf("/applications/%s", satellite.AppName))
	if err != nil {
		return nil, err
	}

	if http.StatusNotFound == resp.StatusCode() {
		return nil, fmt.Errorf("no satellite application found, maybe try `skypipe setup`")
	}

	if http.StatusOK == resp.StatusCode() {
		details := resp.Result().(*api.ApplicationDetails)
		return details, nil
	}

	return nil, fmt.Errorf("%s", resp.Body())
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
