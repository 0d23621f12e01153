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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/ryanuber/columnize"
	"github.com/skypipe/skypipe-cli/api"
	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/cobra"
)

// appsCmd represents the apps command
var appsCmd = &cobra.Command{
	Use:    "apps",
	Short:  "List the applications on your platform account",
	Hidden: true,

	Run: func(cmd *cobra.Command, args []string) {
		client, err := platform.Client(Verbose)
		helper.CheckError(err)

		apps, err := runAppsCmd(client)
		helper.CheckError(err)

		var output []string
		row := []string{"NAME", "FLAVOR", "CREATED AT", "LAST DEPLOYMENT"}
		output = append(output, strings.Join(row, "|"))

		for _, app := range apps {
			name := app.Name
			if name == satellite.AppName {
				name = "*" + name
			}

			lastDeployment := "N/A"
			if app.LastDeploymentAt > 0 {
				lastDeployment = humanize.Time(time.Unix(int64(app.LastDeploymentAt), 0))
			}

			row := []string{
				name,
				app.Flavor,
				humanize.Time(time.Unix(int64(app.CreatedAt), 0)),
				lastDeployment,
			}

			output = append(output, strings.Join(row, "|"))
		}
		result := columnize.SimpleFormat(output)
		fmt.Println(result)
	},
}

func runAppsCmd(client *resty.Client) ([]*api.Application, error) {
	var apps []*api.Application

	resp, err := client.R().
		SetResult(&apps).
		Get("/applications")
	if err != nil {
		return nil, err
	}

	if http.StatusOK == resp.StatusCode() {
		return apps, nil
	}

	return nil, fmt.Errorf("%s", resp.Body())
}

func init() {
	rootCmd.AddCommand(appsCmd)
}
