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
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultAPIURL = "https://api.skypipe.io"

type accountPrompt struct {
	URL      string
	Username string
	Password string
}

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Authenticate against the platform and launch the satellite",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if helper.CurrentConfig("token") == "" {
			helper.CheckError(runAccountSetup(ctx, os.Stdin))
		}

		client, err := platform.Client(Verbose)
		helper.CheckError(err)

		orchestrator := newOrchestrator(client, os.Stdout, satellite.DefaultProbeTimeout)
		if _, err := runEndpointCmd(ctx, orchestrator, true); err != nil {
			if errors.Is(err, satellite.ErrDetached) {
				os.Exit(0)
			}
			helper.CheckError(err)
		}

		color.Green("Skypipe is ready for action")
	},
}

func createAccountFromReader(stdin io.Reader) *accountPrompt {
	reader := bufio.NewReader(stdin)
	prompt := accountPrompt{}

	fmt.Printf("Platform URL (%s): ", defaultAPIURL)
	url, _ := reader.ReadString('\n')
	url = strings.TrimSpace(url)
	if len(url) < 1 {
		url = defaultAPIURL
	}
	prompt.URL = url

	fmt.Print("Email: ")
	username, _ := reader.ReadString('\n')
	prompt.Username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	prompt.Password = strings.TrimSpace(password)

	return &prompt
}

// runAccountSetup authenticates the account and persists the token under the
// current remote, creating the "default" remote on first use.
func runAccountSetup(ctx context.Context, stdin io.Reader) error {
	prompt := createAccountFromReader(stdin)

	client := resty.New()
	client.SetHostURL(prompt.URL)
	client.SetDebug(Verbose)

	credentials, err := platform.Authenticate(ctx, client, prompt.Username, prompt.Password)
	if err != nil {
		return err
	}

	return saveCredentials(prompt.URL, credentials)
}

func saveCredentials(url string, credentials *platform.Credentials) error {
	remote := viper.GetString("remote")
	if len(remote) < 1 {
		remote = "default"
		viper.Set("remote", remote)
	}

	viper.Set(fmt.Sprintf("%s.url", remote), url)
	viper.Set(fmt.Sprintf("%s.token", remote), credentials.Token)
	viper.Set(fmt.Sprintf("%s.token_url", remote), credentials.TokenURL)

	if err := viper.WriteConfigAs(helper.CfgFile); err != nil {
		return fmt.Errorf("unable to write config: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
