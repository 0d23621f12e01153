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

package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/skypipe/skypipe-cli/api"
	"github.com/skypipe/skypipe-cli/helper"
)

const traceIDHeader = "X-Trace-Id"

// logPollInterval is how long StreamDeploymentLogs waits between pages when
// the deployment has not reached a terminal entry yet.
var logPollInterval = 2 * time.Second

var logger = helper.GetSugarLogger([]string{"platform"})

// Directory wraps the platform's application-management API. Every method is
// one blocking remote call; retry and ordering decisions belong to the
// caller.
type Directory struct {
	client     *resty.Client
	sshKeyPath string
}

func NewDirectory(client *resty.Client) *Directory {
	return &Directory{client: client}
}

// SetSSHKeyPath sets the private key used by the sftp push protocol.
func (d *Directory) SetSSHKeyPath(path string) {
	d.sshKeyPath = path
}

// LookupEnvironment fetches the environment variables of an application. A
// missing application surfaces as an *APIError with a 404 status.
func (d *Directory) LookupEnvironment(ctx context.Context, appName string) (map[string]string, error) {
	environment := map[string]string{}

	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&environment).
		Get(fmt.Sprintf("/applications/%s/environment", appName))
	if err != nil {
		return nil, err
	}

	if http.StatusOK != resp.StatusCode() {
		return nil, apiError(resp)
	}

	return environment, nil
}

// CreateApplication creates a fresh application under appName. A 409 from
// the platform surfaces as an *APIError the caller can detect with
// IsAlreadyExists.
func (d *Directory) CreateApplication(ctx context.Context, appName string, flavor string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(&api.Application{Name: appName, Flavor: flavor}).
		Post("/applications")
	if err != nil {
		return err
	}

	if http.StatusCreated != resp.StatusCode() {
		return apiError(resp)
	}

	return nil
}

// DestroyApplication deletes an application. Absence of the application is
// success, the point is that it is gone.
func (d *Directory) DestroyApplication(ctx context.Context, appName string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/applications/%s", appName))
	if err != nil {
		return err
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}

	return apiError(resp)
}

// ListPushEndpoints returns the application's push endpoints matching the
// given transfer protocol.
func (d *Directory) ListPushEndpoints(ctx context.Context, appName string, protocol string) ([]*api.PushEndpoint, error) {
	var endpoints []*api.PushEndpoint

	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&endpoints).
		Get(fmt.Sprintf("/applications/%s/push-endpoints", appName))
	if err != nil {
		return nil, err
	}

	if http.StatusOK != resp.StatusCode() {
		return nil, apiError(resp)
	}

	var matching []*api.PushEndpoint
	for _, endpoint := range endpoints {
		if endpoint.Protocol == protocol {
			matching = append(matching, endpoint)
		}
	}

	return matching, nil
}

// TriggerDeployment asks the platform to deploy the last pushed state. An
// empty revision means latest; clean requests a rebuild from scratch.
func (d *Directory) TriggerDeployment(ctx context.Context, appName string, revision string, clean bool) (*api.Deployment, error) {
	body := map[string]interface{}{
		"revision": revision,
		"clean":    clean,
	}

	deployment := api.Deployment{}
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&deployment).
		Post(fmt.Sprintf("/applications/%s/deployments", appName))
	if err != nil {
		return nil, err
	}

	if http.StatusCreated != resp.StatusCode() {
		return nil, apiError(resp)
	}

	deployment.TraceID = resp.Header().Get(traceIDHeader)
	return &deployment, nil
}

// StreamDeploymentLogs follows the log of one deployment until the platform
// emits a terminal entry, writing each message to out. It returns the
// deployment's exit code: zero for success, nonzero for a failed deployment.
// Cancelling ctx detaches the local stream only; the remote deployment keeps
// running.
func (d *Directory) StreamDeploymentLogs(ctx context.Context, appName string, deployment *api.Deployment, out io.Writer) (int, error) {
	lastTimestamp := 0.0

	for {
		result := api.DeploymentLogsResult{}

		request := d.client.R().
			SetContext(ctx).
			SetResult(&result).
			SetHeader(traceIDHeader, deployment.TraceID)
		if lastTimestamp > 0 {
			request = request.SetQueryParam("from_time", fmt.Sprintf("%f", lastTimestamp))
		}

		resp, err := request.Get(fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID))
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, err
		}

		if http.StatusOK != resp.StatusCode() {
			return 0, apiError(resp)
		}

		for _, entry := range result.Entries {
			fmt.Fprintf(out, "[%s] %s\n", entry.Service, entry.Message)
			lastTimestamp = entry.Timestamp

			if entry.Terminal() {
				exitCode := terminalExitCode(entry)
				logger.Debugw("deployment log stream finished",
					"deploy_id", deployment.ID, "status", entry.Status, "exit_code", exitCode)
				return exitCode, nil
			}
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(logPollInterval):
		}
	}
}

// FetchDeploymentLogs writes the log entries available right now and reports
// whether the deployment already reached a terminal entry. Unlike
// StreamDeploymentLogs it never waits for more output.
func (d *Directory) FetchDeploymentLogs(ctx context.Context, appName string, deployment *api.Deployment, out io.Writer) (int, bool, error) {
	result := api.DeploymentLogsResult{}

	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetHeader(traceIDHeader, deployment.TraceID).
		Get(fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID))
	if err != nil {
		return 0, false, err
	}

	if http.StatusOK != resp.StatusCode() {
		return 0, false, apiError(resp)
	}

	for _, entry := range result.Entries {
		fmt.Fprintf(out, "[%s] %s\n", entry.Service, entry.Message)

		if entry.Terminal() {
			return terminalExitCode(entry), true, nil
		}
	}

	return 0, false, nil
}

func terminalExitCode(entry *api.DeploymentLogEntry) int {
	if entry.Status == api.DeployStatusFailed && entry.ExitCode == 0 {
		// The platform reported failure without a code.
		return 1
	}
	return entry.ExitCode
}
