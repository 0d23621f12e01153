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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/skypipe/skypipe-cli/api"
	"github.com/stretchr/testify/assert"
)

const appName = "skypipe0"

func newTestDirectory() *Directory {
	client := resty.New()
	client.SetHostURL("http://platform.test")

	httpmock.ActivateNonDefault(client.GetClient())

	return NewDirectory(client)
}

func TestLookupEnvironment(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", fmt.Sprintf("/applications/%s/environment", appName),
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, map[string]string{
				"SKYPIPE_SATELLITE_HOST": "10.0.0.5",
				"SKYPIPE_SATELLITE_PORT": "9000",
			})
		},
	)

	environment, err := directory.LookupEnvironment(context.Background(), appName)

	assert.NoError(t, err)
	assert.Equal(t, "10.0.0.5", environment["SKYPIPE_SATELLITE_HOST"])
	assert.Equal(t, "9000", environment["SKYPIPE_SATELLITE_PORT"])
}

func TestLookupEnvironmentNotFound(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", fmt.Sprintf("/applications/%s/environment", appName),
		httpmock.NewStringResponder(404, `{"detail": "no such application"}`))

	_, err := directory.LookupEnvironment(context.Background(), appName)

	assert.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAlreadyExists(err))
}

func TestCreateApplication(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "/applications",
		func(req *http.Request) (*http.Response, error) {
			app := api.Application{}
			if err := json.NewDecoder(req.Body).Decode(&app); err != nil {
				return nil, err
			}
			assert.Equal(t, appName, app.Name)
			assert.Equal(t, "sandbox", app.Flavor)

			return httpmock.NewStringResponse(201, ""), nil
		},
	)

	err := directory.CreateApplication(context.Background(), appName, "sandbox")

	assert.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestCreateApplicationConflict(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	responder := httpmock.NewStringResponder(409, `{"detail": "application exists"}`)
	httpmock.RegisterResponder("POST", "/applications", responder)

	err := directory.CreateApplication(context.Background(), appName, "sandbox")

	assert.Error(t, err)
	assert.True(t, IsAlreadyExists(err))
}

func TestDestroyApplication(t *testing.T) {
	var tests = []struct {
		statusCode int
		wantErr    bool
	}{
		{204, false},
		{200, false},
		// A satellite that is already gone counts as destroyed.
		{404, false},
		{500, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.statusCode), func(t *testing.T) {
			directory := newTestDirectory()
			defer httpmock.DeactivateAndReset()

			httpmock.RegisterResponder("DELETE", fmt.Sprintf("/applications/%s", appName),
				httpmock.NewStringResponder(tt.statusCode, ""))

			err := directory.DestroyApplication(context.Background(), appName)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListPushEndpointsFiltersProtocol(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", fmt.Sprintf("/applications/%s/push-endpoints", appName),
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, []*api.PushEndpoint{
				{Protocol: "rsync", URI: "user@push-1.platform.test:skypipe0"},
				{Protocol: "sftp", URI: "sftp://user@push-1.platform.test/skypipe0"},
				{Protocol: "rsync", URI: "user@push-2.platform.test:skypipe0"},
			})
		},
	)

	endpoints, err := directory.ListPushEndpoints(context.Background(), appName, "rsync")

	assert.NoError(t, err)
	assert.Len(t, endpoints, 2)
	for _, endpoint := range endpoints {
		assert.Equal(t, "rsync", endpoint.Protocol)
	}
}

func TestTriggerDeployment(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", fmt.Sprintf("/applications/%s/deployments", appName),
		func(req *http.Request) (*http.Response, error) {
			body := map[string]interface{}{}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			assert.Equal(t, "", body["revision"])
			assert.Equal(t, false, body["clean"])

			resp, err := httpmock.NewJsonResponse(201, map[string]string{"deploy_id": "dep-42"})
			if err != nil {
				return nil, err
			}
			resp.Header.Set("X-Trace-Id", "trace-42")
			return resp, nil
		},
	)

	deployment, err := directory.TriggerDeployment(context.Background(), appName, "", false)

	assert.NoError(t, err)
	assert.Equal(t, "dep-42", deployment.ID)
	assert.Equal(t, "trace-42", deployment.TraceID)
}

func TestTriggerDeploymentFailure(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", fmt.Sprintf("/applications/%s/deployments", appName),
		httpmock.NewStringResponder(400, `{"detail": "nothing pushed"}`))

	_, err := directory.TriggerDeployment(context.Background(), appName, "", false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nothing pushed")
}

func streamLogsResponder(t *testing.T, pages [][]*api.DeploymentLogEntry) httpmock.Responder {
	t.Helper()

	page := 0
	return func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "trace-42", req.Header.Get("X-Trace-Id"))

		if page > 0 {
			// Pages after the first resume from the last seen timestamp.
			assert.NotEmpty(t, req.URL.Query().Get("from_time"))
		}

		entries := []*api.DeploymentLogEntry{}
		if page < len(pages) {
			entries = pages[page]
			page++
		}

		return httpmock.NewJsonResponse(200, api.DeploymentLogsResult{Entries: entries})
	}
}

func TestStreamDeploymentLogs(t *testing.T) {
	oldInterval := logPollInterval
	logPollInterval = 5 * time.Millisecond
	t.Cleanup(func() { logPollInterval = oldInterval })

	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	deployment := &api.Deployment{ID: "dep-42", TraceID: "trace-42"}

	pages := [][]*api.DeploymentLogEntry{
		{
			{Timestamp: 1.0, Service: "satellite", Message: "building"},
			{Timestamp: 2.0, Service: "satellite", Message: "starting"},
		},
		{},
		{
			{Timestamp: 3.0, Service: "satellite", Message: "deployed", Status: api.DeployStatusDone},
		},
	}

	httpmock.RegisterResponder("GET",
		fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID),
		streamLogsResponder(t, pages))

	out := &bytes.Buffer{}
	exitCode, err := directory.StreamDeploymentLogs(context.Background(), appName, deployment, out)

	assert.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, out.String(), "building")
	assert.Contains(t, out.String(), "starting")
	assert.Contains(t, out.String(), "deployed")
}

func TestStreamDeploymentLogsFailedDeploy(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	deployment := &api.Deployment{ID: "dep-43", TraceID: "trace-43"}

	httpmock.RegisterResponder("GET",
		fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID),
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, api.DeploymentLogsResult{
				Entries: []*api.DeploymentLogEntry{
					{Timestamp: 1.0, Service: "satellite", Message: "build broke", Status: api.DeployStatusFailed},
				},
			})
		},
	)

	exitCode, err := directory.StreamDeploymentLogs(context.Background(), appName, deployment, &bytes.Buffer{})

	assert.NoError(t, err)
	// A failure without an explicit code still reports nonzero.
	assert.Equal(t, 1, exitCode)
}

func TestStreamDeploymentLogsDetachesOnCancel(t *testing.T) {
	oldInterval := logPollInterval
	logPollInterval = 5 * time.Millisecond
	t.Cleanup(func() { logPollInterval = oldInterval })

	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	deployment := &api.Deployment{ID: "dep-44", TraceID: "trace-44"}

	httpmock.RegisterResponder("GET",
		fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID),
		func(req *http.Request) (*http.Response, error) {
			// Never emits a terminal entry.
			return httpmock.NewJsonResponse(200, api.DeploymentLogsResult{})
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := directory.StreamDeploymentLogs(ctx, appName, deployment, &bytes.Buffer{})

	assert.Equal(t, context.Canceled, err)
}

func TestFetchDeploymentLogs(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	deployment := &api.Deployment{ID: "dep-45", TraceID: "trace-45"}

	httpmock.RegisterResponder("GET",
		fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID),
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "trace-45", req.Header.Get("X-Trace-Id"))
			return httpmock.NewJsonResponse(200, api.DeploymentLogsResult{
				Entries: []*api.DeploymentLogEntry{
					{Timestamp: 1.0, Service: "satellite", Message: "building"},
					{Timestamp: 2.0, Service: "satellite", Message: "deployed", Status: api.DeployStatusDone},
				},
			})
		},
	)

	out := &bytes.Buffer{}
	exitCode, finished, err := directory.FetchDeploymentLogs(context.Background(), appName, deployment, out)

	assert.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, out.String(), "building")
	assert.Contains(t, out.String(), "deployed")
}

func TestFetchDeploymentLogsStillRunning(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	deployment := &api.Deployment{ID: "dep-46", TraceID: "trace-46"}

	httpmock.RegisterResponder("GET",
		fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID),
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, api.DeploymentLogsResult{
				Entries: []*api.DeploymentLogEntry{
					{Timestamp: 1.0, Service: "satellite", Message: "still building"},
				},
			})
		},
	)

	exitCode, finished, err := directory.FetchDeploymentLogs(context.Background(), appName, deployment, &bytes.Buffer{})

	assert.NoError(t, err)
	assert.False(t, finished)
	assert.Equal(t, 0, exitCode)
	// One request, no polling for a terminal entry.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestFetchDeploymentLogsFailedDeploy(t *testing.T) {
	directory := newTestDirectory()
	defer httpmock.DeactivateAndReset()

	deployment := &api.Deployment{ID: "dep-47", TraceID: "trace-47"}

	httpmock.RegisterResponder("GET",
		fmt.Sprintf("/applications/%s/deployments/%s/logs", appName, deployment.ID),
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, api.DeploymentLogsResult{
				Entries: []*api.DeploymentLogEntry{
					{Timestamp: 1.0, Service: "satellite", Message: "build broke", Status: api.DeployStatusFailed},
				},
			})
		},
	)

	exitCode, finished, err := directory.FetchDeploymentLogs(context.Background(), appName, deployment, &bytes.Buffer{})

	assert.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, 1, exitCode)
}
