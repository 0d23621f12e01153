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
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func newAuthClient() *resty.Client {
	client := resty.New()
	client.SetHostURL("http://platform.test")

	httpmock.ActivateNonDefault(client.GetClient())

	return client
}

func registerDiscovery() {
	httpmock.RegisterResponder("GET", "/auth/discovery",
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, map[string]string{
				"token": "http://platform.test/auth/token",
			})
		},
	)
}

func TestAuthenticate(t *testing.T) {
	client := newAuthClient()
	defer httpmock.DeactivateAndReset()

	registerDiscovery()
	httpmock.RegisterResponder("POST", "http://platform.test/auth/token",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				return nil, err
			}
			assert.Equal(t, "password", req.PostForm.Get("grant_type"))
			assert.Equal(t, "pilot@example.com", req.PostForm.Get("username"))
			assert.Equal(t, "hunter2", req.PostForm.Get("password"))
			assert.Equal(t, clientKey, req.PostForm.Get("client_id"))

			return httpmock.NewJsonResponse(200, map[string]string{"access_token": "tok-abc"})
		},
	)

	credentials, err := Authenticate(context.Background(), client, "pilot@example.com", "hunter2")

	assert.NoError(t, err)
	assert.Equal(t, "tok-abc", credentials.Token)
	assert.Equal(t, "http://platform.test/auth/token", credentials.TokenURL)
}

func TestAuthenticateBadPassword(t *testing.T) {
	client := newAuthClient()
	defer httpmock.DeactivateAndReset()

	registerDiscovery()
	httpmock.RegisterResponder("POST", "http://platform.test/auth/token",
		httpmock.NewStringResponder(401, `{"detail": "invalid credentials"}`))

	_, err := Authenticate(context.Background(), client, "pilot@example.com", "wrong")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
}

func TestAuthenticateEmptyDiscovery(t *testing.T) {
	client := newAuthClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "/auth/discovery",
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, map[string]string{})
		},
	)

	_, err := Authenticate(context.Background(), client, "pilot@example.com", "hunter2")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no token URL")
}
