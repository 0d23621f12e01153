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
	"net/http"

	"github.com/go-resty/resty/v2"
)

// OAuth client identity of the skypipe CLI, registered with the platform.
const (
	clientKey    = "skypipe-cli"
	clientSecret = "Fs9UavxLqgC7"
)

// Credentials is the outcome of a successful account authentication.
type Credentials struct {
	Token    string
	TokenURL string
}

type authDiscovery struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Authenticate performs the platform's auth discovery and exchanges the
// user's credentials for an API token. The client must point at the
// platform base URL but needs no prior authorization.
func Authenticate(ctx context.Context, client *resty.Client, username string, password string) (*Credentials, error) {
	discovery := authDiscovery{}
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&discovery).
		Get("/auth/discovery")
	if err != nil {
		return nil, err
	}
	if http.StatusOK != resp.StatusCode() {
		return nil, apiError(resp)
	}
	if discovery.Token == "" {
		return nil, fmt.Errorf("auth discovery returned no token URL")
	}

	token := tokenResponse{}
	resp, err = client.R().
		SetContext(ctx).
		SetResult(&token).
		SetFormData(map[string]string{
			"grant_type":    "password",
			"username":      username,
			"password":      password,
			"client_id":     clientKey,
			"client_secret": clientSecret,
		}).
		Post(discovery.Token)
	if err != nil {
		return nil, err
	}
	if http.StatusOK != resp.StatusCode() {
		return nil, fmt.Errorf("username and password do not match")
	}

	return &Credentials{Token: token.AccessToken, TokenURL: discovery.Token}, nil
}
