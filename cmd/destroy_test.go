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
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/skypipe/skypipe-cli/platform"
	"github.com/skypipe/skypipe-cli/satellite"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDestroyCommand(t *testing.T) {
	client := resty.New()
	client.SetHostURL("http://platform.test")

	viper.SetFs(afero.NewMemMapFs())
	initConfig()
	viper.Set("remote", "default")

	httpmock.ActivateNonDefault(client.GetClient())
	defer httpmock.DeactivateAndReset()

	var tests = []struct {
		statusCode int
		wantErr    bool
	}{
		{204, false},
		{404, false},
		{500, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.statusCode), func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("DELETE", fmt.Sprintf("/applications/%s", satellite.AppName),
				httpmock.NewStringResponder(tt.statusCode, ""))

			var stdin bytes.Buffer
			stdin.Write([]byte("y\n"))

			directory := platform.NewDirectory(client)
			err := runDestroyCmd(context.Background(), directory, &stdin)

			assert.Equal(t, 1, httpmock.GetTotalCallCount())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
