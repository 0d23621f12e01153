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

package api

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/skypipe/skypipe-cli/helper"
	"gopkg.in/yaml.v2"
)

// PayloadConfigFile is the manifest expected at the root of the satellite
// payload directory.
const PayloadConfigFile = "satellite.yaml"

// PayloadConfig describes the satellite bundle that gets pushed to the
// platform. It is validated locally before any code transfer happens.
type PayloadConfig struct {
	Name    string            `yaml:"name"`
	Version string            `yaml:"version"`
	Port    int               `yaml:"port"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// LoadPayloadConfig reads and validates the manifest of the payload
// directory at path.
func LoadPayloadConfig(path string) (*PayloadConfig, error) {
	manifestPath := filepath.Join(path, PayloadConfigFile)
	yamlFile, err := ioutil.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read payload manifest %s: %w", manifestPath, err)
	}

	config := PayloadConfig{}
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, fmt.Errorf("unable to parse payload manifest %s: %w", manifestPath, err)
	}

	if config.Name == "" {
		return nil, fmt.Errorf("payload manifest %s has no service name", manifestPath)
	}

	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("payload manifest %s has an invalid port %d", manifestPath, config.Port)
	}

	version, err := helper.SanitizeVersion(config.Version)
	if err != nil {
		return nil, fmt.Errorf("payload manifest %s: %w", manifestPath, err)
	}
	config.Version = version

	return &config, nil
}
