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

// Package satellite provisions and verifies the skypipe satellite service on
// the platform: it looks up the recorded endpoint, probes it, and when the
// satellite is missing or unresponsive drives a full redeploy until a
// connectable endpoint exists again.
package satellite

import "time"

// AppName is the fixed application identity of the satellite. There is at
// most one live application under this name per account.
const AppName = "skypipe0"

// Flavor is the resource tier the satellite application is created with.
const Flavor = "sandbox"

// Environment keys the deployed satellite publishes its address under.
const (
	EnvHostKey = "SKYPIPE_SATELLITE_HOST"
	EnvPortKey = "SKYPIPE_SATELLITE_PORT"
)

const (
	// DefaultProbeTimeout bounds the endpoint check during discovery, when
	// an already-running satellite should answer promptly.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultOnlineTimeout bounds the endpoint check after a redeploy. A
	// freshly deployed satellite needs warm-up time.
	DefaultOnlineTimeout = 120 * time.Second
)
