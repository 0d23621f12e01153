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

package satellite

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured means platform credentials are not loaded. Running
// `skypipe setup` is the fix; nothing here retries it.
var ErrNotConfigured = errors.New("skypipe is not set up, please run `skypipe setup`")

// ErrNoEndpoint is returned by Discover when no working satellite exists and
// deploying one was not allowed.
var ErrNoEndpoint = errors.New("no satellite endpoint available")

// ErrDetached is returned when the user interrupts the deployment log
// stream. The remote deployment keeps running; only local output stopped.
var ErrDetached = errors.New("log stream detached, deployment still running remotely")

// CreateConflictError means the application already existed when a fresh one
// was being created. Destroy runs strictly before create, so this indicates
// an external actor and needs human intervention rather than a retry.
type CreateConflictError struct {
	AppName string
}

func (e *CreateConflictError) Error() string {
	return fmt.Sprintf("application %q already exists, refusing to deploy over it", e.AppName)
}

// DeployError means the platform reported the deployment itself as failed.
// The trace id lets a human inspect the remote deployment logs.
type DeployError struct {
	TraceID  string
	ExitCode int
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("satellite deployment failed with exit code %d (trace id %s)", e.ExitCode, e.TraceID)
}

// OnlineTimeoutError means the deployment finished but the satellite never
// became reachable within the extended timeout.
type OnlineTimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *OnlineTimeoutError) Error() string {
	return fmt.Sprintf("satellite at %s failed to come online within %s", e.Endpoint, e.Timeout)
}
