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
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/skypipe/skypipe-cli/api"
	"github.com/skypipe/skypipe-cli/helper"
	"github.com/skypipe/skypipe-cli/platform"
)

var logger = helper.GetSugarLogger([]string{"satellite"})

// Platform is the slice of the application-management API the orchestrator
// drives. *platform.Directory implements it.
type Platform interface {
	LookupEnvironment(ctx context.Context, appName string) (map[string]string, error)
	CreateApplication(ctx context.Context, appName string, flavor string) error
	DestroyApplication(ctx context.Context, appName string) error
	ListPushEndpoints(ctx context.Context, appName string, protocol string) ([]*api.PushEndpoint, error)
	PushCode(ctx context.Context, endpoint *api.PushEndpoint, localPath string, quiet bool) error
	TriggerDeployment(ctx context.Context, appName string, revision string, clean bool) (*api.Deployment, error)
	StreamDeploymentLogs(ctx context.Context, appName string, deployment *api.Deployment, out io.Writer) (int, error)
}

// Config carries the orchestrator's explicit settings. Zero values fall back
// to the package defaults in New.
type Config struct {
	AppName       string
	Flavor        string
	PayloadPath   string
	PushProtocol  string
	VerbosePush   bool
	ProbeTimeout  time.Duration
	OnlineTimeout time.Duration
	Probe         ProbeFunc
	Out           io.Writer

	// CredentialsLoaded is the explicit "is configured" predicate. Discover
	// refuses to run without it.
	CredentialsLoaded bool
}

// Orchestrator owns the discover/validate/redeploy workflow. One Discover
// call performs at most one redeploy attempt; it never loops.
type Orchestrator struct {
	platform Platform
	cfg      Config
	reporter *reporter
}

func New(p Platform, cfg Config) *Orchestrator {
	if cfg.AppName == "" {
		cfg.AppName = AppName
	}
	if cfg.Flavor == "" {
		cfg.Flavor = Flavor
	}
	if cfg.PushProtocol == "" {
		cfg.PushProtocol = platform.ProtocolRsync
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.OnlineTimeout == 0 {
		cfg.OnlineTimeout = DefaultOnlineTimeout
	}
	if cfg.Probe == nil {
		cfg.Probe = Probe
	}
	if cfg.Out == nil {
		cfg.Out = ioutil.Discard
	}

	return &Orchestrator{
		platform: p,
		cfg:      cfg,
		reporter: newReporter(cfg.Out),
	}
}

// Discover returns a verified satellite endpoint. It looks up the recorded
// endpoint and probes it; when the lookup fails or the probe comes back
// negative it launches a fresh satellite, unless deployAllowed is false, in
// which case it returns ErrNoEndpoint.
//
// Any lookup failure counts as "no current deployment": the workflow favors
// self-healing over surfacing ambiguous remote errors, which also means a
// genuine platform outage shows up as a redeploy attempt rather than a
// lookup error.
func (o *Orchestrator) Discover(ctx context.Context, deployAllowed bool) (string, error) {
	if !o.cfg.CredentialsLoaded {
		return "", ErrNotConfigured
	}

	endpoint, err := o.lookupEndpoint(ctx)
	if err == nil {
		if o.cfg.Probe(ctx, endpoint, o.cfg.ProbeTimeout) {
			return endpoint, nil
		}
		logger.Debugw("satellite endpoint did not answer", "endpoint", endpoint)
	} else {
		logger.Debugw("satellite endpoint lookup failed", "error", err)
	}

	if !deployAllowed {
		return "", ErrNoEndpoint
	}

	return o.launch(ctx)
}

// lookupEndpoint derives the satellite endpoint from the application's
// remote environment. The endpoint is rebuilt on every call, never cached.
func (o *Orchestrator) lookupEndpoint(ctx context.Context) (string, error) {
	environment, err := o.platform.LookupEnvironment(ctx, o.cfg.AppName)
	if err != nil {
		return "", err
	}

	host := environment[EnvHostKey]
	port := environment[EnvPortKey]
	if host == "" || port == "" {
		return "", fmt.Errorf("application %q environment has no %s/%s", o.cfg.AppName, EnvHostKey, EnvPortKey)
	}

	return fmt.Sprintf("tcp://%s:%s", host, port), nil
}

// launch deploys a new satellite over any existing one: destroy, create,
// push, trigger, follow the deployment log, then wait for the satellite to
// answer probes.
func (o *Orchestrator) launch(ctx context.Context) (string, error) {
	fmt.Fprintln(o.cfg.Out, "Launching skypipe satellite:")

	task := o.reporter.Start("    Pushing satellite code")

	// Destroy anything living under the satellite's name. An application
	// that is already gone is what we want, and a failed destroy surfaces
	// soon enough as a create conflict.
	if err := o.platform.DestroyApplication(ctx, o.cfg.AppName); err != nil {
		logger.Infow("destroying previous satellite failed", "error", err)
	}

	if err := o.platform.CreateApplication(ctx, o.cfg.AppName, o.cfg.Flavor); err != nil {
		task.Stop()
		if platform.IsAlreadyExists(err) {
			return "", &CreateConflictError{AppName: o.cfg.AppName}
		}
		return "", fmt.Errorf("creating application %q failed: %w", o.cfg.AppName, err)
	}

	endpoints, err := o.platform.ListPushEndpoints(ctx, o.cfg.AppName, o.cfg.PushProtocol)
	if err != nil {
		task.Stop()
		return "", fmt.Errorf("listing push endpoints failed: %w", err)
	}
	if len(endpoints) == 0 {
		task.Stop()
		return "", fmt.Errorf("the platform offered no %q push endpoint", o.cfg.PushProtocol)
	}

	if err := o.platform.PushCode(ctx, endpoints[0], o.cfg.PayloadPath, !o.cfg.VerbosePush); err != nil {
		task.Stop()
		return "", fmt.Errorf("pushing satellite code failed: %w", err)
	}

	// Deploy the freshly pushed state: no pinned revision, no clean rebuild.
	deployment, err := o.platform.TriggerDeployment(ctx, o.cfg.AppName, "", false)
	if err != nil {
		task.Stop()
		return "", fmt.Errorf("triggering deployment failed: %w", err)
	}

	task.Stop()
	task = o.reporter.Start("    Waiting for deployment")

	// The raw deployment log is noise here; the dots above tell the story
	// and `skypipe logs` replays the stream on demand.
	exitCode, err := o.platform.StreamDeploymentLogs(ctx, o.cfg.AppName, deployment, ioutil.Discard)
	task.Stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.reportDetached(deployment)
			return "", ErrDetached
		}
		return "", fmt.Errorf("following deployment logs failed (trace id %s): %w", deployment.TraceID, err)
	}
	if exitCode != 0 {
		return "", &DeployError{TraceID: deployment.TraceID, ExitCode: exitCode}
	}

	task = o.reporter.Start("    Satellite coming online")

	endpoint, err := o.lookupEndpoint(ctx)
	if err != nil {
		task.Stop()
		return "", fmt.Errorf("looking up the satellite endpoint after deploy failed: %w", err)
	}

	online := o.cfg.Probe(ctx, endpoint, o.cfg.OnlineTimeout)
	task.Stop()
	if !online {
		return "", &OnlineTimeoutError{Endpoint: endpoint, Timeout: o.cfg.OnlineTimeout}
	}

	return endpoint, nil
}

// reportDetached tells the user that only the local log stream stopped: the
// remote deployment is still running and can be followed again.
func (o *Orchestrator) reportDetached(deployment *api.Deployment) {
	fmt.Fprintln(o.cfg.Out)
	fmt.Fprintln(o.cfg.Out, "You've stopped following the log stream, but the deployment is still running in the background.")
	fmt.Fprintf(o.cfg.Out, "To keep following it, run:\n    skypipe logs --deploy %s --follow\n", deployment.ID)
	fmt.Fprintf(o.cfg.Out, "If the deployment looked stuck, mention trace id %s when reporting it.\n", deployment.TraceID)
}
