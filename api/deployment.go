package api

// Deployment correlates the remote operations of one deploy attempt. The
// trace id comes back in a response header rather than the body.
type Deployment struct {
	ID      string `json:"deploy_id"`
	TraceID string `json:"-"`
}

type PushEndpoint struct {
	Protocol string `json:"protocol"`
	URI      string `json:"uri"`
}

// Terminal statuses of a deployment log stream. An entry with one of these
// statuses is the last entry the platform emits for the deployment.
const (
	DeployStatusDone   = "done"
	DeployStatusFailed = "failed"
)

type DeploymentLogEntry struct {
	Timestamp float64 `json:"timestamp"`
	Service   string  `json:"service_name"`
	Message   string  `json:"message"`
	Status    string  `json:"status,omitempty"`
	ExitCode  int     `json:"exit_code,omitempty"`
}

func (e *DeploymentLogEntry) Terminal() bool {
	return e.Status == DeployStatusDone || e.Status == DeployStatusFailed
}

type DeploymentLogsResult struct {
	Entries []*DeploymentLogEntry `json:"entries"`
}
