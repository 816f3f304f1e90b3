package mesh

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/meshbench/meshbench/pkg/types"
)

// Convention selects how the bootstrap instance announces its network
// identity in its log output. The two observed node logging styles
// diverge here, so the convention is explicit configuration, never a
// heuristic.
type Convention string

const (
	// ConventionFirstLine expects the identity as a bare token on the
	// first log line.
	ConventionFirstLine Convention = "first-line"

	// ConventionEvent expects a structured "initialized" event with an
	// identity field somewhere in the log stream.
	ConventionEvent Convention = "event"
)

// identityTokenPrefix is the peer-ID prefix the bare-token convention
// matches on the first line.
const identityTokenPrefix = "12D"

// resolvePollInterval is the cadence of log fetches while waiting for
// the identity to appear.
const resolvePollInterval = 500 * time.Millisecond

// ResolveTimeoutError reports that the bootstrap never announced its
// identity within the configured timeout.
type ResolveTimeoutError struct {
	Instance string
	Timeout  time.Duration
}

func (e *ResolveTimeoutError) Error() string {
	return fmt.Sprintf("identity of %s did not appear within %v", e.Instance, e.Timeout)
}

// resolveIdentity polls the instance's accumulated log output until
// its self-announced identity can be extracted, or the timeout
// elapses.
//
// The identity never changes for an instance's lifetime; once resolved
// it is cached on the record and later calls return the cached value
// without touching the logs again.
func (m *Mesh) resolveIdentity(ctx context.Context, inst *types.InstanceRecord) (string, error) {
	if inst.Identity != "" {
		return inst.Identity, nil
	}

	deadline := time.Now().Add(m.cfg.ResolveTimeout)
	for {
		logs, err := m.rt.Logs(ctx, inst.ContainerID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch logs of %s: %w", inst.Name, err)
		}

		if identity := extractIdentity(logs, m.cfg.IdentityConvention); identity != "" {
			return identity, nil
		}

		if time.Now().After(deadline) {
			return "", &ResolveTimeoutError{Instance: inst.Name, Timeout: m.cfg.ResolveTimeout}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(resolvePollInterval):
		}
	}
}

// extractIdentity applies the configured announcement convention to
// accumulated log text. Returns "" while no identity is visible yet.
func extractIdentity(logs string, convention Convention) string {
	switch convention {
	case ConventionEvent:
		return extractIdentityEvent(logs)
	default:
		return extractIdentityFirstLine(logs)
	}
}

// extractIdentityFirstLine treats the first line of output as the
// identity when it carries the expected token prefix.
func extractIdentityFirstLine(logs string) string {
	trimmed := strings.TrimSpace(logs)
	if trimmed == "" {
		return ""
	}
	first := trimmed
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first = trimmed[:idx]
	}
	first = strings.TrimSpace(first)
	if strings.HasPrefix(first, identityTokenPrefix) {
		return first
	}
	return ""
}

// extractIdentityEvent scans every line for a structured "initialized"
// event and returns its identity payload.
func extractIdentityEvent(logs string) string {
	for _, line := range strings.Split(logs, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] != '{' {
			continue
		}
		var ev struct {
			Event    string `json:"event"`
			Identity string `json:"identity"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Event == "initialized" && ev.Identity != "" {
			return ev.Identity
		}
	}
	return ""
}
