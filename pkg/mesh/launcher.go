package mesh

import (
	"context"
	"fmt"
	"strconv"

	"github.com/meshbench/meshbench/pkg/runtime"
	"github.com/meshbench/meshbench/pkg/types"
)

// instanceName returns the deterministic container name for a role.
// The bootstrap keeps a fixed reserved name so peers can address it by
// logical network name; peers derive theirs from the control port,
// which is unique within one mesh.
func (m *Mesh) instanceName(role types.Role, controlPort int) string {
	if role == types.RoleBootstrap {
		return m.cfg.BootstrapName
	}
	return fmt.Sprintf("p2p-peer-node-%d", controlPort)
}

// instanceArgs builds the role-specific argument vector for the node
// binary. Bootstrap instances get only bind address and ports; peers
// additionally get the fully-qualified bootstrap address.
func instanceArgs(controlPort, telemetryPort int, bootstrapAddr string) []string {
	args := []string{
		"-ap", strconv.Itoa(controlPort),
		"-mp", strconv.Itoa(telemetryPort),
		"-hi", "0.0.0.0",
	}
	if bootstrapAddr != "" {
		args = append(args, "-bp", bootstrapAddr)
	}
	return args
}

// launch evicts any stale container holding the instance's name, then
// creates and starts a detached instance attached to the mesh network
// with its control and telemetry ports published to the same-numbered
// host ports. It returns as soon as the container is started;
// readiness is the identity resolver's job for the bootstrap and the
// settle delay's for peers.
func (m *Mesh) launch(ctx context.Context, role types.Role, controlPort, telemetryPort int, bootstrapAddr string) (*types.InstanceRecord, error) {
	name := m.instanceName(role, controlPort)

	// A crashed previous run may have left a container with this
	// name; evict it. "Not found" is the expected case.
	if err := m.rt.RemoveInstance(ctx, name); err != nil {
		if !runtime.IsNotFound(err) {
			return nil, fmt.Errorf("failed to evict stale container %s: %w", name, err)
		}
	} else {
		m.logger.Warn().Str("container", name).Msg("removed stale container from previous run")
	}

	spec := runtime.InstanceSpec{
		Image:   m.image,
		Name:    name,
		Network: m.cfg.NetworkName,
		Command: instanceArgs(controlPort, telemetryPort, bootstrapAddr),
		Ports:   []int{controlPort, telemetryPort},
	}

	m.logger.Info().
		Str("container", name).
		Str("role", string(role)).
		Int("control_port", controlPort).
		Int("telemetry_port", telemetryPort).
		Msg("starting instance")

	id, err := m.rt.RunInstance(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &types.InstanceRecord{
		ContainerID:   id,
		Name:          name,
		Role:          role,
		ControlPort:   controlPort,
		TelemetryPort: telemetryPort,
	}, nil
}
