package mesh

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/ports"
	"github.com/meshbench/meshbench/pkg/runtime"
	"github.com/meshbench/meshbench/pkg/types"
)

// Config holds the desired shape of one mesh.
type Config struct {
	// ImageName is the tag for the node image.
	ImageName string

	// BuildContext is the directory holding the node's Dockerfile.
	BuildContext string

	// NetworkName is the isolated bridge network the mesh runs on.
	NetworkName string

	// BootstrapName is the fixed, reserved container name for the
	// bootstrap instance. Peers embed it in their bootstrap address,
	// so it must be stable across the mesh's lifetime.
	BootstrapName string

	// PeerCount is the number of non-bootstrap instances.
	PeerCount int

	// P2PPort is the node's internal protocol port, embedded in the
	// bootstrap address given to peers.
	P2PPort int

	// IdentityConvention selects how the bootstrap announces its
	// identity in its logs.
	IdentityConvention Convention

	// ResolveTimeout bounds how long to wait for the bootstrap's
	// identity to appear.
	ResolveTimeout time.Duration

	// SettleDelay is how long to wait after the last peer launch for
	// the overlay to stabilize before the experiment body runs.
	SettleDelay time.Duration
}

// DefaultConfig returns a mesh configuration matching the reference
// node setup.
func DefaultConfig() Config {
	return Config{
		ImageName:          "go-p2p-node",
		BuildContext:       "./go-p2p",
		NetworkName:        "p2p-test-network",
		BootstrapName:      "bootstrap-node",
		PeerCount:          5,
		P2PPort:            4001,
		IdentityConvention: ConventionFirstLine,
		ResolveTimeout:     10 * time.Second,
		SettleDelay:        10 * time.Second,
	}
}

// Mesh manages the lifecycle of one bootstrap + N peer instances plus
// their shared network as a single unit.
//
// Construction has no side effects; Deploy provisions everything and
// Cleanup tears it all down. Every created resource is tracked before
// any subsequent fallible operation, so Cleanup never has to guess
// what exists: it is safe on a partially-deployed mesh and idempotent
// across repeated calls.
type Mesh struct {
	cfg    Config
	rt     runtime.Runtime
	logger zerolog.Logger

	networkID string
	image     string
	nodes     []*types.InstanceRecord
}

// New creates an undeployed mesh. No resources are touched.
func New(cfg Config, rt runtime.Runtime) *Mesh {
	return &Mesh{
		cfg:    cfg,
		rt:     rt,
		logger: log.WithComponent("mesh"),
	}
}

// Deploy provisions the network and image, then launches the
// bootstrap, resolves its identity, and launches every peer wired to
// it.
//
// Any failure aborts the remaining launches and is returned to the
// caller; resources created before the failure stay tracked so a
// subsequent Cleanup tears them down. Deploy does not run its own
// cleanup — pair it with Cleanup via defer, or use Run.
func (m *Mesh) Deploy(ctx context.Context) error {
	// Evict a stale network from a crashed prior run before creating
	// a fresh one, so stale attachments never leak into this
	// experiment.
	if err := m.rt.RemoveNetwork(ctx, m.cfg.NetworkName); err != nil {
		if !runtime.IsNotFound(err) {
			m.logger.Warn().Err(err).Str("network", m.cfg.NetworkName).Msg("failed to evict stale network")
		}
	} else {
		m.logger.Warn().Str("network", m.cfg.NetworkName).Msg("removed stale network from previous run")
	}

	networkID, err := m.rt.CreateNetwork(ctx, m.cfg.NetworkName)
	if err != nil {
		return fmt.Errorf("failed to provision network %s: %w", m.cfg.NetworkName, err)
	}
	m.networkID = networkID
	m.logger.Info().Str("network", m.cfg.NetworkName).Msg("network created")

	image, err := m.rt.BuildImage(ctx, m.cfg.BuildContext, m.cfg.ImageName)
	if err != nil {
		return fmt.Errorf("failed to provision image %s: %w", m.cfg.ImageName, err)
	}
	m.image = image
	m.logger.Info().Str("image", image).Msg("image built")

	total := m.cfg.PeerCount + 1
	allocated, err := ports.Allocate(total * 2)
	if err != nil {
		return fmt.Errorf("failed to allocate ports for %d instances: %w", total, err)
	}
	controlPorts := allocated[:total]
	telemetryPorts := allocated[total:]

	m.logger.Info().Msg("deploying bootstrap instance")
	bootstrap, err := m.launch(ctx, types.RoleBootstrap, controlPorts[0], telemetryPorts[0], "")
	if err != nil {
		return fmt.Errorf("failed to launch bootstrap: %w", err)
	}
	m.nodes = append(m.nodes, bootstrap)

	identity, err := m.resolveIdentity(ctx, bootstrap)
	if err != nil {
		return fmt.Errorf("failed to resolve bootstrap identity: %w", err)
	}
	bootstrap.Identity = identity
	m.logger.Info().Str("identity", identity).Msg("bootstrap identity resolved")

	bootstrapAddr := fmt.Sprintf("/dns4/%s/tcp/%d/p2p/%s/", m.cfg.BootstrapName, m.cfg.P2PPort, identity)

	for i := 0; i < m.cfg.PeerCount; i++ {
		m.logger.Info().
			Int("peer", i+1).
			Int("of", m.cfg.PeerCount).
			Msg("deploying peer instance")
		peer, err := m.launch(ctx, types.RolePeer, controlPorts[i+1], telemetryPorts[i+1], bootstrapAddr)
		if err != nil {
			return fmt.Errorf("failed to launch peer %d: %w", i+1, err)
		}
		m.nodes = append(m.nodes, peer)
	}

	m.logger.Info().Int("instances", len(m.nodes)).Msg("mesh deployed")

	if m.cfg.SettleDelay > 0 {
		m.logger.Info().Dur("delay", m.cfg.SettleDelay).Msg("waiting for overlay to settle")
		select {
		case <-time.After(m.cfg.SettleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Cleanup stops and removes every tracked instance, then the network.
//
// It is idempotent and never fails the caller: "already gone" is a
// successful no-op and any other teardown error is logged and
// absorbed, because Cleanup runs inside failure paths and must not
// mask the original error.
func (m *Mesh) Cleanup(ctx context.Context) {
	for _, node := range m.nodes {
		m.removeInstance(ctx, node)
	}
	m.nodes = nil

	if m.networkID != "" {
		if err := m.rt.RemoveNetwork(ctx, m.networkID); err != nil {
			if runtime.IsNotFound(err) {
				m.logger.Warn().Str("network", m.cfg.NetworkName).Msg("network already removed")
			} else {
				m.logger.Error().Err(err).Str("network", m.cfg.NetworkName).Msg("failed to remove network")
			}
		} else {
			m.logger.Info().Str("network", m.cfg.NetworkName).Msg("network removed")
		}
		m.networkID = ""
	}
}

// removeInstance stops and removes one container, tolerating "already
// gone" at both steps.
func (m *Mesh) removeInstance(ctx context.Context, node *types.InstanceRecord) {
	logger := log.WithInstance(node.Name)

	if err := m.rt.StopInstance(ctx, node.ContainerID); err != nil && !runtime.IsNotFound(err) {
		logger.Error().Err(err).Msg("failed to stop instance")
	}
	if err := m.rt.RemoveInstance(ctx, node.ContainerID); err != nil {
		if runtime.IsNotFound(err) {
			logger.Warn().Msg("instance already removed")
		} else {
			logger.Error().Err(err).Msg("failed to remove instance")
		}
		return
	}
	logger.Info().Msg("instance stopped and removed")
}

// Bootstrap returns the bootstrap instance record, or nil if the mesh
// is not deployed.
func (m *Mesh) Bootstrap() *types.InstanceRecord {
	if len(m.nodes) == 0 {
		return nil
	}
	return m.nodes[0]
}

// Peers returns the non-bootstrap instance records.
func (m *Mesh) Peers() []*types.InstanceRecord {
	if len(m.nodes) <= 1 {
		return nil
	}
	return m.nodes[1:]
}

// Nodes returns all instance records in launch order; index 0 is the
// bootstrap whenever the slice is non-empty.
func (m *Mesh) Nodes() []*types.InstanceRecord {
	return m.nodes
}

// cleanupTimeout bounds teardown independently of the experiment
// context, which may already be cancelled or expired when cleanup
// runs.
const cleanupTimeout = 2 * time.Minute

// Run ties deploy and cleanup to one lexical scope: it deploys the
// mesh, invokes body, and guarantees cleanup on every exit path,
// including a deploy failure, a body error, or a panic.
func Run(ctx context.Context, cfg Config, rt runtime.Runtime, body func(ctx context.Context, m *Mesh) error) error {
	m := New(cfg, rt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		m.Cleanup(cleanupCtx)
	}()

	if err := m.Deploy(ctx); err != nil {
		return err
	}
	return body(ctx, m)
}
