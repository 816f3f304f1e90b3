package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
)

const (
	// stopGraceSeconds is how long a container gets between SIGTERM
	// and SIGKILL during stop.
	stopGraceSeconds = 10

	// buildLogTailLines is how much of the build output is attached to
	// a build failure. Compile errors in the node binary are the most
	// common real failure mode, so the tail must be enough to show
	// them.
	buildLogTailLines = 25
)

// DockerRuntime implements Runtime against the Docker Engine API.
type DockerRuntime struct {
	cli *client.Client
}

// NewDockerRuntime connects to the Docker daemon using the standard
// environment configuration (DOCKER_HOST et al.).
func NewDockerRuntime() (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker daemon: %w", err)
	}
	return &DockerRuntime{cli: cli}, nil
}

// Close closes the daemon connection
func (r *DockerRuntime) Close() error {
	if r.cli != nil {
		return r.cli.Close()
	}
	return nil
}

// CreateNetwork creates an isolated bridge network
func (r *DockerRuntime) CreateNetwork(ctx context.Context, name string) (string, error) {
	resp, err := r.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create network %s: %w", name, err)
	}
	return resp.ID, nil
}

// RemoveNetwork removes a network by ID or name
func (r *DockerRuntime) RemoveNetwork(ctx context.Context, id string) error {
	if err := r.cli.NetworkRemove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove network %s: %w", id, err)
	}
	return nil
}

// BuildImage builds and tags an image from a local build context
// directory. On failure the error carries the tail of the build log.
func (r *DockerRuntime) BuildImage(ctx context.Context, contextDir, tag string) (string, error) {
	buildCtx, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to tar build context %s: %w", contextDir, err)
	}
	defer buildCtx.Close()

	resp, err := r.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:   []string{tag},
		Remove: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start image build for %s: %w", tag, err)
	}
	defer resp.Body.Close()

	// The build response is a JSON message stream. Drain it fully so
	// the build runs to completion, keeping a tail for diagnostics.
	var tail []string
	dec := json.NewDecoder(resp.Body)
	for {
		var msg struct {
			Stream string `json:"stream"`
			Error  string `json:"error"`
		}
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("failed to read build output for %s: %w", tag, err)
		}
		if line := strings.TrimRight(msg.Stream, "\n"); line != "" {
			tail = append(tail, line)
			if len(tail) > buildLogTailLines {
				tail = tail[1:]
			}
		}
		if msg.Error != "" {
			return "", fmt.Errorf("image build for %s failed: %s\nbuild log tail:\n%s",
				tag, msg.Error, strings.Join(tail, "\n"))
		}
	}

	return tag, nil
}

// RunInstance creates and starts a detached container with each listed
// port published to the same-numbered host port. It returns as soon as
// the container is started; readiness is the caller's concern.
func (r *DockerRuntime) RunInstance(ctx context.Context, spec InstanceSpec) (string, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, p := range spec.Ports {
		port, err := nat.NewPort("tcp", strconv.Itoa(p))
		if err != nil {
			return "", fmt.Errorf("invalid port %d: %w", p, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{
			{HostIP: "0.0.0.0", HostPort: strconv.Itoa(p)},
		}
	}

	created, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			Cmd:          spec.Command,
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PortBindings: bindings,
		},
		&network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {},
			},
		},
		nil,
		spec.Name,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}

	if err := r.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}

	return created.ID, nil
}

// StopInstance stops a running container
func (r *DockerRuntime) StopInstance(ctx context.Context, id string) error {
	timeout := stopGraceSeconds
	if err := r.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return nil
}

// RemoveInstance removes a container, forcibly if still running
func (r *DockerRuntime) RemoveInstance(ctx context.Context, id string) error {
	if err := r.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}

// Logs returns the container's accumulated stdout/stderr as text.
func (r *DockerRuntime) Logs(ctx context.Context, id string) (string, error) {
	rc, err := r.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch logs for container %s: %w", id, err)
	}
	defer rc.Close()

	// Non-TTY containers multiplex stdout/stderr in one stream;
	// demultiplex into a single buffer preserving stream order.
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return "", fmt.Errorf("failed to read logs for container %s: %w", id, err)
	}
	return buf.String(), nil
}

// isEngineNotFound recognizes the engine's "no such ..." errors.
func isEngineNotFound(err error) bool {
	return errdefs.IsNotFound(err)
}
