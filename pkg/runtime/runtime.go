package runtime

import (
	"context"
)

// InstanceSpec describes one container to run.
type InstanceSpec struct {
	Image   string
	Name    string
	Network string
	Command []string

	// Ports are container ports published to the same-numbered host
	// port, so pollers can address every instance uniformly on
	// localhost.
	Ports []int
}

// Runtime is the process/container runtime collaborator.
//
// Implementations must report "not found" conditions through errors
// recognizable by IsNotFound so that cleanup and stale-resource
// eviction can treat them as idempotent no-ops.
type Runtime interface {
	// CreateNetwork creates an isolated bridge network and returns its
	// handle. Instances attached to it can resolve each other by
	// container name.
	CreateNetwork(ctx context.Context, name string) (string, error)

	// RemoveNetwork removes a network by handle or name.
	RemoveNetwork(ctx context.Context, id string) error

	// BuildImage builds an image from a local build context directory
	// and tags it. Build failures carry the tail of the build log.
	BuildImage(ctx context.Context, contextDir, tag string) (string, error)

	// RunInstance creates and starts a detached container and returns
	// its handle. It does not wait for the instance to become ready.
	RunInstance(ctx context.Context, spec InstanceSpec) (string, error)

	// StopInstance stops a running container, forcing termination
	// after the grace period.
	StopInstance(ctx context.Context, id string) error

	// RemoveInstance removes a container by handle or name, forcibly
	// if it is still running.
	RemoveInstance(ctx context.Context, id string) error

	// Logs returns the accumulated stdout/stderr output of a
	// container as text.
	Logs(ctx context.Context, id string) (string, error)

	// Close releases the runtime client connection.
	Close() error
}

// notFoundError is implemented by errors that represent a missing
// resource on the runtime side.
type notFoundError interface {
	NotFound()
}

// IsNotFound reports whether err represents a "no such resource"
// condition from the runtime.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(notFoundError); ok {
		return true
	}
	return isEngineNotFound(err)
}
