package ports

import (
	"fmt"
	"net"
)

// maxProbesPerPort bounds how many bind attempts are made per
// requested port before giving up.
const maxProbesPerPort = 16

// AllocationError reports that fewer free ports could be found than
// were requested.
type AllocationError struct {
	Requested int
	Found     int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("port allocation failed: found %d of %d requested free ports", e.Found, e.Requested)
}

// Allocate returns count pairwise-distinct, currently-free TCP ports.
//
// Each port is proven free by binding to it and releasing it
// immediately. The window between release and actual use is inherently
// racy against other processes on the host; for a local single-host
// experiment that risk is accepted rather than holding sockets open
// until launch.
//
// Returns an *AllocationError if count distinct ports cannot be found
// within a bounded number of probes. Never silently returns fewer
// ports than requested.
func Allocate(count int) ([]int, error) {
	if count <= 0 {
		return nil, nil
	}

	allocated := make([]int, 0, count)
	seen := make(map[int]bool, count)

	budget := count * maxProbesPerPort
	for len(allocated) < count && budget > 0 {
		budget--

		port, err := probeFree()
		if err != nil {
			continue
		}
		if seen[port] {
			// The kernel handed back a port we already hold in this
			// batch; probe again.
			continue
		}
		seen[port] = true
		allocated = append(allocated, port)
	}

	if len(allocated) < count {
		return nil, &AllocationError{Requested: count, Found: len(allocated)}
	}
	return allocated, nil
}

// probeFree binds an ephemeral TCP port and releases it, returning the
// port number the kernel chose.
func probeFree() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to bind probe socket: %w", err)
	}
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address type %T", l.Addr())
	}
	return addr.Port, nil
}
