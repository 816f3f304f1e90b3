/*
Package runtime wraps the container runtime the harness drives.

The Runtime interface is the full surface the rest of meshbench is
allowed to touch: network create/remove, image build, detached
container run with host port publishing, stop/remove, and accumulated
log fetch. Handles are opaque strings owned by the engine.

The Docker Engine implementation is deliberately thin. Two behaviors
matter to callers:

  - "Not found" is not a failure. Cleanup and stale-resource eviction
    call IsNotFound on every error and treat a hit as a successful
    no-op, so teardown is idempotent and a crashed prior run's leftover
    names can be evicted blindly.

  - Build failures carry the tail of the build log. A compile error in
    the node binary is the most common way a whole experiment dies, and
    it must surface in the returned error rather than in a stream
    nobody captured.

Tests substitute a fake Runtime; nothing above this package imports the
Docker client.
*/
package runtime
