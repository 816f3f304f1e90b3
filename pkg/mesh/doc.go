/*
Package mesh manages the full lifecycle of one experiment topology:
one bootstrap instance plus N peers on a private bridge network.

# Architecture

	┌────────────────────────── MESH LIFECYCLE ──────────────────────────┐
	│                                                                     │
	│  Deploy(ctx)                                                        │
	│    1. evict stale network        (not-found is a no-op)            │
	│    2. create bridge network      ── tracked                        │
	│    3. build node image           ── tracked                        │
	│    4. allocate 2×(peers+1) ports                                   │
	│    5. launch bootstrap           ── tracked, fixed reserved name   │
	│    6. resolve bootstrap identity (poll logs, bounded)              │
	│    7. launch peer × N            ── tracked, wired to bootstrap    │
	│    8. settle delay                                                 │
	│                                                                     │
	│  Cleanup(ctx)                                                       │
	│    stop+remove every tracked instance, then the network;           │
	│    "already gone" ignored, other errors logged, never returned     │
	│                                                                     │
	│  Run(ctx, cfg, rt, body)                                            │
	│    deploy → body → cleanup on every exit path (defer)              │
	└─────────────────────────────────────────────────────────────────────┘

Two invariants carry the whole design:

  - nodes[0] is the bootstrap whenever the slice is non-empty, and the
    slice is never reordered. Accessors and downstream role labeling
    rely on it.

  - Every created resource is tracked before the next fallible step.
    A deploy that dies halfway leaves an accurate inventory, so
    Cleanup never guesses: it tears down exactly what exists and is
    idempotent across repeated calls.

Orchestration is deliberately sequential. Bootstrap launch and
identity resolution strictly precede any peer launch, because each
peer's argument vector embeds the bootstrap's resolved identity in a
fully-qualified address of the form

	/dns4/<bootstrap-name>/tcp/<p2p-port>/p2p/<identity>/

The identity announcement convention differs between node builds
(bare token on the first log line vs. a structured "initialized"
event), so it is selected explicitly by Config.IdentityConvention
rather than guessed.
*/
package mesh
