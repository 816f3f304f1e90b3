/*
Package ports finds batches of currently-free local TCP ports.

Availability is proven by the classic probe-and-release technique:
bind to port 0, record what the kernel assigned, close the socket.
Ports are guaranteed distinct within one batch but not reserved —
another process can grab a returned port before the caller binds it.
That race is an accepted limitation for a single-host experiment
harness; callers needing a hard reservation would have to hold the
probing socket open until use.
*/
package ports
