package client

import "errors"

// ErrUnavailable means no response was obtained from the server:
// connection refused, DNS failure, or a timed-out call. Timeouts are
// deliberately indistinguishable from unreachability.
var ErrUnavailable = errors.New("server unavailable")
