// Package proxyarp implements a proxy ARP responder, as described in RFC 826
// and RFC 1027.
//
// A Server listens for ARP requests on a single network interface and, for
// any target IPv4 address present in a static Table, sends a unicast ARP
// reply advertising the hardware address configured for that address.
package proxyarp

// An Observer receives events from a Server.  Observer methods are called
// synchronously from the Server's receive loop, so implementations should
// return quickly.  They cannot fail the Server.
type Observer interface {
	// FrameDiscarded is called when a received frame is not answered.  r is
	// nil if the frame could not be decoded.
	FrameDiscarded(reason DiscardReason, r *Request)

	// ReplySent is called after a reply has been transmitted.
	ReplySent(r *Reply)

	// SendFailed is called when a reply could not be transmitted.  The
	// Server keeps serving.
	SendFailed(r *Reply, err error)

	// Fatal is called when the Server stops because of err.
	Fatal(err error)
}

// nopObserver is used when a Server has no Observer.
type nopObserver struct{}

func (nopObserver) FrameDiscarded(DiscardReason, *Request) {}
func (nopObserver) ReplySent(*Reply)                       {}
func (nopObserver) SendFailed(*Reply, error)               {}
func (nopObserver) Fatal(error)                            {}
