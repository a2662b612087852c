package proxyarp

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"time"
)

// ErrServerStarted is returned when Serve is called more than once on the
// same Server.
var ErrServerStarted = errors.New("server already started")

// A State is the lifecycle state of a Server.
type State int32

// Possible State values.  A Server moves from StateIdle to StateListening
// when Serve is called, alternates between StateListening and
// StateProcessing for each received frame, and ends in StateStopped.
const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateStopped
)

// String returns the name of s.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateStopped:
		return "stopped"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// A Server is a proxy ARP server, and is used to configure a proxy ARP
// server's behavior.
type Server struct {
	// Table holds the addresses this server answers for.  A nil Table
	// answers nothing.
	Table *Table

	// Observer receives events while serving.  If nil, events are dropped.
	Observer Observer

	// Transport selects the socket implementation used by ListenAndServe.
	// The zero value selects TransportPacket.
	Transport Transport

	// interfaceByIndex looks up the bound interface after a link down
	// error.  If nil, net.InterfaceByIndex is used.
	interfaceByIndex func(index int) (*net.Interface, error)

	state atomic.Int32
}

// ListenAndServe listens for ARP requests using a raw ethernet socket on
// the specified interface, answering for the addresses in table, until ctx
// is canceled.
func ListenAndServe(ctx context.Context, iface string, table *Table) error {
	// Verify network interface exists
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return err
	}

	return (&Server{
		Table: table,
	}).ListenAndServe(ctx, ifi)
}

// ListenAndServe listens for ARP requests using a raw ethernet socket on the
// network interface ifi, and serves them as Serve does.  Unlike Serve, it
// keeps serving while ifi is down, and stops with an error once ifi has been
// removed.
func (s *Server) ListenAndServe(ctx context.Context, ifi *net.Interface) error {
	p, err := Listen(ifi, s.Transport)
	if err != nil {
		return err
	}

	return s.serve(ctx, p, ifi)
}

// State returns the current lifecycle state of s.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Serve reads ARP requests from p and answers those whose target address is
// in s.Table.  Frames are handled one at a time, in the order they are
// received; replies are written to the address each request was read from.
//
// Serve returns nil when ctx is canceled or p reports io.EOF.  Receive
// errors after which p remains usable are skipped; any other receive error
// stops the server and is returned.  Failing to send a reply never stops
// the server.  p is closed when Serve returns.
//
// Serve clears any read deadline set on p.  Since Serve does not know which
// interface p is bound to, a link down error is fatal; ListenAndServe keeps
// serving while its interface is down and stops only once it is removed.
func (s *Server) Serve(ctx context.Context, p net.PacketConn) error {
	return s.serve(ctx, p, nil)
}

// serve runs the receive loop on p, which is bound to ifi if ifi is
// non-nil.
func (s *Server) serve(ctx context.Context, p net.PacketConn, ifi *net.Interface) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateListening)) {
		return ErrServerStarted
	}
	defer s.state.Store(int32(StateStopped))
	defer p.Close()

	obs := s.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	// Closing p unblocks a pending ReadFrom once ctx is done.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.Close()
		case <-done:
		}
	}()

	// A deadline in the past would turn every read into a timeout.
	if err := p.SetReadDeadline(time.Time{}); err != nil {
		obs.Fatal(err)
		return err
	}

	// Loop and read requests until exit
	buf := make([]byte, 128)
	for {
		n, addr, err := p.ReadFrom(buf)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil
			// Treat EOF as an exit signal
			case err == io.EOF:
				return nil
			case isTemporary(err):
				continue
			case isLinkDown(err) && !s.interfaceRemoved(ifi):
				continue
			}

			obs.Fatal(err)
			return err
		}

		s.state.Store(int32(StateProcessing))
		s.handle(obs, p, addr, buf[:n])
		s.state.Store(int32(StateListening))
	}
}

// interfaceRemoved reports whether ifi no longer exists.  A nil ifi is
// treated as removed.
func (s *Server) interfaceRemoved(ifi *net.Interface) bool {
	if ifi == nil {
		return true
	}

	lookup := s.interfaceByIndex
	if lookup == nil {
		lookup = net.InterfaceByIndex
	}

	// The index may have been reused by a newly created interface.
	cur, err := lookup(ifi.Index)
	return err != nil || cur.Name != ifi.Name
}

// handle handles a single frame read from p.
func (s *Server) handle(obs Observer, p net.PacketConn, addr net.Addr, b []byte) {
	r, err := ParseRequest(b)
	if err != nil {
		// Malformed and non-ARP frames are routine on a shared link.
		obs.FrameDiscarded(discardReason(err), nil)
		return
	}

	if r.Operation != OperationRequest {
		obs.FrameDiscarded(DiscardNotRequest, r)
		return
	}

	mac, ok := s.Table.Lookup(r.TargetIP)
	if !ok {
		obs.FrameDiscarded(DiscardNoMatch, r)
		return
	}

	reply := NewReply(r, mac)
	fb, err := reply.MarshalBinary()
	if err != nil {
		obs.SendFailed(reply, err)
		return
	}

	if _, err := p.WriteTo(fb, addr); err != nil {
		obs.SendFailed(reply, err)
		return
	}

	obs.ReplySent(reply)
}
