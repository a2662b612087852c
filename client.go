package proxyarp

import (
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
)

// errNoIPv4Addr is returned when an interface does not have an IPv4
// address.
var errNoIPv4Addr = errors.New("no IPv4 address available for interface")

// A Client is an ARP client, which can be used to send ARP requests to
// retrieve the MAC address of a machine using its IPv4 address.  It is
// useful for checking that a Server answers for the addresses in its Table.
type Client struct {
	ifi *net.Interface
	ip  netip.Addr
	p   net.PacketConn
}

// Dial creates a new Client using the specified network interface.
// Dial retrieves the IPv4 address of the interface and binds a raw socket
// to send and receive ARP packets.
func Dial(ifi *net.Interface) (*Client, error) {
	// Check for a usable IPv4 address for the Client
	addrs, err := ifi.Addrs()
	if err != nil {
		return nil, err
	}

	// Open raw socket to send and receive ARP packets using ethernet frames
	// we build ourselves.
	p, err := Listen(ifi, TransportPacket)
	if err != nil {
		return nil, err
	}

	c, err := newClient(ifi, p, interfaceAddrs(addrs))
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	return c, nil
}

// newClient is the internal, generic implementation of Dial.  It is used
// to allow an arbitrary net.PacketConn to be used in a Client, so testing
// is easier to accomplish.
func newClient(ifi *net.Interface, p net.PacketConn, addrs []netip.Addr) (*Client, error) {
	ip, err := firstIPv4Addr(addrs)
	if err != nil {
		return nil, err
	}

	return &Client{
		ifi: ifi,
		ip:  ip,
		p:   p,
	}, nil
}

// Close closes the Client's raw socket and stops sending and receiving
// ARP packets.
func (c *Client) Close() error {
	return c.p.Close()
}

// Request sends an ARP request, asking for the hardware address
// associated with an IPv4 address.  The response, if any, can be read
// with the Read method.
//
// Unlike Resolve, which provides an easier interface for getting the
// hardware address, Request allows sending many requests in a row,
// retrieving the responses afterwards.
func (c *Client) Request(ip netip.Addr) error {
	if !c.ip.IsValid() {
		return errNoIPv4Addr
	}

	// Create ARP packet for broadcast address to attempt to find the
	// hardware address of the input IP address
	arp, err := NewPacket(OperationRequest, c.ifi.HardwareAddr, c.ip, ethernet.Broadcast, ip)
	if err != nil {
		return err
	}
	arpb, err := arp.MarshalBinary()
	if err != nil {
		return err
	}

	f := &ethernet.Frame{
		Destination: ethernet.Broadcast,
		Source:      c.ifi.HardwareAddr,
		EtherType:   ethernet.EtherTypeARP,
		Payload:     arpb,
	}
	fb, err := f.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = c.p.WriteTo(fb, &packet.Addr{HardwareAddr: ethernet.Broadcast})
	return err
}

// Resolve performs an ARP request, attempting to retrieve the
// hardware address of a machine using its IPv4 address.  Resolve must not
// be used concurrently with Read.  If you're using Read (usually in a
// loop), you need to use Request instead.  Resolve may read more than
// one message if it receives messages unrelated to the request.
func (c *Client) Resolve(ip netip.Addr) (net.HardwareAddr, error) {
	if err := c.Request(ip); err != nil {
		return nil, err
	}

	// Loop and wait for replies
	for {
		r, err := c.Read()
		if err != nil {
			return nil, err
		}

		if r.Operation != OperationReply || r.SenderIP != ip.Unmap() {
			continue
		}

		return r.SenderHardwareAddr, nil
	}
}

// Read reads a single ARP frame and returns it.  Frames which are not
// Ethernet/IPv4 ARP are skipped.  Read must not be used concurrently with
// Resolve.
func (c *Client) Read() (*Request, error) {
	buf := make([]byte, 128)
	for {
		n, _, err := c.p.ReadFrom(buf)
		if err != nil {
			return nil, err
		}

		r, err := ParseRequest(buf[:n])
		if err != nil {
			continue
		}

		return r, nil
	}
}

// SetDeadline sets the read and write deadlines associated with the
// connection.
func (c *Client) SetDeadline(t time.Time) error {
	return c.p.SetDeadline(t)
}

// SetReadDeadline sets the deadline for future raw socket read calls.
// If the deadline is reached, a raw socket read will fail with a timeout
// (see type net.Error) instead of blocking.
// A zero value for t means a raw socket read will not time out.
func (c *Client) SetReadDeadline(t time.Time) error {
	return c.p.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future raw socket write calls.
// If the deadline is reached, a raw socket write will fail with a timeout
// (see type net.Error) instead of blocking.
// A zero value for t means a raw socket write will not time out.
// Even if a write times out, it may return n > 0, indicating that
// some of the data was successfully written.
func (c *Client) SetWriteDeadline(t time.Time) error {
	return c.p.SetWriteDeadline(t)
}

// HardwareAddr fetches the hardware address for the interface associated
// with the connection.
func (c *Client) HardwareAddr() net.HardwareAddr {
	return c.ifi.HardwareAddr
}

// interfaceAddrs converts the addresses reported for an interface, which are
// usually prefixes such as 192.168.1.1/24, into IP addresses.  Addresses
// which cannot be parsed are skipped.
func interfaceAddrs(addrs []net.Addr) []netip.Addr {
	ips := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		if prefix, err := netip.ParsePrefix(a.String()); err == nil {
			ips = append(ips, prefix.Addr())
			continue
		}

		if ip, err := netip.ParseAddr(a.String()); err == nil {
			ips = append(ips, ip)
		}
	}

	return ips
}

// firstIPv4Addr attempts to retrieve the first detected IPv4 address from an
// input slice of network addresses.
func firstIPv4Addr(addrs []netip.Addr) (netip.Addr, error) {
	for _, a := range addrs {
		if a.Unmap().Is4() {
			return a.Unmap(), nil
		}
	}

	return netip.Addr{}, errNoIPv4Addr
}
