package proxyarp

import (
	"net"
	"net/netip"

	"github.com/mdlayher/ethernet"
)

// A Reply is an ARP reply sent on behalf of an address in a Table.
type Reply struct {
	// SenderHardwareAddr is the hardware address being advertised.  It is
	// also the Ethernet source of the reply frame.
	SenderHardwareAddr net.HardwareAddr

	// SenderIP is the IPv4 address being vouched for.
	SenderIP netip.Addr

	// TargetHardwareAddr is the hardware address of the requester.  It is
	// also the Ethernet destination of the reply frame.
	TargetHardwareAddr net.HardwareAddr

	// TargetIP is the IPv4 address of the requester.
	TargetIP netip.Addr
}

// NewReply builds the proxy ARP reply for r, advertising mac as the
// hardware address of r.TargetIP.  The reply is unicast to the requester.
func NewReply(r *Request, mac net.HardwareAddr) *Reply {
	return &Reply{
		SenderHardwareAddr: mac,
		SenderIP:           r.TargetIP,
		TargetHardwareAddr: r.SenderHardwareAddr,
		TargetIP:           r.SenderIP,
	}
}

// MarshalBinary marshals r into an Ethernet frame carrying an ARP reply.
// The frame is zero-padded to the minimum Ethernet payload length.
//
// MarshalBinary never returns an error for a Reply built by NewReply from a
// parsed Request and a hardware address found in a Table.
func (r *Reply) MarshalBinary() ([]byte, error) {
	p := &Packet{
		HardwareType:       hardwareTypeEthernet,
		ProtocolType:       uint16(ethernet.EtherTypeIPv4),
		HardwareAddrLength: macLen,
		IPLength:           ipLen,
		Operation:          OperationReply,
		SenderHardwareAddr: r.SenderHardwareAddr,
		SenderIP:           r.SenderIP,
		TargetHardwareAddr: r.TargetHardwareAddr,
		TargetIP:           r.TargetIP,
	}

	pb, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}

	f := &ethernet.Frame{
		Destination: r.TargetHardwareAddr,
		Source:      r.SenderHardwareAddr,
		EtherType:   ethernet.EtherTypeARP,
		Payload:     pb,
	}

	return f.MarshalBinary()
}
