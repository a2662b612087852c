package proxyarp

import (
	"errors"
	"io"
	"net"
	"net/netip"

	"github.com/mdlayher/ethernet"
)

// A Request is a decoded ARP frame received by a Server or Client.  Its
// fields contain information regarding the frame's operation, sender
// information, and target information.
//
// A Request carries whatever operation was on the wire; deciding whether to
// answer it is left to the caller.
type Request struct {
	// Operation specifies the ARP operation being performed, such as request
	// or reply.
	Operation Operation

	// SenderHardwareAddr specifies the hardware address of the sender of this
	// Request.
	SenderHardwareAddr net.HardwareAddr

	// SenderIP specifies the IPv4 address of the sender of this Request.
	SenderIP netip.Addr

	// TargetHardwareAddr specifies the hardware address of the target of this
	// Request.
	TargetHardwareAddr net.HardwareAddr

	// TargetIP specifies the IPv4 address of the target of this Request.
	TargetIP netip.Addr
}

// ParseRequest unmarshals a raw ethernet frame and an ARP packet into a
// Request.
//
// ParseRequest returns ErrTooShort if b is too short to hold an Ethernet
// header and an Ethernet/IPv4 ARP packet, ErrNotARP if the frame's
// EtherType is not ARP, and ErrUnsupportedAddressFamily if the packet does
// not carry Ethernet and IPv4 addresses.  802.1Q tagged frames are accepted.
func ParseRequest(b []byte) (*Request, error) {
	if len(b) < minFrameLen {
		return nil, ErrTooShort
	}

	f := new(ethernet.Frame)
	if err := f.UnmarshalBinary(b); err != nil {
		// Only malformed VLAN tags can fail here.
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTooShort
		}

		return nil, ErrNotARP
	}

	if f.EtherType != ethernet.EtherTypeARP {
		return nil, ErrNotARP
	}

	p := new(Packet)
	if err := p.UnmarshalBinary(f.Payload); err != nil {
		return nil, err
	}

	return &Request{
		Operation:          p.Operation,
		SenderHardwareAddr: p.SenderHardwareAddr,
		SenderIP:           p.SenderIP,
		TargetHardwareAddr: p.TargetHardwareAddr,
		TargetIP:           p.TargetIP,
	}, nil
}
