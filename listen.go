package proxyarp

import (
	"errors"
	"fmt"
	"net"

	"github.com/mdlayher/packet"
	"github.com/mdlayher/raw"
	"golang.org/x/net/bpf"
)

// protocolARP is the uint16 EtherType representation of ARP (Address
// Resolution Protocol, RFC 826).
const protocolARP = 0x0806

// A Transport selects the link-layer socket implementation used by Listen.
type Transport string

// Supported Transport values.
const (
	// TransportPacket uses a Linux AF_PACKET socket.
	TransportPacket Transport = "packet"

	// TransportRaw uses github.com/mdlayher/raw, which also supports BSD
	// BPF devices.
	TransportRaw Transport = "raw"
)

// ParseTransport parses s into a Transport.  The empty string selects
// TransportPacket.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(s); t {
	case "":
		return TransportPacket, nil
	case TransportPacket, TransportRaw:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transport %q", s)
	}
}

// Listen opens a link-layer socket on ifi which receives only ARP frames.
// Frames written to the socket are sent on ifi.  Closing the socket
// unblocks any pending ReadFrom.
func Listen(ifi *net.Interface, t Transport) (net.PacketConn, error) {
	filter, err := bpf.Assemble(arpFilter())
	if err != nil {
		return nil, err
	}

	switch t {
	case "", TransportPacket:
		c, err := packet.Listen(ifi, packet.Raw, protocolARP, &packet.Config{
			Filter: filter,
		})
		if err != nil {
			return nil, err
		}

		return c, nil
	case TransportRaw:
		c, err := raw.ListenPacket(ifi, protocolARP, nil)
		if err != nil {
			return nil, err
		}

		// BPF devices are already filtered by EtherType.
		if err := c.SetBPF(filter); err != nil && !errors.Is(err, raw.ErrNotImplemented) {
			_ = c.Close()
			return nil, err
		}

		return c, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", t)
	}
}

// arpFilter returns a classic BPF program which accepts only frames with the
// ARP EtherType.
func arpFilter() []bpf.Instruction {
	return []bpf.Instruction{
		// Load EtherType value from Ethernet header.
		bpf.LoadAbsolute{
			Off:  12,
			Size: 2,
		},
		// If EtherType is ARP, accept the frame, else drop it.
		bpf.JumpIf{
			Cond:      bpf.JumpEqual,
			Val:       protocolARP,
			SkipFalse: 1,
		},
		bpf.RetConstant{
			Val: 1514,
		},
		bpf.RetConstant{
			Val: 0,
		},
	}
}
