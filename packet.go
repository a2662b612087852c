package proxyarp

import (
	"encoding/binary"
	"errors"
	"net"
	"net/netip"
	"strconv"

	"github.com/mdlayher/ethernet"
)

var (
	// ErrInvalidMAC is returned when one or more invalid MAC addresses are
	// passed to NewPacket or NewTable.
	ErrInvalidMAC = errors.New("invalid MAC address")

	// ErrInvalidIP is returned when one or more invalid IPv4 addresses are
	// passed to NewPacket or NewTable.
	ErrInvalidIP = errors.New("invalid IPv4 address")

	// ErrTooShort is returned when a frame or packet is too short to
	// contain an Ethernet/IPv4 ARP packet.
	ErrTooShort = errors.New("frame too short for an ARP packet")

	// ErrNotARP is returned when a frame does not carry the ARP EtherType.
	ErrNotARP = errors.New("frame does not carry an ARP packet")

	// ErrUnsupportedAddressFamily is returned when an ARP packet does not
	// describe Ethernet hardware addresses and IPv4 protocol addresses.
	ErrUnsupportedAddressFamily = errors.New("ARP packet is not Ethernet over IPv4")
)

// An Operation is an ARP operation, such as request or reply.
type Operation uint16

// Operation constants which indicate an ARP request or reply.
const (
	OperationRequest Operation = 1
	OperationReply   Operation = 2
)

// String returns the name of o.
func (o Operation) String() string {
	switch o {
	case OperationRequest:
		return "request"
	case OperationReply:
		return "reply"
	default:
		return "Operation(" + strconv.Itoa(int(o)) + ")"
	}
}

const (
	// hardwareTypeEthernet is the IANA hardware type for Ethernet.
	hardwareTypeEthernet = 1

	macLen = 6
	ipLen  = 4

	// packetLen is the length of an ARP packet carrying Ethernet and IPv4
	// addresses.
	packetLen = 2 + 2 + 1 + 1 + 2 + 2*macLen + 2*ipLen

	// headerLen is the length of an untagged Ethernet II header.
	headerLen = 6 + 6 + 2

	// minFrameLen is the smallest frame that can carry an ARP packet.
	minFrameLen = headerLen + packetLen
)

// A Packet is a raw ARP packet, as described in RFC 826, restricted to
// Ethernet hardware addresses and IPv4 protocol addresses.
type Packet struct {
	// HardwareType specifies an IANA-assigned hardware type, as described
	// in RFC 826.
	HardwareType uint16

	// ProtocolType specifies the internetwork protocol for which the ARP
	// request is intended.  Typically, this is the IPv4 EtherType.
	ProtocolType uint16

	// HardwareAddrLength specifies the length of the sender and target
	// hardware addresses included in a Packet.
	HardwareAddrLength uint8

	// IPLength specifies the length of the sender and target IPv4 addresses
	// included in a Packet.
	IPLength uint8

	// Operation specifies the ARP operation being performed, such as request
	// or reply.
	Operation Operation

	// SenderHardwareAddr specifies the hardware address of the sender of this
	// Packet.
	SenderHardwareAddr net.HardwareAddr

	// SenderIP specifies the IPv4 address of the sender of this Packet.
	SenderIP netip.Addr

	// TargetHardwareAddr specifies the hardware address of the target of this
	// Packet.
	TargetHardwareAddr net.HardwareAddr

	// TargetIP specifies the IPv4 address of the target of this Packet.
	TargetIP netip.Addr
}

// NewPacket creates a new Packet from an input Operation and hardware/IPv4
// address values for both a sender and target.
//
// If either hardware address is not 6 bytes in length, ErrInvalidMAC is
// returned.
//
// If either IP address is not an IPv4 address, ErrInvalidIP is returned.
func NewPacket(op Operation, srcHW net.HardwareAddr, srcIP netip.Addr, dstHW net.HardwareAddr, dstIP netip.Addr) (*Packet, error) {
	if len(srcHW) != macLen || len(dstHW) != macLen {
		return nil, ErrInvalidMAC
	}

	// IPv4-mapped IPv6 addresses are accepted and stored in 4 byte form.
	srcIP, dstIP = srcIP.Unmap(), dstIP.Unmap()
	if !srcIP.Is4() || !dstIP.Is4() {
		return nil, ErrInvalidIP
	}

	return &Packet{
		HardwareType:       hardwareTypeEthernet,
		ProtocolType:       uint16(ethernet.EtherTypeIPv4),
		HardwareAddrLength: macLen,
		IPLength:           ipLen,
		Operation:          op,
		SenderHardwareAddr: srcHW,
		SenderIP:           srcIP,
		TargetHardwareAddr: dstHW,
		TargetIP:           dstIP,
	}, nil
}

// MarshalBinary allocates a byte slice containing the data from a Packet.
//
// MarshalBinary only returns an error if a hardware address is not 6 bytes
// long or an IP address is not IPv4.
func (p *Packet) MarshalBinary() ([]byte, error) {
	if len(p.SenderHardwareAddr) != macLen || len(p.TargetHardwareAddr) != macLen {
		return nil, ErrInvalidMAC
	}
	if !p.SenderIP.Is4() || !p.TargetIP.Is4() {
		return nil, ErrInvalidIP
	}

	// 2 bytes: hardware type
	// 2 bytes: protocol type
	// 1 byte : hardware address length
	// 1 byte : protocol length
	// 2 bytes: operation
	// 6 bytes: source hardware address
	// 4 bytes: source protocol address
	// 6 bytes: target hardware address
	// 4 bytes: target protocol address
	b := make([]byte, packetLen)

	binary.BigEndian.PutUint16(b[0:2], p.HardwareType)
	binary.BigEndian.PutUint16(b[2:4], p.ProtocolType)

	b[4] = p.HardwareAddrLength
	b[5] = p.IPLength

	binary.BigEndian.PutUint16(b[6:8], uint16(p.Operation))

	sip, tip := p.SenderIP.As4(), p.TargetIP.As4()

	copy(b[8:14], p.SenderHardwareAddr)
	copy(b[14:18], sip[:])
	copy(b[18:24], p.TargetHardwareAddr)
	copy(b[24:28], tip[:])

	return b, nil
}

// UnmarshalBinary unmarshals a raw byte slice into a Packet.
//
// ErrTooShort is returned if b cannot hold an Ethernet/IPv4 ARP packet, and
// ErrUnsupportedAddressFamily if the packet header describes any other
// combination of hardware and protocol addresses.
func (p *Packet) UnmarshalBinary(b []byte) error {
	if len(b) < packetLen {
		return ErrTooShort
	}

	p.HardwareType = binary.BigEndian.Uint16(b[0:2])
	p.ProtocolType = binary.BigEndian.Uint16(b[2:4])

	p.HardwareAddrLength = b[4]
	p.IPLength = b[5]

	p.Operation = Operation(binary.BigEndian.Uint16(b[6:8]))

	if p.HardwareType != hardwareTypeEthernet ||
		p.ProtocolType != uint16(ethernet.EtherTypeIPv4) ||
		p.HardwareAddrLength != macLen ||
		p.IPLength != ipLen {
		return ErrUnsupportedAddressFamily
	}

	// Both hardware addresses share a single allocation.
	hw := make(net.HardwareAddr, 2*macLen)
	copy(hw[0:6], b[8:14])
	copy(hw[6:12], b[18:24])

	p.SenderHardwareAddr = hw[0:6:6]
	p.SenderIP = netip.AddrFrom4([4]byte(b[14:18]))
	p.TargetHardwareAddr = hw[6:12:12]
	p.TargetIP = netip.AddrFrom4([4]byte(b[24:28]))

	return nil
}
