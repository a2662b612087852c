package proxyarp

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sort"
)

// ErrDuplicateAddress is returned by NewTable when the same IPv4 address
// appears in more than one Entry.
var ErrDuplicateAddress = errors.New("duplicate IPv4 address")

// An Entry maps an IPv4 address to the hardware address advertised for it.
type Entry struct {
	IP           netip.Addr
	HardwareAddr net.HardwareAddr
}

// A Table is an immutable mapping from IPv4 address to hardware address.
// A Table never changes after NewTable returns, so it may be shared between
// any number of Servers without locking.
type Table struct {
	m map[netip.Addr][macLen]byte
}

// NewTable builds a Table from entries.
//
// Each IP must be an IPv4 address (ErrInvalidIP) and each hardware address
// must be 6 bytes long (ErrInvalidMAC).  An IP which appears more than once
// is rejected with ErrDuplicateAddress, even if both entries agree.
func NewTable(entries []Entry) (*Table, error) {
	m := make(map[netip.Addr][macLen]byte, len(entries))
	for _, e := range entries {
		ip := e.IP.Unmap()
		if !ip.Is4() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidIP, e.IP)
		}
		if len(e.HardwareAddr) != macLen {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMAC, e.HardwareAddr)
		}
		if _, ok := m[ip]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, ip)
		}

		m[ip] = [macLen]byte(e.HardwareAddr)
	}

	return &Table{m: m}, nil
}

// Lookup returns the hardware address configured for ip, if any.  The
// returned slice is a copy and may be modified by the caller.
//
// A nil Table has no entries.
func (t *Table) Lookup(ip netip.Addr) (net.HardwareAddr, bool) {
	if t == nil {
		return nil, false
	}

	mac, ok := t.m[ip.Unmap()]
	if !ok {
		return nil, false
	}

	return net.HardwareAddr(mac[:]), true
}

// Len returns the number of entries in t.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.m)
}

// Entries returns a copy of the entries in t, sorted by IP address.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}

	es := make([]Entry, 0, len(t.m))
	for ip, mac := range t.m {
		es = append(es, Entry{IP: ip, HardwareAddr: net.HardwareAddr(mac[:])})
	}

	sort.Slice(es, func(i, j int) bool {
		return es[i].IP.Less(es[j].IP)
	})

	return es
}
