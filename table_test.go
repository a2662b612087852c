package proxyarp

import (
	"net"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	mac1 := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	mac2 := net.HardwareAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}

	t.Run("empty", func(t *testing.T) {
		tbl, err := NewTable(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, tbl.Len())
		assert.Empty(t, tbl.Entries())
	})

	t.Run("duplicate address", func(t *testing.T) {
		_, err := NewTable([]Entry{
			{IP: netip.MustParseAddr("192.168.1.2"), HardwareAddr: mac1},
			{IP: netip.MustParseAddr("192.168.1.3"), HardwareAddr: mac1},
			{IP: netip.MustParseAddr("192.168.1.2"), HardwareAddr: mac2},
		})
		assert.ErrorIs(t, err, ErrDuplicateAddress)
		assert.Contains(t, err.Error(), "192.168.1.2")
	})

	t.Run("duplicate address in mapped form", func(t *testing.T) {
		_, err := NewTable([]Entry{
			{IP: netip.MustParseAddr("192.168.1.2"), HardwareAddr: mac1},
			{IP: netip.MustParseAddr("::ffff:192.168.1.2"), HardwareAddr: mac2},
		})
		assert.ErrorIs(t, err, ErrDuplicateAddress)
	})

	t.Run("IPv6 address", func(t *testing.T) {
		_, err := NewTable([]Entry{
			{IP: netip.MustParseAddr("2001:db8::1"), HardwareAddr: mac1},
		})
		assert.ErrorIs(t, err, ErrInvalidIP)
	})

	t.Run("zero address", func(t *testing.T) {
		_, err := NewTable([]Entry{{HardwareAddr: mac1}})
		assert.ErrorIs(t, err, ErrInvalidIP)
	})

	t.Run("EUI-64 hardware address", func(t *testing.T) {
		_, err := NewTable([]Entry{
			{
				IP:           netip.MustParseAddr("192.168.1.2"),
				HardwareAddr: net.HardwareAddr{0, 1, 2, 3, 4, 5, 6, 7},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidMAC)
	})
}

func TestTableLookup(t *testing.T) {
	mac := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	in := []Entry{
		{IP: netip.MustParseAddr("192.168.1.2"), HardwareAddr: mac},
		{IP: netip.MustParseAddr("10.0.0.1"), HardwareAddr: net.HardwareAddr{1, 2, 3, 4, 5, 6}},
	}

	tbl, err := NewTable(in)
	require.NoError(t, err)

	// Mutating the input must not affect the table.
	mac[0] = 0
	in[0].IP = netip.MustParseAddr("192.168.1.99")

	got, ok := tbl.Lookup(netip.MustParseAddr("192.168.1.2"))
	require.True(t, ok)
	assert.Equal(t, net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, got)

	// Nor may mutating a lookup result.
	got[0] = 0
	again, ok := tbl.Lookup(netip.MustParseAddr("192.168.1.2"))
	require.True(t, ok)
	assert.Equal(t, net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, again)

	_, ok = tbl.Lookup(netip.MustParseAddr("::ffff:192.168.1.2"))
	assert.True(t, ok, "IPv4-mapped lookup")

	for _, ip := range []string{"10.0.0.9", "192.168.1.99", "2001:db8::1"} {
		_, ok := tbl.Lookup(netip.MustParseAddr(ip))
		assert.False(t, ok, ip)
	}
	_, ok = tbl.Lookup(netip.Addr{})
	assert.False(t, ok, "zero address")

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []Entry{
		{IP: netip.MustParseAddr("10.0.0.1"), HardwareAddr: net.HardwareAddr{1, 2, 3, 4, 5, 6}},
		{IP: netip.MustParseAddr("192.168.1.2"), HardwareAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}},
	}, tbl.Entries())
}

func TestTableNil(t *testing.T) {
	var tbl *Table

	_, ok := tbl.Lookup(netip.MustParseAddr("192.168.1.2"))
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Entries())
}

func TestTableConcurrentLookup(t *testing.T) {
	tbl, err := NewTable([]Entry{
		{IP: netip.MustParseAddr("192.168.1.2"), HardwareAddr: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mac, ok := tbl.Lookup(netip.MustParseAddr("192.168.1.2"))
				if !ok || mac[5] != 0xff {
					t.Error("unexpected lookup result")
					return
				}
				mac[5] = 0
			}
		}()
	}
	wg.Wait()
}
