// Command arpc provides a simple ARP client which can be used to check which
// hardware address is advertised for an IPv4 address, for example by a
// running proxyarpd.
package main

import (
	"fmt"
	"log"
	"net"
	"net/netip"
	"time"

	"github.com/spf13/pflag"

	"github.com/arpwhisper/proxyarp"
)

var (
	// durFlag is used to set a timeout for an ARP request
	durFlag = pflag.DurationP("timeout", "d", 1*time.Second, "timeout for ARP request")

	// ifaceFlag is used to set a network interface for ARP requests
	ifaceFlag = pflag.StringP("interface", "i", "eth0", "network interface to use for ARP request")

	// ipFlag is used to set an IPv4 address destination for an ARP request
	ipFlag = pflag.String("ip", "", "IPv4 address destination for ARP request")
)

func main() {
	pflag.Parse()

	// Ensure valid network interface
	ifi, err := net.InterfaceByName(*ifaceFlag)
	if err != nil {
		log.Fatal(err)
	}

	ip, err := netip.ParseAddr(*ipFlag)
	if err != nil || !ip.Is4() {
		log.Fatalf("invalid IPv4 address: %q", *ipFlag)
	}

	// Set up ARP client with socket
	c, err := proxyarp.Dial(ifi)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	// Set request deadline from flag
	if err := c.SetDeadline(time.Now().Add(*durFlag)); err != nil {
		log.Fatal(err)
	}

	// Request hardware address for IP address
	mac, err := c.Resolve(ip)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s -> %s\n", ip, mac)
}
