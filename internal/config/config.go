// Package config loads proxyarpd configuration files.
//
// Two formats are understood.  INI files use the arp-whisper layout:
//
//	logging_level = info
//
//	[Network]
//	interface = eth0
//	transport = packet
//
//	[Hosts]
//	192.168.1.2 = aa:bb:cc:dd:ee:ff
//
// Files ending in .yaml or .yml carry the same keys:
//
//	logging_level: info
//	network:
//	  interface: eth0
//	hosts:
//	  192.168.1.2: aa:bb:cc:dd:ee:ff
package config

import (
	"net"
	"net/netip"
	"path/filepath"
	"strings"

	"github.com/juju/errors"

	"github.com/arpwhisper/proxyarp"
)

// A LogLevel controls how much proxyarpd logs.
type LogLevel string

// Supported LogLevel values.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelOff   LogLevel = "off"
)

// ParseLogLevel parses s case-insensitively.  The empty string selects
// LevelInfo.
func ParseLogLevel(s string) (LogLevel, error) {
	switch l := LogLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LevelInfo, nil
	case LevelDebug, LevelInfo, LevelWarn, LevelOff:
		return l, nil
	default:
		return "", errors.NotValidf("logging level %q", s)
	}
}

// A Host is a single address proxyarpd answers for.
type Host struct {
	IP           netip.Addr
	HardwareAddr net.HardwareAddr
}

// Config is a validated proxyarpd configuration.
type Config struct {
	Interface string
	Transport proxyarp.Transport
	LogLevel  LogLevel

	// Hosts are kept in file order.
	Hosts []Host
}

// Table builds the address table for c.
func (c *Config) Table() (*proxyarp.Table, error) {
	es := make([]proxyarp.Entry, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		es = append(es, proxyarp.Entry{
			IP:           h.IP,
			HardwareAddr: h.HardwareAddr,
		})
	}

	t, err := proxyarp.NewTable(es)
	return t, errors.Trace(err)
}

// rawConfig is a configuration file's content before validation.
type rawConfig struct {
	LogLevel  string
	Interface string
	Transport string
	Hosts     []rawHost
}

type rawHost struct {
	IP  string
	MAC string
}

// Load reads and validates the configuration file at path.  The format is
// chosen by file extension; anything other than .yaml or .yml is read as
// INI.
func Load(path string) (*Config, error) {
	var (
		rc  *rawConfig
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		rc, err = loadYAML(path)
	default:
		rc, err = loadINI(path)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}

	c, err := rc.validate()
	if err != nil {
		return nil, errors.Annotatef(err, "%s", path)
	}

	return c, nil
}

func (rc *rawConfig) validate() (*Config, error) {
	c := &Config{
		Interface: strings.TrimSpace(rc.Interface),
	}
	if c.Interface == "" {
		return nil, errors.NotValidf("missing interface")
	}

	var err error
	if c.LogLevel, err = ParseLogLevel(rc.LogLevel); err != nil {
		return nil, err
	}
	if c.Transport, err = proxyarp.ParseTransport(strings.TrimSpace(rc.Transport)); err != nil {
		return nil, errors.Annotate(err, "network")
	}

	if len(rc.Hosts) == 0 {
		return nil, errors.NotValidf("empty hosts section")
	}

	seen := make(map[netip.Addr]bool, len(rc.Hosts))
	for _, rh := range rc.Hosts {
		h, err := rh.parse()
		if err != nil {
			return nil, errors.Annotatef(err, "host %q", rh.IP)
		}
		if seen[h.IP] {
			return nil, errors.Annotatef(proxyarp.ErrDuplicateAddress, "host %q", rh.IP)
		}
		seen[h.IP] = true

		c.Hosts = append(c.Hosts, h)
	}

	return c, nil
}

func (rh rawHost) parse() (Host, error) {
	ip, err := netip.ParseAddr(strings.TrimSpace(rh.IP))
	if err != nil || !ip.Is4() {
		return Host{}, proxyarp.ErrInvalidIP
	}

	mac, err := net.ParseMAC(strings.TrimSpace(rh.MAC))
	if err != nil || len(mac) != 6 {
		return Host{}, errors.Annotatef(proxyarp.ErrInvalidMAC, "%q", rh.MAC)
	}

	return Host{IP: ip, HardwareAddr: mac}, nil
}
