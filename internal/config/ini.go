package config

import (
	"github.com/juju/errors"
	"gopkg.in/ini.v1"
)

// INI section and key names, as used by arp-whisper.
const (
	iniNetwork   = "Network"
	iniHosts     = "Hosts"
	iniLogLevel  = "logging_level"
	iniInterface = "interface"
	iniTransport = "transport"
)

func loadINI(path string) (*rawConfig, error) {
	// Shadows keep every value of a repeated key so that duplicate hosts
	// are reported instead of silently overwritten.
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	network := f.Section(iniNetwork)
	rc := &rawConfig{
		LogLevel:  f.Section(ini.DefaultSection).Key(iniLogLevel).String(),
		Interface: network.Key(iniInterface).String(),
		Transport: network.Key(iniTransport).String(),
	}

	hosts, err := f.GetSection(iniHosts)
	if err != nil {
		// Reported as an empty hosts section by validate.
		return rc, nil
	}

	for _, k := range hosts.Keys() {
		for _, v := range k.ValueWithShadows() {
			rc.Hosts = append(rc.Hosts, rawHost{IP: k.Name(), MAC: v})
		}
	}

	return rc, nil
}
