package config

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	LogLevel string `yaml:"logging_level"`
	Network  struct {
		Interface string `yaml:"interface"`
		Transport string `yaml:"transport"`
	} `yaml:"network"`

	// Decoded by hand to keep file order and see repeated keys.
	Hosts yaml.Node `yaml:"hosts"`
}

func loadYAML(path string) (*rawConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	var f yamlFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Trace(err)
	}

	rc := &rawConfig{
		LogLevel:  f.LogLevel,
		Interface: f.Network.Interface,
		Transport: f.Network.Transport,
	}

	switch f.Hosts.Kind {
	case 0:
		// No hosts key.
		return rc, nil
	case yaml.MappingNode:
	default:
		return nil, errors.NotValidf("hosts at line %d: expected a mapping of IP to MAC", f.Hosts.Line)
	}

	for i := 0; i+1 < len(f.Hosts.Content); i += 2 {
		k, v := f.Hosts.Content[i], f.Hosts.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, errors.NotValidf("host at line %d", k.Line)
		}

		rc.Hosts = append(rc.Hosts, rawHost{IP: k.Value, MAC: v.Value})
	}

	return rc, nil
}
