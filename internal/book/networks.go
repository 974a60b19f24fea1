package book

import (
	_ "embed"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var networksYAML []byte

// Network is the name of a supported social network.
type Network string

// NetworkInfo describes one entry of the social network catalog.
type NetworkInfo struct {
	Name Network `yaml:"name" json:"name"`
	Icon string  `yaml:"icon" json:"icon"`
}

type networkCatalog struct {
	Networks []NetworkInfo `yaml:"networks"`
}

var networks = loadNetworks()

func loadNetworks() []NetworkInfo {
	var catalog networkCatalog
	if err := yaml.Unmarshal(networksYAML, &catalog); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded networks.yaml: " + err.Error())
	}
	return catalog.Networks
}

// Networks returns the social network catalog in display order.
func Networks() []NetworkInfo {
	out := make([]NetworkInfo, len(networks))
	copy(out, networks)
	return out
}

// ParseNetwork resolves a network name case- and accent-insensitively.
func ParseNetwork(name string) (Network, bool) {
	key := media.NormalizeName(name)
	if key == "" {
		return "", false
	}
	for _, n := range networks {
		if media.NormalizeName(string(n.Name)) == key {
			return n.Name, true
		}
	}
	return "", false
}

// Icon returns the icon class of a network, or "" for unknown names.
func (n Network) Icon() string {
	for _, info := range networks {
		if info.Name == n {
			return info.Icon
		}
	}
	return ""
}
