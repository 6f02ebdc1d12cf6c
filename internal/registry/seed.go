package registry

import (
	"os"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// DefaultSeedKeys are loaded when no seed is configured: one multi-segment
// key and two plain-word keys.
var DefaultSeedKeys = []string{"AB4D-XR2L-89TM-J7KQ", "qwert", "qwert123"}

type seedFile struct {
	Keys []string `yaml:"keys"`
}

// LoadSeedFile reads a YAML document of the form `keys: [...]`.
func LoadSeedFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("registry").With("path", path).Wrapf(err, "read seed file")
	}

	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, oops.In("registry").With("path", path).Wrapf(err, "parse seed file")
	}
	return doc.Keys, nil
}

// ParseSeedList splits a comma-separated key list, dropping blank items.
func ParseSeedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
