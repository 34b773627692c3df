package sdkversion

import (
	"errors"

	"gopkg.in/yaml.v3"
)

// Load parses a YAML capability registry and verifies its invariants.
//
// Expected document shape:
//
//	javascript:
//	  - minVersion: "0.20.0"
//	    capabilities: [bucketingV2, looseUnmarshalling]
//	  - minVersion: "0.23.0"
//	    capabilities: [bucketingV2, looseUnmarshalling, encryption]
//
// Load is intended for process start; violations of version ordering or
// capability monotonicity fail the load rather than surfacing at runtime.
func Load(data []byte) (*Registry, error) {
	var languages map[Language][]Entry
	if err := yaml.Unmarshal(data, &languages); err != nil {
		return nil, errors.Join(ErrInvalidRegistry, err)
	}
	return NewRegistry(languages)
}
