package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jalapeno-net/srctl/pkg/util"
)

// LoadFile reads and parses a PathRequest document from a YAML file.
func LoadFile(path string) (*PathRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading path request %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a PathRequest document and checks its resource kind.
// Anything beyond the kind (platform, per-VRF table ids) is validated by
// the request walker so a document can be inspected before processing.
func Parse(data []byte) (*PathRequest, error) {
	var req PathRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing path request: %w", err)
	}
	if req.Kind != KindPathRequest {
		return nil, util.NewValidationError(
			fmt.Sprintf("unsupported resource kind: %q", req.Kind))
	}
	return &req, nil
}
