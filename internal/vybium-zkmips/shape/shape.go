package shape

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Shape fixes the padded height of every chip in a shard. A chip absent from
// the shape is excluded from the shard.
type Shape struct {
	Inner map[AirID]int
}

// New returns an empty shape.
func New() *Shape {
	return &Shape{Inner: make(map[AirID]int)}
}

// FromMap builds a shape from chip log2 heights.
func FromMap(heights map[AirID]int) *Shape {
	s := New()
	for id, h := range heights {
		s.Inner[id] = h
	}
	return s
}

// Insert sets the log2 height of a chip.
func (s *Shape) Insert(id AirID, log2Height int) {
	if s.Inner == nil {
		s.Inner = make(map[AirID]int)
	}
	s.Inner[id] = log2Height
}

// Log2Height returns the log2 height of a chip and whether the chip is part of the shape.
func (s *Shape) Log2Height(id AirID) (int, bool) {
	h, ok := s.Inner[id]
	return h, ok
}

// Included reports whether the chip is part of the shape.
func (s *Shape) Included(id AirID) bool {
	_, ok := s.Inner[id]
	return ok
}

// Len returns the number of chips in the shape.
func (s *Shape) Len() int {
	return len(s.Inner)
}

// IDs returns the chips of the shape in declaration order.
func (s *Shape) IDs() []AirID {
	ids := make([]AirID, 0, len(s.Inner))
	for id := range s.Inner {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy.
func (s *Shape) Clone() *Shape {
	return FromMap(s.Inner)
}

// MarshalYAML writes the shape as a mapping from chip name to log2 height.
func (s *Shape) MarshalYAML() (interface{}, error) {
	out := make(map[string]int, len(s.Inner))
	for id, h := range s.Inner {
		out[id.String()] = h
	}
	return out, nil
}

// UnmarshalYAML reads a mapping from chip name to log2 height.
func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]int
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Inner = make(map[AirID]int, len(raw))
	for name, h := range raw {
		id, err := ParseAirID(name)
		if err != nil {
			return err
		}
		if h < 0 || h > 31 {
			return fmt.Errorf("chip %s: log2 height %d out of range", name, h)
		}
		s.Inner[id] = h
	}
	return nil
}

// ParseShape decodes a YAML shape document.
func ParseShape(data []byte) (*Shape, error) {
	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse shape: %w", err)
	}
	return s, nil
}

// LoadShape reads a YAML shape file.
func LoadShape(path string) (*Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shape file: %w", err)
	}
	return ParseShape(data)
}
