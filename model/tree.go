package model

import "bytes"

// Tree renders c into a plain map/slice tree suitable for marshaling with
// encoding/json or gopkg.in/yaml.v3 — a read-only diagnostic projection
// driver.Validate attaches to its Summary for the "validate --format
// json|yaml" report. It is never used as an intermediate form for parsing
// or merging.
func (c *Config) Tree() []map[string]any {
	out := make([]map[string]any, 0, len(c.Sections))
	for _, s := range c.Sections {
		entry := map[string]any{
			"type": s.Type,
		}
		if s.Name != "" {
			entry["name"] = s.Name
		}
		if len(s.Meta) > 0 {
			entry["meta"] = s.Meta
		}
		opts := make(map[string]any, len(s.Options))
		for _, o := range s.Options {
			switch o.Value.Kind() {
			case KindScalar:
				opts[o.Key] = o.Value.AsScalar()
			case KindList:
				opts[o.Key] = o.Value.AsList()
			}
		}
		entry["options"] = opts
		out = append(out, entry)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler by emitting c in the
// declarative config format (see Emit).
func (c *Config) MarshalText() ([]byte, error) {
	s, err := EmitString(c)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler by parsing text into c.
func (c *Config) UnmarshalText(text []byte) error {
	parsed, err := Parse(bytes.NewReader(text))
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}
