// Package model holds the typed in-memory representation of a router
// configuration file: an ordered sequence of Sections, each an ordered
// mapping of option name to Value. See Parse and Emit for the
// codec that moves between this representation and the on-disk text
// format.
package model

// Option is a single key/value pair, keeping the insertion order that
// Section.Options must preserve.
type Option struct {
	Key   string
	Value Value
}

// Section is a named or anonymous typed block within a Config. When Name is
// empty the section is anonymous and identified by its position among
// same-typed anonymous sections (see Config.AnonymousIndex).
type Section struct {
	Name    string
	Type    string
	Options []Option
	// Meta holds reserved ".key" entries (spec invariant 5). These are not
	// modeled as Options and are preserved opaquely across load/emit.
	Meta map[string]string
}

// Get returns the Value for key and whether it was present.
func (s *Section) Get(key string) (Value, bool) {
	for _, o := range s.Options {
		if o.Key == key {
			return o.Value, true
		}
	}
	return Value{}, false
}

// Set inserts or overwrites the value for key, preserving insertion order on
// first insert.
func (s *Section) Set(key string, v Value) {
	for i, o := range s.Options {
		if o.Key == key {
			s.Options[i].Value = v
			return
		}
	}
	s.Options = append(s.Options, Option{Key: key, Value: v})
}

// Delete removes key if present. It reports whether anything was removed.
func (s *Section) Delete(key string) bool {
	for i, o := range s.Options {
		if o.Key == key {
			s.Options = append(s.Options[:i], s.Options[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of s.
func (s *Section) Clone() *Section {
	cp := &Section{Name: s.Name, Type: s.Type}
	cp.Options = make([]Option, len(s.Options))
	copy(cp.Options, s.Options)
	if s.Meta != nil {
		cp.Meta = make(map[string]string, len(s.Meta))
		for k, v := range s.Meta {
			cp.Meta[k] = v
		}
	}
	return cp
}

// Config is an ordered sequence of Sections. Order must be preserved across
// load/emit round-trips (spec invariant: "re-ordering is forbidden").
type Config struct {
	Sections []*Section
}

// New returns an empty Config.
func New() *Config {
	return &Config{}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := &Config{Sections: make([]*Section, len(c.Sections))}
	for i, s := range c.Sections {
		cp.Sections[i] = s.Clone()
	}
	return cp
}

// Named looks up a named section by its unique Name.
func (c *Config) Named(name string) (*Section, bool) {
	if name == "" {
		return nil, false
	}
	for _, s := range c.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// AnonymousIndex returns the anonymous section of the given Type at the
// given 0-based positional index among same-typed anonymous sections, and
// whether it was found.
func (c *Config) AnonymousIndex(typ string, index int) (*Section, bool) {
	n := 0
	for _, s := range c.Sections {
		if s.Name != "" || s.Type != typ {
			continue
		}
		if n == index {
			return s, true
		}
		n++
	}
	return nil, false
}

// CountAnonymous returns the number of anonymous sections of the given Type,
// i.e. the positional index a newly appended anonymous section of that Type
// would receive.
func (c *Config) CountAnonymous(typ string) int {
	n := 0
	for _, s := range c.Sections {
		if s.Name == "" && s.Type == typ {
			n++
		}
	}
	return n
}

// Append adds s to the end of the Config's section order.
func (c *Config) Append(s *Section) {
	c.Sections = append(c.Sections, s)
}

// Validate checks the invariants of spec §3 that the parser itself does not
// already enforce structurally (unique names, unique option keys per
// section, no empty lists). It returns the first violation found.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, s := range c.Sections {
		if s.Name != "" {
			if seen[s.Name] {
				return &ValidationError{Reason: "duplicate section name " + s.Name}
			}
			seen[s.Name] = true
		}
		keys := make(map[string]bool, len(s.Options))
		for _, o := range s.Options {
			if keys[o.Key] {
				return &ValidationError{Reason: "duplicate option key " + o.Key + " in section " + s.Type}
			}
			keys[o.Key] = true
			if o.Value.IsEmptyList() {
				return &ValidationError{Reason: "empty list for option " + o.Key + " is unrepresentable"}
			}
		}
	}
	return nil
}

// ValidationError reports a violated model invariant.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "model: " + e.Reason
}
