package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Set is a collection of parameters holding at most one parameter per name.
// The zero value is an empty set ready to use.
type Set struct {
	params map[string]Parameter
}

// NewSet builds a set from params. When several parameters share a name the
// last one wins.
func NewSet(params ...Parameter) Set {
	var s Set
	for _, p := range params {
		s.Update(p)
	}
	return s
}

// Update inserts p, replacing any parameter with the same name.
func (s *Set) Update(p Parameter) {
	if s.params == nil {
		s.params = make(map[string]Parameter)
	}
	s.params[p.Name] = p
}

// Remove deletes the parameter with the given name, if present.
func (s *Set) Remove(name string) {
	delete(s.params, name)
}

// Get returns the parameter with the given name.
func (s Set) Get(name string) (Parameter, bool) {
	p, ok := s.params[name]
	return p, ok
}

// Contains reports whether a parameter with the given name is present.
func (s Set) Contains(name string) bool {
	_, ok := s.params[name]
	return ok
}

// Len returns the number of parameters.
func (s Set) Len() int {
	return len(s.params)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	c := Set{params: make(map[string]Parameter, len(s.params))}
	for name, p := range s.params {
		c.params[name] = p
	}
	return c
}

// Union returns a copy of s extended with the parameters of other whose
// names are not already present in s. Existing values are never overridden.
func (s Set) Union(other Set) Set {
	u := s.Clone()
	for name, p := range other.params {
		if _, exists := u.params[name]; !exists {
			u.params[name] = p
		}
	}
	return u
}

// Sorted returns the parameters ordered by name.
func (s Set) Sorted() []Parameter {
	out := make([]Parameter, 0, len(s.params))
	for _, p := range s.params {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Values converts the set into url.Values. Encoding the result yields a
// deterministic query string since url.Values.Encode sorts by key.
func (s Set) Values() url.Values {
	v := make(url.Values, len(s.params))
	for name, p := range s.params {
		v.Set(name, p.Value)
	}
	return v
}

// Fields returns the field names of the _fields parameter, or nil when the
// set has no field filter.
func (s Set) Fields() []string {
	p, ok := s.params[NameFields]
	if !ok {
		return nil
	}

	var fields []string
	for _, f := range strings.Split(p.Value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Page returns the pinned page number, if the set has a numeric page parameter.
func (s Set) Page() (int, bool) {
	p, ok := s.params[NamePage]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0, false
	}
	return n, true
}
