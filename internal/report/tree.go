package report

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind distinguishes the two outcome shapes a stage can record.
type Kind int

const (
	KindSimple Kind = iota
	KindComposite
)

// Check is one named sub-check inside a composite outcome.
type Check struct {
	Name   string
	Passed bool
}

// Outcome is either a single boolean or an ordered set of named sub-checks.
// The zero value is Simple(false).
type Outcome struct {
	kind   Kind
	passed bool
	checks []Check
}

// Simple records a stage with one pass/fail result.
func Simple(passed bool) Outcome {
	return Outcome{kind: KindSimple, passed: passed}
}

// Composite records a stage made of several sub-checks, in the given order.
func Composite(checks ...Check) Outcome {
	return Outcome{kind: KindComposite, checks: append([]Check(nil), checks...)}
}

func (o Outcome) Kind() Kind {
	return o.kind
}

// Passed is the simple value, or the logical AND of every sub-check.
func (o Outcome) Passed() bool {
	if o.kind == KindSimple {
		return o.passed
	}
	for _, c := range o.checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Checks returns a copy of the sub-checks of a composite outcome.
func (o Outcome) Checks() []Check {
	return append([]Check(nil), o.checks...)
}

// Check looks up a sub-check by name.
func (o Outcome) Check(name string) (bool, bool) {
	for _, c := range o.checks {
		if c.Name == name {
			return c.Passed, true
		}
	}
	return false, false
}

// With returns a copy of o with the named sub-check set, replacing an existing
// entry in place or appending a new one.
func (o Outcome) With(name string, passed bool) Outcome {
	out := Composite(o.checks...)
	for i := range out.checks {
		if out.checks[i].Name == name {
			out.checks[i].Passed = passed
			return out
		}
	}
	out.checks = append(out.checks, Check{Name: name, Passed: passed})
	return out
}

// Leaves flattens the outcome into its boolean leaves. A simple outcome has one
// leaf; a composite has one per sub-check.
func (o Outcome) Leaves() []bool {
	if o.kind == KindSimple {
		return []bool{o.passed}
	}
	leaves := make([]bool, 0, len(o.checks))
	for _, c := range o.checks {
		leaves = append(leaves, c.Passed)
	}
	return leaves
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.kind == KindSimple {
		return json.Marshal(o.passed)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range o.checks {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if c.Passed {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var passed bool
	if err := json.Unmarshal(data, &passed); err == nil {
		*o = Simple(passed)
		return nil
	}

	names, values, err := decodeOrderedObject(data)
	if err != nil {
		return fmt.Errorf("outcome must be a boolean or an object of booleans: %w", err)
	}
	checks := make([]Check, 0, len(names))
	for i, name := range names {
		var v bool
		if err := json.Unmarshal(values[i], &v); err != nil {
			return fmt.Errorf("sub-check %q: %w", name, err)
		}
		checks = append(checks, Check{Name: name, Passed: v})
	}
	*o = Composite(checks...)
	return nil
}

// Tree maps stage names to outcomes, preserving the order stages first recorded.
type Tree struct {
	keys     []string
	outcomes map[string]Outcome
}

func NewTree() *Tree {
	return &Tree{outcomes: make(map[string]Outcome)}
}

// Set records the outcome for name, overwriting any previous value in place.
func (t *Tree) Set(name string, outcome Outcome) {
	if t.outcomes == nil {
		t.outcomes = make(map[string]Outcome)
	}
	if _, ok := t.outcomes[name]; !ok {
		t.keys = append(t.keys, name)
	}
	t.outcomes[name] = outcome
}

func (t *Tree) Get(name string) (Outcome, bool) {
	if t == nil {
		return Outcome{}, false
	}
	o, ok := t.outcomes[name]
	return o, ok
}

// Keys returns stage names in recording order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Clone returns an independent copy.
func (t *Tree) Clone() *Tree {
	out := NewTree()
	if t == nil {
		return out
	}
	for _, k := range t.keys {
		o := t.outcomes[k]
		o.checks = append([]Check(nil), o.checks...)
		out.Set(k, o)
	}
	return out
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if t != nil {
		for i, k := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			value, err := t.outcomes[k].MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("encode %q: %w", k, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	names, values, err := decodeOrderedObject(data)
	if err != nil {
		return fmt.Errorf("results must be an object: %w", err)
	}
	*t = Tree{outcomes: make(map[string]Outcome, len(names))}
	for i, name := range names {
		var o Outcome
		if err := o.UnmarshalJSON(values[i]); err != nil {
			return fmt.Errorf("results %q: %w", name, err)
		}
		t.Set(name, o)
	}
	return nil
}

// decodeOrderedObject decodes a JSON object keeping its key order.
func decodeOrderedObject(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var names []string
	var values []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		values = append(values, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return names, values, nil
}
