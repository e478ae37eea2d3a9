package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is a single key/value pair in a Mapping.
type Entry struct {
	Key   string
	Value string
}

// Mapping is an insertion-ordered string mapping.
//
// Setting an existing key overwrites its value in place; setting a new key
// appends it. Renaming is delete-then-reinsert, so a renamed key always moves
// to the end.
type Mapping []Entry

// MappingOf builds a Mapping from alternating key/value arguments.
func MappingOf(kv ...string) Mapping {
	m := make(Mapping, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m = m.Set(kv[i], kv[i+1])
	}
	return m
}

// Len returns the number of entries.
func (m Mapping) Len() int { return len(m) }

// Index returns the position of key, or -1.
func (m Mapping) Index(key string) int {
	for i, e := range m {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value for key.
func (m Mapping) Get(key string) (string, bool) {
	if i := m.Index(key); i >= 0 {
		return m[i].Value, true
	}
	return "", false
}

// Has reports whether key is present.
func (m Mapping) Has(key string) bool { return m.Index(key) >= 0 }

// Keys returns the keys in order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the values in order.
func (m Mapping) Values() []string {
	values := make([]string, len(m))
	for i, e := range m {
		values[i] = e.Value
	}
	return values
}

// Clone returns a copy that shares no storage with m.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	copy(out, m)
	return out
}

// Set returns a mapping with key set to value.
func (m Mapping) Set(key, value string) Mapping {
	out := m.Clone()
	if i := out.Index(key); i >= 0 {
		out[i].Value = value
		return out
	}
	return append(out, Entry{Key: key, Value: value})
}

// Delete returns a mapping without key.
func (m Mapping) Delete(key string) Mapping {
	out := make(Mapping, 0, len(m))
	for _, e := range m {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Rename moves the value stored under oldKey to newKey.
// The entry is removed and re-set, so it loses its position. Renaming a
// missing key sets newKey to the empty string.
func (m Mapping) Rename(oldKey, newKey string) Mapping {
	if oldKey == newKey {
		return m.Clone()
	}
	value, _ := m.Get(oldKey)
	return m.Delete(oldKey).Set(newKey, value)
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Duplicate keys
// follow Set semantics.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("mapping: expected object, got %v", tok)
	}

	out := Mapping{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("mapping: expected string key, got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("mapping: value for %q: %w", key, err)
		}
		out = out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalYAML encodes the mapping as a YAML mapping node in insertion order.
func (m Mapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping node keeping key order.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("mapping: line %d: expected a mapping", node.Line)
	}
	out := Mapping{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("mapping: line %d: value for %q must be a scalar", v.Line, k.Value)
		}
		out = out.Set(k.Value, v.Value)
	}
	*m = out
	return nil
}
