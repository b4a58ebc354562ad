package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ordered is a string keyed map that keeps document order. Translation maps
// use it so the first declared language stays the first available language
// after a JSON or YAML round trip.
type Ordered[V any] struct {
	keys   []string
	values map[string]V
}

// OrderedOf builds an Ordered map from pairs in the given order.
func OrderedOf[V any](pairs ...Pair[V]) Ordered[V] {
	var out Ordered[V]
	for _, pair := range pairs {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// Pair is a single entry used by OrderedOf.
type Pair[V any] struct {
	Key   string
	Value V
}

// Set stores value under key. Existing keys keep their position.
func (o *Ordered[V]) Set(key string, value V) {
	if o.values == nil {
		o.values = make(map[string]V)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o Ordered[V]) Get(key string) (V, bool) {
	value, ok := o.values[key]
	return value, ok
}

// Keys returns the keys in document order.
func (o Ordered[V]) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len reports the number of entries.
func (o Ordered[V]) Len() int {
	return len(o.keys)
}

// UnmarshalJSON decodes an object token by token so key order survives.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: decode ordered map: %w", err)
	}
	if tok == nil {
		*o = Ordered[V]{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: expected object, got %v", tok)
	}

	var out Ordered[V]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: decode ordered map key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("schema: expected string key, got %v", keyTok)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("schema: decode value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("schema: decode ordered map: %w", err)
	}
	*o = out
	return nil
}

// MarshalJSON writes the entries in document order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		rawKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		rawValue, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, fmt.Errorf("schema: encode value for %q: %w", key, err)
		}
		buf.Write(rawKey)
		buf.WriteByte(':')
		buf.Write(rawValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a mapping node preserving key order.
func (o *Ordered[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*o = Ordered[V]{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("schema: line %d: expected mapping", node.Line)
	}

	var out Ordered[V]
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("schema: line %d: decode key: %w", node.Content[i].Line, err)
		}
		var value V
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("schema: line %d: decode value for %q: %w", node.Content[i+1].Line, key, err)
		}
		out.Set(key, value)
	}
	*o = out
	return nil
}

// MarshalYAML emits a mapping node in document order.
func (o Ordered[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range o.keys {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(o.values[key]); err != nil {
			return nil, fmt.Errorf("schema: encode value for %q: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valueNode,
		)
	}
	return node, nil
}
