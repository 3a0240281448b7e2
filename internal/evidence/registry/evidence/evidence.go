// Package evidence defines the harvester's output contract: an ordered list
// of named, typed, sourced values, and the Builder that assembles it.
package evidence

import (
	"encoding/json"
	"time"
)

// ValueType is the declared type of an evidence value.
type ValueType string

const (
	TypeString   ValueType = "String"
	TypeNumber   ValueType = "Number"
	TypeBoolean  ValueType = "Boolean"
	TypeDateTime ValueType = "DateTime"
	TypeJSON     ValueType = "JsonSchema"
)

// Value is one named datum in a harvest result.
type Value struct {
	Name      string    `json:"evidenceValueName"`
	Type      ValueType `json:"valueType"`
	Value     any       `json:"value"`
	Source    string    `json:"source"`
	Mandatory bool      `json:"mandatory"`
}

// ValueSpec declares a value an evidence code may produce.
type ValueSpec struct {
	Name string    `json:"evidenceValueName"`
	Type ValueType `json:"valueType"`
}

// Code describes one dataset: its name, source and declared values.
type Code struct {
	Name   string      `json:"evidenceCodeName"`
	Source string      `json:"evidenceSource"`
	Values []ValueSpec `json:"values"`
}

// Spec returns the declared spec for name.
func (c Code) Spec(name string) (ValueSpec, bool) {
	for _, v := range c.Values {
		if v.Name == name {
			return v, true
		}
	}
	return ValueSpec{}, false
}

// TypeOf infers the evidence type of a Go value. Only the types the
// harvester emits are recognised.
func TypeOf(v any) (ValueType, bool) {
	switch v.(type) {
	case string:
		return TypeString, true
	case int, int32, int64, float32, float64:
		return TypeNumber, true
	case bool:
		return TypeBoolean, true
	case time.Time:
		return TypeDateTime, true
	case json.RawMessage:
		return TypeJSON, true
	default:
		return "", false
	}
}
