// File: value.go
// Title: Kind-Tagged Values
// Description: Value wraps results stored in the named-object store together
//              with a kind tag so that dynamic parameters can be type
//              checked on assignment.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-04

package command

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind tags the runtime type of a Value
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindLong
	KindShort
	KindFloat
	KindDouble
	KindBool
	KindChar
	KindString
	KindIntArray
	KindLongArray
	KindShortArray
	KindFloatArray
	KindDoubleArray
	KindStringArray
	KindObject
)

var kindNames = map[Kind]string{
	KindInvalid:     "invalid",
	KindInt:         "int",
	KindLong:        "long",
	KindShort:       "short",
	KindFloat:       "float",
	KindDouble:      "double",
	KindBool:        "bool",
	KindChar:        "char",
	KindString:      "string",
	KindIntArray:    "int[]",
	KindLongArray:   "long[]",
	KindShortArray:  "short[]",
	KindFloatArray:  "float[]",
	KindDoubleArray: "double[]",
	KindStringArray: "string[]",
	KindObject:      "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is an immutable, kind-tagged wrapper around a produced result
type Value struct {
	kind Kind
	data any
}

// ValueOf wraps v. Values of unsupported primitive types are tagged
// KindObject; nil yields the invalid Value.
func ValueOf(v any) Value {
	if v == nil {
		return Value{}
	}
	if existing, ok := v.(Value); ok {
		return existing
	}
	return Value{kind: kindOf(v), data: v}
}

func kindOf(v any) Kind {
	switch v.(type) {
	case int:
		return KindInt
	case int64:
		return KindLong
	case int16:
		return KindShort
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	case bool:
		return KindBool
	case rune:
		return KindChar
	case string:
		return KindString
	case []int:
		return KindIntArray
	case []int64:
		return KindLongArray
	case []int16:
		return KindShortArray
	case []float32:
		return KindFloatArray
	case []float64:
		return KindDoubleArray
	case []string:
		return KindStringArray
	default:
		return KindObject
	}
}

// Kind returns the kind tag
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds anything
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Interface returns the wrapped value
func (v Value) Interface() any { return v.data }

// TypeName describes the wrapped value, e.g. "int[]" or "*stats.Summary"
func (v Value) TypeName() string {
	if v.kind == KindObject {
		return reflect.TypeOf(v.data).String()
	}
	return v.kind.String()
}

// String renders the value for console output
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<nil>"
	case KindChar:
		return string(v.data.(rune))
	case KindStringArray:
		return "[" + strings.Join(v.data.([]string), ", ") + "]"
	default:
		return fmt.Sprint(v.data)
	}
}

// typeName maps Go types onto the names used in help output
func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	switch t {
	case reflect.TypeOf(int(0)):
		return "int"
	case reflect.TypeOf(int64(0)):
		return "long"
	case reflect.TypeOf(int16(0)):
		return "short"
	case reflect.TypeOf(float32(0)):
		return "float"
	case reflect.TypeOf(float64(0)):
		return "double"
	case reflect.TypeOf(false):
		return "bool"
	case reflect.TypeOf(rune(0)):
		return "char"
	case reflect.TypeOf(""):
		return "string"
	case reflect.TypeOf(Value{}):
		return "value"
	}
	if t.Kind() == reflect.Slice {
		return typeName(t.Elem()) + "[]"
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return "any"
	}
	return t.String()
}
