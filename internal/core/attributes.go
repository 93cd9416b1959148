package core

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind identifies which member of the Value union is set.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is a tagged union of the attribute and operand types a policy can reason about:
// string, number, bool or list of strings.
// The zero Value is invalid and never satisfies a constraint.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []string
}

func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ListValue copies items so later changes to the caller's slice do not leak in.
func ListValue(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// IsScalar reports whether v is a string, number or bool.
func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsList returns a copy of the list members.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// Interface returns the plain Go representation of v
// (string, float64, bool or []string), or nil for the zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		l, _ := v.AsList()
		return l
	default:
		return nil
	}
}

// Scalar renders a scalar value the way it would be compared as text.
// Lists and the zero Value render as the empty string.
func (v Value) Scalar() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindList:
		return "[" + strings.Join(v.list, ", ") + "]"
	case KindInvalid:
		return "<invalid>"
	default:
		return v.Scalar()
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Contains reports whether a list value holds item.
func (v Value) Contains(item string) bool {
	for _, s := range v.list {
		if s == item {
			return true
		}
	}
	return false
}

// ValueOf converts decoded JSON/YAML data into a Value.
// Lists may only contain scalars; numbers and booleans inside a list are kept as their text form.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case uint:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number '%s': %w", t, err)
		}
		return NumberValue(f), nil
	case []string:
		return ListValue(t...), nil
	case []any:
		items := make([]string, 0, len(t))
		for i, item := range t {
			iv, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			if !iv.IsScalar() {
				return Value{}, fmt.Errorf("list item %d: nested %s not supported", i, iv.Kind())
			}
			items = append(items, iv.Scalar())
		}
		return Value{kind: KindList, list: items}, nil
	case nil:
		return Value{}, fmt.Errorf("null is not a valid value")
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}

// MustValue is ValueOf for literals known to be valid.
func MustValue(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindList && v.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// AttributeSet maps attribute names to values describing a requester.
type AttributeSet map[string]Value

// NewAttributeSet converts a plain map, for example decoded config, into an AttributeSet.
func NewAttributeSet(raw map[string]any) (AttributeSet, error) {
	attrs := make(AttributeSet, len(raw))
	for k, x := range raw {
		v, err := ValueOf(x)
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", k, err)
		}
		attrs[k] = v
	}
	return attrs, nil
}

func (a AttributeSet) Get(name string) (Value, bool) {
	v, ok := a[name]
	return v, ok && v.IsValid()
}

func (a AttributeSet) Clone() AttributeSet {
	if a == nil {
		return nil
	}
	cp := make(AttributeSet, len(a))
	for k, v := range a {
		if v.kind == KindList {
			v = ListValue(v.list...)
		}
		cp[k] = v
	}
	return cp
}

// Map returns the attributes as plain Go values, e.g. as an expression environment.
func (a AttributeSet) Map() map[string]any {
	m := make(map[string]any, len(a))
	for k, v := range a {
		m[k] = v.Interface()
	}
	return m
}

// Keys returns the attribute names in sorted order.
func (a AttributeSet) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseAttribute parses a "key=value" pair as typed on the command line.
// "true"/"false" become booleans, numeric text becomes a number and
// comma-separated text (optionally wrapped in brackets) becomes a list.
func ParseAttribute(s string) (string, Value, error) {
	key, raw, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", Value{}, fmt.Errorf("invalid attribute '%s': expected key=value", s)
	}
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return key, parseList(raw[1 : len(raw)-1]), nil
	}
	if strings.Contains(raw, ",") {
		return key, parseList(raw), nil
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return key, BoolValue(b), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return key, NumberValue(f), nil
	}
	return key, StringValue(raw), nil
}

func parseList(raw string) Value {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return ListValue(items...)
}
