package evaluator

import (
	"fmt"
	"reflect"
)

// isTruthy reports whether a value counts as true in a condition.
// nil, false, zero numbers, "", "0" and empty collections are false.
func isTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	}

	if n, ok := toNumber(value); ok {
		switch n := n.(type) {
		case int:
			return n != 0
		case float64:
			return n != 0
		}
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// toNumber normalizes integer kinds to int and float kinds to float64.
func toNumber(value any) (any, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float32:
		return float64(v), true
	case nil, bool, string:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return nil, false
}

// toInt returns value as an int when it has an integer kind.
func toInt(value any) (int, bool) {
	n, ok := toNumber(value)
	if !ok {
		return 0, false
	}
	i, ok := n.(int)
	return i, ok
}

// toFloat returns value as a float64 when it is a number.
func toFloat(value any) (float64, bool) {
	n, ok := toNumber(value)
	if !ok {
		return 0, false
	}
	switch n := n.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// toStringValue returns value as a string when it has a string kind.
func toStringValue(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// isEqual compares numbers by value and everything else deeply.
func isEqual(left, right any) bool {
	if ln, ok := toNumber(left); ok {
		if rn, ok := toNumber(right); ok {
			li, lok := ln.(int)
			ri, rok := rn.(int)
			if lok && rok {
				return li == ri
			}
			lf, _ := toFloat(ln)
			rf, _ := toFloat(rn)
			return lf == rf
		}
		return false
	}
	if ls, ok := toStringValue(left); ok {
		rs, ok := toStringValue(right)
		return ok && ls == rs
	}
	return reflect.DeepEqual(left, right)
}

// typeName describes the type of a value in error messages.
func typeName(value any) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%T", value)
}
