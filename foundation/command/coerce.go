// File: coerce.go
// Title: Token Coercion
// Description: Converts raw string tokens into the scalar and array types a
//              setter accepts.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-04
// Modified: 2025-03-04

package command

import (
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Coerce parses token as T. Supported targets are int, int64, int16,
// float32, float64, bool, rune, string and slices of the numeric types or
// string; array tokens are split on ",". An int holds the 32-bit range
// whatever the platform word size; int64 is the long type.
func Coerce[T any](token string) (T, error) {
	var out T
	var err error

	switch p := any(&out).(type) {
	case *string:
		*p = token
	case *int:
		*p, err = parseInt(token)
	case *int64:
		*p, err = strconv.ParseInt(token, 10, 64)
	case *int16:
		var n int64
		n, err = strconv.ParseInt(token, 10, 16)
		*p = int16(n)
	case *float32:
		var f float64
		f, err = strconv.ParseFloat(token, 32)
		*p = float32(f)
	case *float64:
		*p, err = strconv.ParseFloat(token, 64)
	case *bool:
		*p, err = strconv.ParseBool(token)
	case *rune:
		if utf8.RuneCountInString(token) != 1 {
			return out, coercionError(token, "char", nil)
		}
		*p, _ = utf8.DecodeRuneInString(token)
	case *[]string:
		*p = splitArray(token)
	case *[]int:
		*p, err = coerceArray(token, parseInt)
	case *[]int64:
		*p, err = coerceArray(token, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
	case *[]int16:
		*p, err = coerceArray(token, func(s string) (int16, error) {
			n, err := strconv.ParseInt(s, 10, 16)
			return int16(n), err
		})
	case *[]float32:
		*p, err = coerceArray(token, func(s string) (float32, error) {
			f, err := strconv.ParseFloat(s, 32)
			return float32(f), err
		})
	case *[]float64:
		*p, err = coerceArray(token, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
	default:
		return out, derror.Newf("type %s cannot be converted from text", typeName(reflect.TypeOf(out))).
			WithCode(derror.CodeCoercion).
			WithDetail("token", token).
			WithDetail("type", typeName(reflect.TypeOf(out)))
	}

	if err != nil {
		var zero T
		return zero, coercionError(token, typeName(reflect.TypeOf(out)), err)
	}
	return out, nil
}

// Coercible reports whether Coerce supports T
func Coercible[T any]() bool {
	var out T
	switch any(&out).(type) {
	case *string, *int, *int64, *int16, *float32, *float64, *bool, *rune,
		*[]string, *[]int, *[]int64, *[]int16, *[]float32, *[]float64:
		return true
	}
	return false
}

func parseInt(token string) (int, error) {
	n, err := strconv.ParseInt(token, 10, 32)
	return int(n), err
}

func splitArray(token string) []string {
	parts := strings.Split(token, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func coerceArray[E any](token string, parse func(string) (E, error)) ([]E, error) {
	parts := splitArray(token)
	out := make([]E, 0, len(parts))
	for _, part := range parts {
		v, err := parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func coercionError(token, target string, cause error) *derror.Error {
	msg := "cannot convert " + strconv.Quote(token) + " to " + target
	var err *derror.Error
	if cause != nil {
		err = derror.Wrap(cause, msg)
	} else {
		err = derror.New(msg)
	}
	return err.WithCode(derror.CodeCoercion).
		WithDetail("token", token).
		WithDetail("type", target)
}
