package observer

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrInvalidValue matches every *CoercionError via errors.Is.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnsupportedType is the cause for inputs that have no integer reading.
	ErrUnsupportedType = errors.New("unsupported type")
)

// CoercionError reports an input that could not be turned into an integer.
type CoercionError struct {
	Input any
	Err   error
}

func (e *CoercionError) Error() string {
	switch s := e.Input.(type) {
	case string:
		return fmt.Sprintf("invalid literal for integer with base 10: %q: %v", s, e.Err)
	case []byte:
		return fmt.Sprintf("invalid literal for integer with base 10: %q: %v", s, e.Err)
	}
	return fmt.Sprintf("cannot convert %T(%v) to integer: %v", e.Input, e.Input, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidValue) hold for every coercion failure.
func (e *CoercionError) Is(target error) bool {
	return target == ErrInvalidValue
}

// maxIntFloat is 2^63 (or 2^31), the first float above the int range.
var maxIntFloat = math.Ldexp(1, strconv.IntSize-1)

// Coerce converts input to an int.
//
// Integers of any width, bools (0 or 1) and floats are accepted; floats are
// truncated toward zero. Strings and byte slices are trimmed and parsed as
// base-10 integers with an optional sign and single underscores between
// digits. Anything else fails.
func Coerce(input any) (int, error) {
	if input == nil {
		return 0, &CoercionError{Input: input, Err: ErrUnsupportedType}
	}

	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if int64(int(n)) != n {
			return 0, &CoercionError{Input: input, Err: strconv.ErrRange}
		}
		return int(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > uint64(math.MaxInt) {
			return 0, &CoercionError{Input: input, Err: strconv.ErrRange}
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		return coerceFloat(input, rv.Float())
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return coerceString(input, rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return coerceString(input, string(rv.Bytes()))
		}
	}
	return 0, &CoercionError{Input: input, Err: ErrUnsupportedType}
}

func coerceFloat(input any, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &CoercionError{Input: input, Err: strconv.ErrRange}
	}
	t := math.Trunc(f)
	if t >= maxIntFloat || t < -maxIntFloat {
		return 0, &CoercionError{Input: input, Err: strconv.ErrRange}
	}
	return int(t), nil
}

func coerceString(input any, s string) (int, error) {
	digits, ok := stripSeparators(strings.TrimSpace(s))
	if !ok {
		return 0, &CoercionError{Input: input, Err: strconv.ErrSyntax}
	}
	n, err := strconv.ParseInt(digits, 10, strconv.IntSize)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &CoercionError{Input: input, Err: err}
	}
	return int(n), nil
}

// stripSeparators removes single underscores that sit between two digits,
// as in "1_000". Any other underscore makes the literal invalid.
func stripSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	isDigit := func(i int) bool { return i >= 0 && i < len(s) && s[i] >= '0' && s[i] <= '9' }
	for i := range len(s) {
		if s[i] == '_' && (!isDigit(i-1) || !isDigit(i+1)) {
			return "", false
		}
	}
	return strings.ReplaceAll(s, "_", ""), true
}
