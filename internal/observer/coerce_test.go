package observer

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type celsius int

func TestCoerce_Accepts(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{"int", 21, 21},
		{"negative int", -3, -3},
		{"int8", int8(-8), -8},
		{"int64", int64(1 << 40), 1 << 40},
		{"uint8", uint8(200), 200},
		{"uint64", uint64(12), 12},
		{"named int", celsius(37), 37},
		{"float truncates down", 15.8, 15},
		{"negative float truncates toward zero", -15.8, -15},
		{"float32", float32(2.5), 2},
		{"whole float", 40.0, 40},
		{"true", true, 1},
		{"false", false, 0},
		{"string", "42", 42},
		{"signed string", "-42", -42},
		{"plus sign", "+7", 7},
		{"padded string", "  3\n", 3},
		{"bytes", []byte("17"), 17},
		{"digit separators", "1_000", 1000},
		{"signed separators", "-1_2_3", -123},
		{"separated bytes", []byte(" 2_5 "), 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		cause error
	}{
		{"word", "hello", strconv.ErrSyntax},
		{"empty string", "", strconv.ErrSyntax},
		{"decimal string", "3.5", strconv.ErrSyntax},
		{"hex string", "0x15", strconv.ErrSyntax},
		{"leading separator", "_1", strconv.ErrSyntax},
		{"trailing separator", "1_", strconv.ErrSyntax},
		{"doubled separator", "1__0", strconv.ErrSyntax},
		{"separator after sign", "-_1", strconv.ErrSyntax},
		{"huge string", "99999999999999999999999", strconv.ErrRange},
		{"NaN", math.NaN(), strconv.ErrRange},
		{"+Inf", math.Inf(1), strconv.ErrRange},
		{"huge float", 1e300, strconv.ErrRange},
		{"uint overflow", uint64(math.MaxUint64), strconv.ErrRange},
		{"nil", nil, ErrUnsupportedType},
		{"struct", struct{}{}, ErrUnsupportedType},
		{"int slice", []int{1}, ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.input)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidValue)
			require.ErrorIs(t, err, tt.cause)

			var cerr *CoercionError
			require.True(t, errors.As(err, &cerr))
		})
	}
}

func TestCoercionError_Message(t *testing.T) {
	_, err := Coerce("hello")
	require.EqualError(t, err, `invalid literal for integer with base 10: "hello": invalid syntax`)

	_, err = Coerce([]int{1})
	require.EqualError(t, err, "cannot convert []int([1]) to integer: unsupported type")
}
