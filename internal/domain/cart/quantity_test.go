package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{42, 42},
		{99, 99},
		{100, 99},
		{1 << 30, 99},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampQuantity(tt.in), "ClampQuantity(%d)", tt.in)
	}
}

func TestClampQuantity_AlwaysInRange(t *testing.T) {
	for q := -1000; q <= 1000; q++ {
		got := ClampQuantity(q)
		require.GreaterOrEqual(t, got, MinQuantity)
		require.LessOrEqual(t, got, MaxQuantity)
	}
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, 1, ClampFloat(math.NaN()))
	assert.Equal(t, 1, ClampFloat(0))
	assert.Equal(t, 1, ClampFloat(0.5))
	assert.Equal(t, 3, ClampFloat(3.9))
	assert.Equal(t, 99, ClampFloat(math.Inf(1)))
	assert.Equal(t, 1, ClampFloat(math.Inf(-1)))
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int
	}{
		{"integer", `{"q": 3}`, 3},
		{"float truncated", `{"q": 2.7}`, 2},
		{"zero", `{"q": 0}`, 1},
		{"negative", `{"q": -4}`, 1},
		{"above ceiling", `{"q": 250}`, 99},
		{"numeric string", `{"q": "7"}`, 7},
		{"padded string", `{"q": " 12 "}`, 12},
		{"empty string", `{"q": ""}`, 1},
		{"word", `{"q": "lots"}`, 1},
		{"true", `{"q": true}`, 1},
		{"false", `{"q": false}`, 1},
		{"null", `{"q": null}`, 1},
		{"object", `{"q": {"n": 5}}`, 1},
		{"array", `{"q": [5]}`, 1},
		{"missing", `{}`, 1},
		{"hex string", `{"q": "0x10"}`, 16},
		{"upper hex string", `{"q": "0X0a"}`, 10},
		{"octal string", `{"q": "0o17"}`, 15},
		{"binary string", `{"q": "0b101"}`, 5},
		{"huge hex string", `{"q": "0xffffffffffffffffffff"}`, 99},
		{"signed hex string", `{"q": "-0x10"}`, 1},
		{"hex float string", `{"q": "0x1p4"}`, 1},
		{"bad hex digits", `{"q": "0xzz"}`, 1},
		{"exponent string", `{"q": "2e1"}`, 20},
		{"infinity string", `{"q": "Infinity"}`, 99},
		{"lowercase inf", `{"q": "inf"}`, 1},
		{"nan string", `{"q": "NaN"}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Q Quantity `json:"q"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.want, v.Q.Int())
		})
	}
}
