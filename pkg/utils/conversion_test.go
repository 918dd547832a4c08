package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	testCases := []struct {
		name string
		in   interface{}
		want bool
	}{
		{"nil", nil, false},
		{"bool true", true, true},
		{"int nonzero", 1, true},
		{"int zero", 0, false},
		{"float nonzero", 1.0, true},
		{"string yes", "yes", true},
		{"string on", "on", true},
		{"string 1", "1", true},
		{"string false", "false", false},
		{"db bytes", []byte("1"), true},
		{"garbage", "banana", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToBool(tc.in))
		})
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 42, ToInt(42))
	assert.Equal(t, 42, ToInt(float64(42)), "JSON numbers decode as float64")
	assert.Equal(t, 42, ToInt(json.Number("42")))
	assert.Equal(t, 42, ToInt(" 42 "))
	assert.Equal(t, 0, ToInt("not a number"))
	assert.Equal(t, 0, ToInt(nil))
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 2.5, ToFloat64(2.5))
	assert.Equal(t, 2.0, ToFloat64(2))
	assert.Equal(t, 2.5, ToFloat64("2.5"))
	assert.Equal(t, 2.5, ToFloat64(json.Number("2.5")))
	assert.Equal(t, 0.0, ToFloat64("x"))
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	assert.True(t, IsValidUUID(a))
	assert.True(t, IsValidUUID(b))
	assert.NotEqual(t, a, b)
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("3b241101-e2bb-4255-8caf-4136c566a962"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}
