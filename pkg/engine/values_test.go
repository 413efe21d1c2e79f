package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/preetimant/coursesensei/pkg/engine"
)

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
		text  string
	}{
		{"20%", 20, true, "20"},
		{"50.5%", 50.5, true, "50.5"},
		{"weight 30 %", 30, true, "30"},
		{"12.%", 12, true, "12"},
		{"abc", 0, false, ""},
		{"NA", 0, false, ""},
		{"", 0, false, ""},
	}
	for _, tt := range tests {
		p := engine.ParsePercentage(tt.in)
		assert.Equal(t, tt.valid, p.Valid, tt.in)
		if tt.valid {
			assert.Equal(t, tt.want, p.Value, tt.in)
			assert.Equal(t, tt.text, p.String(), tt.in)
		}
	}
}

func TestParseOrdinal(t *testing.T) {
	assert.Equal(t, engine.Ordinal{Raw: "10", N: 10, Valid: true}, engine.ParseOrdinal(" 10 "))
	assert.Equal(t, engine.Ordinal{Raw: "Intro"}, engine.ParseOrdinal("Intro"))
	assert.False(t, engine.ParseOrdinal("2.5").Valid)
}

func TestValidInput(t *testing.T) {
	valid := []string{"Databases 101", "intro-to-ai", "Économie", "data_science", "a"}
	invalid := []string{"", "C++", "drop;table", "<b>", "this name is far too long to be a plausible course title ok"}

	for _, s := range valid {
		assert.True(t, engine.ValidInput(s), s)
	}
	for _, s := range invalid {
		assert.False(t, engine.ValidInput(s), s)
	}
}
