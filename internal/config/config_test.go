package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollux/enigma/internal/enigma"
)

const hiawatha = "FROMHISSHOULDERHIAWATHA"

func encrypt(t *testing.T, m *enigma.Machine, rotors []string, setting, plugboard, msg string) string {
	t.Helper()

	require.NoError(t, m.InsertRotors(rotors))
	require.NoError(t, m.SetRotors(setting))
	p, err := enigma.NewPermutation(plugboard, m.Alphabet())
	require.NoError(t, err)
	require.NoError(t, m.SetPlugboard(p))

	out, err := m.ConvertMessage(msg, nil)
	require.NoError(t, err)
	return out
}

func TestParseTextDefaultConf(t *testing.T) {
	t.Parallel()

	cfg, err := NewFileLoader(filepath.Join("testdata", "default.conf")).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, enigma.DefaultAlphabet, cfg.Alphabet)
	assert.Equal(t, 5, cfg.Slots)
	assert.Equal(t, 3, cfg.Pawls)
	require.Len(t, cfg.Rotors, 9)

	assert.Equal(t, RotorSpec{
		Name:   "B",
		Type:   RotorTypeReflector,
		Cycles: "(AE) (BN) (CK) (DQ) (FU) (GY) (HW) (IJ) (LO) (MP) (RX) (SZ) (TV)",
	}, cfg.Rotors[0])
	assert.Equal(t, RotorTypeFixed, cfg.Rotors[2].Type)
	assert.Equal(t, RotorSpec{
		Name:    "I",
		Type:    RotorTypeMoving,
		Notches: "Q",
		Cycles:  "(AELTPHQXRU) (BKNW) (CMOY) (DFG) (IV) (JZ) (S)",
	}, cfg.Rotors[4])

	m, err := cfg.Build()
	require.NoError(t, err)
	got := encrypt(t, m, []string{"B", "Beta", "III", "IV", "I"}, "AXLE", "(HQ) (EX) (IP) (TR) (BY)", hiawatha)
	assert.Equal(t, "QVPQSOKOILPUBKJZPISFXDW", got)
}

func TestPresetMatchesTextConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Preset("m4")
	require.NoError(t, err)
	m, err := cfg.Build()
	require.NoError(t, err)

	got := encrypt(t, m, []string{"B", "Beta", "III", "IV", "I"}, "AXLE", "(HQ) (EX) (IP) (TR) (BY)", hiawatha)
	assert.Equal(t, "QVPQSOKOILPUBKJZPISFXDW", got)
}

func TestPresets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"m3", "m4"}, PresetNames())

	cfg, err := Preset("m3")
	require.NoError(t, err)
	m, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumRotors())
	for _, name := range []string{"A", "B", "C", "I", "V", "VIII"} {
		assert.True(t, m.InAllRotors(name), name)
	}
	assert.False(t, m.InAllRotors("Beta"))

	got := encrypt(t, m, []string{"B", "I", "II", "III"}, "AAA", "", "AAAAA")
	assert.Equal(t, "BDZGO", got)

	// Presets are independent copies.
	cfg.Rotors = nil
	again, err := Preset("m3")
	require.NoError(t, err)
	assert.NotEmpty(t, again.Rotors)

	_, err = Preset("m5")
	assert.ErrorIs(t, err, enigma.ErrInvalidConfig)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	cfg, err := NewFileLoader(filepath.Join("testdata", "m3.yaml")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Rotors, 4)
	assert.Equal(t, "EKMFLGDQVZNTOWYHXUSPAIBRCJ", cfg.Rotors[1].Wiring)

	m, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, "BDZGO", encrypt(t, m, []string{"B", "I", "II", "III"}, "AAA", "", "AAAAA"))
}

func TestLoadYAMLValidation(t *testing.T) {
	t.Parallel()

	_, err := NewFileLoader(filepath.Join("testdata", "bad.yaml")).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, enigma.ErrInvalidConfig)
	for _, field := range []string{"slots", "pawls", "name", "type"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg, err := Preset("m4")
	require.NoError(t, err)

	data, err := MarshalYAML(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: fixed")

	back, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestParseYAMLUnknownField(t *testing.T) {
	t.Parallel()

	_, err := ParseYAML([]byte("alphabet: AB\nslots: 2\npawls: 1\ncolour: red\n"))
	assert.ErrorIs(t, err, enigma.ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.conf")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileLoader(filepath.Join("testdata", "m3.yaml")).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTextErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: enigma.ErrInvalidConfig},
		{name: "truncated", input: "ABCD\n3\n", wantErr: enigma.ErrInvalidConfig},
		{name: "bad slot count", input: "ABCD\nthree 1\n", wantErr: enigma.ErrInvalidConfig},
		{name: "bad pawl count", input: "ABCD\n3 one\n", wantErr: enigma.ErrInvalidConfig},
		{name: "rotor without type", input: "ABCD\n3 1\nR1\n", wantErr: enigma.ErrInvalidConfig},
		{name: "unknown type", input: "ABCD\n3 1\nR1 X (AB)\n", wantErr: enigma.ErrInvalidConfig},
		{name: "cycle as name", input: "ABCD\n3 1\n(AB) R\n", wantErr: enigma.ErrInvalidConfig},
		{name: "unbalanced cycle", input: "ABCD\n3 1\nR1 R (AB) (CD\n", wantErr: enigma.ErrMalformedPermutation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseText(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseTextLongLine(t *testing.T) {
	t.Parallel()

	input := "ABCD\n3 1\nR R (AB) (CD)" + strings.Repeat(" ", 70000) + "\nF N (ABC)\nM MA (AD)\n"
	cfg, err := ParseText(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cfg.Rotors, 3)
	assert.Equal(t, "(AB) (CD)", cfg.Rotors[0].Cycles)
	assert.Equal(t, "A", cfg.Rotors[2].Notches)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			Alphabet: "ABCD",
			Slots:    3,
			Pawls:    1,
			Rotors: []RotorSpec{
				{Name: "R", Type: RotorTypeReflector, Cycles: "(AB) (CD)"},
				{Name: "F", Type: RotorTypeFixed, Cycles: "(ABC)"},
				{Name: "M", Type: RotorTypeMoving, Notches: "A", Cycles: "(AD)"},
			},
		}
	}

	m, err := base().Build()
	require.NoError(t, err)
	require.NoError(t, m.InsertRotors([]string{"R", "F", "M"}))

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "reflector not a derangement", mutate: func(c *Config) { c.Rotors[0].Cycles = "(AB)" }, wantErr: enigma.ErrInvalidReflector},
		{name: "malformed cycles", mutate: func(c *Config) { c.Rotors[1].Cycles = "(AB), (C)" }, wantErr: enigma.ErrMalformedPermutation},
		{name: "duplicate rotor", mutate: func(c *Config) { c.Rotors[2].Name = "F" }, wantErr: enigma.ErrInvalidConfig},
		{name: "duplicate alphabet symbol", mutate: func(c *Config) { c.Alphabet = "ABCA" }, wantErr: enigma.ErrInvalidAlphabet},
		{name: "notch outside alphabet", mutate: func(c *Config) { c.Rotors[2].Notches = "Z" }, wantErr: enigma.ErrInvalidConfig},
		{name: "notches on fixed rotor", mutate: func(c *Config) { c.Rotors[1].Notches = "A" }, wantErr: enigma.ErrInvalidConfig},
		{name: "cycles and wiring", mutate: func(c *Config) { c.Rotors[1].Wiring = "BCDA" }, wantErr: enigma.ErrInvalidConfig},
		{name: "too many pawls", mutate: func(c *Config) { c.Pawls = 3 }, wantErr: enigma.ErrInvalidConfig},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			_, err := cfg.Build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
