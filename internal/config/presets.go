package config

import (
	"fmt"
	"sort"

	"github.com/pollux/enigma/internal/enigma"
)

type wiring struct {
	name    string
	wiring  string
	notches string
}

// Rotor wirings of the Wehrmacht and Kriegsmarine machines, listed as the
// image of A..Z at setting A.
var rotorWirings = []wiring{
	{name: "I", wiring: "EKMFLGDQVZNTOWYHXUSPAIBRCJ", notches: "Q"},
	{name: "II", wiring: "AJDKSIRUXBLHWTMCQGZNPYFVOE", notches: "E"},
	{name: "III", wiring: "BDFHJLCPRTXVZNYEIWGAKMUSQO", notches: "V"},
	{name: "IV", wiring: "ESOVPZJAYQUIRHXLNFTGKDCMWB", notches: "J"},
	{name: "V", wiring: "VZBRGITYUPSDNHLXAWMJQOFECK", notches: "Z"},
	{name: "VI", wiring: "JPGVOUMFYQBENHZRDKASXLICTW", notches: "ZM"},
	{name: "VII", wiring: "NZJHGRCXMYSWBOUFAIVLPEKQDT", notches: "ZM"},
	{name: "VIII", wiring: "FKQHTLXOCBJSPDZRAMEWNIUYGV", notches: "ZM"},
}

var reflectors = []wiring{
	{name: "A", wiring: "EJMZALYXVBWFCRQUONTSPIKHGD"},
	{name: "B", wiring: "YRUHQSLDPXNGOKMIEBFZCWVJAT"},
	{name: "C", wiring: "FVPJIAOYEDRZXWGCTKUQSBNMHL"},
}

// Thin reflectors and the fourth-slot rotors of the M4.
var (
	thinReflectors = []wiring{
		{name: "B", wiring: "ENKQAUYWJICOPBLMDXZVFTHRGS"},
		{name: "C", wiring: "RDOBJNTKVEHMLFCWZAXGYIPSUQ"},
	}
	greekRotors = []wiring{
		{name: "Beta", wiring: "LEYJVCNIXWPBQMDRTAKZGFUHOS"},
		{name: "Gamma", wiring: "FSOKANUERHMBTIYCWLQPZXVGJD"},
	}
)

var presets = map[string]func() *Config{
	"m3": func() *Config {
		return newPreset(4, reflectors, nil)
	},
	"m4": func() *Config {
		return newPreset(5, thinReflectors, greekRotors)
	},
}

// Preset returns a copy of a built-in machine description: "m3" (three
// rotors from I..VIII under reflector A, B or C) or "m4" (a thin reflector,
// Beta or Gamma, then three of I..VIII).
func Preset(name string) (*Config, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q, available: %v", enigma.ErrInvalidConfig, name, PresetNames())
	}
	return fn(), nil
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newPreset(slots int, refl, fixed []wiring) *Config {
	cfg := &Config{Alphabet: enigma.DefaultAlphabet, Slots: slots, Pawls: 3}
	for _, w := range refl {
		cfg.Rotors = append(cfg.Rotors, RotorSpec{Name: w.name, Type: RotorTypeReflector, Wiring: w.wiring})
	}
	for _, w := range fixed {
		cfg.Rotors = append(cfg.Rotors, RotorSpec{Name: w.name, Type: RotorTypeFixed, Wiring: w.wiring})
	}
	for _, w := range rotorWirings {
		cfg.Rotors = append(cfg.Rotors, RotorSpec{Name: w.name, Type: RotorTypeMoving, Notches: w.notches, Wiring: w.wiring})
	}
	return cfg
}
