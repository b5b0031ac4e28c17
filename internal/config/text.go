package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	regexp "github.com/wasilibs/go-re2"

	"github.com/pollux/enigma/internal/enigma"
)

var (
	// cycleToken is one or more complete cycles, e.g. "(AB)" or "(AB)(CD)".
	cycleToken = regexp.MustCompile(`^(\([^()\s]+\))+$`)
	// openToken starts a cycle that cycleToken did not accept.
	openToken = regexp.MustCompile(`^\(`)
	// rotorType is R (reflector), N (non-moving) or M followed by notches.
	rotorType = regexp.MustCompile(`^(?:(R)|(N)|M(\S*))$`)
)

// ParseText reads the classic description format:
//
//	ABCDEFGHIJKLMNOPQRSTUVWXYZ
//	5 3
//	I MQ      (AELTPHQXRU) (BKNW) (CMOY) (DFG) (IV) (JZ) (S)
//	...
//	B R       (AE) (BN) (CK) (DQ) (FU) (GY) (HW) (IJ) (LO) (MP)
//	          (RX) (SZ) (TV)
//
// The first line is the alphabet, then the slot and pawl counts, then rotor
// descriptions of a name, a type and any number of cycles, which may continue
// onto following lines.
func ParseText(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	header, body, _ := strings.Cut(string(data), "\n")
	cfg := &Config{Alphabet: strings.TrimSpace(header)}
	if cfg.Alphabet == "" && body == "" {
		return nil, fmt.Errorf("%w: configuration is empty", enigma.ErrInvalidConfig)
	}

	tokens := strings.Fields(body)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: configuration truncated, missing slot or pawl count", enigma.ErrInvalidConfig)
	}
	if cfg.Slots, err = strconv.Atoi(tokens[0]); err != nil {
		return nil, fmt.Errorf("%w: bad slot count %q", enigma.ErrInvalidConfig, tokens[0])
	}
	if cfg.Pawls, err = strconv.Atoi(tokens[1]); err != nil {
		return nil, fmt.Errorf("%w: bad pawl count %q", enigma.ErrInvalidConfig, tokens[1])
	}

	for rest := tokens[2:]; len(rest) > 0; {
		var spec RotorSpec
		spec, rest, err = parseRotor(rest)
		if err != nil {
			return nil, err
		}
		cfg.Rotors = append(cfg.Rotors, spec)
	}

	return cfg, nil
}

// parseRotor consumes one rotor description from the front of tokens.
func parseRotor(tokens []string) (RotorSpec, []string, error) {
	if len(tokens) < 2 {
		return RotorSpec{}, nil, fmt.Errorf("%w: bad rotor description %q", enigma.ErrInvalidConfig, strings.Join(tokens, " "))
	}
	name, kind := tokens[0], tokens[1]
	if openToken.MatchString(name) {
		return RotorSpec{}, nil, fmt.Errorf("%w: expected rotor name, found %q", enigma.ErrInvalidConfig, name)
	}

	spec := RotorSpec{Name: name}
	m := rotorType.FindStringSubmatch(kind)
	switch {
	case m == nil:
		return RotorSpec{}, nil, fmt.Errorf("%w: rotor %s has unknown type %q", enigma.ErrInvalidConfig, name, kind)
	case m[1] != "":
		spec.Type = RotorTypeReflector
	case m[2] != "":
		spec.Type = RotorTypeFixed
	default:
		spec.Type = RotorTypeMoving
		spec.Notches = m[3]
	}

	rest := tokens[2:]
	var cycles []string
	for len(rest) > 0 && cycleToken.MatchString(rest[0]) {
		cycles = append(cycles, rest[0])
		rest = rest[1:]
	}
	if len(rest) > 0 && openToken.MatchString(rest[0]) {
		return RotorSpec{}, nil, fmt.Errorf("%w: rotor %s: unbalanced cycle %q", enigma.ErrMalformedPermutation, name, rest[0])
	}
	spec.Cycles = strings.Join(cycles, " ")

	return spec, rest, nil
}
