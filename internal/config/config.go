// Package config describes a rotor machine: its alphabet, slot and pawl
// counts, and the catalog of rotors it may be loaded with. Descriptions come
// from the classic text format, from YAML, or from the built-in presets, and
// Build turns a description into a ready enigma.Machine.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/pollux/enigma/internal/enigma"
)

// RotorType enumerates the rotor variants a description may name.
type RotorType string

const (
	RotorTypeReflector RotorType = "reflector"
	RotorTypeFixed     RotorType = "fixed"
	RotorTypeMoving    RotorType = "moving"
)

// Config is the top-level machine description.
type Config struct {
	Alphabet string      `yaml:"alphabet" validate:"required"`
	Slots    int         `yaml:"slots" validate:"gt=1"`
	Pawls    int         `yaml:"pawls" validate:"gte=0,ltfield=Slots"`
	Rotors   []RotorSpec `yaml:"rotors" validate:"required,min=1,dive"`
}

// RotorSpec describes one rotor of the catalog. The wiring is given either
// in cycle notation (Cycles) or as the image of each alphabet symbol in order
// (Wiring). Empty Cycles and Wiring mean the identity wiring.
type RotorSpec struct {
	Name string    `yaml:"name" validate:"required,excludesall=()"`
	Type RotorType `yaml:"type" validate:"oneof=reflector fixed moving"`

	// Notches lists the notch symbols of a moving rotor.
	Notches string `yaml:"notches,omitempty" validate:"excluded_unless=Type moving"`

	Cycles string `yaml:"cycles,omitempty" validate:"excluded_with=Wiring"`
	Wiring string `yaml:"wiring,omitempty"`
}

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("registering validation translations: %v", err))
	}
}

// Validate checks the description's shape. Wiring-level problems, such as a
// malformed cycle, surface later from Build.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", enigma.ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(trans))
	}
	return fmt.Errorf("%w: %s", enigma.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Build validates the description and assembles the alphabet, rotor catalog
// and machine it describes.
func (c *Config) Build() (*enigma.Machine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	alpha, err := enigma.NewAlphabet(c.Alphabet)
	if err != nil {
		return nil, err
	}

	catalog := enigma.NewCatalog(alpha)
	for _, spec := range c.Rotors {
		r, err := spec.build(alpha)
		if err != nil {
			return nil, fmt.Errorf("rotor %s: %w", spec.Name, err)
		}
		if _, err := catalog.Add(r); err != nil {
			return nil, err
		}
	}

	return enigma.NewMachine(alpha, c.Slots, c.Pawls, catalog)
}

func (s RotorSpec) build(alpha *enigma.Alphabet) (enigma.Rotor, error) {
	var (
		perm *enigma.Permutation
		err  error
	)
	if s.Wiring != "" {
		perm, err = enigma.NewPermutationFromWiring(s.Wiring, alpha)
	} else {
		perm, err = enigma.NewPermutation(s.Cycles, alpha)
	}
	if err != nil {
		return enigma.Rotor{}, err
	}

	switch s.Type {
	case RotorTypeReflector:
		return enigma.NewReflector(s.Name, perm)
	case RotorTypeFixed:
		return enigma.NewFixedRotor(s.Name, perm), nil
	case RotorTypeMoving:
		return enigma.NewMovingRotor(s.Name, perm, s.Notches)
	default:
		return enigma.Rotor{}, fmt.Errorf("%w: unknown rotor type %q", enigma.ErrInvalidConfig, s.Type)
	}
}
