package enigma

import "strings"

// RotorKind is the closed set of rotor variants.
type RotorKind int

const (
	// Reflector never moves, sits in slot 0 and folds the signal back.
	Reflector RotorKind = iota
	// FixedRotor never moves.
	FixedRotor
	// MovingRotor advances when stepped and carries notches.
	MovingRotor
)

func (k RotorKind) String() string {
	switch k {
	case Reflector:
		return "reflector"
	case FixedRotor:
		return "fixed"
	case MovingRotor:
		return "moving"
	default:
		return "unknown"
	}
}

// Rotor is a named wiring mounted at a rotational setting. The name, kind,
// wiring and notches never change; setting and ring are the mutable position
// state.
type Rotor struct {
	name    string
	kind    RotorKind
	perm    *Permutation
	notches []bool // indexed by setting; nil unless kind == MovingRotor

	setting int
	ring    int
}

// NewReflector returns a reflector. Its wiring must be a derangement.
func NewReflector(name string, perm *Permutation) (Rotor, error) {
	if !perm.Derangement() {
		return Rotor{}, errorf(KindInvalidReflector, "reflector %s: wiring %q has a fixed point", name, perm)
	}
	return Rotor{name: name, kind: Reflector, perm: perm}, nil
}

// NewFixedRotor returns a rotor that never rotates.
func NewFixedRotor(name string, perm *Permutation) Rotor {
	return Rotor{name: name, kind: FixedRotor, perm: perm}
}

// NewMovingRotor returns a rotating rotor whose notches are at the symbols in notches.
func NewMovingRotor(name string, perm *Permutation, notches string) (Rotor, error) {
	a := perm.Alphabet()
	marks := make([]bool, a.Size())
	for _, r := range notches {
		i, ok := a.index[r]
		if !ok {
			return Rotor{}, errorf(KindInvalidConfig, "rotor %s: notch %q is not in the alphabet", name, r)
		}
		marks[i] = true
	}
	return Rotor{name: name, kind: MovingRotor, perm: perm, notches: marks}, nil
}

func (r *Rotor) Name() string              { return r.name }
func (r *Rotor) Kind() RotorKind           { return r.kind }
func (r *Rotor) Permutation() *Permutation { return r.perm }
func (r *Rotor) Alphabet() *Alphabet       { return r.perm.Alphabet() }
func (r *Rotor) Size() int                 { return r.perm.Size() }
func (r *Rotor) Setting() int              { return r.setting }
func (r *Rotor) Ring() int                 { return r.ring }

// Rotates reports whether the rotor can be advanced.
func (r *Rotor) Rotates() bool {
	switch r.kind {
	case MovingRotor:
		return true
	case Reflector, FixedRotor:
		return false
	default:
		return false
	}
}

// Reflecting reports whether the rotor may sit in the reflector slot.
func (r *Rotor) Reflecting() bool {
	switch r.kind {
	case Reflector:
		return true
	case FixedRotor, MovingRotor:
		return false
	default:
		return false
	}
}

// Notches returns the notch symbols in alphabet order.
func (r *Rotor) Notches() string {
	var b strings.Builder
	for i, marked := range r.notches {
		if marked {
			b.WriteRune(r.Alphabet().Symbol(i))
		}
	}
	return b.String()
}

// Set assigns the setting directly, modulo the alphabet size.
func (r *Rotor) Set(posn int) error {
	posn = r.Alphabet().wrap(posn)
	if r.kind == Reflector && posn != 0 {
		return errorf(KindSetting, "reflector %s cannot be set to %d", r.name, posn)
	}
	r.setting = posn
	return nil
}

// SetSymbol assigns the setting to the index of c.
func (r *Rotor) SetSymbol(c rune) error {
	i, err := r.Alphabet().Index(c)
	if err != nil {
		return err
	}
	return r.Set(i)
}

// SetRing assigns the ring offset (Ringstellung). Reflectors have no ring.
func (r *Rotor) SetRing(posn int) error {
	posn = r.Alphabet().wrap(posn)
	if r.kind == Reflector && posn != 0 {
		return errorf(KindSetting, "reflector %s has no ring setting", r.name)
	}
	r.ring = posn
	return nil
}

// SetRingSymbol assigns the ring offset to the index of c.
func (r *Rotor) SetRingSymbol(c rune) error {
	i, err := r.Alphabet().Index(c)
	if err != nil {
		return err
	}
	return r.SetRing(i)
}

// AtNotch reports whether the current setting is one of the notch positions.
func (r *Rotor) AtNotch() bool {
	switch r.kind {
	case MovingRotor:
		return r.notches[r.setting]
	case Reflector, FixedRotor:
		return false
	default:
		return false
	}
}

// Advance moves a moving rotor one position. Other kinds stay put.
func (r *Rotor) Advance() {
	switch r.kind {
	case MovingRotor:
		r.setting = r.Alphabet().wrap(r.setting + 1)
	case Reflector, FixedRotor:
	}
}

// Permute carries a signal entering the rotor at contact p through the wiring
// at the current offset, returning the exit contact.
func (r *Rotor) Permute(p int) int {
	off := r.setting - r.ring
	return r.Alphabet().wrap(r.perm.Permute(p+off) - off)
}

// Invert is Permute for a signal travelling the other way.
func (r *Rotor) Invert(e int) int {
	off := r.setting - r.ring
	return r.Alphabet().wrap(r.perm.Invert(e+off) - off)
}

// reset returns the rotor to setting 0, ring 0.
func (r *Rotor) reset() {
	r.setting = 0
	r.ring = 0
}
