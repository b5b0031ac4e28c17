package enigma

import "strings"

// Step describes one converted character, for tracing.
type Step struct {
	// Settings are the rotor settings after stepping, reflector excluded.
	Settings string
	Input    rune
	Plugged  rune
	Output   rune
}

// TraceFunc receives every converted character. A nil TraceFunc is ignored.
type TraceFunc func(Step)

// Machine is a rotor cipher machine: numRotors slots, the leftmost holding a
// reflector, pawls of which drive the rotating rotors, and a plugboard.
// Rotors are borrowed from a Catalog.
type Machine struct {
	alphabet  *Alphabet
	numRotors int
	pawls     int
	catalog   *Catalog
	plugboard *Permutation

	slots []RotorID
	// advance is scratch space for stepping, sized numRotors.
	advance []bool
}

// NewMachine returns a machine with numRotors slots and pawls pawls whose
// rotors come from catalog. 1 < numRotors and 0 <= pawls < numRotors.
func NewMachine(a *Alphabet, numRotors, pawls int, catalog *Catalog) (*Machine, error) {
	if a == nil || catalog == nil {
		return nil, errorf(KindInvalidConfig, "machine needs an alphabet and a rotor catalog")
	}
	if numRotors <= 1 {
		return nil, errorf(KindInvalidConfig, "need more than one rotor slot, got %d", numRotors)
	}
	if pawls < 0 || pawls >= numRotors {
		return nil, errorf(KindInvalidConfig, "pawl count %d must be in [0, %d)", pawls, numRotors)
	}
	if catalog.Alphabet().Size() != a.Size() {
		return nil, errorf(KindInvalidConfig, "catalog alphabet does not match machine alphabet")
	}

	return &Machine{
		alphabet:  a,
		numRotors: numRotors,
		pawls:     pawls,
		catalog:   catalog,
		plugboard: identity(a),
		advance:   make([]bool, numRotors),
	}, nil
}

func (m *Machine) NumRotors() int          { return m.numRotors }
func (m *Machine) NumPawls() int           { return m.pawls }
func (m *Machine) Alphabet() *Alphabet     { return m.alphabet }
func (m *Machine) Catalog() *Catalog       { return m.catalog }
func (m *Machine) Plugboard() *Permutation { return m.plugboard }

// Rotor returns the rotor in slot k: 0 is the reflector, NumRotors()-1 the
// fast rotor. It returns nil when no rotors are inserted.
func (m *Machine) Rotor(k int) *Rotor {
	if k < 0 || k >= len(m.slots) {
		return nil
	}
	return m.catalog.Rotor(m.slots[k])
}

// InAllRotors reports whether the catalog has a rotor called name.
func (m *Machine) InAllRotors(name string) bool {
	_, ok := m.catalog.Lookup(name)
	return ok
}

// ResetRotors clears the slot assignment.
func (m *Machine) ResetRotors() {
	m.slots = nil
}

// InsertRotors fills the slots with the named rotors, names[0] being the
// reflector. Inserted rotors start at setting 0 with ring 0.
func (m *Machine) InsertRotors(names []string) error {
	if len(names) != m.numRotors {
		return errorf(KindRotorAssignment, "need %d rotors, got %d", m.numRotors, len(names))
	}

	slots := make([]RotorID, 0, m.numRotors)
	used := make(map[RotorID]bool, m.numRotors)
	moving := 0
	for i, name := range names {
		id, ok := m.catalog.Lookup(name)
		if !ok {
			return errorf(KindRotorAssignment, "unknown rotor %s", name)
		}
		if used[id] {
			return errorf(KindRotorAssignment, "rotor %s is used more than once", name)
		}
		used[id] = true

		r := m.catalog.Rotor(id)
		switch {
		case i == 0 && !r.Reflecting():
			return errorf(KindRotorAssignment, "first rotor %s is not a reflector", name)
		case i > 0 && r.Reflecting():
			return errorf(KindRotorAssignment, "reflector %s must be in the first slot", name)
		}
		if r.Rotates() {
			moving++
		}
		slots = append(slots, id)
	}
	if moving != m.pawls {
		return errorf(KindRotorAssignment, "%d rotating rotors for %d pawls", moving, m.pawls)
	}

	for _, id := range slots {
		m.catalog.Rotor(id).reset()
	}
	m.slots = slots
	return nil
}

// SetRotors sets the non-reflector rotors, left to right, from setting, which
// must hold NumRotors()-1 alphabet symbols.
func (m *Machine) SetRotors(setting string) error {
	return m.setEach(setting, "setting", (*Rotor).SetSymbol)
}

// SetRings sets the ring offsets of the non-reflector rotors the same way.
func (m *Machine) SetRings(rings string) error {
	return m.setEach(rings, "ring setting", (*Rotor).SetRingSymbol)
}

func (m *Machine) setEach(s, what string, set func(*Rotor, rune) error) error {
	if m.slots == nil {
		return errorf(KindRotorAssignment, "no rotors inserted")
	}
	symbols := []rune(s)
	if len(symbols) != m.numRotors-1 {
		return errorf(KindSetting, "%s %q has %d symbols, need %d", what, s, len(symbols), m.numRotors-1)
	}
	for _, c := range symbols {
		if !m.alphabet.Contains(c) {
			return errorf(KindSetting, "%s %q: symbol %q is not in the alphabet", what, s, c)
		}
	}
	for i, c := range symbols {
		if err := set(m.Rotor(i+1), c); err != nil {
			return err
		}
	}
	return nil
}

// SetPlugboard replaces the plugboard. It must be an involution over the
// machine's alphabet.
func (m *Machine) SetPlugboard(p *Permutation) error {
	if p.Size() != m.alphabet.Size() {
		return errorf(KindMalformedPermutation, "plugboard is over %d symbols, alphabet has %d", p.Size(), m.alphabet.Size())
	}
	if !p.Involution() {
		return errorf(KindMalformedPermutation, "plugboard %q must pair symbols", p)
	}
	m.plugboard = p
	return nil
}

// Settings returns the current settings of the non-reflector rotors as symbols.
func (m *Machine) Settings() string {
	var b strings.Builder
	for k := 1; k < len(m.slots); k++ {
		b.WriteRune(m.alphabet.Symbol(m.Rotor(k).Setting()))
	}
	return b.String()
}

// Convert steps the machine and returns the encoding of index c.
func (m *Machine) Convert(c int) (int, error) {
	return m.ConvertTraced(c, nil)
}

// ConvertTraced is Convert reporting the step to trace.
func (m *Machine) ConvertTraced(c int, trace TraceFunc) (int, error) {
	if m.slots == nil {
		return 0, errorf(KindRotorAssignment, "no rotors inserted")
	}
	c = m.alphabet.wrap(c)

	m.rotateRotors()

	plugged := m.plugboard.Permute(c)
	out := m.plugboard.Permute(m.applyRotors(plugged))

	if trace != nil {
		trace(Step{
			Settings: m.Settings(),
			Input:    m.alphabet.Symbol(c),
			Plugged:  m.alphabet.Symbol(plugged),
			Output:   m.alphabet.Symbol(out),
		})
	}
	return out, nil
}

// ConvertMessage converts every symbol of msg in turn. Settings carry over
// from one symbol to the next.
func (m *Machine) ConvertMessage(msg string, trace TraceFunc) (string, error) {
	var b strings.Builder
	b.Grow(len(msg))
	for _, r := range msg {
		c, err := m.alphabet.Index(r)
		if err != nil {
			return "", err
		}
		out, err := m.ConvertTraced(c, trace)
		if err != nil {
			return "", err
		}
		b.WriteRune(m.alphabet.Symbol(out))
	}
	return b.String(), nil
}

// rotateRotors decides every rotor's movement from the pre-step state and
// then moves them, so no rotor advances twice in one step.
//
// The fast rotor always advances. A rotating rotor advances when its right
// neighbour is at a notch; the pawl that pushes it also pushes that
// neighbour, which is how a middle rotor double-steps.
func (m *Machine) rotateRotors() {
	last := m.numRotors - 1
	for i := range m.advance {
		m.advance[i] = false
	}
	m.advance[last] = m.Rotor(last).Rotates()
	for i := 1; i < last; i++ {
		if m.Rotor(i).Rotates() && m.Rotor(i+1).AtNotch() {
			m.advance[i] = true
			m.advance[i+1] = true
		}
	}
	for i := 1; i <= last; i++ {
		if m.advance[i] {
			m.Rotor(i).Advance()
		}
	}
}

// applyRotors sends c from the fast rotor to the reflector and back.
func (m *Machine) applyRotors(c int) int {
	for i := m.numRotors - 1; i >= 0; i-- {
		c = m.Rotor(i).Permute(c)
	}
	for i := 1; i < m.numRotors; i++ {
		c = m.Rotor(i).Invert(c)
	}
	return c
}
