package enigma

// RotorID is a handle into a Catalog.
type RotorID int

// Catalog owns every rotor available to a machine. Machines hold RotorIDs into
// it rather than rotors of their own, so one catalog can back any number of
// successive rotor assignments.
type Catalog struct {
	alphabet *Alphabet
	rotors   []Rotor
	byName   map[string]RotorID
}

// NewCatalog returns an empty catalog over alphabet a.
func NewCatalog(a *Alphabet) *Catalog {
	return &Catalog{alphabet: a, byName: make(map[string]RotorID)}
}

// Add stores r and returns its handle. Names are unique and the rotor must be
// wired over the catalog's alphabet.
func (c *Catalog) Add(r Rotor) (RotorID, error) {
	if r.name == "" {
		return 0, errorf(KindInvalidConfig, "rotor has no name")
	}
	if _, dup := c.byName[r.name]; dup {
		return 0, errorf(KindInvalidConfig, "rotor %s is defined more than once", r.name)
	}
	if r.Size() != c.alphabet.Size() {
		return 0, errorf(KindInvalidConfig, "rotor %s is wired for %d symbols, alphabet has %d",
			r.name, r.Size(), c.alphabet.Size())
	}

	id := RotorID(len(c.rotors))
	c.rotors = append(c.rotors, r)
	c.byName[r.name] = id
	return id, nil
}

// Lookup returns the handle of the rotor called name.
func (c *Catalog) Lookup(name string) (RotorID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Rotor returns the rotor behind id. The pointer stays valid until the next Add.
func (c *Catalog) Rotor(id RotorID) *Rotor { return &c.rotors[id] }

// Len returns the number of rotors.
func (c *Catalog) Len() int { return len(c.rotors) }

// Alphabet returns the catalog's alphabet.
func (c *Catalog) Alphabet() *Alphabet { return c.alphabet }

// Names returns rotor names in insertion order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.rotors))
	for i := range c.rotors {
		names[i] = c.rotors[i].name
	}
	return names
}
