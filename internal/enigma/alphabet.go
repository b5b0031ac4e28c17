package enigma

import "unicode"

// DefaultAlphabet is the 26 upper-case Latin letters used by the historical machines.
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Alphabet is an ordered set of distinct symbols. The k-th symbol has index k.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// NewAlphabet returns the alphabet made of the symbols in chars, in order.
// Parentheses and whitespace are reserved for cycle notation and rejected.
func NewAlphabet(chars string) (*Alphabet, error) {
	symbols := []rune(chars)
	if len(symbols) == 0 {
		return nil, errorf(KindInvalidAlphabet, "alphabet is empty")
	}

	index := make(map[rune]int, len(symbols))
	for i, r := range symbols {
		if r == '(' || r == ')' || unicode.IsSpace(r) {
			return nil, errorf(KindInvalidAlphabet, "symbol %q is reserved", r)
		}
		if _, dup := index[r]; dup {
			return nil, errorf(KindInvalidAlphabet, "symbol %q appears more than once", r)
		}
		index[r] = i
	}

	return &Alphabet{symbols: symbols, index: index}, nil
}

// MustAlphabet is like NewAlphabet but panics on error. Meant for constants.
func MustAlphabet(chars string) *Alphabet {
	a, err := NewAlphabet(chars)
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns the number of symbols.
func (a *Alphabet) Size() int { return len(a.symbols) }

// Contains reports whether r is one of the symbols.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Symbol returns the symbol at index i modulo Size.
func (a *Alphabet) Symbol(i int) rune {
	return a.symbols[a.wrap(i)]
}

// Index returns the index of r. A symbol outside the alphabet is an error.
func (a *Alphabet) Index(r rune) (int, error) {
	i, ok := a.index[r]
	if !ok {
		return 0, errorf(KindSetting, "symbol %q is not in the alphabet", r)
	}
	return i, nil
}

// String returns the symbols in order.
func (a *Alphabet) String() string { return string(a.symbols) }

// wrap is the mathematical modulo, non-negative for negative p.
func (a *Alphabet) wrap(p int) int {
	n := len(a.symbols)
	r := p % n
	if r < 0 {
		r += n
	}
	return r
}
