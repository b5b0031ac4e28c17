package enigma

import (
	"strings"
	"unicode"
)

// Permutation is a fixed substitution over the indices of an Alphabet. It is
// built from cycle notation such as "(AELT) (BK) (S)"; symbols that appear in
// no cycle map to themselves. Immutable once built.
type Permutation struct {
	alphabet *Alphabet
	forward  []int
	inverse  []int
}

// NewPermutation parses cycles in a single pass. Whitespace is ignored, every
// other non-parenthesis rune must be an alphabet symbol, and no symbol may
// appear twice in the whole string.
func NewPermutation(cycles string, a *Alphabet) (*Permutation, error) {
	p := identity(a)
	seen := make([]bool, a.Size())

	var (
		open  bool
		cycle []int
	)
	for pos, r := range cycles {
		switch {
		case unicode.IsSpace(r):
		case r == '(':
			if open {
				return nil, errorf(KindMalformedPermutation, "nested '(' at offset %d in %q", pos, cycles)
			}
			open = true
			cycle = cycle[:0]
		case r == ')':
			if !open {
				return nil, errorf(KindMalformedPermutation, "unmatched ')' at offset %d in %q", pos, cycles)
			}
			if len(cycle) == 0 {
				return nil, errorf(KindMalformedPermutation, "empty cycle at offset %d in %q", pos, cycles)
			}
			p.addCycle(cycle)
			open = false
		default:
			i, ok := a.index[r]
			if !ok {
				return nil, errorf(KindMalformedPermutation, "symbol %q is not in the alphabet", r)
			}
			if !open {
				return nil, errorf(KindMalformedPermutation, "symbol %q is outside any cycle", r)
			}
			if seen[i] {
				return nil, errorf(KindMalformedPermutation, "symbol %q is repeated", r)
			}
			seen[i] = true
			cycle = append(cycle, i)
		}
	}
	if open {
		return nil, errorf(KindMalformedPermutation, "unterminated cycle in %q", cycles)
	}

	return p, nil
}

// NewPermutationFromWiring builds a permutation from a substitution string
// listing the image of each alphabet symbol in order, e.g. "EKMFLGDQ..." for
// rotor I of the historical machines.
func NewPermutationFromWiring(wiring string, a *Alphabet) (*Permutation, error) {
	images := []rune(wiring)
	if len(images) != a.Size() {
		return nil, errorf(KindMalformedPermutation,
			"wiring %q has %d symbols, alphabet has %d", wiring, len(images), a.Size())
	}

	p := identity(a)
	seen := make([]bool, a.Size())
	for i, r := range images {
		j, ok := a.index[r]
		if !ok {
			return nil, errorf(KindMalformedPermutation, "symbol %q is not in the alphabet", r)
		}
		if seen[j] {
			return nil, errorf(KindMalformedPermutation, "symbol %q is repeated", r)
		}
		seen[j] = true
		p.forward[i] = j
		p.inverse[j] = i
	}
	return p, nil
}

// MustPermutation is like NewPermutation but panics on error.
func MustPermutation(cycles string, a *Alphabet) *Permutation {
	p, err := NewPermutation(cycles, a)
	if err != nil {
		panic(err)
	}
	return p
}

func identity(a *Alphabet) *Permutation {
	p := &Permutation{
		alphabet: a,
		forward:  make([]int, a.Size()),
		inverse:  make([]int, a.Size()),
	}
	for i := range p.forward {
		p.forward[i] = i
		p.inverse[i] = i
	}
	return p
}

// addCycle wires c0 -> c1 -> ... -> cm -> c0.
func (p *Permutation) addCycle(cycle []int) {
	for k, from := range cycle {
		to := cycle[(k+1)%len(cycle)]
		p.forward[from] = to
		p.inverse[to] = from
	}
}

// Size returns the size of the alphabet permuted.
func (p *Permutation) Size() int { return p.alphabet.Size() }

// Alphabet returns the alphabet the permutation was built over.
func (p *Permutation) Alphabet() *Alphabet { return p.alphabet }

// Permute returns the image of i modulo the alphabet size.
func (p *Permutation) Permute(i int) int {
	return p.forward[p.alphabet.wrap(i)]
}

// Invert returns the preimage of c modulo the alphabet size.
func (p *Permutation) Invert(c int) int {
	return p.inverse[p.alphabet.wrap(c)]
}

// PermuteSymbol applies the permutation to a symbol. Runes outside the
// alphabet are returned unchanged.
func (p *Permutation) PermuteSymbol(r rune) rune {
	i, ok := p.alphabet.index[r]
	if !ok {
		return r
	}
	return p.alphabet.symbols[p.forward[i]]
}

// InvertSymbol applies the inverse permutation to a symbol.
func (p *Permutation) InvertSymbol(r rune) rune {
	i, ok := p.alphabet.index[r]
	if !ok {
		return r
	}
	return p.alphabet.symbols[p.inverse[i]]
}

// Derangement reports whether no index maps to itself.
func (p *Permutation) Derangement() bool {
	for i, j := range p.forward {
		if i == j {
			return false
		}
	}
	return true
}

// Involution reports whether applying the permutation twice is the identity,
// i.e. every cycle has length one or two.
func (p *Permutation) Involution() bool {
	for i, j := range p.forward {
		if p.forward[j] != i {
			return false
		}
	}
	return true
}

// String renders the permutation in cycle notation, omitting fixed points.
func (p *Permutation) String() string {
	var b strings.Builder
	visited := make([]bool, len(p.forward))
	for start := range p.forward {
		if visited[start] || p.forward[start] == start {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('(')
		for i := start; !visited[i]; i = p.forward[i] {
			visited[i] = true
			b.WriteRune(p.alphabet.symbols[i])
		}
		b.WriteByte(')')
	}
	return b.String()
}
