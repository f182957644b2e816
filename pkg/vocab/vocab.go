package vocab

import "strings"

// DefaultProducts is the produce catalogue used when none is configured.
var DefaultProducts = []string{
	"cebolla", "papa", "tomate", "zanahoria", "lechuga",
	"pepino", "zapallo", "melon", "sandia", "pimenton",
	"palta", "platano", "manzana", "pera", "uva",
	"camote", "coliflor", "santos", "elegido",
}

// DefaultUnits is the canonical unit list used when none is configured.
var DefaultUnits = []string{
	"kilo", "kg", "gr", "gramos",
	"corte", "unidad", "bandeja", "c/u", "pila",
}

// Vocabulary is an immutable ordered set of canonical terms. The zero value is
// an empty vocabulary.
type Vocabulary struct {
	terms []string
	index map[string]struct{}
}

// New builds a Vocabulary from terms. Terms are trimmed and lowercased; blanks
// and repeats are dropped while the first occurrence keeps its position.
func New(terms ...string) Vocabulary {
	v := Vocabulary{index: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = struct{}{}
		v.terms = append(v.terms, t)
	}
	return v
}

// Terms returns a copy of the terms in vocabulary order.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v Vocabulary) Len() int { return len(v.terms) }

// Contains reports whether term is a canonical entry.
func (v Vocabulary) Contains(term string) bool {
	_, ok := v.index[term]
	return ok
}
