package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("papa", "papa"))
	assert.Equal(t, 100.0, TokenSortRatio("tomate cherry", "Cherry  TOMATE"))
	assert.InDelta(t, 85.71, TokenSortRatio("sebolla", "cebolla"), 0.01)
	assert.Equal(t, 0.0, TokenSortRatio("abc", "xyz"))
}

func TestTokenSortRatioNormalisesByLongerSide(t *testing.T) {
	// distance 2 over 7 runes
	assert.InDelta(t, 71.43, TokenSortRatio("zapato", "zapallo"), 0.01)
	assert.InDelta(t, 71.43, TokenSortRatio("zapallo", "zapato"), 0.01)
	assert.InDelta(t, 80.0, TokenSortRatio("papa", "papas"), 0.01)
	// lengths are counted in runes
	assert.InDelta(t, 75.0, TokenSortRatio("pina", "piña"), 0.01)
}

func TestResolveFuzzyThreshold(t *testing.T) {
	v := New(DefaultProducts...)
	var r Resolver
	assert.Equal(t, "cebolla", r.Resolve([]string{"sebolla"}, v, 60))
	assert.Equal(t, "sebolla", r.Resolve([]string{"sebolla"}, v, 99))
}

func TestResolveCanonicalAlwaysSelf(t *testing.T) {
	v := New(DefaultUnits...)
	var r Resolver
	for _, term := range v.Terms() {
		assert.Equal(t, term, r.Resolve([]string{term}, v, 100), term)
		assert.Equal(t, term, r.Resolve([]string{term}, v, 0), term)
	}
}

func TestResolveLongestCandidate(t *testing.T) {
	v := New(DefaultUnits...)
	var r Resolver
	assert.Equal(t, "gramos", r.Resolve([]string{"kg", "GRAMOS", "gr"}, v, 60))
	// equal length: first one wins
	assert.Equal(t, "kg", r.Resolve([]string{"KG", "gr"}, v, 60))
}

func TestResolveEmpty(t *testing.T) {
	var r Resolver
	assert.Equal(t, "", r.Resolve(nil, New(DefaultProducts...), 60))
	assert.Equal(t, "", r.Resolve([]string{}, New(DefaultProducts...), 0))
}

func TestResolveTieFirstInVocabulary(t *testing.T) {
	// "pepa" is one edit away from both; vocabulary order decides.
	v := New("papa", "pera")
	var r Resolver
	assert.Equal(t, "papa", r.Resolve([]string{"pepa"}, v, 60))
	v = New("pera", "papa")
	assert.Equal(t, "pera", r.Resolve([]string{"pepa"}, v, 60))
}

func TestResolveEmptyVocabulary(t *testing.T) {
	var r Resolver
	assert.Equal(t, "zapallo", r.Resolve([]string{"Zapallo"}, Vocabulary{}, 0))
}

func TestNewVocabularyNormalises(t *testing.T) {
	v := New(" Papa", "papa", "", "TOMATE")
	assert.Equal(t, []string{"papa", "tomate"}, v.Terms())
	assert.True(t, v.Contains("tomate"))
	assert.False(t, v.Contains("TOMATE"))
	assert.Equal(t, 2, v.Len())
}
