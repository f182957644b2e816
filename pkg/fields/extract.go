package fields

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"feriaocr/pkg/vocab"
)

// Triple holds the three fields read from a sign. Empty means not found.
type Triple struct {
	Product string `json:"producto"`
	Unit    string `json:"unidad"`
	Price   string `json:"precio"`
}

func (t Triple) Empty() bool {
	return t.Product == "" && t.Unit == "" && t.Price == ""
}

// DefaultUnitTokens are the spellings scanned for in sign text.
var DefaultUnitTokens = []string{
	"kilo", "kg", "g", "gr", "gramos",
	"corte", "unidad", "bandeja", "c/u", "pila",
}

var (
	rePrice   = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+|\d+`)
	reProduct = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚÜÑáéíóúüñ ]+$`)
)

// Extractor turns recognised lines into a Triple. It is safe for concurrent
// use once built.
type Extractor struct {
	products  vocab.Vocabulary
	units     vocab.Vocabulary
	threshold float64
	reUnit    *regexp.Regexp
	resolver  vocab.Resolver
}

// NewExtractor builds an Extractor. unitTokens falls back to
// DefaultUnitTokens when empty.
func NewExtractor(products, units vocab.Vocabulary, unitTokens []string, threshold float64) *Extractor {
	if len(unitTokens) == 0 {
		unitTokens = DefaultUnitTokens
	}
	return &Extractor{
		products:  products,
		units:     units,
		threshold: threshold,
		reUnit:    unitPattern(unitTokens),
	}
}

// unitPattern builds a case-insensitive, word bounded alternation with longer
// tokens tried first so "gramos" is not read as "gr".
func unitPattern(tokens []string) *regexp.Regexp {
	toks := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			toks = append(toks, regexp.QuoteMeta(strings.ToLower(t)))
		}
	}
	sort.SliceStable(toks, func(i, j int) bool { return len(toks[i]) > len(toks[j]) })
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(toks, "|") + `)\b`)
}

// Extract never fails; fields with no candidate are left empty.
func (e *Extractor) Extract(lines []string) Triple {
	return Triple{
		Product: e.Product(lines),
		Unit:    e.Unit(lines),
		Price:   Price(lines),
	}
}

// Price returns the largest integer found across lines, with thousands
// separators removed. Numbers that overflow int64 are ignored.
func Price(lines []string) string {
	var (
		best  int64
		found bool
	)
	for _, l := range lines {
		for _, m := range rePrice.FindAllString(l, -1) {
			digits := strings.NewReplacer(".", "", ",", "").Replace(m)
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				continue
			}
			if !found || n > best {
				best, found = n, true
			}
		}
	}
	if !found {
		return ""
	}
	return strconv.FormatInt(best, 10)
}

// Unit scans every line for unit tokens and resolves the matches against the
// unit vocabulary.
func (e *Extractor) Unit(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	matches := e.reUnit.FindAllString(strings.Join(lines, " "), -1)
	return e.resolver.Resolve(matches, e.units, e.threshold)
}

// Product keeps letter-only lines and resolves the longest one against the
// product vocabulary.
func (e *Extractor) Product(lines []string) string {
	var pick string
	for _, l := range lines {
		l = strings.TrimSpace(norm.NFC.String(l))
		if l == "" || !reProduct.MatchString(l) {
			continue
		}
		if utf8.RuneCountInString(l) > utf8.RuneCountInString(pick) {
			pick = l
		}
	}
	if pick == "" {
		return ""
	}
	return e.resolver.Resolve([]string{pick}, e.products, e.threshold)
}
