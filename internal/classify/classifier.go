// Package classify maps free-text expense descriptions to category labels.
//
// Matching is deterministic: descriptions are normalized (lowercase, accents
// stripped) and checked against an ordered keyword table. The first rule with
// a keyword contained in the description, or a whole word it lists, wins;
// there is no scoring.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Label is a category name as shown to the user.
type Label string

const (
	Food          Label = "ALIMENTAÇÃO"
	Transport     Label = "TRANSPORTE"
	Housing       Label = "MORADIA"
	Utilities     Label = "CONTAS"
	Health        Label = "SAÚDE"
	Education     Label = "EDUCAÇÃO"
	Leisure       Label = "LAZER"
	Subscriptions Label = "ASSINATURAS"
	Clothing      Label = "VESTUÁRIO"
	Beauty        Label = "BELEZA"
	Pets          Label = "PETS"
	Travel        Label = "VIAGEM"
	Shopping      Label = "COMPRAS"
	Taxes         Label = "IMPOSTOS"
	Gifts         Label = "PRESENTES"
	Investments   Label = "INVESTIMENTOS"
	Unforeseen    Label = "IMPREVISTOS"
	Other         Label = "OUTROS"
)

// unforeseenPrefix short-circuits the keyword table.
const unforeseenPrefix = "imprevisto"

// Rule pairs a label with the keywords that select it. Keywords match
// anywhere in the description; Words only match as whole words, for terms
// that hide inside unrelated words ("acoes" in "doacoes").
type Rule struct {
	Label    Label
	Keywords []string
	Words    []string
}

// Classifier evaluates rules in declaration order.
type Classifier struct {
	rules []Rule
}

// Default is the curated Portuguese table.
var Default = New(defaultRules())

// New creates a classifier. Keywords are normalized once here.
func New(rules []Rule) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		normalized = append(normalized, Rule{
			Label:    r.Label,
			Keywords: normalizeAll(r.Keywords),
			Words:    normalizeAll(r.Words),
		})
	}
	return &Classifier{rules: normalized}
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = Normalize(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Classify returns the label of the first matching rule, Unforeseen for
// descriptions starting with "imprevisto", or Other. Never empty.
func (c *Classifier) Classify(description string) Label {
	text := Normalize(description)
	if strings.HasPrefix(text, unforeseenPrefix) {
		return Unforeseen
	}
	if label, ok := firstMatch(c.rules, text); ok {
		return label
	}
	return Other
}

// Labels lists every label the classifier can return, in table order.
func (c *Classifier) Labels() []Label {
	out := make([]Label, 0, len(c.rules)+2)
	for _, r := range c.rules {
		out = append(out, r.Label)
	}
	return append(out, Unforeseen, Other)
}

// Classify uses the Default table.
func Classify(description string) Label {
	return Default.Classify(description)
}

func firstMatch(rules []Rule, text string) (Label, bool) {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Label, true
			}
		}
		for _, w := range r.Words {
			if containsWord(text, w) {
				return r.Label, true
			}
		}
	}
	return "", false
}

// containsWord reports whether w occurs in text between word boundaries.
// Hyphens join words, so "feira" is not found in "sexta-feira".
func containsWord(text, w string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], w)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(w)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !wordRune(before)) && (end == len(text) || !wordRune(after)) {
			return true
		}
		from = start + 1
	}
}

func wordRune(r rune) bool {
	return r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Normalize lowercases, strips diacritics and collapses surrounding space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}
