// Package metadata names the metadata fields the review workflow reads and writes
// and converts decimal scores to and from their stored text form.
package metadata

import (
	"math"
	"strconv"
	"strings"
)

// AnyLanguage matches values regardless of their language tag.
const AnyLanguage = "*"

// Field identifies a multi-valued metadata field by schema, element, and qualifier.
type Field struct {
	Schema    string
	Element   string
	Qualifier string
}

// String renders the dotted field name, for example "workflow.score".
func (f Field) String() string {
	if f.Qualifier == "" {
		return f.Schema + "." + f.Element
	}
	return f.Schema + "." + f.Element + "." + f.Qualifier
}

// ParseField parses a dotted field name.
func ParseField(name string) (Field, bool) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Field{}, false
		}
		return Field{Schema: parts[0], Element: parts[1]}, true
	case 3:
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Field{}, false
		}
		return Field{Schema: parts[0], Element: parts[1], Qualifier: parts[2]}, true
	default:
		return Field{}, false
	}
}

var (
	// Score holds raw reviewer scores until evaluation consumes them.
	Score = Field{Schema: "workflow", Element: "score"}
	// Review holds formatted reviewer commentary.
	Review = Field{Schema: "workflow", Element: "review"}
	// Provenance is the append-only audit trail of an item.
	Provenance = Field{Schema: "dc", Element: "description", Qualifier: "provenance"}
	// Title is the descriptive title of an item.
	Title = Field{Schema: "dc", Element: "title"}
)

// ProvenanceLanguage is the language tag used for provenance notes.
const ProvenanceLanguage = "en"

// ParseDecimal parses a score written with either '.' or ',' as the decimal
// separator. Blank, malformed, and non-finite input reports false.
func ParseDecimal(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	if strings.Count(trimmed, ",") > 0 {
		if strings.Contains(trimmed, ".") || strings.Count(trimmed, ",") > 1 {
			return 0, false
		}
		trimmed = strings.Replace(trimmed, ",", ".", 1)
	}
	for _, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return 0, false
		}
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// FormatDecimal renders value in its shortest exact decimal form ("8.5", "10").
func FormatDecimal(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// FormatFixed renders value with two decimals ("8.50"). Ties round half up,
// away from zero, on the shortest decimal form of value, so 8.125 gives
// "8.13" and 1.005 gives "1.01".
func FormatFixed(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', 2, 64)
	}
	digits := strconv.FormatFloat(value, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, _ := strings.Cut(digits, ".")
	if len(frac) <= 2 {
		return sign + whole + "." + frac + strings.Repeat("0", 2-len(frac))
	}
	kept := []byte(whole + frac[:2])
	if frac[2] >= '5' {
		i := len(kept) - 1
		for ; i >= 0 && kept[i] == '9'; i-- {
			kept[i] = '0'
		}
		if i < 0 {
			kept = append([]byte{'1'}, kept...)
		} else {
			kept[i]++
		}
	}
	n := len(kept)
	return sign + string(kept[:n-2]) + "." + string(kept[n-2:])
}
