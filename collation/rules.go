// The collation package implements the collation rule formats of a writing
// system: a subset of the ICU rule syntax, the equivalent LDML <rules>
// markup, and a simple line-based syntax intended to be written by hand.
//
// Each format converts to and from a list of Rule values.
package collation

import (
	"fmt"
	"strings"
	"unicode"
)

// Op is the operation of a rule.
type Op uint8

const (
	// Reset positions the following relations after an anchor.
	Reset Op = iota
	// Primary relations differ at the base letter level.
	Primary
	// Secondary relations differ at the accent level.
	Secondary
	// Tertiary relations differ at the case level.
	Tertiary
	// Identical relations sort equally.
	Identical
)

var opSymbols = [...]string{
	Reset:     "&",
	Primary:   "<",
	Secondary: "<<",
	Tertiary:  "<<<",
	Identical: "=",
}

var opElements = [...]string{
	Reset:     "reset",
	Primary:   "p",
	Secondary: "s",
	Tertiary:  "t",
	Identical: "i",
}

func (op Op) String() string {
	if int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Position is a logical position in the collation order, used as the anchor
// of a reset in place of text.
type Position uint8

const (
	NoPosition Position = iota
	FirstTertiaryIgnorable
	LastTertiaryIgnorable
	FirstSecondaryIgnorable
	LastSecondaryIgnorable
	FirstPrimaryIgnorable
	LastPrimaryIgnorable
	FirstVariable
	LastVariable
	FirstNonIgnorable
	LastNonIgnorable
	FirstTrailing
	LastTrailing
)

var positionNames = [...]string{
	NoPosition:              "",
	FirstTertiaryIgnorable:  "first tertiary ignorable",
	LastTertiaryIgnorable:   "last tertiary ignorable",
	FirstSecondaryIgnorable: "first secondary ignorable",
	LastSecondaryIgnorable:  "last secondary ignorable",
	FirstPrimaryIgnorable:   "first primary ignorable",
	LastPrimaryIgnorable:    "last primary ignorable",
	FirstVariable:           "first variable",
	LastVariable:            "last variable",
	FirstNonIgnorable:       "first non-ignorable",
	LastNonIgnorable:        "last non-ignorable",
	FirstTrailing:           "first trailing",
	LastTrailing:            "last trailing",
}

// String returns the name of the position as it appears in ICU rules.
func (p Position) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return fmt.Sprintf("Position(%d)", uint8(p))
}

// ElementName returns the name of the element representing the position in
// LDML markup.
func (p Position) ElementName() string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(p.String())
}

func lookupPosition(name string) (Position, bool) {
	for i, n := range positionNames {
		if i > 0 && n == name {
			return Position(i), true
		}
	}
	return NoPosition, false
}

func lookupPositionElement(name string) (Position, bool) {
	for i := range positionNames {
		if p := Position(i); p != NoPosition && p.ElementName() == name {
			return p, true
		}
	}
	return NoPosition, false
}

// Rule is a single collation rule.
type Rule struct {
	Op Op

	// Before is the strength (1 to 3) of a reset that positions relations
	// before its anchor instead of after. Zero indicates a regular reset.
	Before int

	// Position is the logical anchor of a reset. If NoPosition, the anchor is
	// Text.
	Position Position

	// Text is the string being ordered, or the anchor of a reset.
	Text string
}

var levelNames = [...]string{1: "primary", 2: "secondary", 3: "tertiary"}

func lookupLevel(name string) (int, bool) {
	for i, n := range levelNames {
		if i > 0 && n == name {
			return i, true
		}
	}
	return 0, false
}

// FormatICU returns the rules in ICU syntax. Each reset begins a new line.
func FormatICU(rules []Rule) string {
	var b strings.Builder
	for i, r := range rules {
		if i > 0 {
			if r.Op == Reset {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		if r.Op != Reset {
			b.WriteString(r.Op.String())
			b.WriteByte(' ')
			quote(&b, r.Text)
			continue
		}
		b.WriteByte('&')
		if r.Before > 0 {
			fmt.Fprintf(&b, "[before %d]", r.Before)
		}
		if r.Position != NoPosition {
			b.WriteByte('[')
			b.WriteString(r.Position.String())
			b.WriteByte(']')
		} else {
			quote(&b, r.Text)
		}
	}
	return b.String()
}

// isSyntaxChar returns whether an ASCII character is reserved by the ICU
// syntax, and must be quoted to be used literally.
func isSyntaxChar(r rune) bool {
	return r > 0x20 && r < 0x7F &&
		!(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

func needsQuote(r rune) bool {
	return isSyntaxChar(r) || unicode.IsSpace(r) || unicode.IsControl(r)
}

// quote writes s, quoting each run of reserved characters. An apostrophe is
// written as two apostrophes, which is literal both inside and outside of a
// quoted run.
func quote(b *strings.Builder, s string) {
	open := false
	for _, r := range s {
		switch {
		case r == '\'':
			b.WriteString("''")
		case needsQuote(r):
			if !open {
				b.WriteByte('\'')
				open = true
			}
			b.WriteRune(r)
		default:
			if open {
				b.WriteByte('\'')
				open = false
			}
			b.WriteRune(r)
		}
	}
	if open {
		b.WriteByte('\'')
	}
}
