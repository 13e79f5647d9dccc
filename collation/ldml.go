package collation

import (
	"fmt"

	"github.com/writingsystems/ldmlfile/errors"
	"github.com/writingsystems/ldmlfile/xml"
)

// WriteRules writes rules as an LDML <rules> element. Nothing is written if
// there are no rules.
func WriteRules(w *xml.Writer, rules []Rule) error {
	if len(rules) == 0 {
		return nil
	}
	w.StartElement("rules")
	for _, r := range rules {
		if int(r.Op) >= len(opElements) {
			return fmt.Errorf("unknown rule operation %d", r.Op)
		}
		w.StartElement(opElements[r.Op])
		if r.Op == Reset {
			if r.Before > 0 {
				if r.Before >= len(levelNames) {
					return fmt.Errorf("invalid reset strength %d", r.Before)
				}
				w.WriteAttr("before", levelNames[r.Before])
			}
			if r.Position != NoPosition {
				w.StartElement(r.Position.ElementName())
				w.EndElement()
				w.EndElement()
				continue
			}
		}
		xml.WriteLDMLText(w, r.Text)
		w.EndElement()
	}
	w.EndElement()
	return w.Err()
}

// ReadRules reads the rules of the <rules> element the cursor is positioned
// on, and moves past the element. In addition to the regular relation
// elements, the compact forms (<pc>, <sc>, <tc>, <ic>), which order each of
// their characters in turn, are accepted.
//
// Rules that are malformed are read as far as possible, producing warnings:
// unsupported elements are skipped, an unknown reset strength is dropped,
// and relations before the first reset are kept. The result may therefore
// fail to validate. An error is returned only if the cursor is not on a
// <rules> element.
func ReadRules(c *xml.Cursor) (rules []Rule, warn, err error) {
	if !c.IsStartElement("rules") {
		return nil, nil, fmt.Errorf("expected <rules>, got %q", c.Name())
	}
	var warns errors.Errors
	sub := c.Subtree()
	sub.Read()
	for !sub.EOF() && sub.Kind() != xml.EndElementNode {
		if sub.Kind() != xml.ElementNode {
			sub.Skip()
			continue
		}
		name := sub.LocalName()
		if sub.Prefix() != "" {
			warns = warns.Appendf("skipped unsupported rule element <%s>", sub.Name())
			sub.Skip()
			continue
		}
		switch name {
		case "reset":
			r := Rule{Op: Reset}
			if b, ok := sub.Attr("before"); ok {
				if r.Before, ok = lookupLevel(b); !ok {
					warns = warns.Appendf("ignored invalid reset strength %q", b)
				}
			}
			if pos, ok := resetPosition(sub); ok {
				r.Position = pos
				sub.Skip()
			} else {
				text, err := xml.ReadLDMLText(sub)
				if err != nil {
					warns = warns.Appendf("skipped <reset>: %w", err)
					continue
				}
				if text == "" {
					warns = warns.Appendf("skipped reset with no anchor")
					continue
				}
				r.Text = text
			}
			rules = append(rules, r)
		case "p", "s", "t", "i":
			text, err := xml.ReadLDMLText(sub)
			if err != nil {
				warns = warns.Appendf("skipped <%s>: %w", name, err)
				continue
			}
			if text == "" {
				warns = warns.Appendf("skipped empty <%s>", name)
				continue
			}
			rules = append(rules, Rule{Op: elementOp(name), Text: text})
		case "pc", "sc", "tc", "ic":
			text, err := xml.ReadLDMLText(sub)
			if err != nil {
				warns = warns.Appendf("skipped <%s>: %w", name, err)
				continue
			}
			op := elementOp(name[:1])
			for _, r := range text {
				rules = append(rules, Rule{Op: op, Text: string(r)})
			}
		default:
			warns = warns.Appendf("skipped unsupported rule element <%s>", name)
			sub.Skip()
		}
	}
	if len(rules) > 0 && rules[0].Op != Reset {
		warns = warns.Appendf("relation <%s> before first reset", opElements[rules[0].Op])
	}
	return rules, warns.Return(), nil
}

func elementOp(name string) Op {
	for i, n := range opElements {
		if n == name {
			return Op(i)
		}
	}
	return Reset
}

// resetPosition returns the logical position contained by the reset element
// the cursor is positioned on.
func resetPosition(c *xml.Cursor) (Position, bool) {
	for _, e := range c.Element().ChildElements() {
		if e.Space == "" && e.Tag != "cp" {
			return lookupPositionElement(e.Tag)
		}
	}
	return NoPosition, false
}
