package collation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SimpleError indicates malformed simple rules.
type SimpleError struct {
	// Line is the 1-based line number of the error.
	Line int
	Msg  string
}

func (err SimpleError) Error() string {
	return fmt.Sprintf("simple rules line %d: %s", err.Line, err.Msg)
}

// SimpleRules parses rules written in the simple syntax:
//
//   - Each line is sorted after the previous line, at the primary level.
//   - Items on a line separated by whitespace are sorted after each other at
//     the secondary level.
//   - Items grouped in parentheses, as in "(a A)", are sorted after each
//     other at the tertiary level.
//   - A backslash escapes the following character. "\uXXXX" produces a code
//     point.
//
// Each item may appear only once. The rules are anchored before the first
// non-ignorable character. Empty input produces no rules.
func SimpleRules(s string) ([]Rule, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	rules := []Rule{{Op: Reset, Before: 1, Position: FirstNonIgnorable}}
	seen := map[string]bool{}
	for n, line := range strings.Split(s, "\n") {
		groups, err := splitSimpleLine(strings.TrimSuffix(line, "\r"))
		if err != nil {
			return nil, SimpleError{Line: n + 1, Msg: err.Error()}
		}
		for i, group := range groups {
			for j, item := range group {
				if seen[item] {
					return nil, SimpleError{Line: n + 1, Msg: fmt.Sprintf("duplicate item %q", item)}
				}
				seen[item] = true
				op := Tertiary
				switch {
				case i == 0 && j == 0:
					op = Primary
				case j == 0:
					op = Secondary
				}
				rules = append(rules, Rule{Op: op, Text: item})
			}
		}
	}
	return rules, nil
}

// ValidateSimple returns an error if s is not valid simple rules.
func ValidateSimple(s string) error {
	_, err := SimpleRules(s)
	return err
}

// SimpleToICU converts simple rules to ICU syntax.
func SimpleToICU(s string) (string, error) {
	rules, err := SimpleRules(s)
	if err != nil {
		return "", err
	}
	return FormatICU(rules), nil
}

func splitSimpleLine(line string) (groups [][]string, err error) {
	var item strings.Builder
	var group []string
	inGroup := false
	flush := func() {
		if item.Len() == 0 {
			return
		}
		if inGroup {
			group = append(group, item.String())
		} else {
			groups = append(groups, []string{item.String()})
		}
		item.Reset()
	}
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		switch {
		case r == '\\':
			if i >= len(line) {
				return nil, fmt.Errorf("incomplete escape")
			}
			if line[i] == 'u' && i+5 <= len(line) {
				if v, err := strconv.ParseUint(line[i+1:i+5], 16, 32); err == nil {
					item.WriteRune(rune(v))
					i += 5
					continue
				}
			}
			r, size = utf8.DecodeRuneInString(line[i:])
			item.WriteRune(r)
			i += size
		case r == '(':
			if inGroup {
				return nil, fmt.Errorf("nested group")
			}
			flush()
			inGroup = true
			group = nil
		case r == ')':
			if !inGroup {
				return nil, fmt.Errorf("unmatched )")
			}
			flush()
			if len(group) == 0 {
				return nil, fmt.Errorf("empty group")
			}
			groups = append(groups, group)
			inGroup = false
		case unicode.IsSpace(r):
			flush()
		default:
			item.WriteRune(r)
		}
	}
	if inGroup {
		return nil, fmt.Errorf("unclosed group")
	}
	flush()
	return groups, nil
}

// SimpleFromRules returns simple rules equivalent to rules, if the rules can
// be expressed in the simple syntax.
func SimpleFromRules(rules []Rule) (s string, ok bool) {
	if len(rules) == 0 {
		return "", true
	}
	if first := rules[0]; first.Op != Reset || first.Before != 1 || first.Position != FirstNonIgnorable {
		return "", false
	}
	var lines [][][]string
	seen := map[string]bool{}
	for _, r := range rules[1:] {
		if r.Text == "" || r.Position != NoPosition || seen[r.Text] {
			return "", false
		}
		seen[r.Text] = true
		switch r.Op {
		case Primary:
			lines = append(lines, [][]string{{r.Text}})
		case Secondary:
			if len(lines) == 0 {
				return "", false
			}
			line := &lines[len(lines)-1]
			*line = append(*line, []string{r.Text})
		case Tertiary:
			if len(lines) == 0 {
				return "", false
			}
			line := lines[len(lines)-1]
			group := &line[len(line)-1]
			*group = append(*group, r.Text)
		default:
			return "", false
		}
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, group := range line {
			if j > 0 {
				b.WriteByte(' ')
			}
			if len(group) > 1 {
				b.WriteByte('(')
			}
			for k, item := range group {
				if k > 0 {
					b.WriteByte(' ')
				}
				escapeSimple(&b, item)
			}
			if len(group) > 1 {
				b.WriteByte(')')
			}
		}
	}
	return b.String(), true
}

func escapeSimple(b *strings.Builder, s string) {
	for _, r := range s {
		switch {
		case r == '\\' || r == '(' || r == ')' || unicode.IsSpace(r):
			if r > 0x7F || r < 0x20 {
				fmt.Fprintf(b, "\\u%04X", r)
				continue
			}
			b.WriteByte('\\')
			b.WriteRune(r)
		case unicode.IsControl(r) && r <= 0xFFFF:
			fmt.Fprintf(b, "\\u%04X", r)
		default:
			b.WriteRune(r)
		}
	}
}
