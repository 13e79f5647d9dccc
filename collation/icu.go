package collation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RuleError indicates a malformed or unsupported construct in collation rules.
type RuleError struct {
	// Offset is the byte offset of the construct within the rules.
	Offset int
	Msg    string
}

func (err RuleError) Error() string {
	return fmt.Sprintf("collation rules: %s at offset %d", err.Msg, err.Offset)
}

type icuParser struct {
	s     string
	pos   int
	rules []Rule
}

// ParseICU parses rules in ICU syntax. The supported subset consists of
// resets (optionally with "[before n]" and logical positions) and primary,
// secondary, tertiary and identical relations. Options, settings, expansions,
// contexts and star relations are not supported.
//
// Whitespace is ignored unless quoted or escaped. Text may be quoted with
// apostrophes, and two apostrophes produce a literal apostrophe. A backslash
// escapes the following character, and "\uXXXX" and "\UXXXXXXXX" produce a
// code point. A "#" begins a comment that continues to the end of the line.
func ParseICU(s string) ([]Rule, error) {
	p := &icuParser{s: s}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.rules, nil
}

// ValidateICU returns an error if the rules cannot be parsed by ParseICU.
func ValidateICU(s string) error {
	_, err := ParseICU(s)
	return err
}

func (p *icuParser) errorf(offset int, format string, a ...interface{}) error {
	return RuleError{Offset: offset, Msg: fmt.Sprintf(format, a...)}
}

func (p *icuParser) eof() bool {
	return p.pos >= len(p.s)
}

// skipSpace skips whitespace and comments.
func (p *icuParser) skipSpace() {
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		switch {
		case r == '#':
			if i := strings.IndexByte(p.s[p.pos:], '\n'); i >= 0 {
				p.pos += i + 1
			} else {
				p.pos = len(p.s)
			}
		case unicode.IsSpace(r):
			p.pos += size
		default:
			return
		}
	}
}

func (p *icuParser) parse() error {
	for {
		p.skipSpace()
		if p.eof() {
			return nil
		}
		start := p.pos
		switch c := p.s[p.pos]; c {
		case '&':
			p.pos++
			if err := p.parseReset(); err != nil {
				return err
			}
		case '<', '=':
			op := Identical
			if c == '<' {
				n := 0
				for !p.eof() && p.s[p.pos] == '<' {
					n++
					p.pos++
				}
				if n > 3 {
					return p.errorf(start, "quaternary relations are not supported")
				}
				op = Op(n)
			} else {
				p.pos++
			}
			if !p.eof() && p.s[p.pos] == '*' {
				return p.errorf(start, "star relations are not supported")
			}
			if len(p.rules) == 0 {
				return p.errorf(start, "relation %q before first reset", op.String())
			}
			text, err := p.parseText()
			if err != nil {
				return err
			}
			p.rules = append(p.rules, Rule{Op: op, Text: text})
		case '[':
			return p.errorf(start, "options and settings are not supported")
		case '/':
			return p.errorf(start, "expansions are not supported")
		case '|':
			return p.errorf(start, "contexts are not supported")
		default:
			return p.errorf(start, "expected reset or relation")
		}
	}
}

func (p *icuParser) parseReset() error {
	rule := Rule{Op: Reset}
	p.skipSpace()
	if strings.HasPrefix(p.s[p.pos:], "[before") {
		start := p.pos
		end := strings.IndexByte(p.s[p.pos:], ']')
		if end < 0 {
			return p.errorf(start, "unterminated option")
		}
		arg := strings.TrimSpace(p.s[p.pos+len("[before") : p.pos+end])
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 3 {
			return p.errorf(start, "invalid strength %q in [before]", arg)
		}
		rule.Before = n
		p.pos += end + 1
		p.skipSpace()
	}
	if !p.eof() && p.s[p.pos] == '[' {
		start := p.pos
		end := strings.IndexByte(p.s[p.pos:], ']')
		if end < 0 {
			return p.errorf(start, "unterminated position")
		}
		name := strings.Join(strings.Fields(p.s[p.pos+1:p.pos+end]), " ")
		pos, ok := lookupPosition(name)
		if !ok {
			return p.errorf(start, "unknown position [%s]", name)
		}
		rule.Position = pos
		p.pos += end + 1
		p.rules = append(p.rules, rule)
		return nil
	}
	text, err := p.parseText()
	if err != nil {
		return err
	}
	rule.Text = text
	p.rules = append(p.rules, rule)
	return nil
}

// parseText reads the text operand of a rule, up to the next operator.
func (p *icuParser) parseText() (string, error) {
	start := p.pos
	var b strings.Builder
loop:
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		switch {
		case r == '&' || r == '<' || r == '=' || r == '[' || r == '/' || r == '|' || r == '#':
			break loop
		case r == '\'':
			if err := p.parseQuote(&b); err != nil {
				return "", err
			}
			continue
		case r == '\\':
			if err := p.parseEscape(&b); err != nil {
				return "", err
			}
			continue
		case unicode.IsSpace(r):
		case isSyntaxChar(r):
			return "", p.errorf(p.pos, "unquoted syntax character %q", r)
		case r == utf8.RuneError && size == 1:
			return "", p.errorf(p.pos, "invalid UTF-8")
		default:
			b.WriteRune(r)
		}
		p.pos += size
	}
	if b.Len() == 0 {
		return "", p.errorf(start, "missing text")
	}
	return b.String(), nil
}

func (p *icuParser) parseQuote(b *strings.Builder) error {
	start := p.pos
	p.pos++
	if !p.eof() && p.s[p.pos] == '\'' {
		b.WriteByte('\'')
		p.pos++
		return nil
	}
	for !p.eof() {
		c := p.s[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return p.errorf(start, "unterminated quote")
}

func (p *icuParser) parseEscape(b *strings.Builder) error {
	start := p.pos
	p.pos++
	if p.eof() {
		return p.errorf(start, "incomplete escape")
	}
	var n int
	switch p.s[p.pos] {
	case 'u':
		n = 4
	case 'U':
		n = 8
	default:
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		b.WriteRune(r)
		p.pos += size
		return nil
	}
	if p.pos+1+n > len(p.s) {
		return p.errorf(start, "incomplete escape")
	}
	v, err := strconv.ParseUint(p.s[p.pos+1:p.pos+1+n], 16, 32)
	if err != nil || v > utf8.MaxRune {
		return p.errorf(start, "invalid escape %q", p.s[start:p.pos+1+n])
	}
	b.WriteRune(rune(v))
	p.pos += 1 + n
	return nil
}
