package xml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// isLiteral returns whether r can be written literally as LDML text. Carriage
// return is allowed by XML, but is normalized away by parsers.
func isLiteral(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// decodeRune decodes the first code point of s. Surrogate code points encoded
// in the generalized UTF-8 form are decoded as such. Any other byte that is not
// valid UTF-8 decodes to its own value, with valid set to false.
func decodeRune(s string) (r rune, size int, valid bool) {
	r, size = utf8.DecodeRuneInString(s)
	if r != utf8.RuneError || size != 1 {
		return r, size, true
	}
	if len(s) >= 3 && s[0] == 0xED &&
		s[1] >= 0xA0 && s[1] <= 0xBF &&
		s[2] >= 0x80 && s[2] <= 0xBF {
		r = rune(s[0]&0x0F)<<12 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F)
		return r, 3, false
	}
	return rune(s[0]), 1, false
}

// WriteLDMLText writes text as the content of the current element. Each code
// point that cannot be represented literally is written as a code point marker
// of the form <cp hex="D"/>.
func WriteLDMLText(w *Writer, text string) {
	if text == "" {
		return
	}
	w.Mixed()
	last := 0
	for i := 0; i < len(text); {
		r, size, valid := decodeRune(text[i:])
		if !valid || !isLiteral(r) {
			w.WriteText(text[last:i])
			w.StartElement("cp")
			w.WriteAttr("hex", fmt.Sprintf("%X", r))
			w.EndElement()
			last = i + size
		}
		i += size
	}
	w.WriteText(text[last:])
}

// ReadLDMLText reads the text content of the current element, decoding code
// point markers, and moves past the element. Other child elements are
// skipped.
func ReadLDMLText(c *Cursor) (string, error) {
	if c.Kind() != ElementNode {
		return "", c.unexpected("element")
	}
	end := c.node().end
	var s strings.Builder
	for c.pos++; c.pos < end; {
		switch c.Kind() {
		case TextNode, CDataNode:
			s.WriteString(c.Text())
		case ElementNode:
			if c.Prefix() == "" && c.LocalName() == "cp" {
				hex, _ := c.Attr("hex")
				v, err := strconv.ParseUint(hex, 16, 32)
				if err != nil || v > utf8.MaxRune {
					c.pos = end + 1
					return s.String(), fmt.Errorf("invalid code point marker %q", hex)
				}
				appendCodePoint(&s, rune(v))
			}
			c.Skip()
			continue
		}
		c.pos++
	}
	c.pos = end + 1
	return s.String(), nil
}

func appendCodePoint(s *strings.Builder, r rune) {
	if r >= 0xD800 && r <= 0xDFFF {
		s.WriteByte(0xE0 | byte(r>>12))
		s.WriteByte(0x80 | byte(r>>6)&0x3F)
		s.WriteByte(0x80 | byte(r)&0x3F)
		return
	}
	s.WriteRune(r)
}
