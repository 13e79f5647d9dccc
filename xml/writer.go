package xml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Declaration is the XML declaration written by StartDocument.
const Declaration = `<?xml version="1.0" encoding="utf-8"?>`

// InvalidCharError indicates an attempt to write a character that is not
// allowed in an XML document.
type InvalidCharError struct {
	// Rune is the offending code point, or utf8.RuneError for a byte that is
	// not valid UTF-8.
	Rune rune
}

func (err InvalidCharError) Error() string {
	if err.Rune == utf8.RuneError {
		return "invalid UTF-8 in XML content"
	}
	return fmt.Sprintf("invalid XML character U+%04X", err.Rune)
}

var errNoStartTag = errors.New("attribute written outside of start tag")

type nsDecl struct {
	prefix string
	uri    string
}

type frame struct {
	name     string
	attrs    []string
	ns       []nsDecl
	children bool
	mixed    bool
}

// Writer is a forward-only XML emitter. Output is indented with a newline and
// one Indent per nesting level before each element, except within elements
// that contain character data. An element without content is written in the
// empty-element form.
//
// The first error that occurs is retained, after which all writes become
// no-ops. The error is returned by Err and Flush.
type Writer struct {
	// Indent is a string that indicates one level of indentation. If empty,
	// no newlines are written between nodes.
	Indent string

	w       *bufio.Writer
	n       int64
	err     error
	stack   []*frame
	open    bool
	written bool
}

// NewWriter returns a Writer that writes to w, indenting with tabs.
func NewWriter(w io.Writer) *Writer {
	return &Writer{Indent: "\t", w: bufio.NewWriter(w)}
}

// N returns the number of bytes written.
func (w *Writer) N() int64 {
	return w.n
}

// Err returns the first error that occurred while writing.
func (w *Writer) Err() error {
	return w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) writeString(s string) bool {
	if w.err != nil {
		return false
	}
	n, err := w.w.WriteString(s)
	w.n += int64(n)
	if err != nil {
		w.err = err
		return false
	}
	return true
}

func (w *Writer) writeByte(b byte) bool {
	if w.err != nil {
		return false
	}
	if err := w.w.WriteByte(b); err != nil {
		w.err = err
		return false
	}
	w.n++
	return true
}

func (w *Writer) top() *frame {
	if len(w.stack) == 0 {
		return nil
	}
	return w.stack[len(w.stack)-1]
}

func (w *Writer) newline(depth int) {
	if len(w.Indent) == 0 {
		return
	}
	w.writeByte('\n')
	for i := 0; i < depth; i++ {
		w.writeString(w.Indent)
	}
}

func (w *Writer) closeStart() {
	if w.open {
		w.writeByte('>')
		w.open = false
	}
}

// beginNode prepares for a node that is a child of the current element.
func (w *Writer) beginNode() {
	w.closeStart()
	f := w.top()
	if f == nil {
		if w.written {
			w.newline(0)
		}
		w.written = true
		return
	}
	f.children = true
	if !f.mixed {
		w.newline(len(w.stack))
	}
}

// StartDocument writes the XML declaration. It must be called before any other
// content is written.
func (w *Writer) StartDocument() {
	if w.written || w.open || len(w.stack) > 0 {
		w.fail(errors.New("document already started"))
		return
	}
	w.writeString(Declaration)
	w.written = true
}

// StartElement writes the start tag of an element with the given qualified
// name. Attributes may be written until the next node is started.
func (w *Writer) StartElement(name string) {
	if w.err != nil {
		return
	}
	if !checkName(name) {
		w.fail(fmt.Errorf("malformed element name %q", name))
		return
	}
	w.beginNode()
	w.writeByte('<')
	w.writeString(name)
	w.stack = append(w.stack, &frame{name: name})
	w.open = true
}

// StartElementNS writes the start tag of an element in the given namespace,
// using the prefix bound to the namespace by an open element. The empty
// namespace writes an unprefixed name.
func (w *Writer) StartElementNS(local, uri string) {
	if uri == "" {
		w.StartElement(local)
		return
	}
	prefix, ok := w.LookupPrefix(uri)
	if !ok {
		w.fail(fmt.Errorf("no prefix is bound to namespace %q", uri))
		return
	}
	if prefix == "" {
		w.StartElement(local)
		return
	}
	w.StartElement(prefix + ":" + local)
}

// WriteAttr writes an attribute of the element started last. Attributes named
// "xmlns" or prefixed with "xmlns:" declare namespaces for the element's
// scope.
func (w *Writer) WriteAttr(name, value string) {
	if w.err != nil {
		return
	}
	if !w.open {
		w.fail(errNoStartTag)
		return
	}
	if !checkName(name) {
		w.fail(fmt.Errorf("malformed attribute name %q", name))
		return
	}
	f := w.top()
	for _, a := range f.attrs {
		if a == name {
			w.fail(fmt.Errorf("duplicate attribute %q on <%s>", name, f.name))
			return
		}
	}
	f.attrs = append(f.attrs, name)
	switch {
	case name == "xmlns":
		f.ns = append(f.ns, nsDecl{prefix: "", uri: value})
	case strings.HasPrefix(name, "xmlns:"):
		f.ns = append(f.ns, nsDecl{prefix: name[len("xmlns:"):], uri: value})
	}
	w.writeByte(' ')
	w.writeString(name)
	w.writeString(`="`)
	w.escape(value, true)
	w.writeByte('"')
}

// LookupPrefix returns the prefix bound to a namespace by the open elements.
func (w *Writer) LookupPrefix(uri string) (prefix string, ok bool) {
	for i := len(w.stack) - 1; i >= 0; i-- {
		for _, d := range w.stack[i].ns {
			if d.uri == uri {
				return d.prefix, true
			}
		}
	}
	return "", false
}

// LookupNamespace returns the namespace bound to a prefix by the open
// elements.
func (w *Writer) LookupNamespace(prefix string) (uri string, ok bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	for i := len(w.stack) - 1; i >= 0; i-- {
		for _, d := range w.stack[i].ns {
			if d.prefix == prefix {
				return d.uri, true
			}
		}
	}
	return "", false
}

// Mixed marks the current element as containing character data, which
// disables indentation for the remainder of its content.
func (w *Writer) Mixed() {
	w.closeStart()
	if f := w.top(); f != nil {
		f.mixed = true
	}
}

// WriteText writes escaped character data. Every character must be allowed
// in XML; see WriteLDMLText for writing arbitrary text.
func (w *Writer) WriteText(s string) {
	if w.err != nil || s == "" {
		return
	}
	if len(w.stack) == 0 {
		w.fail(errors.New("text written outside of root element"))
		return
	}
	w.Mixed()
	w.escape(s, false)
}

// WriteCData writes a CDATA section.
func (w *Writer) WriteCData(s string) {
	if w.err != nil {
		return
	}
	if strings.Contains(s, "]]>") {
		w.fail(errors.New("CDATA section contains \"]]>\""))
		return
	}
	if err := checkChars(s); err != nil {
		w.fail(err)
		return
	}
	w.Mixed()
	w.writeString("<![CDATA[")
	w.writeString(s)
	w.writeString("]]>")
}

// WriteComment writes a comment.
func (w *Writer) WriteComment(s string) {
	if w.err != nil {
		return
	}
	if strings.Contains(s, "--") || strings.HasSuffix(s, "-") {
		w.fail(errors.New("comment contains \"--\" or ends with \"-\""))
		return
	}
	if err := checkChars(s); err != nil {
		w.fail(err)
		return
	}
	w.beginNode()
	w.writeString("<!--")
	w.writeString(s)
	w.writeString("-->")
}

// WriteProcInst writes a processing instruction.
func (w *Writer) WriteProcInst(target, inst string) {
	if w.err != nil {
		return
	}
	if !checkName(target) || strings.EqualFold(target, "xml") {
		w.fail(fmt.Errorf("malformed processing instruction target %q", target))
		return
	}
	if strings.Contains(inst, "?>") {
		w.fail(errors.New("processing instruction contains \"?>\""))
		return
	}
	w.beginNode()
	w.writeString("<?")
	w.writeString(target)
	if inst != "" {
		w.writeByte(' ')
		w.writeString(inst)
	}
	w.writeString("?>")
}

// WriteDirective writes a directive such as a DOCTYPE declaration.
func (w *Writer) WriteDirective(s string) {
	if w.err != nil {
		return
	}
	w.beginNode()
	w.writeString("<!")
	w.writeString(s)
	w.writeByte('>')
}

// WriteRaw writes s without escaping. The current element is marked as
// containing character data.
func (w *Writer) WriteRaw(s string) {
	if w.err != nil {
		return
	}
	w.Mixed()
	w.writeString(s)
}

// EndElement closes the element started last.
func (w *Writer) EndElement() {
	if w.err != nil {
		return
	}
	f := w.top()
	if f == nil {
		w.fail(errors.New("no open element to end"))
		return
	}
	w.stack = w.stack[:len(w.stack)-1]
	if w.open {
		w.open = false
		w.writeString(" />")
		return
	}
	if f.children && !f.mixed {
		w.newline(len(w.stack))
	}
	w.writeString("</")
	w.writeString(f.name)
	w.writeByte('>')
}

// WriteElementAttr writes an empty element with a single attribute.
func (w *Writer) WriteElementAttr(name, attr, value string) {
	w.StartElement(name)
	w.WriteAttr(attr, value)
	w.EndElement()
}

func (w *Writer) escape(s string, attr bool) {
	last := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			w.fail(InvalidCharError{Rune: utf8.RuneError})
			return
		}
		var esc string
		switch r {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '\r':
			esc = "&#xD;"
		case '"':
			if attr {
				esc = "&quot;"
			}
		case '\n':
			if attr {
				esc = "&#xA;"
			}
		case '\t':
			if attr {
				esc = "&#x9;"
			}
		default:
			if !IsValidChar(r) {
				w.fail(InvalidCharError{Rune: r})
				return
			}
		}
		if esc != "" {
			w.writeString(s[last:i])
			w.writeString(esc)
			last = i + size
		}
		i += size
	}
	w.writeString(s[last:])
}

// IsValidChar returns whether r is a character allowed by XML 1.0.
func IsValidChar(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func checkChars(s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return InvalidCharError{Rune: utf8.RuneError}
		}
		if !IsValidChar(r) {
			return InvalidCharError{Rune: r}
		}
		i += size
	}
	return nil
}

func checkName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i, r := range name {
		switch {
		case r == ':' || r == '_' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z':
		case i > 0 && (r == '-' || r == '.' || r >= '0' && r <= '9'):
		case r >= 0x80 && r != utf8.RuneError:
		default:
			return false
		}
	}
	return true
}
