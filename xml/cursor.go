package xml

import (
	"fmt"

	"github.com/beevik/etree"
)

// Cursor is a forward-only reader over the nodes of a Document. A Cursor
// positioned on an element is first positioned on the element itself, then,
// after a call to Read, on each of the element's child nodes in order, and
// finally on the element's end node. Empty elements also have an end node.
//
// A Cursor may be bounded to a subtree, in which case it reports EOF after the
// end node of the subtree's element.
type Cursor struct {
	doc   *Document
	pos   int
	limit int
}

// Document returns the document the cursor reads from.
func (c *Cursor) Document() *Document {
	return c.doc
}

// EOF returns whether the cursor has moved past the last node.
func (c *Cursor) EOF() bool {
	return c.pos >= c.limit
}

func (c *Cursor) node() *node {
	if c.EOF() {
		return nil
	}
	return &c.doc.nodes[c.pos]
}

// Kind returns the kind of the current node, or NoNode at EOF.
func (c *Cursor) Kind() NodeKind {
	if n := c.node(); n != nil {
		return n.kind
	}
	return NoNode
}

// Element returns the element of the current node, if the cursor is
// positioned on an element or end node. Returns nil otherwise.
func (c *Cursor) Element() *etree.Element {
	if n := c.node(); n != nil {
		if e, ok := n.token.(*etree.Element); ok {
			return e
		}
	}
	return nil
}

// Token returns the token of the current node.
func (c *Cursor) Token() etree.Token {
	if n := c.node(); n != nil {
		return n.token
	}
	return nil
}

// Name returns the qualified name of the current element or end node.
func (c *Cursor) Name() string {
	if e := c.Element(); e != nil {
		return QualifiedName(e)
	}
	return ""
}

// LocalName returns the name of the current element without its prefix.
func (c *Cursor) LocalName() string {
	if e := c.Element(); e != nil {
		return e.Tag
	}
	return ""
}

// Prefix returns the namespace prefix of the current element.
func (c *Cursor) Prefix() string {
	if e := c.Element(); e != nil {
		return e.Space
	}
	return ""
}

// NamespaceURI returns the namespace of the current element, resolved from
// the declarations in scope.
func (c *Cursor) NamespaceURI() string {
	e := c.Element()
	if e == nil {
		return ""
	}
	uri, _ := LookupNamespace(e, e.Space)
	return uri
}

// IsStartElement returns whether the cursor is on an element with the given
// qualified name.
func (c *Cursor) IsStartElement(name string) bool {
	return c.Kind() == ElementNode && c.Name() == name
}

// IsEndElement returns whether the cursor is on the end node of an element
// with the given qualified name.
func (c *Cursor) IsEndElement(name string) bool {
	return c.Kind() == EndElementNode && c.Name() == name
}

// Attr returns the value of an attribute of the current element, given its
// qualified name.
func (c *Cursor) Attr(name string) (value string, ok bool) {
	if c.Kind() != ElementNode {
		return "", false
	}
	return AttrValue(c.Element(), name)
}

// AttrOr returns the value of an attribute of the current element, or def if
// the attribute does not exist.
func (c *Cursor) AttrOr(name, def string) string {
	if v, ok := c.Attr(name); ok {
		return v
	}
	return def
}

// Declares returns whether the current element declares a namespace for the
// given prefix.
func (c *Cursor) Declares(prefix string) bool {
	_, ok := c.Attr("xmlns:" + prefix)
	return ok
}

// IsEmpty returns whether the current element has no child nodes.
func (c *Cursor) IsEmpty() bool {
	n := c.node()
	return n != nil && n.kind == ElementNode && n.end == c.pos+1
}

// Mixed returns whether the character data within the current element is
// significant.
func (c *Cursor) Mixed() bool {
	n := c.node()
	return n != nil && n.kind == ElementNode && n.mixed
}

// Text returns the data of the current text, CDATA, comment or directive
// node.
func (c *Cursor) Text() string {
	switch t := c.Token().(type) {
	case *etree.CharData:
		return t.Data
	case *etree.Comment:
		return t.Data
	case *etree.Directive:
		return t.Data
	case *etree.ProcInst:
		return t.Inst
	}
	return ""
}

// Read moves to the next node in document order. Reading an element moves to
// its first child node. Returns false if the cursor is at EOF after moving.
func (c *Cursor) Read() bool {
	if !c.EOF() {
		c.pos++
	}
	return !c.EOF()
}

// Skip moves to the next sibling of the current node. On an element, the
// element's entire subtree is skipped.
func (c *Cursor) Skip() {
	n := c.node()
	if n == nil {
		return
	}
	if n.kind == ElementNode {
		c.pos = n.end + 1
		return
	}
	c.pos++
}

// Subtree returns a Cursor bounded to the subtree of the current element,
// positioned on the element. The receiver moves past the element. Returns nil
// if the cursor is not on an element.
func (c *Cursor) Subtree() *Cursor {
	n := c.node()
	if n == nil || n.kind != ElementNode {
		return nil
	}
	sub := &Cursor{doc: c.doc, pos: c.pos, limit: n.end + 1}
	c.pos = n.end + 1
	return sub
}

// MoveToContent skips over comments, processing instructions, directives and
// whitespace, stopping on the next element, end node, or text. Returns the
// kind of the node the cursor stops on.
func (c *Cursor) MoveToContent() NodeKind {
	for !c.EOF() {
		switch c.Kind() {
		case CommentNode, ProcInstNode, DirectiveNode:
		case TextNode:
			if !isWhitespace(c.Text()) {
				return TextNode
			}
		default:
			return c.Kind()
		}
		c.pos++
	}
	return NoNode
}

// ReadStartElement verifies that the content node is an element with the
// given qualified name, and moves into it.
func (c *Cursor) ReadStartElement(name string) error {
	if k := c.MoveToContent(); k != ElementNode || c.Name() != name {
		return c.unexpected("element <" + name + ">")
	}
	c.pos++
	return nil
}

// ReadEndElement verifies that the content node is the end of an element, and
// moves past it.
func (c *Cursor) ReadEndElement() error {
	if c.MoveToContent() != EndElementNode {
		return c.unexpected("end of element")
	}
	c.pos++
	return nil
}

func (c *Cursor) unexpected(want string) error {
	switch k := c.Kind(); k {
	case NoNode:
		return fmt.Errorf("expected %s, got end of document", want)
	case ElementNode:
		return fmt.Errorf("expected %s, got element <%s>", want, c.Name())
	case EndElementNode:
		return fmt.Errorf("expected %s, got end of <%s>", want, c.Name())
	default:
		return fmt.Errorf("expected %s, got %s", want, k)
	}
}

// ReadToDescendant moves to the first element within the current element that
// has the given local name and namespace. An empty namespace matches only
// unprefixed elements. If no such element exists, the cursor is left on the end
// node of the current element and false is returned.
func (c *Cursor) ReadToDescendant(local, ns string) bool {
	n := c.node()
	if n == nil || n.kind != ElementNode {
		return false
	}
	end := n.end
	for c.pos++; c.pos < end; c.pos++ {
		if c.Kind() == ElementNode && c.matches(local, ns) {
			return true
		}
	}
	return false
}

func (c *Cursor) matches(local, ns string) bool {
	if c.LocalName() != local {
		return false
	}
	if ns == "" {
		return c.Prefix() == ""
	}
	return c.NamespaceURI() == ns
}
