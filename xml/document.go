// The xml package implements the document model used to merge LDML files. A
// parsed Document is traversed with a forward-only Cursor, while output is
// produced with a Writer. Nodes can be copied from a Cursor to a Writer
// verbatim, allowing content that is not understood to be preserved.
package xml

import (
	stdxml "encoding/xml"
	"errors"
	"io"
	"strconv"

	"github.com/beevik/etree"
)

// NodeKind indicates the kind of node a Cursor is positioned on.
type NodeKind uint8

const (
	NoNode NodeKind = iota
	ElementNode
	EndElementNode
	TextNode
	CDataNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

var nodeKindNames = [...]string{
	NoNode:         "None",
	ElementNode:    "Element",
	EndElementNode: "EndElement",
	TextNode:       "Text",
	CDataNode:      "CData",
	CommentNode:    "Comment",
	ProcInstNode:   "ProcInst",
	DirectiveNode:  "Directive",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// XMLNamespace is the namespace bound to the reserved "xml" prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

type node struct {
	kind  NodeKind
	token etree.Token
	// Index of the matching EndElementNode, for ElementNode.
	end int
	// Character data within the element is significant.
	mixed bool
}

// Document represents a parsed XML document, flattened into a sequence of
// nodes.
//
// Character data that consists only of whitespace is considered insignificant
// and is dropped when it appears between the child nodes of an element whose
// content is otherwise markup. It is retained in elements that contain other
// text, or contain a code point marker ("cp" element).
type Document struct {
	tree  *etree.Document
	nodes []node
	index map[*etree.Element]int
}

// A SyntaxError represents a syntax error in the XML input stream.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string {
	return "XML syntax error on line " + strconv.Itoa(e.Line) + ": " + e.Msg
}

// Parse reads an entire document from r.
func Parse(r io.Reader) (*Document, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true
	if _, err := tree.ReadFrom(r); err != nil {
		var serr *stdxml.SyntaxError
		if errors.As(err, &serr) {
			return nil, &SyntaxError{Msg: serr.Msg, Line: serr.Line}
		}
		return nil, err
	}
	return NewDocument(tree), nil
}

// NewDocument wraps an already parsed tree.
func NewDocument(tree *etree.Document) *Document {
	d := &Document{
		tree:  tree,
		index: map[*etree.Element]int{},
	}
	for _, t := range tree.Child {
		switch t := t.(type) {
		case *etree.ProcInst:
			// The declaration is regenerated by the Writer.
			if t.Target == "xml" {
				continue
			}
		case *etree.CharData:
			if !t.IsCData() && isWhitespace(t.Data) {
				continue
			}
		}
		d.flatten(t, false)
	}
	return d
}

// Tree returns the underlying element tree.
func (d *Document) Tree() *etree.Document {
	return d.tree
}

// Root returns the root element of the document, or nil if the document has
// no root.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// Cursor returns a new Cursor positioned on the first node of the document.
func (d *Document) Cursor() *Cursor {
	return &Cursor{doc: d, pos: 0, limit: len(d.nodes)}
}

// ElementCursor returns a Cursor bounded to the subtree of the given element,
// positioned on the element. Returns nil if the element is not part of the
// document.
func (d *Document) ElementCursor(e *etree.Element) *Cursor {
	i, ok := d.index[e]
	if !ok {
		return nil
	}
	return &Cursor{doc: d, pos: i, limit: d.nodes[i].end + 1}
}

func (d *Document) flatten(t etree.Token, dropSpace bool) {
	switch t := t.(type) {
	case *etree.Element:
		i := len(d.nodes)
		d.index[t] = i
		mixed := isMixed(t)
		d.nodes = append(d.nodes, node{kind: ElementNode, token: t, mixed: mixed})
		for _, c := range t.Child {
			d.flatten(c, !mixed)
		}
		d.nodes[i].end = len(d.nodes)
		d.nodes = append(d.nodes, node{kind: EndElementNode, token: t})
	case *etree.CharData:
		if t.IsCData() {
			d.nodes = append(d.nodes, node{kind: CDataNode, token: t})
			return
		}
		if dropSpace && isWhitespace(t.Data) {
			return
		}
		d.nodes = append(d.nodes, node{kind: TextNode, token: t})
	case *etree.Comment:
		d.nodes = append(d.nodes, node{kind: CommentNode, token: t})
	case *etree.ProcInst:
		d.nodes = append(d.nodes, node{kind: ProcInstNode, token: t})
	case *etree.Directive:
		d.nodes = append(d.nodes, node{kind: DirectiveNode, token: t})
	}
}

// isMixed returns whether the character data within e is significant. This is
// the case when e contains only character data, when any character data is
// more than whitespace, or when e contains a code point marker.
func isMixed(e *etree.Element) bool {
	markup := false
	for _, c := range e.Child {
		switch c := c.(type) {
		case *etree.CharData:
			if c.IsCData() || !isWhitespace(c.Data) {
				return true
			}
		case *etree.Element:
			if c.Space == "" && c.Tag == "cp" {
				return true
			}
			markup = true
		default:
			markup = true
		}
	}
	return !markup
}

// LookupNamespace returns the namespace bound to prefix in the scope of e, and
// whether a binding exists. The empty prefix looks up the default namespace.
func LookupNamespace(e *etree.Element, prefix string) (uri string, ok bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	for ; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" ||
				prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value, true
			}
		}
	}
	return "", false
}

// QualifiedName returns the name of e as written in the document.
func QualifiedName(e *etree.Element) string {
	if e.Space == "" {
		return e.Tag
	}
	return e.Space + ":" + e.Tag
}

func qualifiedAttr(a etree.Attr) string {
	if a.Space == "" {
		return a.Key
	}
	return a.Space + ":" + a.Key
}

// AttrValue returns the value of the attribute of e with the given qualified
// name, and whether it exists.
func AttrValue(e *etree.Element, name string) (value string, ok bool) {
	for _, a := range e.Attr {
		if qualifiedAttr(a) == name {
			return a.Value, true
		}
	}
	return "", false
}

func isWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
