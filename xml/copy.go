package xml

import (
	"github.com/beevik/etree"
)

// CopyNode writes the current node of c to w, then moves c to the next
// sibling. An element is copied with its entire subtree. Namespace prefixes
// used by the element that are not declared in the scope of w are declared on
// the copied element.
//
// Insignificant whitespace is not copied; w applies its own indentation.
func CopyNode(w *Writer, c *Cursor) {
	n := c.node()
	if n == nil {
		return
	}
	switch n.kind {
	case ElementNode:
		end := n.end
		copyStart(w, c.Element())
		if n.mixed && end > c.pos+1 {
			w.Mixed()
		}
		c.pos++
		for c.pos < end && w.Err() == nil {
			CopyNode(w, c)
		}
		w.EndElement()
		c.pos = end + 1
		return
	case EndElementNode:
		// Belongs to an element that was not copied.
	case TextNode:
		w.WriteText(c.Text())
	case CDataNode:
		w.WriteCData(c.Text())
	case CommentNode:
		w.WriteComment(c.Text())
	case ProcInstNode:
		p := n.token.(*etree.ProcInst)
		w.WriteProcInst(p.Target, p.Inst)
	case DirectiveNode:
		w.WriteDirective(c.Text())
	}
	c.pos++
}

func copyStart(w *Writer, e *etree.Element) {
	w.StartElement(QualifiedName(e))
	for _, a := range e.Attr {
		w.WriteAttr(qualifiedAttr(a), a.Value)
	}
	declare(w, e, e.Space)
	for _, a := range e.Attr {
		if a.Space != "" && a.Space != "xmlns" {
			declare(w, e, a.Space)
		}
	}
}

// declare writes a declaration for prefix if it is bound in the source scope
// of e but not in the scope of w.
func declare(w *Writer, e *etree.Element, prefix string) {
	if prefix == "xml" {
		return
	}
	if _, ok := w.LookupNamespace(prefix); ok {
		return
	}
	uri, ok := LookupNamespace(e, prefix)
	if !ok || uri == "" {
		return
	}
	if prefix == "" {
		w.WriteAttr("xmlns", uri)
		return
	}
	w.WriteAttr("xmlns:"+prefix, uri)
}

// CopyElement writes e and its subtree, which must be part of doc.
func CopyElement(w *Writer, doc *Document, e *etree.Element) {
	if c := doc.ElementCursor(e); c != nil {
		CopyNode(w, c)
	}
}
