package xml

import (
	"strings"
)

// Comparer compares two element names, returning a negative number when a
// sorts before b, zero when they are equal, and a positive number otherwise.
type Comparer func(a, b string) int

// ldmlOrder is the canonical order of LDML elements among their siblings.
var ldmlOrder = map[string]int{}

func init() {
	for i, name := range []string{
		"alias",
		"identity",
		"version",
		"generation",
		"language",
		"script",
		"territory",
		"variant",
		"fallback",
		"localeDisplayNames",
		"layout",
		"orientation",
		"inList",
		"inText",
		"contextTransforms",
		"characters",
		"delimiters",
		"measurement",
		"dates",
		"numbers",
		"units",
		"listPatterns",
		"collations",
		"default",
		"collation",
		"base",
		"settings",
		"suppress_contractions",
		"optimize",
		"rules",
		"posix",
		"segmentations",
		"rbnf",
		"annotations",
		"metadata",
		"references",
		"special",
	} {
		ldmlOrder[name] = i + 1
	}
}

// CompareElementNames compares element names by their canonical LDML order.
// Names that are not part of the order sort before those that are, and are
// equal to each other.
func CompareElementNames(a, b string) int {
	return ldmlOrder[a] - ldmlOrder[b]
}

// CompareSpecialNames compares the local names of extension elements, which
// are ordered alphabetically without regard to case.
func CompareSpecialNames(a, b string) int {
	return strings.Compare(strings.ToLower(localPart(a)), strings.ToLower(localPart(b)))
}

func localPart(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// FindNextElementInSequence advances c through sibling nodes to the next
// element named name. The input is assumed to be in the order defined by cmp:
// elements that sort before name are skipped, while an element that sorts
// after name, or the end of the parent element, stops the search.
//
// If ns is empty, name is compared with the qualified name of each element.
// Otherwise, name is a local name, and the element must also be in namespace
// ns.
//
// Returns true if the cursor is positioned on a matching element.
func FindNextElementInSequence(c *Cursor, name, ns string, cmp Comparer) bool {
	for !c.EOF() {
		switch c.Kind() {
		case EndElementNode:
			return false
		case ElementNode:
			elemName := c.Name()
			if ns != "" {
				elemName = c.LocalName()
			}
			if elemName == name && (ns == "" || c.NamespaceURI() == ns) {
				return true
			}
			if cmp(elemName, name) > 0 {
				return false
			}
			c.Skip()
		default:
			c.Skip()
		}
	}
	return false
}

// FindElement finds the next element with the given name, in canonical LDML
// order.
func FindElement(c *Cursor, name string) bool {
	return FindNextElementInSequence(c, name, "", CompareElementNames)
}
