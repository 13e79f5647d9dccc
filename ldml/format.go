// The ldml package implements the decoding and encoding of writing system
// definitions in the LDML dialect.
//
// The Encoder merges a Definition with the previous content of a file. Only
// the parts of the document that are modeled by the Definition are
// regenerated. Everything else, including extension elements in namespaces
// that are not registered with this package, is copied through in its
// original position.
package ldml

import (
	"github.com/writingsystems/ldmlfile/xml"
)

// Namespaces of the extension vocabularies within special elements.
const (
	PalasoNamespace     = "urn://palaso.org/ldmlExtensions/v1"
	Palaso2Namespace    = "urn://palaso.org/ldmlExtensions/v2"
	FieldWorksNamespace = "urn://fieldworks.sil.org/ldmlExtensions/v1"
)

// namespace describes an extension vocabulary that is generated by the
// Encoder. Special elements declaring a registered prefix are regenerated
// rather than copied.
type namespace struct {
	Prefix   string
	URI      string
	Elements []string
}

var namespaces = [...]namespace{
	{
		Prefix: "palaso",
		URI:    PalasoNamespace,
		Elements: []string{
			"abbreviation",
			"defaultFontFamily",
			"defaultFontSize",
			"defaultKeyboard",
			"isLegacyEncoded",
			"languageName",
			"sortRulesType",
			"spellCheckingId",
			"version",
		},
	},
	{
		Prefix:   "palaso2",
		URI:      Palaso2Namespace,
		Elements: []string{"knownKeyboards", "version"},
	},
}

func lookupNamespace(prefix string) *namespace {
	for i := range namespaces {
		if namespaces[i].Prefix == prefix {
			return &namespaces[i]
		}
	}
	return nil
}

// isKnownSpecial returns whether the element the cursor is positioned on
// declares the prefix of a registered namespace.
func isKnownSpecial(c *xml.Cursor) bool {
	e := c.Element()
	if e == nil {
		return false
	}
	for _, a := range e.Attr {
		if a.Space == "xmlns" && lookupNamespace(a.Key) != nil {
			return true
		}
	}
	return false
}

// Compatibility selects how the Encoder treats documents produced by other
// applications.
type Compatibility uint8

const (
	// Strict regenerates every modeled part of the document.
	Strict Compatibility = iota
	// Flex7V0Compatible preserves the identity and a number of special
	// values of a document whose tag is written in the FLEx private-use
	// convention, as long as the tag still matches the definition.
	Flex7V0Compatible
)

func (c Compatibility) String() string {
	switch c {
	case Strict:
		return "strict"
	case Flex7V0Compatible:
		return "flex7v0"
	}
	return "unknown"
}

// ParseCompatibility returns the Compatibility with the given name.
func ParseCompatibility(s string) (c Compatibility, ok bool) {
	switch s {
	case "strict":
		return Strict, true
	case "flex7v0":
		return Flex7V0Compatible, true
	}
	return Strict, false
}

// Layouts accepted for the generation date. The first is also the layout
// written by the Encoder.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"$Date: 2006/01/02 15:04:05 $",
}
