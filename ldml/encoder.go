package ldml

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/writingsystems/ldmlfile"
	"github.com/writingsystems/ldmlfile/collation"
	"github.com/writingsystems/ldmlfile/errors"
	"github.com/writingsystems/ldmlfile/flex"
	"github.com/writingsystems/ldmlfile/xml"
)

// Encoder encodes a Definition into a document.
type Encoder struct {
	Compatibility Compatibility

	// Indent is written once per nesting level. If empty, a tab is used.
	Indent string

	// Logger receives debugging events and warnings. If nil, nothing is
	// logged.
	Logger *zap.Logger
}

// Encode writes ws to w. If old is not nil, it is read as the previous
// content of the document, and any content that is not modeled by the
// Definition is copied from it.
//
// Problems that do not prevent the document from being encoded, such as
// collation rules that fail to validate and are therefore omitted, are
// returned as warnings.
func (e Encoder) Encode(w io.Writer, ws *ldmlfile.Definition, old io.Reader) (warn, err error) {
	var doc *xml.Document
	if old != nil {
		if doc, err = xml.Parse(old); err != nil {
			return nil, fmt.Errorf("error parsing previous document: %w", err)
		}
	}
	return e.EncodeDocument(w, ws, doc)
}

// EncodeDocument writes ws to w, merging with an already parsed previous
// document, which may be nil.
func (e Encoder) EncodeDocument(w io.Writer, ws *ldmlfile.Definition, old *xml.Document) (warn, err error) {
	if ws == nil {
		return nil, ErrNilDefinition
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	enc := &encoder{
		Encoder: e,
		w:       xml.NewWriter(w),
		ws:      ws,
		doc:     old,
		log:     e.Logger,
	}
	if e.Indent != "" {
		enc.w.Indent = e.Indent
	}
	if enc.log == nil {
		enc.log = zap.NewNop()
	}
	if err := enc.encode(); err != nil {
		return enc.warns.Return(), err
	}
	if err := enc.w.Flush(); err != nil {
		return enc.warns.Return(), fmt.Errorf("error encoding format: %w", err)
	}
	return enc.warns.Return(), nil
}

type encoder struct {
	Encoder
	w     *xml.Writer
	ws    *ldmlfile.Definition
	doc   *xml.Document
	log   *zap.Logger
	warns errors.Errors

	// The identity and FLEx-conform special values are copied from the
	// previous document.
	flex bool
}

func (e *encoder) encode() error {
	var c *xml.Cursor
	if e.doc != nil {
		c = e.doc.Cursor()
		if err := c.ReadStartElement("ldml"); err != nil {
			return ErrMissingRoot
		}
	}

	e.w.StartDocument()
	e.w.StartElement("ldml")
	e.copyUntil(c, "identity")
	e.writeIdentity(c)
	e.copyUntil(c, "layout")
	e.writeLayout(c)
	e.copyUntil(c, "collations")
	if err := e.writeCollations(c); err != nil {
		return err
	}
	e.copyUntil(c, "special")
	e.writeSpecials()
	if c != nil {
		e.copyOtherSpecials(c)
		e.copyToEnd(c)
	}
	e.w.EndElement()
	return e.w.Err()
}

// copyUntil copies sibling nodes that sort before the element name, stopping
// at the end of the parent element. Elements named in exclude are skipped
// rather than copied.
func (e *encoder) copyUntil(c *xml.Cursor, name string, exclude ...string) {
	if c == nil {
		return
	}
loop:
	for !c.EOF() && c.Kind() != xml.EndElementNode {
		if c.Kind() == xml.ElementNode {
			if xml.CompareElementNames(c.Name(), name) >= 0 {
				return
			}
			for _, x := range exclude {
				if c.Name() == x {
					c.Skip()
					continue loop
				}
			}
		}
		xml.CopyNode(e.w, c)
	}
}

// copyToEnd copies the remaining siblings, then moves past the end of the
// parent element.
func (e *encoder) copyToEnd(c *xml.Cursor) {
	if c == nil {
		return
	}
	for !c.EOF() && c.Kind() != xml.EndElementNode {
		xml.CopyNode(e.w, c)
	}
	c.Read()
}

// copyOtherSpecials copies consecutive special elements that are not in a
// registered namespace. Known special elements are skipped.
func (e *encoder) copyOtherSpecials(c *xml.Cursor) {
	for !c.EOF() && c.Kind() != xml.EndElementNode {
		if c.Kind() == xml.ElementNode {
			if c.Name() != "special" {
				return
			}
			if isKnownSpecial(c) {
				c.Skip()
				continue
			}
		}
		xml.CopyNode(e.w, c)
	}
}

const dateLayout = "2006-01-02T15:04:05"

func (e *encoder) writeIdentity(c *xml.Cursor) {
	ws := e.ws
	w := e.w
	w.StartElement("identity")
	w.StartElement("version")
	w.WriteAttr("number", ws.VersionNumber)
	xml.WriteLDMLText(w, ws.VersionDescription)
	w.EndElement()
	w.WriteElementAttr("generation", "date", ws.DateModified.Format(dateLayout))

	tag := flex.Tag{Language: ws.Language, Script: ws.Script, Region: ws.Region, Variant: ws.Variant}
	var sub *xml.Cursor
	if c != nil && c.IsStartElement("identity") {
		old := identityTag(c.Element())
		if e.Compatibility == Flex7V0Compatible && ldmlfile.IsPrivateUse(old.Language) {
			if t := flex.ToFlex(tag); t == old {
				e.flex = true
				tag = t
				e.log.Debug("preserving FLEx identity", zap.String("tag", t.String()))
			}
		}
		sub = c.Subtree()
		sub.Read()
		for !sub.EOF() && sub.Kind() != xml.EndElementNode && !sub.IsStartElement("special") {
			sub.Skip()
		}
	}
	w.WriteElementAttr("language", "type", tag.Language)
	if tag.Script != "" {
		w.WriteElementAttr("script", "type", tag.Script)
	}
	if tag.Region != "" {
		w.WriteElementAttr("territory", "type", tag.Region)
	}
	if tag.Variant != "" {
		w.WriteElementAttr("variant", "type", tag.Variant)
	}
	e.copyToEnd(sub)
	w.EndElement()
}

// identityTag returns the subtags of an identity element, as written.
func identityTag(identity *etree.Element) flex.Tag {
	var tag flex.Tag
	for _, child := range identity.ChildElements() {
		if child.Space != "" {
			continue
		}
		typ := child.SelectAttrValue("type", "")
		switch child.Tag {
		case "language":
			tag.Language = typ
		case "script":
			tag.Script = typ
		case "territory":
			tag.Region = typ
		case "variant":
			tag.Variant = typ
		case "special":
			return tag
		}
	}
	return tag
}

func (e *encoder) writeLayout(c *xml.Cursor) {
	w := e.w
	open := e.ws.RightToLeftScript
	if open {
		w.StartElement("layout")
		w.WriteElementAttr("orientation", "characters", "right-to-left")
	}
	if c != nil && c.IsStartElement("layout") {
		sub := c.Subtree()
		sub.Read()
		// Orientation is regenerated, while an alias would override it.
		dropped := func() bool {
			return sub.IsStartElement("orientation") || sub.IsStartElement("alias")
		}
		if !open {
			probe := *sub
			for !probe.EOF() && probe.Kind() != xml.EndElementNode {
				if !(probe.IsStartElement("orientation") || probe.IsStartElement("alias")) {
					open = true
					w.StartElement("layout")
					break
				}
				probe.Skip()
			}
		}
		for !sub.EOF() && sub.Kind() != xml.EndElementNode {
			if dropped() {
				sub.Skip()
				continue
			}
			xml.CopyNode(w, sub)
		}
	}
	if open {
		w.EndElement()
	}
}

func (e *encoder) writeCollations(c *xml.Cursor) error {
	w := e.w
	w.StartElement("collations")
	var sub *xml.Cursor
	if c != nil && c.IsStartElement("collations") {
		sub = c.Subtree()
		sub.Read()
		for !sub.EOF() && sub.Kind() != xml.EndElementNode {
			if sub.IsStartElement("alias") {
				sub.Skip()
				continue
			}
			if sub.IsStartElement("collation") && isStandardCollation(sub) {
				break
			}
			xml.CopyNode(w, sub)
		}
	}
	var old *xml.Cursor
	if sub != nil && sub.IsStartElement("collation") {
		old = sub.Subtree()
	}
	if err := e.writeCollation(old); err != nil {
		return sectionError("encoding collations", err)
	}
	e.copyToEnd(sub)
	w.EndElement()
	return nil
}

// writeCollation writes the standard collation. old is positioned on the
// previous standard collation, if there is one.
func (e *encoder) writeCollation(old *xml.Cursor) error {
	w := e.w
	ws := e.ws
	if old != nil {
		if old.IsEmpty() {
			old = nil
		} else {
			old.Read()
		}
	}
	switch ws.SortUsing {
	case ldmlfile.DefaultOrdering:
		if old != nil {
			e.preserveCollation(old)
		}
		return nil
	case ldmlfile.OtherLanguage:
		w.StartElement("collation")
		w.StartElement("base")
		w.WriteElementAttr("alias", "source", ws.SortRules)
		w.EndElement()
		if old != nil {
			xml.FindElement(old, "special")
		}
	case ldmlfile.CustomSimple:
		w.StartElement("collation")
		rules, err := collation.SimpleRules(ws.SortRules)
		e.writeRules(old, rules, err)
	case ldmlfile.CustomICU:
		w.StartElement("collation")
		rules, err := collation.ParseICU(ws.SortRules)
		e.writeRules(old, rules, err)
	default:
		return SortRulesError{Mode: ws.SortUsing}
	}

	e.beginSpecial("palaso", PalasoNamespace)
	e.writeSpecialValue(PalasoNamespace, "sortRulesType", ws.SortUsing.String())
	w.EndElement()
	if old != nil {
		if xml.FindElement(old, "special") {
			e.copyOtherSpecials(old)
		}
		e.copyToEnd(old)
	}
	w.EndElement()
	return nil
}

// writeRules writes custom rules. Rules that failed to parse are omitted.
func (e *encoder) writeRules(old *xml.Cursor, rules []collation.Rule, err error) {
	if old != nil {
		e.copyUntil(old, "settings", "alias")
		// Settings, suppressed contractions and optimizations are not
		// modeled, and the rules are regenerated.
		xml.FindElement(old, "special")
	}
	if err != nil {
		e.warns = e.warns.Appendf("omitted invalid %s collation rules: %w", e.ws.SortUsing, err)
		e.log.Warn("omitted invalid collation rules",
			zap.String("tag", e.ws.Tag()),
			zap.Stringer("mode", e.ws.SortUsing),
			zap.Error(err),
		)
		return
	}
	if err := collation.WriteRules(e.w, rules); err != nil {
		e.warns = e.warns.Append(err)
	}
}

// preserveCollation writes a collation containing only the content of the
// previous collation that is not modeled. Nothing is written if there is no
// such content.
func (e *encoder) preserveCollation(old *xml.Cursor) {
	w := e.w
	started := false
	start := func() {
		if !started {
			w.StartElement("collation")
			started = true
		}
	}
	if xml.FindElement(old, "special") {
		for !old.EOF() && old.Kind() != xml.EndElementNode {
			if old.Kind() == xml.ElementNode {
				if old.Name() != "special" {
					break
				}
				if isKnownSpecial(old) {
					old.Skip()
					continue
				}
			}
			start()
			xml.CopyNode(w, old)
		}
	}
	if !old.EOF() && old.Kind() != xml.EndElementNode {
		start()
		e.copyToEnd(old)
	}
	if started {
		w.EndElement()
	}
}

func (e *encoder) beginSpecial(prefix, uri string) {
	e.w.StartElement("special")
	e.w.WriteAttr("xmlns:"+prefix, uri)
}

func (e *encoder) writeSpecialValue(uri, field, value string) {
	if value == "" {
		return
	}
	e.w.StartElementNS(field, uri)
	e.w.WriteAttr("value", value)
	e.w.EndElement()
}

// writeFlexOrPalaso writes a special value, or copies it from the previous
// document when preserving a FLEx identity.
func (e *encoder) writeFlexOrPalaso(uri, field, value string) {
	if !e.flex {
		e.writeSpecialValue(uri, field, value)
		return
	}
	if old := e.oldSpecialValue(uri, field); old != nil {
		xml.CopyElement(e.w, e.doc, old)
	}
}

// oldSpecialValue returns the element of a special value in a top-level
// special element of the previous document.
func (e *encoder) oldSpecialValue(uri, field string) *etree.Element {
	if e.doc == nil || e.doc.Root() == nil {
		return nil
	}
	for _, special := range e.doc.Root().ChildElements() {
		if special.Space != "" || special.Tag != "special" {
			continue
		}
		for _, child := range special.ChildElements() {
			if child.Tag != field {
				continue
			}
			if ns, _ := xml.LookupNamespace(child, child.Space); ns == uri {
				return child
			}
		}
	}
	return nil
}

func (e *encoder) writeSpecials() {
	ws := e.ws
	w := e.w
	version := strconv.Itoa(ldmlfile.LatestDefinitionVersion)

	// Values are in alphabetical order.
	e.beginSpecial("palaso", PalasoNamespace)
	e.writeFlexOrPalaso(PalasoNamespace, "abbreviation", ws.Abbreviation)
	e.writeSpecialValue(PalasoNamespace, "defaultFontFamily", ws.DefaultFontName)
	if ws.DefaultFontSize != 0 {
		e.writeSpecialValue(PalasoNamespace, "defaultFontSize", strconv.FormatFloat(float64(ws.DefaultFontSize), 'g', -1, 32))
	}
	e.writeSpecialValue(PalasoNamespace, "defaultKeyboard", ws.Keyboard)
	if ws.IsLegacyEncoded {
		e.writeSpecialValue(PalasoNamespace, "isLegacyEncoded", "True")
	}
	e.writeFlexOrPalaso(PalasoNamespace, "languageName", ws.LanguageName)
	e.writeSpecialValue(PalasoNamespace, "spellCheckingId", ws.SpellCheckingID)
	e.writeFlexOrPalaso(PalasoNamespace, "version", version)
	w.EndElement()

	if len(ws.KnownKeyboards) == 0 {
		return
	}
	e.beginSpecial("palaso2", Palaso2Namespace)
	w.StartElementNS("knownKeyboards", Palaso2Namespace)
	for _, kb := range ws.KnownKeyboards {
		w.StartElementNS("keyboard", Palaso2Namespace)
		w.WriteAttr("layout", kb.Layout)
		w.WriteAttr("locale", kb.Locale)
		w.WriteAttr("os", kb.OperatingSystem)
		w.EndElement()
	}
	w.EndElement()
	e.writeFlexOrPalaso(Palaso2Namespace, "version", version)
	w.EndElement()
}
