package ldml

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/writingsystems/ldmlfile"
	"github.com/writingsystems/ldmlfile/collation"
	"github.com/writingsystems/ldmlfile/errors"
	"github.com/writingsystems/ldmlfile/flex"
	"github.com/writingsystems/ldmlfile/xml"
)

// Decoder decodes a document into a Definition.
type Decoder struct {
	// Now returns the time used as the generation date of a document that
	// does not specify one. If nil, the current UTC time is used.
	Now func() time.Time

	// Logger receives debugging events. If nil, nothing is logged.
	Logger *zap.Logger
}

// Decode reads a document from r. The returned Definition begins as a copy of
// defaults, which may be nil, and has every field found in the document
// overwritten.
//
// Problems that do not prevent the document from being decoded are returned
// as warnings. A document of a version other than
// ldmlfile.LatestDefinitionVersion produces a VersionError, unless its tag is
// written in the FLEx private-use convention.
func (d Decoder) Decode(r io.Reader, defaults *ldmlfile.Definition) (ws *ldmlfile.Definition, warn, err error) {
	if r == nil {
		return nil, nil, ErrNilReader
	}
	doc, err := xml.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing document: %w", err)
	}
	return d.DecodeDocument(doc, defaults)
}

// DecodeDocument decodes an already parsed document.
func (d Decoder) DecodeDocument(doc *xml.Document, defaults *ldmlfile.Definition) (ws *ldmlfile.Definition, warn, err error) {
	if defaults != nil {
		ws = defaults.Copy()
	} else {
		ws = ldmlfile.New()
	}
	dec := &decoder{Decoder: d, ws: ws, log: d.Logger}
	if dec.log == nil {
		dec.log = zap.NewNop()
	}
	if err := dec.decode(doc.Cursor()); err != nil {
		return nil, dec.warns.Return(), err
	}
	return ws, dec.warns.Return(), nil
}

type decoder struct {
	Decoder
	ws    *ldmlfile.Definition
	log   *zap.Logger
	warns errors.Errors

	// The tag was written in the FLEx convention, exempting the document
	// from the version check.
	flex bool
	// A palaso special element was read.
	palaso bool
}

func (d *decoder) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d *decoder) decode(c *xml.Cursor) error {
	if c.MoveToContent() != xml.ElementNode || c.Name() != "ldml" {
		return ErrMissingRoot
	}
	c.Read()
	if xml.FindElement(c, "identity") {
		if err := d.readIdentity(c.Subtree()); err != nil {
			return sectionError("decoding identity", err)
		}
	}
	if xml.FindElement(c, "layout") {
		d.readLayout(c.Subtree())
	}
	if xml.FindElement(c, "collations") {
		if err := d.readCollations(c.Subtree()); err != nil {
			return sectionError("decoding collations", err)
		}
	}
	for xml.FindElement(c, "special") {
		if err := d.readSpecial(c); err != nil {
			return err
		}
	}
	if !d.palaso && !d.flex {
		if err := d.checkVersion(""); err != nil {
			return err
		}
	}
	d.ws.StoreID = ""
	d.ws.Modified = false
	return nil
}

func (d *decoder) checkVersion(version string) error {
	if version == "" {
		version = "0"
	}
	expected := strconv.Itoa(ldmlfile.LatestDefinitionVersion)
	if version != expected {
		return VersionError{Tag: d.ws.Tag(), Found: version, Expected: expected}
	}
	return nil
}

// attrOf returns an attribute of the next element with the given name, or an
// empty string if there is no such element.
func attrOf(c *xml.Cursor, name, attr string) string {
	if !xml.FindElement(c, name) {
		return ""
	}
	return c.AttrOr(attr, "")
}

func (d *decoder) readIdentity(c *xml.Cursor) error {
	c.Read()
	if xml.FindElement(c, "version") {
		d.ws.VersionNumber = c.AttrOr("number", "")
		if c.IsEmpty() {
			c.Skip()
		} else {
			desc, err := xml.ReadLDMLText(c)
			if err != nil {
				return err
			}
			d.ws.VersionDescription = desc
		}
	}

	date, err := d.parseDate(attrOf(c, "generation", "date"))
	if err != nil {
		return err
	}
	d.ws.DateModified = date

	tag := flex.Tag{
		Language: attrOf(c, "language", "type"),
		Script:   attrOf(c, "script", "type"),
		Region:   attrOf(c, "territory", "type"),
		Variant:  attrOf(c, "variant", "type"),
	}
	d.ws.ID = tag.String()
	if ldmlfile.IsPrivateUse(tag.Language) {
		d.flex = true
		tag = flex.ToCanonical(tag)
		d.log.Debug("tag written in FLEx convention",
			zap.String("id", d.ws.ID),
			zap.String("tag", tag.String()),
		)
	}
	d.ws.SetAllComponents(tag.Language, tag.Script, tag.Region, tag.Variant)
	return nil
}

func (d *decoder) parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return d.now(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed generation date %q", s)
}

// readLayout reads the character orientation. Only right-to-left is
// distinguished; any other orientation is treated as left-to-right.
func (d *decoder) readLayout(c *xml.Cursor) {
	c.Read()
	d.ws.RightToLeftScript = attrOf(c, "orientation", "characters") == "right-to-left"
}

func isStandardCollation(c *xml.Cursor) bool {
	typ := c.AttrOr("type", "")
	return typ == "" || typ == "standard"
}

func (d *decoder) readCollations(c *xml.Cursor) error {
	c.Read()
	for xml.FindElement(c, "collation") {
		if isStandardCollation(c) {
			return d.readCollation(c.Subtree())
		}
		c.Skip()
	}
	return nil
}

// sortRulesType returns the mode marker within the special elements of the
// collation the cursor is positioned on.
func sortRulesType(c *xml.Cursor) (value string, ok bool) {
	c.Read()
	for xml.FindElement(c, "special") {
		sub := c.Subtree()
		sub.Read()
		if xml.FindNextElementInSequence(sub, "sortRulesType", PalasoNamespace, xml.CompareSpecialNames) {
			return sub.AttrOr("value", ""), true
		}
	}
	return "", false
}

func (d *decoder) readCollation(c *xml.Cursor) error {
	doc := c.Document()
	e := c.Element()
	if value, ok := sortRulesType(doc.ElementCursor(e)); ok && value != "" {
		mode, ok := ldmlfile.ParseSortRulesType(value)
		if !ok {
			return SortRulesError{Value: value}
		}
		d.ws.SortUsing = mode
	}
	switch d.ws.SortUsing {
	case ldmlfile.DefaultOrdering:
		return nil
	case ldmlfile.OtherLanguage:
		if source, ok := baseAlias(doc.ElementCursor(e)); ok {
			d.ws.SortRules = source
			return nil
		}
		d.fallback("missing base alias")
		d.ws.SortRules = collation.FormatICU(d.readRules(doc.ElementCursor(e)))
		return nil
	case ldmlfile.CustomSimple:
		rules := d.readRules(doc.ElementCursor(e))
		if simple, ok := collation.SimpleFromRules(rules); ok {
			d.ws.SortRules = simple
			return nil
		}
		d.fallback("rules are not simple")
		d.ws.SortRules = collation.FormatICU(rules)
		return nil
	case ldmlfile.CustomICU:
		d.ws.SortRules = collation.FormatICU(d.readRules(doc.ElementCursor(e)))
		return nil
	default:
		return SortRulesError{Mode: d.ws.SortUsing}
	}
}

func (d *decoder) fallback(reason string) {
	d.log.Debug("collation falls back to ICU rules",
		zap.Stringer("mode", d.ws.SortUsing),
		zap.String("reason", reason),
	)
	d.ws.SortUsing = ldmlfile.CustomICU
}

// baseAlias returns the source of the alias within the base element of the
// collation the cursor is positioned on.
func baseAlias(c *xml.Cursor) (source string, ok bool) {
	c.Read()
	if !xml.FindElement(c, "base") || c.IsEmpty() {
		return "", false
	}
	if !c.ReadToDescendant("alias", "") {
		return "", false
	}
	source, _ = c.Attr("source")
	return source, source != ""
}

// readRules reads the rules of the collation the cursor is positioned on.
// Malformed rules are read as far as possible and produce warnings.
func (d *decoder) readRules(c *xml.Cursor) []collation.Rule {
	c.Read()
	if !xml.FindElement(c, "rules") {
		return nil
	}
	rules, warn, err := collation.ReadRules(c)
	if err != nil {
		warn = errors.Union(warn, err)
	}
	if warn != nil {
		d.warns = d.warns.Append(warn)
		d.log.Debug("malformed collation rules",
			zap.String("tag", d.ws.Tag()),
			zap.Stringer("mode", d.ws.SortUsing),
			zap.Error(warn),
		)
	}
	return rules
}

// readSpecial reads a top-level special element, moving past it. Special
// elements in an unrecognized namespace are skipped.
func (d *decoder) readSpecial(c *xml.Cursor) error {
	switch {
	case c.Declares("palaso"):
		return d.readPalaso(c.Subtree())
	case c.Declares("palaso2"):
		d.readKnownKeyboards(c.Subtree())
	case c.Declares("fw"):
		sub := c.Subtree()
		sub.Read()
		d.ws.WindowsLCID = specialValue(sub, "windowsLCID", FieldWorksNamespace)
	default:
		d.log.Debug("skipped special", zap.Strings("attrs", attrNames(c)))
		c.Skip()
	}
	return nil
}

func attrNames(c *xml.Cursor) []string {
	e := c.Element()
	names := make([]string, 0, len(e.Attr))
	for _, a := range e.Attr {
		names = append(names, a.FullKey())
	}
	return names
}

// specialValue returns the value attribute of the next special value with the
// given name. Special values are ordered alphabetically.
func specialValue(c *xml.Cursor, field, ns string) string {
	if !xml.FindNextElementInSequence(c, field, ns, xml.CompareSpecialNames) {
		return ""
	}
	return c.AttrOr("value", "")
}

func (d *decoder) readPalaso(c *xml.Cursor) error {
	d.palaso = true
	c.Read()
	value := func(field string) string {
		return specialValue(c, field, PalasoNamespace)
	}
	ws := d.ws
	ws.Abbreviation = value("abbreviation")
	ws.DefaultFontName = value("defaultFontFamily")
	if size, err := strconv.ParseFloat(value("defaultFontSize"), 32); err == nil {
		ws.DefaultFontSize = float32(size)
	}
	ws.Keyboard = value("defaultKeyboard")
	if legacy := value("isLegacyEncoded"); legacy != "" {
		b, err := strconv.ParseBool(legacy)
		if err != nil {
			return fmt.Errorf("malformed isLegacyEncoded value %q", legacy)
		}
		ws.IsLegacyEncoded = b
	}
	ws.LanguageName = value("languageName")
	ws.SpellCheckingID = value("spellCheckingId")
	if d.flex {
		return nil
	}
	return d.checkVersion(value("version"))
}

func (d *decoder) readKnownKeyboards(c *xml.Cursor) {
	c.Read()
	if !xml.FindNextElementInSequence(c, "knownKeyboards", Palaso2Namespace, xml.CompareSpecialNames) {
		return
	}
	kbs := c.Subtree()
	kbs.Read()
	for xml.FindNextElementInSequence(kbs, "keyboard", Palaso2Namespace, xml.CompareSpecialNames) {
		d.ws.AddKnownKeyboard(ldmlfile.Keyboard{
			Layout:          kbs.AttrOr("layout", ""),
			Locale:          kbs.AttrOr("locale", ""),
			OperatingSystem: kbs.AttrOr("os", ""),
		})
		kbs.Skip()
	}
}
