// The ldmlfile package handles the decoding, encoding, and manipulation of
// writing system definitions stored in LDML files.
//
// A writing system definition describes the identity of a writing system (its
// language, script, region, and variant subtags), how text in it is sorted,
// and a number of application defaults such as the font and keyboard to use.
// Such data structures begin with a Definition struct.
//
// Definitions can be decoded from and encoded to the LDML dialect through the
// "ldml" sub-package. The encoder is able to round-trip data it does not
// understand when given the previous content of the file. Definitions can also
// be created manually; the "declare" sub-package provides an easy way to do
// this.
package ldmlfile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// LatestDefinitionVersion is the version of the LDML dialect produced by this
// package. Files of other versions must be migrated before they can be read.
const LatestDefinitionVersion = 1

////////////////////////////////////////////////////////////////

// Definition represents a single writing system definition.
type Definition struct {
	// Language is the primary language subtag. A subtag beginning with
	// "x-" is private-use.
	Language string

	// Script is the script subtag.
	Script string

	// Region is the region (territory) subtag.
	Region string

	// Variant holds the variant subtags, including any private-use section
	// beginning with "x-".
	Variant string

	// ID is a free-text identifier. When decoding, it is set to the subtags
	// exactly as they appeared in the file.
	ID string

	// StoreID identifies the definition within a repository. It is reset
	// after every successful read.
	StoreID string

	// VersionNumber and VersionDescription correspond to the identity
	// version element. They are unrelated to the dialect version.
	VersionNumber      string
	VersionDescription string

	// DateModified is the generation date of the definition.
	DateModified time.Time

	Abbreviation string

	// LanguageName is the display name of the language.
	LanguageName string

	DefaultFontName string
	DefaultFontSize float32

	// Keyboard is the name of the default keyboard.
	Keyboard string

	// KnownKeyboards lists keyboards that have been used with the writing
	// system.
	KnownKeyboards []Keyboard

	// IsLegacyEncoded indicates that text in the writing system is not
	// Unicode-encoded.
	IsLegacyEncoded bool

	SpellCheckingID string

	// RightToLeftScript indicates that characters are written right to left.
	RightToLeftScript bool

	// SortUsing selects how SortRules is interpreted.
	SortUsing SortRulesType

	// SortRules is the collation payload. Its syntax depends on SortUsing.
	SortRules string

	// WindowsLCID is a numeric locale identifier provided by FieldWorks. It
	// is read but never written.
	WindowsLCID string

	// Modified indicates whether the definition has unsaved changes.
	Modified bool
}

// Keyboard describes a keyboard known to be used with a writing system.
type Keyboard struct {
	Layout          string
	Locale          string
	OperatingSystem string
}

// New returns an empty Definition.
func New() *Definition {
	return &Definition{}
}

// Copy returns a deep copy of the definition.
func (ws *Definition) Copy() *Definition {
	c := *ws
	if ws.KnownKeyboards != nil {
		c.KnownKeyboards = make([]Keyboard, len(ws.KnownKeyboards))
		copy(c.KnownKeyboards, ws.KnownKeyboards)
	}
	return &c
}

// SetAllComponents sets each of the tag subtags at once.
func (ws *Definition) SetAllComponents(language, script, region, variant string) {
	ws.Language = language
	ws.Script = script
	ws.Region = region
	ws.Variant = variant
}

// Tag returns the language tag composed of the non-empty subtags.
func (ws *Definition) Tag() string {
	return JoinSubtags(ws.Language, ws.Script, ws.Region, ws.Variant)
}

// JoinSubtags joins the non-empty subtags with a dash.
func JoinSubtags(subtags ...string) string {
	parts := make([]string, 0, len(subtags))
	for _, s := range subtags {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// IsPrivateUse returns whether a subtag is in the private-use section of a tag.
func IsPrivateUse(subtag string) bool {
	return strings.EqualFold(subtag, "x") || len(subtag) > 2 && strings.EqualFold(subtag[:2], "x-")
}

// AddKnownKeyboard adds a keyboard to the list of known keyboards, unless an
// equal keyboard is already present.
func (ws *Definition) AddKnownKeyboard(kb Keyboard) {
	for _, k := range ws.KnownKeyboards {
		if k == kb {
			return
		}
	}
	ws.KnownKeyboards = append(ws.KnownKeyboards, kb)
}

////////////////////////////////////////////////////////////////

// ErrEmptyTag indicates a definition without a language subtag.
var ErrEmptyTag = errors.New("writing system has no language subtag")

// InvalidTagError indicates a definition whose subtags do not compose a
// well-formed language tag.
type InvalidTagError struct {
	Tag   string
	Cause error
}

func (err InvalidTagError) Error() string {
	return fmt.Sprintf("invalid language tag %q: %s", err.Tag, err.Cause)
}

func (err InvalidTagError) Unwrap() error {
	return err.Cause
}

// Validate checks that the definition can be persisted: it must have a
// language subtag, and its subtags must compose a well-formed BCP 47 tag.
func (ws *Definition) Validate() error {
	if ws.Language == "" {
		return ErrEmptyTag
	}
	tag := ws.Tag()
	if _, err := language.Parse(tag); err != nil {
		return InvalidTagError{Tag: tag, Cause: err}
	}
	return nil
}
