// The declare package is used to generate writing system definitions in a
// declarative style.
//
// A Definition declaration is a list of field declarations which, when
// evaluated with Declare, produce a new ldmlfile.Definition.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//     import . "github.com/writingsystems/ldmlfile/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier.
package declare

import (
	"github.com/writingsystems/ldmlfile"
)

// field is implemented by declarations that can be within a Definition
// declaration.
type field interface {
	apply(ws *ldmlfile.Definition)
}

// Definition declares a ldmlfile.Definition. It is a list of field
// declarations.
type Definition []field

// Declare evaluates the Definition declaration, returning a new definition.
//
// Fields are evaluated in order; if two declarations set the same field, the
// latter takes precedence. KnownKeyboard declarations accumulate.
func (d Definition) Declare() *ldmlfile.Definition {
	ws := ldmlfile.New()
	for _, f := range d {
		if f != nil {
			f.apply(ws)
		}
	}
	return ws
}

type fieldFunc func(ws *ldmlfile.Definition)

func (f fieldFunc) apply(ws *ldmlfile.Definition) { f(ws) }

// Tag declares each subtag of the definition at once.
func Tag(language, script, region, variant string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) {
		ws.SetAllComponents(language, script, region, variant)
	})
}

// Language declares the language subtag.
func Language(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Language = s })
}

// Script declares the script subtag.
func Script(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Script = s })
}

// Region declares the region subtag.
func Region(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Region = s })
}

// Variant declares the variant subtags.
func Variant(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Variant = s })
}

// ID declares the free-text identifier.
func ID(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.ID = s })
}

// Version declares the identity version number and description.
func Version(number, description string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) {
		ws.VersionNumber = number
		ws.VersionDescription = description
	})
}

func Abbreviation(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Abbreviation = s })
}

func LanguageName(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.LanguageName = s })
}

// Font declares the default font family and size.
func Font(name string, size float32) field {
	return fieldFunc(func(ws *ldmlfile.Definition) {
		ws.DefaultFontName = name
		ws.DefaultFontSize = size
	})
}

// Keyboard declares the name of the default keyboard.
func Keyboard(name string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Keyboard = name })
}

// KnownKeyboard declares a keyboard to be added to the list of known
// keyboards. Duplicates are ignored.
func KnownKeyboard(layout, locale, os string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) {
		ws.AddKnownKeyboard(ldmlfile.Keyboard{Layout: layout, Locale: locale, OperatingSystem: os})
	})
}

func SpellCheckingID(s string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.SpellCheckingID = s })
}

// RightToLeft declares the definition's script to be written right to left.
func RightToLeft() field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.RightToLeftScript = true })
}

// LegacyEncoded declares the definition's text to be legacy-encoded.
func LegacyEncoded() field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.IsLegacyEncoded = true })
}

// Sort declares how the definition sorts text. The meaning of rules depends
// on using.
func Sort(using ldmlfile.SortRulesType, rules string) field {
	return fieldFunc(func(ws *ldmlfile.Definition) {
		ws.SortUsing = using
		ws.SortRules = rules
	})
}

// Modified declares the definition to have unsaved changes.
func Modified() field {
	return fieldFunc(func(ws *ldmlfile.Definition) { ws.Modified = true })
}
