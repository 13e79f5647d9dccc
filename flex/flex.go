// The flex package interprets the private-use language tags written by
// FieldWorks Language Explorer (FLEx).
//
// FLEx stores the private-use part of a tag in the language subtag, as in
// "x-kal". The canonical form moves it into the variant as a private-use
// section, with "qaa" as the language, as in "qaa-x-kal".
package flex

import (
	"strings"

	"github.com/writingsystems/ldmlfile"
)

// UnlistedLanguage is the language subtag reserved for languages without a
// code of their own.
const UnlistedLanguage = "qaa"

// Tag holds the subtags of a language tag.
type Tag struct {
	Language string
	Script   string
	Region   string
	Variant  string
}

// String returns the subtags, joined by a dash.
func (t Tag) String() string {
	parts := make([]string, 0, 4)
	for _, s := range [...]string{t.Language, t.Script, t.Region, t.Variant} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// splitVariant separates the registered variants from the private-use
// subtags.
func splitVariant(variant string) (registered, private string) {
	if variant == "" {
		return "", ""
	}
	subtags := strings.Split(variant, "-")
	for i, s := range subtags {
		if strings.EqualFold(s, "x") {
			return strings.Join(subtags[:i], "-"), strings.Join(subtags[i+1:], "-")
		}
	}
	return variant, ""
}

func joinVariant(registered, private string) string {
	switch {
	case private == "":
		return registered
	case registered == "":
		return "x-" + private
	default:
		return registered + "-x-" + private
	}
}

// ToCanonical converts a tag written in the FLEx convention to the canonical
// form. A tag is in the FLEx convention if its language subtag is
// private-use, as reported by ldmlfile.IsPrivateUse. Other tags are returned
// unchanged.
func ToCanonical(t Tag) Tag {
	if !ldmlfile.IsPrivateUse(t.Language) {
		return t
	}
	var private string
	if len(t.Language) > 2 {
		private = t.Language[2:]
	}
	registered, rest := splitVariant(t.Variant)
	if rest != "" {
		if private != "" {
			private += "-" + rest
		} else {
			private = rest
		}
	}
	return Tag{
		Language: UnlistedLanguage,
		Script:   t.Script,
		Region:   t.Region,
		Variant:  joinVariant(registered, private),
	}
}

// ToFlex converts a canonical tag with an unlisted language back to the FLEx
// convention, moving the first private-use subtag into the language. Other
// tags are returned unchanged.
func ToFlex(t Tag) Tag {
	if !strings.EqualFold(t.Language, UnlistedLanguage) {
		return t
	}
	registered, private := splitVariant(t.Variant)
	if private == "" {
		return t
	}
	first, rest := private, ""
	if i := strings.IndexByte(private, '-'); i >= 0 {
		first, rest = private[:i], private[i+1:]
	}
	return Tag{
		Language: "x-" + first,
		Script:   t.Script,
		Region:   t.Region,
		Variant:  joinVariant(registered, rest),
	}
}
