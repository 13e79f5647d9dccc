package ldmlfile

import (
	"fmt"
)

// SortRulesType indicates how the SortRules field of a Definition is to be
// interpreted.
type SortRulesType uint8

const (
	// DefaultOrdering uses the default Unicode collation. SortRules is
	// ignored.
	DefaultOrdering SortRulesType = iota
	// OtherLanguage sorts the same way as another language. SortRules holds
	// the tag of that language.
	OtherLanguage
	// CustomSimple uses rules written in the simple line-based syntax.
	CustomSimple
	// CustomICU uses rules written in the ICU rule syntax.
	CustomICU
)

var sortRulesTypeNames = [...]string{
	DefaultOrdering: "DefaultOrdering",
	OtherLanguage:   "OtherLanguage",
	CustomSimple:    "CustomSimple",
	CustomICU:       "CustomICU",
}

func (t SortRulesType) String() string {
	if int(t) < len(sortRulesTypeNames) {
		return sortRulesTypeNames[t]
	}
	return fmt.Sprintf("SortRulesType(%d)", uint8(t))
}

// ParseSortRulesType returns the SortRulesType corresponding to the given
// name. The name must match exactly.
func ParseSortRulesType(s string) (t SortRulesType, ok bool) {
	for i, name := range sortRulesTypeNames {
		if name == s {
			return SortRulesType(i), true
		}
	}
	return DefaultOrdering, false
}

func (t SortRulesType) MarshalText() ([]byte, error) {
	if int(t) >= len(sortRulesTypeNames) {
		return nil, fmt.Errorf("unknown sort rules type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *SortRulesType) UnmarshalText(text []byte) error {
	v, ok := ParseSortRulesType(string(text))
	if !ok {
		return fmt.Errorf("unknown sort rules type %q", text)
	}
	*t = v
	return nil
}
