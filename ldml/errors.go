package ldml

import (
	"fmt"

	"github.com/writingsystems/ldmlfile"
	"github.com/writingsystems/ldmlfile/errors"
)

var (
	ErrMissingRoot    = errors.New("unable to load writing system definition: missing <ldml> tag")
	ErrNilReader      = errors.New("nil reader")
	ErrNilDefinition  = errors.New("nil definition")
	ErrNeedsMigration = errors.New("definition must be migrated")
)

// VersionError indicates a document of a version other than the one read by
// this package. It matches ErrNeedsMigration.
type VersionError struct {
	Tag      string
	Found    string
	Expected string
}

func (err VersionError) Error() string {
	return fmt.Sprintf("the LDML tag '%s' is version %s.  Version %s was expected.", err.Tag, err.Found, err.Expected)
}

func (err VersionError) Is(target error) bool {
	return target == ErrNeedsMigration
}

// SortRulesError indicates a collation mode that is not handled. Value is set
// when the mode was read from a document.
type SortRulesError struct {
	Mode  ldmlfile.SortRulesType
	Value string
}

func (err SortRulesError) Error() string {
	if err.Value != "" {
		return fmt.Sprintf("unhandled sort rules type %q", err.Value)
	}
	return fmt.Sprintf("unhandled sort rules type %s", err.Mode)
}

// SectionError wraps an error that occurred within a section of the
// document.
type SectionError struct {
	Section string
	Cause   error
}

func (err SectionError) Error() string {
	return fmt.Sprintf("%s: %s", err.Section, err.Cause)
}

func (err SectionError) Unwrap() error {
	return err.Cause
}

func sectionError(section string, err error) error {
	if err == nil {
		return nil
	}
	return SectionError{Section: section, Cause: err}
}
