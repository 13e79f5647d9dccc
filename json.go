package ldmlfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MarshalJSON encodes the definition as a JSON object. The object carries a
// format version in the "ldmlfile_version" field.
func (ws *Definition) MarshalJSON() (b []byte, err error) {
	return json.Marshal(definitionToJSON(ws))
}

// UnmarshalJSON decodes a JSON object produced by MarshalJSON.
func (ws *Definition) UnmarshalJSON(b []byte) (err error) {
	var v jsonDefinition
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Version == nil {
		return errors.New("invalid JSON Definition object: missing ldmlfile_version")
	}
	if *v.Version != jsonVersion {
		return fmt.Errorf("unsupported JSON Definition version %d", *v.Version)
	}
	*ws = *definitionFromJSON(&v)
	return nil
}

const jsonVersion = 0

type jsonKeyboard struct {
	Layout string `json:"layout"`
	Locale string `json:"locale,omitempty"`
	OS     string `json:"os,omitempty"`
}

type jsonDefinition struct {
	Version *int `json:"ldmlfile_version"`

	Language string `json:"language"`
	Script   string `json:"script,omitempty"`
	Region   string `json:"region,omitempty"`
	Variant  string `json:"variant,omitempty"`
	ID       string `json:"id,omitempty"`
	StoreID  string `json:"storeId,omitempty"`

	VersionNumber      string `json:"versionNumber,omitempty"`
	VersionDescription string `json:"versionDescription,omitempty"`
	DateModified       string `json:"dateModified,omitempty"`

	Abbreviation    string         `json:"abbreviation,omitempty"`
	LanguageName    string         `json:"languageName,omitempty"`
	DefaultFontName string         `json:"defaultFontName,omitempty"`
	DefaultFontSize float32        `json:"defaultFontSize,omitempty"`
	Keyboard        string         `json:"keyboard,omitempty"`
	KnownKeyboards  []jsonKeyboard `json:"knownKeyboards,omitempty"`
	IsLegacyEncoded bool           `json:"isLegacyEncoded,omitempty"`
	SpellCheckingID string         `json:"spellCheckingId,omitempty"`
	RightToLeft     bool           `json:"rightToLeft,omitempty"`

	SortUsing SortRulesType `json:"sortUsing"`
	SortRules string        `json:"sortRules,omitempty"`

	WindowsLCID string `json:"windowsLcid,omitempty"`
	Modified    bool   `json:"modified,omitempty"`
}

func definitionToJSON(ws *Definition) *jsonDefinition {
	version := jsonVersion
	v := &jsonDefinition{
		Version:            &version,
		Language:           ws.Language,
		Script:             ws.Script,
		Region:             ws.Region,
		Variant:            ws.Variant,
		ID:                 ws.ID,
		StoreID:            ws.StoreID,
		VersionNumber:      ws.VersionNumber,
		VersionDescription: ws.VersionDescription,
		Abbreviation:       ws.Abbreviation,
		LanguageName:       ws.LanguageName,
		DefaultFontName:    ws.DefaultFontName,
		DefaultFontSize:    ws.DefaultFontSize,
		Keyboard:           ws.Keyboard,
		IsLegacyEncoded:    ws.IsLegacyEncoded,
		SpellCheckingID:    ws.SpellCheckingID,
		RightToLeft:        ws.RightToLeftScript,
		SortUsing:          ws.SortUsing,
		SortRules:          ws.SortRules,
		WindowsLCID:        ws.WindowsLCID,
		Modified:           ws.Modified,
	}
	if !ws.DateModified.IsZero() {
		v.DateModified = ws.DateModified.Format(time.RFC3339Nano)
	}
	for _, kb := range ws.KnownKeyboards {
		v.KnownKeyboards = append(v.KnownKeyboards, jsonKeyboard{
			Layout: kb.Layout,
			Locale: kb.Locale,
			OS:     kb.OperatingSystem,
		})
	}
	return v
}

func definitionFromJSON(v *jsonDefinition) *Definition {
	ws := &Definition{
		Language:           v.Language,
		Script:             v.Script,
		Region:             v.Region,
		Variant:            v.Variant,
		ID:                 v.ID,
		StoreID:            v.StoreID,
		VersionNumber:      v.VersionNumber,
		VersionDescription: v.VersionDescription,
		Abbreviation:       v.Abbreviation,
		LanguageName:       v.LanguageName,
		DefaultFontName:    v.DefaultFontName,
		DefaultFontSize:    v.DefaultFontSize,
		Keyboard:           v.Keyboard,
		IsLegacyEncoded:    v.IsLegacyEncoded,
		SpellCheckingID:    v.SpellCheckingID,
		RightToLeftScript:  v.RightToLeft,
		SortUsing:          v.SortUsing,
		SortRules:          v.SortRules,
		WindowsLCID:        v.WindowsLCID,
		Modified:           v.Modified,
	}
	if t, err := time.Parse(time.RFC3339Nano, v.DateModified); err == nil {
		ws.DateModified = t
	}
	for _, kb := range v.KnownKeyboards {
		ws.KnownKeyboards = append(ws.KnownKeyboards, Keyboard{
			Layout:          kb.Layout,
			Locale:          kb.Locale,
			OperatingSystem: kb.OS,
		})
	}
	return ws
}
