package ldmlfile

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefinitionTag(t *testing.T) {
	ws := New()
	ws.SetAllComponents("en", "Latn", "", "fonipa-x-audio")
	if s := ws.Tag(); s != "en-Latn-fonipa-x-audio" {
		t.Errorf("unexpected tag %q", s)
	}
	if s := JoinSubtags("", "", ""); s != "" {
		t.Errorf("expected empty tag, got %q", s)
	}
}

func TestIsPrivateUse(t *testing.T) {
	for s, want := range map[string]bool{
		"x":     true,
		"X-kal": true,
		"x-":    false,
		"X":     true,
		"xkal":  false,
		"xh":    false,
		"qaa":   false,
		"en":    false,
		"":      false,
	} {
		if got := IsPrivateUse(s); got != want {
			t.Errorf("IsPrivateUse(%q) = %t, expected %t", s, got, want)
		}
	}
}

func TestDefinitionCopy(t *testing.T) {
	ws := &Definition{Language: "en", KnownKeyboards: []Keyboard{{Layout: "US"}}}
	c := ws.Copy()
	if c == ws {
		t.Fatal("copy equals original")
	}
	c.KnownKeyboards[0].Layout = "UK"
	c.Language = "fr"
	if ws.KnownKeyboards[0].Layout != "US" || ws.Language != "en" {
		t.Error("modifying copy modified original")
	}
	if New().Copy().KnownKeyboards != nil {
		t.Error("expected nil keyboards in copy")
	}
}

func TestAddKnownKeyboard(t *testing.T) {
	ws := New()
	ws.AddKnownKeyboard(Keyboard{Layout: "US", Locale: "en-US"})
	ws.AddKnownKeyboard(Keyboard{Layout: "US", Locale: "en-US"})
	ws.AddKnownKeyboard(Keyboard{Layout: "US", Locale: "en-GB"})
	if n := len(ws.KnownKeyboards); n != 2 {
		t.Errorf("expected 2 keyboards, got %d", n)
	}
}

func TestDefinitionValidate(t *testing.T) {
	if err := New().Validate(); !errors.Is(err, ErrEmptyTag) {
		t.Errorf("expected ErrEmptyTag, got %v", err)
	}
	for _, tag := range [][4]string{
		{"en", "", "", ""},
		{"en", "Latn", "US", ""},
		{"qaa", "", "", "x-kal"},
	} {
		ws := New()
		ws.SetAllComponents(tag[0], tag[1], tag[2], tag[3])
		if err := ws.Validate(); err != nil {
			t.Errorf("%s: unexpected error: %s", ws.Tag(), err)
		}
	}
	ws := &Definition{Language: "e$"}
	var terr InvalidTagError
	if err := ws.Validate(); !errors.As(err, &terr) {
		t.Errorf("expected InvalidTagError, got %v", err)
	} else if terr.Tag != "e$" || terr.Cause == nil {
		t.Errorf("unexpected error content %#v", terr)
	}
}

func TestSortRulesType(t *testing.T) {
	for i, name := range []string{"DefaultOrdering", "OtherLanguage", "CustomSimple", "CustomICU"} {
		typ := SortRulesType(i)
		if s := typ.String(); s != name {
			t.Errorf("SortRulesType(%d).String() = %q, expected %q", i, s, name)
		}
		b, err := typ.MarshalText()
		if err != nil || string(b) != name {
			t.Errorf("MarshalText(%d) = %q, %v", i, b, err)
		}
		var u SortRulesType
		if err := u.UnmarshalText([]byte(name)); err != nil || u != typ {
			t.Errorf("UnmarshalText(%q) = %s, %v", name, u, err)
		}
	}
	if s := SortRulesType(9).String(); s != "SortRulesType(9)" {
		t.Errorf("unexpected string %q", s)
	}
	if _, err := SortRulesType(9).MarshalText(); err == nil {
		t.Error("expected error marshaling unknown type")
	}
	if _, ok := ParseSortRulesType("customicu"); ok {
		t.Error("names must match exactly")
	}
}

func TestDefinitionJSON(t *testing.T) {
	ws := &Definition{
		Language:        "en",
		Region:          "US",
		VersionNumber:   "3",
		DateModified:    time.Date(2010, 4, 1, 12, 30, 0, 0, time.UTC),
		DefaultFontName: "Charis SIL",
		DefaultFontSize: 12.5,
		KnownKeyboards:  []Keyboard{{Layout: "US", Locale: "en-US", OperatingSystem: "Win32NT"}},
		SortUsing:       CustomICU,
		SortRules:       "&a < b",
	}
	b, err := json.Marshal(ws)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	var got Definition
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if diff := cmp.Diff(ws, &got); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["ldmlfile_version"] != float64(0) || m["sortUsing"] != "CustomICU" {
		t.Errorf("unexpected JSON object %s", b)
	}

	for _, doc := range []string{
		`{"language":"en"}`,
		`{"ldmlfile_version":1,"language":"en"}`,
		`{"ldmlfile_version":0,"sortUsing":"Sideways"}`,
		`[]`,
	} {
		if err := json.Unmarshal([]byte(doc), new(Definition)); err == nil {
			t.Errorf("%s: expected error", doc)
		}
	}
}
