package ldml

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/writingsystems/ldmlfile"
	"github.com/writingsystems/ldmlfile/errors"
)

var testDate = time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)

const (
	palasoDecl  = `xmlns:palaso="urn://palaso.org/ldmlExtensions/v1"`
	palaso2Decl = `xmlns:palaso2="urn://palaso.org/ldmlExtensions/v2"`
	fwDecl      = `xmlns:fw="urn://fieldworks.sil.org/ldmlExtensions/v1"`
)

// Fixture builders.

func ldmlDoc(parts ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?><ldml>` + strings.Join(parts, "") + `</ldml>`
}

func identity(language string, extra ...string) string {
	return `<identity><generation date="2024-03-05T10:20:30"/><language type="` + language + `"/>` +
		strings.Join(extra, "") + `</identity>`
}

func version(v string) string {
	return `<special ` + palasoDecl + `><palaso:version value="` + v + `"/></special>`
}

func collationInfo(sortUsing string, content ...string) string {
	return `<collations><collation>` + strings.Join(content, "") +
		`<special ` + palasoDecl + `><palaso:sortRulesType value="` + sortUsing + `"/></special>` +
		`</collation></collations>`
}

func decode(t *testing.T, doc string) *ldmlfile.Definition {
	t.Helper()
	ws, _, err := Decoder{}.Decode(strings.NewReader(doc), nil)
	require.NoError(t, err)
	return ws
}

func encode(t *testing.T, enc Encoder, ws *ldmlfile.Definition, old string) string {
	t.Helper()
	var buf bytes.Buffer
	var err error
	if old != "" {
		_, err = enc.Encode(&buf, ws, strings.NewReader(old))
	} else {
		_, err = enc.Encode(&buf, ws, nil)
	}
	require.NoError(t, err)
	return buf.String()
}

func TestEncodeDefault(t *testing.T) {
	ws := ldmlfile.New()
	ws.Language = "en"
	ws.DateModified = testDate
	got := encode(t, Encoder{}, ws, "")
	want := `<?xml version="1.0" encoding="utf-8"?>
<ldml>
	<identity>
		<version number="" />
		<generation date="2024-03-05T10:20:30" />
		<language type="en" />
	</identity>
	<collations />
	<special xmlns:palaso="urn://palaso.org/ldmlExtensions/v1">
		<palaso:version value="1" />
	</special>
</ldml>`
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "<layout")
}

func fullDefinition(mode ldmlfile.SortRulesType, rtl bool) *ldmlfile.Definition {
	ws := ldmlfile.New()
	ws.SetAllComponents("en", "Latn", "US", "fonipa")
	ws.ID = ws.Tag()
	ws.VersionNumber = "1.0"
	ws.VersionDescription = "first\rdraft"
	ws.DateModified = testDate
	ws.Abbreviation = "eng"
	ws.LanguageName = "English"
	ws.DefaultFontName = "Charis SIL"
	ws.DefaultFontSize = 12.5
	ws.Keyboard = "US"
	ws.IsLegacyEncoded = true
	ws.SpellCheckingID = "en_US"
	ws.RightToLeftScript = rtl
	ws.SortUsing = mode
	switch mode {
	case ldmlfile.OtherLanguage:
		ws.SortRules = "fr"
	case ldmlfile.CustomSimple:
		ws.SortRules = "a A\n(b B) c\nd"
	case ldmlfile.CustomICU:
		ws.SortRules = "&a < b << B\n&[before 1][first non-ignorable] < z"
	}
	if rtl {
		ws.KnownKeyboards = []ldmlfile.Keyboard{
			{Layout: "us", Locale: "en-US", OperatingSystem: "Win32NT"},
			{Layout: "dvorak", Locale: "en-US", OperatingSystem: "Unix"},
		}
	}
	return ws
}

func TestRoundTrip(t *testing.T) {
	modes := []ldmlfile.SortRulesType{
		ldmlfile.DefaultOrdering,
		ldmlfile.OtherLanguage,
		ldmlfile.CustomSimple,
		ldmlfile.CustomICU,
	}
	for _, mode := range modes {
		for _, rtl := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/rtl=%t", mode, rtl), func(t *testing.T) {
				ws := fullDefinition(mode, rtl)
				first := encode(t, Encoder{}, ws, "")

				got := decode(t, first)
				if diff := cmp.Diff(ws, got); diff != "" {
					t.Fatalf("unexpected definition (-want +got):\n%s", diff)
				}

				second := encode(t, Encoder{}, got, first)
				assert.Equal(t, first, second)
			})
		}
	}
}

func TestUnknownContentPreserved(t *testing.T) {
	old := `<?xml version="1.0" encoding="utf-8"?>
<ldml>
<!-- generated -->
<identity><version number=""/><generation date="2024-03-05T10:20:30"/><language type="en"/><special xmlns:x="urn:x"><x:note value="n"/></special></identity>
<characters><exemplarCharacters>[a-z]</exemplarCharacters></characters>
<collations><collation><rules><reset>a</reset><p>b</p></rules><special ` + palasoDecl + `><palaso:sortRulesType value="CustomICU"/></special><special xmlns:y="urn:y"><y:extra/></special></collation></collations>
<special ` + palasoDecl + `><palaso:version value="1"/></special>
<special ` + fwDecl + `><fw:windowsLCID value="1033"/></special>
</ldml>`
	ws := decode(t, old)
	assert.Equal(t, ldmlfile.CustomICU, ws.SortUsing)
	assert.Equal(t, "&a < b", ws.SortRules)
	assert.Equal(t, "1033", ws.WindowsLCID)

	ws.LanguageName = "English"
	got := encode(t, Encoder{}, ws, old)
	want := `<?xml version="1.0" encoding="utf-8"?>
<ldml>
	<!-- generated -->
	<identity>
		<version number="" />
		<generation date="2024-03-05T10:20:30" />
		<language type="en" />
		<special xmlns:x="urn:x">
			<x:note value="n" />
		</special>
	</identity>
	<characters>
		<exemplarCharacters>[a-z]</exemplarCharacters>
	</characters>
	<collations>
		<collation>
			<rules>
				<reset>a</reset>
				<p>b</p>
			</rules>
			<special xmlns:palaso="urn://palaso.org/ldmlExtensions/v1">
				<palaso:sortRulesType value="CustomICU" />
			</special>
			<special xmlns:y="urn:y">
				<y:extra />
			</special>
		</collation>
	</collations>
	<special xmlns:palaso="urn://palaso.org/ldmlExtensions/v1">
		<palaso:languageName value="English" />
		<palaso:version value="1" />
	</special>
	<special xmlns:fw="urn://fieldworks.sil.org/ldmlExtensions/v1">
		<fw:windowsLCID value="1033" />
	</special>
</ldml>`
	assert.Equal(t, want, got)
}

func TestVersionMismatch(t *testing.T) {
	doc := ldmlDoc(`<identity><language type="en"/></identity><collations/>`, version("0"))
	_, _, err := Decoder{}.Decode(strings.NewReader(doc), nil)
	var verr VersionError
	require.True(t, errors.As(err, &verr), "expected VersionError, got %v", err)
	assert.Equal(t, VersionError{Tag: "en", Found: "0", Expected: "1"}, verr)
	assert.ErrorIs(t, err, ErrNeedsMigration)
	assert.Equal(t, "the LDML tag 'en' is version 0.  Version 1 was expected.", err.Error())

	doc = ldmlDoc(identity("en"), version("99"))
	_, _, err = Decoder{}.Decode(strings.NewReader(doc), nil)
	assert.ErrorIs(t, err, ErrNeedsMigration)

	doc = ldmlDoc(identity("en"))
	_, _, err = Decoder{}.Decode(strings.NewReader(doc), nil)
	require.True(t, errors.As(err, &verr), "missing special must be version 0")
	assert.Equal(t, "0", verr.Found)
}

func TestVersionFlexExempt(t *testing.T) {
	for _, doc := range []string{
		ldmlDoc(identity("x-kal"), version("0")),
		ldmlDoc(identity("x-kal"), version("99")),
		ldmlDoc(identity("x-kal")),
	} {
		ws := decode(t, doc)
		assert.Equal(t, "qaa", ws.Language)
		assert.Equal(t, "x-kal", ws.Variant)
		assert.Equal(t, "x-kal", ws.ID)
	}
}

func TestDecodeIdentity(t *testing.T) {
	doc := ldmlDoc(
		`<identity><version number="3">draft</version><generation date="$Date: 2008/06/18 22:52:35 $"/>`+
			`<language type="de"/><script type="Latn"/><territory type="CH"/><variant type="1901"/></identity>`,
		version("1"),
	)
	ws := decode(t, doc)
	assert.Equal(t, "3", ws.VersionNumber)
	assert.Equal(t, "draft", ws.VersionDescription)
	assert.True(t, ws.DateModified.Equal(time.Date(2008, 6, 18, 22, 52, 35, 0, time.UTC)))
	assert.Equal(t, "de-Latn-CH-1901", ws.Tag())
	assert.Equal(t, "de-Latn-CH-1901", ws.ID)

	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	dec := Decoder{Now: func() time.Time { return now }}
	ws, _, err := dec.Decode(strings.NewReader(ldmlDoc(`<identity><language type="en"/></identity>`, version("1"))), nil)
	require.NoError(t, err)
	assert.Equal(t, now, ws.DateModified)

	_, _, err = Decoder{}.Decode(strings.NewReader(ldmlDoc(`<identity><generation date="yesterday"/></identity>`, version("1"))), nil)
	var serr SectionError
	assert.True(t, errors.As(err, &serr))
}

func TestDecodeKeepsDefaults(t *testing.T) {
	defaults := ldmlfile.New()
	defaults.Keyboard = "default"
	defaults.StoreID = "store"
	defaults.Modified = true
	ws, _, err := Decoder{}.Decode(strings.NewReader(ldmlDoc(identity("en"), version("1"))), defaults)
	require.NoError(t, err)
	assert.Equal(t, "", ws.Keyboard, "keyboard is read from the palaso special")
	assert.Equal(t, "", ws.StoreID)
	assert.False(t, ws.Modified)
	assert.Equal(t, "store", defaults.StoreID, "defaults must not be modified")
}

func TestDecodeMissingRoot(t *testing.T) {
	_, _, err := Decoder{}.Decode(strings.NewReader(`<notldml/>`), nil)
	assert.ErrorIs(t, err, ErrMissingRoot)
	_, _, err = Decoder{}.Decode(nil, nil)
	assert.ErrorIs(t, err, ErrNilReader)
	_, _, err = Decoder{}.Decode(strings.NewReader(`<ldml><identity x=></identity></ldml>`), nil)
	assert.Error(t, err)
}

func TestDecodeCollationFallback(t *testing.T) {
	rules := `<rules><reset>a</reset><p>b</p></rules>`

	ws := decode(t, ldmlDoc(identity("en"), collationInfo("OtherLanguage", rules), version("1")))
	assert.Equal(t, ldmlfile.CustomICU, ws.SortUsing)
	assert.Equal(t, "&a < b", ws.SortRules)

	ws = decode(t, ldmlDoc(identity("en"), collationInfo("OtherLanguage", `<base><alias source=""/></base>`, rules), version("1")))
	assert.Equal(t, ldmlfile.CustomICU, ws.SortUsing, "empty alias falls back")

	ws = decode(t, ldmlDoc(identity("en"), collationInfo("OtherLanguage", `<base><alias source="fr"/></base>`), version("1")))
	assert.Equal(t, ldmlfile.OtherLanguage, ws.SortUsing)
	assert.Equal(t, "fr", ws.SortRules)

	ws = decode(t, ldmlDoc(identity("en"), collationInfo("CustomSimple", rules), version("1")))
	assert.Equal(t, ldmlfile.CustomICU, ws.SortUsing, "rules without simple anchor fall back")
	assert.Equal(t, "&a < b", ws.SortRules)

	simple := `<rules><reset before="primary"><first_non_ignorable/></reset><p>a</p><s>A</s></rules>`
	ws = decode(t, ldmlDoc(identity("en"), collationInfo("CustomSimple", simple), version("1")))
	assert.Equal(t, ldmlfile.CustomSimple, ws.SortUsing)
	assert.Equal(t, "a A", ws.SortRules)
}

func TestDecodeMalformedRules(t *testing.T) {
	tests := []struct {
		mode  string
		rules string
		want  string
	}{
		{"CustomSimple", `<rules><p>a</p><p>b</p></rules>`, "< a < b"},
		{"CustomICU", `<rules><reset before="quaternary">a</reset><p>b</p></rules>`, "&a < b"},
		{"CustomICU", `<rules><reset>a</reset><p><cp hex="ZZ"/></p><s>b</s></rules>`, "&a << b"},
		{"OtherLanguage", `<rules><p>a</p></rules>`, "< a"},
	}
	for _, test := range tests {
		doc := ldmlDoc(identity("en"), collationInfo(test.mode, test.rules), version("1"))
		ws, warn, err := Decoder{}.Decode(strings.NewReader(doc), nil)
		require.NoError(t, err, test.rules)
		assert.Error(t, warn, test.rules)
		assert.Equal(t, ldmlfile.CustomICU, ws.SortUsing, test.rules)
		assert.Equal(t, test.want, ws.SortRules, test.rules)
	}
}

func TestDecodeCollationSelection(t *testing.T) {
	doc := ldmlDoc(identity("en"),
		`<collations><collation type="phonebook"><base><alias source="de"/></base>`+
			`<special `+palasoDecl+`><palaso:sortRulesType value="OtherLanguage"/></special></collation>`+
			`<collation type="standard"><rules><reset>c</reset><p>d</p></rules>`+
			`<special `+palasoDecl+`><palaso:sortRulesType value="CustomICU"/></special></collation></collations>`,
		version("1"))
	ws := decode(t, doc)
	assert.Equal(t, ldmlfile.CustomICU, ws.SortUsing)
	assert.Equal(t, "&c < d", ws.SortRules)

	_, _, err := Decoder{}.Decode(strings.NewReader(ldmlDoc(identity("en"), collationInfo("Bogus"), version("1"))), nil)
	var serr SortRulesError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "Bogus", serr.Value)
}

func TestDecodeSpecials(t *testing.T) {
	doc := ldmlDoc(identity("en"), `<collations/>`,
		`<special `+palasoDecl+`>`+
			`<palaso:abbreviation value="eng"/>`+
			`<palaso:defaultFontFamily value="Doulos SIL"/>`+
			`<palaso:defaultFontSize value="14"/>`+
			`<palaso:defaultKeyboard value="US"/>`+
			`<palaso:isLegacyEncoded value="True"/>`+
			`<palaso:languageName value="English"/>`+
			`<palaso:spellCheckingId value="en_GB"/>`+
			`<palaso:version value="1"/>`+
			`</special>`,
		`<special `+palaso2Decl+`><palaso2:knownKeyboards>`+
			`<palaso2:keyboard layout="us" locale="en-US" os="Unix"/>`+
			`<palaso2:keyboard layout="us" locale="en-US" os="Unix"/>`+
			`</palaso2:knownKeyboards><palaso2:version value="1"/></special>`,
		`<special xmlns:other="urn:other"><other:thing/></special>`,
	)
	ws := decode(t, doc)
	assert.Equal(t, "eng", ws.Abbreviation)
	assert.Equal(t, "Doulos SIL", ws.DefaultFontName)
	assert.Equal(t, float32(14), ws.DefaultFontSize)
	assert.Equal(t, "US", ws.Keyboard)
	assert.True(t, ws.IsLegacyEncoded)
	assert.Equal(t, "English", ws.LanguageName)
	assert.Equal(t, "en_GB", ws.SpellCheckingID)
	assert.Equal(t, []ldmlfile.Keyboard{{Layout: "us", Locale: "en-US", OperatingSystem: "Unix"}}, ws.KnownKeyboards)
}

func TestEncodeEscapesText(t *testing.T) {
	ws := ldmlfile.New()
	ws.Language = "en"
	ws.DateModified = testDate
	ws.VersionDescription = "a\rb \U0001F600"
	got := encode(t, Encoder{}, ws, "")
	assert.Contains(t, got, `<version number="">a<cp hex="D" />b `+"\U0001F600"+`</version>`)
	assert.NotContains(t, got, "\r")
}

func TestEncodeInvalidRulesOmitted(t *testing.T) {
	for _, mode := range []ldmlfile.SortRulesType{ldmlfile.CustomICU, ldmlfile.CustomSimple} {
		ws := ldmlfile.New()
		ws.Language = "en"
		ws.SortUsing = mode
		ws.SortRules = "&a <<<< b"
		if mode == ldmlfile.CustomSimple {
			ws.SortRules = "a a"
		}
		var buf bytes.Buffer
		warn, err := Encoder{}.Encode(&buf, ws, nil)
		require.NoError(t, err)
		assert.Error(t, warn, "dropped rules must produce a warning")
		assert.NotContains(t, buf.String(), "<rules>")
		assert.Contains(t, buf.String(), `<palaso:sortRulesType value="`+mode.String()+`" />`)
	}
}

func TestEncodeDefaultOrderingPreservesUnknown(t *testing.T) {
	old := ldmlDoc(identity("en"),
		`<collations><collation><rules><reset>a</reset><p>b</p></rules>`+
			`<special `+palasoDecl+`><palaso:sortRulesType value="CustomICU"/></special>`+
			`<special xmlns:y="urn:y"><y:extra/></special></collation></collations>`,
		version("1"))
	ws := decode(t, old)
	ws.SortUsing = ldmlfile.DefaultOrdering
	got := encode(t, Encoder{}, ws, old)
	assert.Contains(t, got, "<collations>\n\t\t<collation>\n\t\t\t<special xmlns:y=\"urn:y\">\n\t\t\t\t<y:extra />\n\t\t\t</special>\n\t\t</collation>\n\t</collations>")
	assert.NotContains(t, got, "sortRulesType")
	assert.NotContains(t, got, "<rules>")

	old = ldmlDoc(identity("en"), collationInfo("CustomICU", `<rules><reset>a</reset><p>b</p></rules>`), version("1"))
	got = encode(t, Encoder{}, ws, old)
	assert.Contains(t, got, "<collations />")
}

func TestEncodeCollationsCopy(t *testing.T) {
	old := ldmlDoc(identity("en"),
		`<collations><alias source="root"/><default type="standard"/>`+
			`<collation type="phonebook"><rules><reset>a</reset></rules></collation>`+
			`<collation><base><alias source="de"/></base>`+
			`<special `+palasoDecl+`><palaso:sortRulesType value="OtherLanguage"/></special></collation>`+
			`</collations>`,
		version("1"))
	ws := decode(t, old)
	require.Equal(t, ldmlfile.OtherLanguage, ws.SortUsing)
	ws.SortRules = "fr"
	got := encode(t, Encoder{}, ws, old)
	want := `	<collations>
		<default type="standard" />
		<collation type="phonebook">
			<rules>
				<reset>a</reset>
			</rules>
		</collation>
		<collation>
			<base>
				<alias source="fr" />
			</base>
			<special xmlns:palaso="urn://palaso.org/ldmlExtensions/v1">
				<palaso:sortRulesType value="OtherLanguage" />
			</special>
		</collation>
	</collations>`
	assert.Contains(t, got, want)
	assert.NotContains(t, got, `source="root"`)
}

func TestEncodeLayout(t *testing.T) {
	old := ldmlDoc(identity("en"),
		`<layout><orientation characters="right-to-left"/><inText type="x"/></layout>`,
		version("1"))
	ws := decode(t, old)
	require.True(t, ws.RightToLeftScript)

	ws.RightToLeftScript = false
	got := encode(t, Encoder{}, ws, old)
	assert.Contains(t, got, "\t<layout>\n\t\t<inText type=\"x\" />\n\t</layout>")
	assert.NotContains(t, got, "orientation")

	old = ldmlDoc(identity("en"), `<layout><orientation characters="left-to-right"/></layout>`, version("1"))
	got = encode(t, Encoder{}, ws, old)
	assert.NotContains(t, got, "<layout")

	ws.RightToLeftScript = true
	got = encode(t, Encoder{}, ws, old)
	assert.Contains(t, got, "\t<layout>\n\t\t<orientation characters=\"right-to-left\" />\n\t</layout>")
}

func TestEncodeFlexCompatibility(t *testing.T) {
	old := ldmlDoc(
		`<identity><generation date="2024-03-05T10:20:30"/><language type="x-kal"/><script type="Latn"/></identity>`,
		`<special `+palasoDecl+`><palaso:abbreviation value="kal"/><palaso:languageName value="Kalaba"/></special>`,
	)
	ws := decode(t, old)
	require.Equal(t, "qaa-Latn-x-kal", ws.Tag())
	ws.Abbreviation = "zzz"

	got := encode(t, Encoder{Compatibility: Flex7V0Compatible}, ws, old)
	assert.Contains(t, got, `<language type="x-kal" />`)
	assert.NotContains(t, got, `<variant`)
	assert.Contains(t, got, `<palaso:abbreviation value="kal" />`)
	assert.Contains(t, got, `<palaso:languageName value="Kalaba" />`)
	assert.NotContains(t, got, `<palaso:version`)

	got = encode(t, Encoder{Compatibility: Strict}, ws, old)
	assert.Contains(t, got, `<language type="qaa" />`)
	assert.Contains(t, got, `<variant type="x-kal" />`)
	assert.Contains(t, got, `<palaso:abbreviation value="zzz" />`)
	assert.Contains(t, got, `<palaso:version value="1" />`)

	ws.Variant = "x-other"
	got = encode(t, Encoder{Compatibility: Flex7V0Compatible}, ws, old)
	assert.Contains(t, got, `<language type="qaa" />`, "changed tag is regenerated")

	old = ldmlDoc(
		`<identity><generation date="2024-03-05T10:20:30"/><language type="x-kal"/><variant type="fonipa-x-audio"/></identity>`,
		`<special `+palasoDecl+`><palaso:languageName value="Kalaba"/></special>`,
	)
	ws = decode(t, old)
	require.Equal(t, "qaa-fonipa-x-kal-audio", ws.Tag())
	got = encode(t, Encoder{Compatibility: Flex7V0Compatible}, ws, old)
	assert.Contains(t, got, `<language type="x-kal" />`)
	assert.Contains(t, got, `<variant type="fonipa-x-audio" />`)
	assert.Contains(t, got, `<palaso:languageName value="Kalaba" />`)
}

func TestEncodeErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encoder{}.Encode(&buf, nil, nil)
	assert.ErrorIs(t, err, ErrNilDefinition)

	ws := ldmlfile.New()
	_, err = Encoder{}.Encode(&buf, ws, nil)
	assert.ErrorIs(t, err, ldmlfile.ErrEmptyTag)

	ws.Language = "e$"
	_, err = Encoder{}.Encode(&buf, ws, nil)
	var terr ldmlfile.InvalidTagError
	assert.True(t, errors.As(err, &terr))

	ws.Language = "en"
	ws.SortUsing = ldmlfile.SortRulesType(9)
	_, err = Encoder{}.Encode(&buf, ws, nil)
	var serr SortRulesError
	assert.True(t, errors.As(err, &serr))

	ws.SortUsing = ldmlfile.DefaultOrdering
	_, err = Encoder{}.Encode(&buf, ws, strings.NewReader(`<other/>`))
	assert.ErrorIs(t, err, ErrMissingRoot)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.ldml")
	ws := fullDefinition(ldmlfile.CustomICU, true)

	_, err := WriteFile(path, ws, nil, Encoder{})
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	got, _, err := ReadFile(path, nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(ws, got))

	f, err := os.Open(path)
	require.NoError(t, err)
	_, err = WriteFile(path, got, f, Encoder{})
	f.Close()
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	bad := got.Copy()
	bad.SortUsing = ldmlfile.SortRulesType(9)
	core, logs := observer.New(zap.WarnLevel)
	_, err = WriteFile(path, bad, bytes.NewReader(first), Encoder{Logger: zap.New(core)})
	assert.Error(t, err)
	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(restored), "file must be restored after a failed write")
	entries := logs.FilterMessage("restoring from backup").All()
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].ContextMap()["path"])

	bad = got.Copy()
	bad.Language = ""
	_, err = WriteFile(path, bad, nil, Encoder{})
	assert.ErrorIs(t, err, ldmlfile.ErrEmptyTag)
	_, err = WriteFile(path, nil, nil, Encoder{})
	assert.ErrorIs(t, err, ErrNilDefinition)
}
