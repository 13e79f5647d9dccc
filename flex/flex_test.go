package flex

import (
	"testing"
)

func TestToCanonical(t *testing.T) {
	tests := []struct {
		in   Tag
		want Tag
	}{
		{Tag{Language: "x-kal"}, Tag{Language: "qaa", Variant: "x-kal"}},
		{Tag{Language: "x-kal", Script: "Latn", Region: "US"}, Tag{Language: "qaa", Script: "Latn", Region: "US", Variant: "x-kal"}},
		{Tag{Language: "x-kal", Variant: "fonipa"}, Tag{Language: "qaa", Variant: "fonipa-x-kal"}},
		{Tag{Language: "x-kal", Variant: "fonipa-x-audio"}, Tag{Language: "qaa", Variant: "fonipa-x-kal-audio"}},
		{Tag{Language: "x-kal", Variant: "x-audio"}, Tag{Language: "qaa", Variant: "x-kal-audio"}},
		{Tag{Language: "x"}, Tag{Language: "qaa"}},
		{Tag{Language: "x-"}, Tag{Language: "x-"}},
		{Tag{Language: "en", Variant: "x-foo"}, Tag{Language: "en", Variant: "x-foo"}},
	}
	for _, test := range tests {
		if got := ToCanonical(test.in); got != test.want {
			t.Errorf("%s: expected %s, got %s", test.in, test.want, got)
		}
	}
}

func TestToFlex(t *testing.T) {
	tests := []Tag{
		{Language: "x-kal"},
		{Language: "x-kal", Script: "Latn", Region: "US"},
		{Language: "x-kal", Variant: "fonipa"},
		{Language: "x-kal", Variant: "fonipa-x-audio"},
	}
	for _, flex := range tests {
		if got := ToFlex(ToCanonical(flex)); got != flex {
			t.Errorf("expected %s, got %s", flex, got)
		}
	}
	if got := ToFlex(Tag{Language: "qaa", Variant: "fonipa"}); got.Language != "qaa" {
		t.Errorf("expected tag without private use to be unchanged, got %s", got)
	}
	if got := (Tag{Language: "qaa", Variant: "x-kal"}).String(); got != "qaa-x-kal" {
		t.Errorf("unexpected string %q", got)
	}
}
