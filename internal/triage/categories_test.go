package triage

import (
	"strings"
	"testing"
)

func TestNormalizeCategoryVariants(t *testing.T) {
	cases := map[string]string{
		"Contract Review": CategoryContractReview,
		"contract-review": CategoryContractReview,
		"CONTRACTS":       CategoryContractReview,
		"NDA":             CategoryContractReview,
		"[employment]":    CategoryEmployment,
		"HR":              CategoryEmployment,
		"Marketing":       CategoryMarketing,
		"advertising":     CategoryMarketing,
		"Partnerships":    CategoryPartnership,
		"Compliance":      CategoryRegulatory,
		"Privacy":         CategoryRegulatory,
		"IP":              CategoryIP,
		"[IP]":            CategoryIP,
		"Trademarks":      CategoryIP,
		"other":           CategoryOther,
		"litigation":      CategoryOther,
		"":                CategoryOther,
		"  weird input ":  CategoryOther,
	}
	for raw, want := range cases {
		if got := NormalizeCategory(raw); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizedCategoriesAreValid(t *testing.T) {
	for _, c := range Categories() {
		if !IsValidCategory(c) {
			t.Errorf("canonical category %q not valid", c)
		}
		if NormalizeCategory(c) != c {
			t.Errorf("canonical category %q not a fixed point of normalization", c)
		}
	}
}

func TestRoutingTokenClosedSet(t *testing.T) {
	known := map[string]bool{
		"[contract review]": true, "[employment]": true, "[marketing]": true,
		"[partnership]": true, "[regulatory]": true, "[IP]": true, "[other]": true,
	}
	for _, c := range Categories() {
		if !known[RoutingToken(c)] {
			t.Errorf("RoutingToken(%q) = %q, outside the closed set", c, RoutingToken(c))
		}
	}
	if RoutingToken("litigation") != "[other]" {
		t.Errorf("unknown category token = %q, want [other]", RoutingToken("litigation"))
	}
}

func TestEnforceTokenClosure(t *testing.T) {
	in := "I'll route this to our [litigation] team."
	out := EnforceTokenClosure(in)
	if strings.Contains(out, "[litigation]") {
		t.Errorf("fabricated token survived: %q", out)
	}
	if !strings.Contains(out, "[other]") {
		t.Errorf("fabricated token not rewritten to [other]: %q", out)
	}

	ok := "I'll route this to our [contract review] team."
	if got := EnforceTokenClosure(ok); got != ok {
		t.Errorf("valid token rewritten: %q", got)
	}

	plain := "No routing needed here."
	if got := EnforceTokenClosure(plain); got != plain {
		t.Errorf("plain text modified: %q", got)
	}
}

func TestRoutingSentenceFormat(t *testing.T) {
	s := RoutingSentence("ip")
	if !strings.Contains(s, "[IP]") {
		t.Errorf("routing sentence missing token: %q", s)
	}
	if s != EnforceTokenClosure(s) {
		t.Errorf("routing sentence fails its own closure check: %q", s)
	}
}
