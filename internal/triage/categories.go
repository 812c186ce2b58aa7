package triage

import (
	"regexp"
	"strings"
)

// Canonical request categories. Stored lowercase with underscores; display
// and routing tokens are derived, never stored.
const (
	CategoryContractReview = "contract_review"
	CategoryEmployment     = "employment"
	CategoryMarketing      = "marketing"
	CategoryPartnership    = "partnership"
	CategoryRegulatory     = "regulatory"
	CategoryIP             = "ip"
	CategoryOther          = "other"
)

// routingTokens maps canonical categories to the bracketed tokens the
// client-side link detector matches against. The token set is closed:
// anything outside it must never appear in assistant output.
var routingTokens = map[string]string{
	CategoryContractReview: "[contract review]",
	CategoryEmployment:     "[employment]",
	CategoryMarketing:      "[marketing]",
	CategoryPartnership:    "[partnership]",
	CategoryRegulatory:     "[regulatory]",
	CategoryIP:             "[IP]",
	CategoryOther:          "[other]",
}

// Categories returns the canonical category set in stable order.
func Categories() []string {
	return []string{
		CategoryContractReview,
		CategoryEmployment,
		CategoryMarketing,
		CategoryPartnership,
		CategoryRegulatory,
		CategoryIP,
		CategoryOther,
	}
}

// IsValidCategory reports whether c is a canonical category value.
func IsValidCategory(c string) bool {
	_, ok := routingTokens[c]
	return ok
}

// RoutingToken returns the bracketed token for a canonical category,
// falling back to the [other] token for anything unrecognized.
func RoutingToken(category string) string {
	if tok, ok := routingTokens[NormalizeCategory(category)]; ok {
		return tok
	}
	return routingTokens[CategoryOther]
}

// NormalizeCategory maps the case, hyphen, space, and bracket variants seen
// at the boundary (URL parameters, model output, legacy records) onto one
// canonical encoding. Unrecognized values map to "other".
func NormalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	c = strings.Trim(c, "[]")
	c = strings.NewReplacer("-", "_", " ", "_").Replace(c)

	switch c {
	case "contract_review", "contracts", "contract", "vendor_agreements", "nda", "ndas":
		return CategoryContractReview
	case "employment", "hr", "labor_law":
		return CategoryEmployment
	case "marketing", "advertising", "social_media":
		return CategoryMarketing
	case "partnership", "partnerships":
		return CategoryPartnership
	case "regulatory", "compliance", "privacy":
		return CategoryRegulatory
	case "ip", "intellectual_property", "trademarks", "trademark":
		return CategoryIP
	default:
		return CategoryOther
	}
}

var bracketToken = regexp.MustCompile(`\[([^\[\]]+)\]`)

// EnforceTokenClosure rewrites any bracketed token in assistant text that is
// not a member of the fixed routing set to [other]. The downstream link
// detector only understands the closed set, so a fabricated category like
// [litigation] would render as a broken link.
func EnforceTokenClosure(text string) string {
	return bracketToken.ReplaceAllStringFunc(text, func(match string) string {
		for _, tok := range routingTokens {
			if match == tok {
				return match
			}
		}
		return routingTokens[CategoryOther]
	})
}
