package triage

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// SkipTracker counts long-left dismissals per sender domain. Counts only grow;
// nothing resets them for the life of the session.
type SkipTracker struct {
	counts map[string]int
}

func NewSkipTracker() *SkipTracker {
	return &SkipTracker{counts: map[string]int{}}
}

// Increment bumps the count for domain and returns the new value. An empty
// domain is not tracked.
func (s *SkipTracker) Increment(domain string) int {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return 0
	}
	s.counts[domain]++
	return s.counts[domain]
}

func (s *SkipTracker) Count(domain string) int {
	return s.counts[strings.ToLower(strings.TrimSpace(domain))]
}

// DefaultPromoKeywords are matched against sender domains.
func DefaultPromoKeywords() []string {
	return []string{"deals", "offers", "sale", "promo", "marketing", "newsletter", "noreply"}
}

// minFuzzyLen keeps short words out of fuzzy matching; "sale" is one edit
// away from too many ordinary names.
const minFuzzyLen = 5

// PromoDetector decides whether a sender domain looks promotional. A domain
// matches when it contains a keyword, or when one of its labels is within
// MaxDistance edits of a keyword ("offer", "newsleter").
type PromoDetector struct {
	keywords    []string
	maxDistance int
}

func NewPromoDetector(keywords []string, maxDistance int) *PromoDetector {
	norm := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			norm = append(norm, k)
		}
	}
	if maxDistance < 0 {
		maxDistance = 0
	}
	return &PromoDetector{keywords: norm, maxDistance: maxDistance}
}

// IsPromotional checks a sender domain. Given a full address, only the part
// after the last '@' is considered: "newsletter@gmail.com" is not promotional.
func (p *PromoDetector) IsPromotional(domain string) bool {
	if p == nil {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = strings.TrimRight(s[i+1:], "> ")
	}
	if s == "" {
		return false
	}
	for _, k := range p.keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	if p.maxDistance == 0 {
		return false
	}
	labels := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-'
	})
	for _, l := range labels {
		if len(l) < minFuzzyLen {
			continue
		}
		for _, k := range p.keywords {
			if len(k) < minFuzzyLen {
				continue
			}
			if levenshtein.ComputeDistance(l, k) <= p.maxDistance {
				return true
			}
		}
	}
	return false
}
