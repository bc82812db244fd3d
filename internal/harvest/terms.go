// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import "strings"

// DefaultTerms is the topic list fetched when no custom terms are given.
var DefaultTerms = []string{
	// malocclusion types
	"dental crowding evidence",
	"open bite treatment orthodontic",
	"deep bite treatment orthodontic",
	"crossbite treatment evidence",
	"overjet treatment orthodontic",
	"underbite treatment evidence",

	// treatment timing by age
	"orthodontic treatment timing children",
	"orthodontic treatment timing adolescent",
	"orthodontic treatment timing adult",
	"orthodontic treatment elderly",

	// risk of leaving it untreated
	"malocclusion risk untreated",
	"orthodontic treatment long term effect",
	"dental crowding oral health risk",
	"malocclusion periodontal risk",
	"malocclusion caries risk",
	"orthodontic treatment cost effectiveness",

	// high-evidence study designs
	"orthodontic systematic review",
	"orthodontic meta-analysis",
	"malocclusion randomized controlled trial",
	"orthodontic treatment cohort study",

	// regional
	"japanese orthodontic treatment",
	"asian orthodontic treatment",
	"japanese malocclusion prevalence",
}

// ParseTerms splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func ParseTerms(s string) []string {
	var terms []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
