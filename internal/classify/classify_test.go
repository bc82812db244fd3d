// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

func TestStudyType(t *testing.T) {
	tests := []struct {
		name     string
		pubTypes []string
		title    string
		want     string
	}{
		{"meta-analysis pub type", []string{"Journal Article", "Meta-Analysis", "Systematic Review"}, "", MetaAnalysis},
		{"systematic review beats review", []string{"Review", "Systematic Review"}, "", SystematicReview},
		{"rct", []string{"Randomized Controlled Trial", "Journal Article"}, "", RCT},
		{"phased clinical trial", []string{"Clinical Trial, Phase III"}, "", ClinicalTrial},
		{"case reports", []string{"Case Reports"}, "", CaseReport},
		{"plain review", []string{"Review"}, "", Review},
		{"title fallback cohort", []string{"Journal Article"}, "A retrospective cohort of adolescent patients", Cohort},
		{"title fallback cross-sectional", nil, "Malocclusion prevalence in Japanese children", CrossSectional},
		{"title fallback case-control", nil, "A case-control study of caries", CaseControl},
		{"pub type wins over title", []string{"Randomized Controlled Trial"}, "A systematic review", RCT},
		{"nothing matches", []string{"Journal Article"}, "Aligner material properties", Other},
		{"case insensitive pub type", []string{"  META-ANALYSIS "}, "", MetaAnalysis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StudyType(tt.pubTypes, tt.title))
		})
	}
}

func TestEvidenceLevel(t *testing.T) {
	tests := []struct {
		studyType string
		want      int
	}{
		{MetaAnalysis, 1},
		{SystematicReview, 1},
		{RCT, 2},
		{ClinicalTrial, 3},
		{Cohort, 3},
		{CaseControl, 4},
		{CrossSectional, 4},
		{CaseReport, 5},
		{Review, 5},
		{Other, 5},
		{"unheard of", 5},
	}
	for _, tt := range tests {
		t.Run(tt.studyType, func(t *testing.T) {
			assert.Equal(t, tt.want, EvidenceLevel(tt.studyType))
		})
	}
}

func TestIssue(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		term     string
		want     string
	}{
		{"term names the issue", "Outcomes in adults", "", "open bite treatment orthodontic", "open bite"},
		{"term wins over title", "Crowding in the mandible", "", "deep bite treatment orthodontic", "deep bite"},
		{"title used when term is generic", "Crossbite correction in children", "", "orthodontic systematic review", "crossbite"},
		{"abstract used last", "Outcomes", "Patients with severe crowding were enrolled.", "malocclusion risk untreated", "crowding"},
		{"class iii is underbite", "Class III camouflage", "", "", "underbite"},
		{"class ii is overjet", "Class II division 1 treatment", "", "", "overjet"},
		{"nothing matches", "Aligner material properties", "Polymer testing.", "orthodontic meta-analysis", GeneralIssue},
		{"all empty", "", "", "", GeneralIssue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Issue(tt.title, tt.abstract, tt.term))
		})
	}
}

func TestApply(t *testing.T) {
	a := types.Article{
		PMID:             "1",
		Title:            "Expansion for posterior crossbite",
		PublicationTypes: []string{"Randomized Controlled Trial"},
	}
	Apply(&a, "crossbite treatment evidence")

	assert.Equal(t, RCT, a.StudyType)
	assert.Equal(t, "2", a.EvidenceLevel)
	assert.Equal(t, "crossbite", a.Issue)
}

func TestApplyKeepsExistingFields(t *testing.T) {
	a := types.Article{
		PMID:          "1",
		StudyType:     Review,
		EvidenceLevel: "5",
		Issue:         "crowding",
	}
	Apply(&a, "open bite treatment orthodontic")

	assert.Equal(t, Review, a.StudyType)
	assert.Equal(t, "5", a.EvidenceLevel)
	assert.Equal(t, "crowding", a.Issue)
}
