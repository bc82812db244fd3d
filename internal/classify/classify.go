// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify derives the evidence classification of an article:
// its study type, an evidence level from 1 (strongest) to 5, and the
// dental issue it addresses.
package classify

import (
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Study types, strongest evidence first.
const (
	MetaAnalysis     = "Meta-Analysis"
	SystematicReview = "Systematic Review"
	RCT              = "Randomized Controlled Trial"
	ClinicalTrial    = "Clinical Trial"
	Cohort           = "Cohort Study"
	CaseControl      = "Case-Control Study"
	CrossSectional   = "Cross-Sectional Study"
	CaseReport       = "Case Report"
	Review           = "Review"
	Other            = "Other"
)

// GeneralIssue is assigned when no specific dental issue matches.
const GeneralIssue = "general"

// studyRule maps PubMed publication types and title keywords to a study type.
type studyRule struct {
	studyType string
	pubTypes  []string
	keywords  []string
}

// studyRules is ordered by evidence strength; the first match wins.
var studyRules = []studyRule{
	{MetaAnalysis, []string{"meta-analysis"}, []string{"meta-analysis", "meta analysis"}},
	{SystematicReview, []string{"systematic review"}, []string{"systematic review"}},
	{RCT, []string{"randomized controlled trial"}, []string{"randomized controlled", "randomised controlled", "randomized clinical trial", "randomised clinical trial"}},
	{ClinicalTrial, []string{"clinical trial", "clinical trial, phase i", "clinical trial, phase ii", "clinical trial, phase iii", "clinical trial, phase iv", "controlled clinical trial"}, []string{"clinical trial"}},
	{Cohort, []string{"observational study", "multicenter study"}, []string{"cohort", "longitudinal", "prospective study", "retrospective study"}},
	{CaseControl, nil, []string{"case-control", "case control"}},
	{CrossSectional, nil, []string{"cross-sectional", "cross sectional", "prevalence"}},
	{CaseReport, []string{"case reports"}, []string{"case report"}},
	{Review, []string{"review"}, []string{"review"}},
}

var evidenceLevels = map[string]int{
	MetaAnalysis:     1,
	SystematicReview: 1,
	RCT:              2,
	ClinicalTrial:    3,
	Cohort:           3,
	CaseControl:      4,
	CrossSectional:   4,
	CaseReport:       5,
	Review:           5,
	Other:            5,
}

// StudyType returns the strongest study type indicated by the publication
// types, falling back to keywords in the title.
func StudyType(pubTypes []string, title string) string {
	lowered := make(map[string]bool, len(pubTypes))
	for _, pt := range pubTypes {
		lowered[strings.ToLower(strings.TrimSpace(pt))] = true
	}
	for _, rule := range studyRules {
		for _, pt := range rule.pubTypes {
			if lowered[pt] {
				return rule.studyType
			}
		}
	}

	t := strings.ToLower(title)
	for _, rule := range studyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.studyType
			}
		}
	}
	return Other
}

// EvidenceLevel returns the evidence level for a study type. Unknown
// study types rank lowest.
func EvidenceLevel(studyType string) int {
	if lvl, ok := evidenceLevels[studyType]; ok {
		return lvl
	}
	return 5
}

// issueRule lists the phrases that identify one dental issue.
type issueRule struct {
	issue    string
	keywords []string
}

var issueRules = []issueRule{
	{"crowding", []string{"crowding", "crowded"}},
	{"open bite", []string{"open bite", "openbite", "open-bite"}},
	{"deep bite", []string{"deep bite", "deepbite", "deep-bite", "deep overbite"}},
	{"crossbite", []string{"crossbite", "cross bite", "cross-bite"}},
	// Class III before overjet: "class iii" contains "class ii".
	{"underbite", []string{"underbite", "class iii", "prognathism"}},
	{"overjet", []string{"overjet", "class ii"}},
}

// Issue returns the first dental issue named by the search term, title,
// or abstract, checked in that order. Articles naming none are "general".
func Issue(title, abstract, term string) string {
	for _, text := range []string{term, title, abstract} {
		t := strings.ToLower(text)
		if t == "" {
			continue
		}
		for _, rule := range issueRules {
			for _, kw := range rule.keywords {
				if strings.Contains(t, kw) {
					return rule.issue
				}
			}
		}
	}
	return GeneralIssue
}

// Apply fills the classification fields of a. Study type and evidence
// level already set by the fetcher are kept.
func Apply(a *types.Article, term string) {
	if a.StudyType == "" {
		a.StudyType = StudyType(a.PublicationTypes, a.Title)
	}
	if a.EvidenceLevel == "" {
		a.EvidenceLevel = strconv.Itoa(EvidenceLevel(a.StudyType))
	}
	if a.Issue == "" {
		a.Issue = Issue(a.Title, a.Abstract, term)
	}
}
