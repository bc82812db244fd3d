// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Count is one group in a Summary.
type Count struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// Summary describes what the store holds.
type Summary struct {
	Total           int     `json:"total" yaml:"total"`
	ByIssue         []Count `json:"by_issue" yaml:"by_issue"`
	ByEvidenceLevel []Count `json:"by_evidence_level" yaml:"by_evidence_level"`
	ByStudyType     []Count `json:"by_study_type" yaml:"by_study_type"`
}

// Summarize counts articles by issue, evidence level, and study type.
// Empty values are not counted. Groups are ordered by count descending,
// then key.
func Summarize(articles []types.Article) Summary {
	issues := map[string]int{}
	levels := map[string]int{}
	studies := map[string]int{}
	for _, a := range articles {
		if a.Issue != "" {
			issues[a.Issue]++
		}
		if a.EvidenceLevel != "" {
			levels[a.EvidenceLevel]++
		}
		if a.StudyType != "" {
			studies[a.StudyType]++
		}
	}
	return Summary{
		Total:           len(articles),
		ByIssue:         sortedCounts(issues),
		ByEvidenceLevel: sortedCounts(levels),
		ByStudyType:     sortedCounts(studies),
	}
}

func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for k, n := range m {
		counts = append(counts, Count{Key: k, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Key < counts[j].Key
	})
	return counts
}

// Write renders the summary as indented text.
func (s Summary) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Total articles: %d\n", s.Total); err != nil {
		return err
	}
	groups := []struct {
		title  string
		counts []Count
	}{
		{"By issue", s.ByIssue},
		{"By evidence level", s.ByEvidenceLevel},
		{"By study type", s.ByStudyType},
	}
	for _, g := range groups {
		if len(g.counts) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", g.title); err != nil {
			return err
		}
		for _, c := range g.counts {
			if _, err := fmt.Fprintf(w, "  %s: %d\n", c.Key, c.Count); err != nil {
				return err
			}
		}
	}
	return nil
}
