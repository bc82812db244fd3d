// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-harvest pipeline:
// the Article record persisted in the store and the configuration structs
// threaded through the fetch, store, and debug stages.
package types

// Article is one PubMed record as persisted in the article store. PMID is
// the natural key: no two stored rows share it.
type Article struct {
	// PMID is the PubMed identifier (e.g. "38012345").
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title with surrounding whitespace trimmed.
	Title string `json:"title" yaml:"title"`

	// Authors is a comma-separated author list in source order.
	Authors string `json:"authors" yaml:"authors"`

	// Journal is the full journal title.
	Journal string `json:"journal" yaml:"journal"`

	// PublicationYear is the four-digit publication year, or empty when
	// PubMed does not report one.
	PublicationYear string `json:"publication_year" yaml:"publication_year"`

	// DOI is the bare DOI without a resolver prefix.
	DOI string `json:"doi" yaml:"doi"`

	// StudyType is the evidence classification derived from the
	// publication types (e.g. "Meta-Analysis", "Randomized Controlled Trial").
	StudyType string `json:"study_type" yaml:"study_type"`

	// EvidenceLevel ranks the study type from 1 (strongest) to 5.
	EvidenceLevel string `json:"evidence_level" yaml:"evidence_level"`

	// Issue is the dental problem the article addresses (e.g. "crowding").
	Issue string `json:"issue" yaml:"issue"`

	// Abstract is the abstract text; labeled sections are joined.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL links to the article on pubmed.ncbi.nlm.nih.gov.
	URL string `json:"url" yaml:"url"`

	// PublicationTypes holds the raw PubMed publication types. It feeds
	// classification and is not persisted.
	PublicationTypes []string `json:"-" yaml:"-"`
}

// ArticleColumns is the column order of the persisted article table.
var ArticleColumns = []string{
	"pmid",
	"title",
	"authors",
	"journal",
	"publication_year",
	"doi",
	"study_type",
	"evidence_level",
	"issue",
	"abstract",
	"url",
}

// Row returns the article's fields in ArticleColumns order.
func (a Article) Row() []string {
	return []string{
		a.PMID,
		a.Title,
		a.Authors,
		a.Journal,
		a.PublicationYear,
		a.DOI,
		a.StudyType,
		a.EvidenceLevel,
		a.Issue,
		a.Abstract,
		a.URL,
	}
}

// ArticleFromRow builds an Article from a row whose values follow the
// given header. Unknown columns are ignored and missing ones stay empty.
func ArticleFromRow(header, row []string) Article {
	var a Article
	for i, col := range header {
		if i >= len(row) {
			break
		}
		v := row[i]
		switch col {
		case "pmid":
			a.PMID = v
		case "title":
			a.Title = v
		case "authors":
			a.Authors = v
		case "journal":
			a.Journal = v
		case "publication_year":
			a.PublicationYear = v
		case "doi":
			a.DOI = v
		case "study_type":
			a.StudyType = v
		case "evidence_level":
			a.EvidenceLevel = v
		case "issue":
			a.Issue = v
		case "abstract":
			a.Abstract = v
		case "url":
			a.URL = v
		}
	}
	return a
}
