// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-harvest/internal/classify"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// yearPattern pulls a year out of free-form MedlineDate values such as
// "2023 Nov-Dec" or "Winter 2022".
var yearPattern = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)

// parseArticleSet decodes a PubmedArticleSet document.
func parseArticleSet(data []byte) ([]types.Article, error) {
	var set pubmedArticleSet
	dec := xml.NewDecoder(bytes.NewReader(data))
	// efetch responses declare a DOCTYPE and may use HTML entities.
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&set); err != nil {
		return nil, err
	}

	articles := make([]types.Article, 0, len(set.Articles))
	for _, pa := range set.Articles {
		a := toArticle(pa)
		if a.PMID == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func toArticle(pa pubmedArticle) types.Article {
	mc := pa.Citation
	art := mc.Article
	pmid := strings.TrimSpace(mc.PMID)

	a := types.Article{
		PMID:            pmid,
		Title:           collapseSpace(string(art.Title)),
		Authors:         strings.Join(authorNames(art.Authors), ", "),
		Journal:         collapseSpace(art.Journal.Title),
		PublicationYear: publicationYear(art.Journal.Issue.PubDate),
		DOI:             doi(pa, art),
		Abstract:        abstractText(art.Abstract),
		URL:             ArticleURL(pmid),
	}
	for _, pt := range art.PublicationTypes {
		if s := strings.TrimSpace(pt); s != "" {
			a.PublicationTypes = append(a.PublicationTypes, s)
		}
	}
	a.StudyType = classify.StudyType(a.PublicationTypes, a.Title)
	a.EvidenceLevel = strconv.Itoa(classify.EvidenceLevel(a.StudyType))
	return a
}

// authorNames renders "ForeName LastName", falling back to initials or a
// collective name.
func authorNames(authors []author) []string {
	var names []string
	for _, au := range authors {
		if au.Collective != "" {
			names = append(names, collapseSpace(au.Collective))
			continue
		}
		given := au.ForeName
		if given == "" {
			given = au.Initials
		}
		name := strings.TrimSpace(given + " " + au.LastName)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func publicationYear(d pubDate) string {
	if y := strings.TrimSpace(d.Year); y != "" {
		return y
	}
	return yearPattern.FindString(d.MedlineDate)
}

// doi prefers the PubmedData article ID, then the ELocationID.
func doi(pa pubmedArticle, art article) string {
	for _, id := range pa.Data.ArticleIDs {
		if strings.EqualFold(id.kind(), "doi") {
			if v := strings.TrimSpace(id.Value); v != "" {
				return v
			}
		}
	}
	for _, loc := range art.ELocationIDs {
		if strings.EqualFold(loc.kind(), "doi") {
			if v := strings.TrimSpace(loc.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// abstractText joins abstract sections, prefixing labeled ones
// ("BACKGROUND: ...").
func abstractText(abs abstract) string {
	var parts []string
	for _, sec := range abs.Sections {
		text := collapseSpace(sec.Text)
		if text == "" {
			continue
		}
		if sec.Label != "" {
			text = sec.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// efetch XML structures.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	Journal          journal    `xml:"Journal"`
	Title            markupText `xml:"ArticleTitle"`
	ELocationIDs     []typedID  `xml:"ELocationID"`
	Abstract         abstract   `xml:"Abstract"`
	Authors          []author   `xml:"AuthorList>Author"`
	PublicationTypes []string   `xml:"PublicationTypeList>PublicationType"`
}

type journal struct {
	Title string       `xml:"Title"`
	Issue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}

type abstract struct {
	Sections []abstractSection `xml:"AbstractText"`
}

type author struct {
	LastName   string `xml:"LastName"`
	ForeName   string `xml:"ForeName"`
	Initials   string `xml:"Initials"`
	Collective string `xml:"CollectiveName"`
}

type pubmedData struct {
	ArticleIDs []typedID `xml:"ArticleIdList>ArticleId"`
}

// typedID covers both ELocationID (EIdType) and ArticleId (IdType).
type typedID struct {
	EIDType string `xml:"EIdType,attr"`
	IDType  string `xml:"IdType,attr"`
	Value   string `xml:",chardata"`
}

func (t typedID) kind() string {
	if t.IDType != "" {
		return t.IDType
	}
	return t.EIDType
}

// markupText collects all character data inside an element, flattening
// inline markup such as <i> or <sup> that PubMed embeds in titles.
type markupText string

func (m *markupText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	text, err := collectText(d)
	if err != nil {
		return err
	}
	*m = markupText(text)
	return nil
}

// abstractSection is one AbstractText element with its optional label.
type abstractSection struct {
	Label string
	Text  string
}

func (s *abstractSection) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Label" {
			s.Label = strings.TrimSpace(attr.Value)
		}
	}
	text, err := collectText(d)
	if err != nil {
		return err
	}
	s.Text = text
	return nil
}

// collectText reads tokens up to the end of the current element and
// returns the concatenated character data.
func collectText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch v := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(v)
		}
	}
	return b.String(), nil
}
