package chat

import (
	"regexp"

	"ai-docchat-be/internal/entity"
)

// fileCitationPattern matches a bracketed token ending in a dot-extension,
// e.g. "[notes.txt]" or "[Q3 report.pdf]".
var fileCitationPattern = regexp.MustCompile(`\[([^\[\]]+\.[a-zA-Z0-9]+)\]`)

// ExtractFileCitations scans a reply for bracketed filename references and
// resolves each against the turn's attached files. Unmatched names still get
// a citation with a synthetic file:// URL. The result holds exactly one
// citation per distinct filename, in first-occurrence order.
func ExtractFileCitations(text string, attached []*entity.AttachedFile) []entity.Citation {
	matches := fileCitationPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	byName := make(map[string]*entity.AttachedFile, len(attached))
	for _, f := range attached {
		if _, exists := byName[f.Name]; !exists {
			byName[f.Name] = f
		}
	}

	seen := make(map[string]bool, len(matches))
	var citations []entity.Citation
	for _, m := range matches {
		name := text[m[2]:m[3]]
		if seen[name] {
			continue
		}
		seen[name] = true

		citation := entity.Citation{
			Title:      name,
			Type:       entity.CitationTypeFile,
			StartIndex: m[0],
			EndIndex:   m[1],
			URL:        "file://" + name,
		}
		if f, ok := byName[name]; ok {
			if f.URL != "" {
				citation.URL = f.URL
			}
			citation.Content = f.MimeType
		}
		citations = append(citations, citation)
	}

	return citations
}

// MergeCitations unions backend-supplied citations with locally extracted
// ones, de-duplicating by title in first-seen order. Citations without a
// title (plain web results) pass through untouched.
func MergeCitations(fromBackend, local []entity.Citation) []entity.Citation {
	seen := make(map[string]bool)
	var merged []entity.Citation
	for _, c := range append(append([]entity.Citation{}, fromBackend...), local...) {
		if c.Title == "" {
			merged = append(merged, c)
			continue
		}
		if seen[c.Title] {
			continue
		}
		seen[c.Title] = true
		merged = append(merged, c)
	}
	return merged
}
