package entity

const (
	CitationTypeWeb  = "web"
	CitationTypeFile = "file"
)

// Citation links part of an assistant reply to a source. Web citations come
// straight from the backend; file citations are extracted locally from
// bracketed filename references in the reply text.
type Citation struct {
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content,omitempty"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Type       string `json:"type"`
}
