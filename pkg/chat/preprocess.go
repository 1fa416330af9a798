package chat

import (
	"path"
	"regexp"
	"strings"
)

// mediaURLPattern matches bare URLs pointing at media or document files,
// optionally followed by a query string.
var mediaURLPattern = regexp.MustCompile(`https?://[^\s<>()\[\]]+\.(?i:jpg|jpeg|png|gif|webp|svg|bmp|mp4|webm|mov|avi|mkv|mp3|wav|ogg|m4a|flac|pdf|doc|docx)(?:\?[^\s<>()\[\]]*)?`)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true,
}

// LinkifyMediaURLs rewrites bare media URLs into markdown image/link syntax.
// URLs already inside markdown syntax are left alone. Pure text transform,
// no side effects.
func LinkifyMediaURLs(text string) string {
	matches := mediaURLPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		sb.WriteString(text[last:start])
		url := text[start:end]

		if insideMarkdown(text, start) {
			sb.WriteString(url)
		} else if isImageURL(url) {
			sb.WriteString("![image](" + url + ")")
		} else {
			sb.WriteString("[" + mediaLinkLabel(url) + "](" + url + ")")
		}
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// insideMarkdown reports whether the URL at start is already part of markdown
// link/image syntax or an autolink.
func insideMarkdown(text string, start int) bool {
	if start >= 2 && text[start-2:start] == "](" {
		return true
	}
	if start >= 1 && text[start-1] == '<' {
		return true
	}
	return false
}

func isImageURL(url string) bool {
	return imageExtensions[strings.ToLower(path.Ext(stripQuery(url)))]
}

func mediaLinkLabel(url string) string {
	return path.Base(stripQuery(url))
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
