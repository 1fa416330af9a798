package chat

import "regexp"

// Mode is the per-turn routing decision. It is computed fresh on every turn
// and never stored.
type Mode string

const (
	ModeFileAnalysis    Mode = "file-analysis"
	ModeImageGeneration Mode = "image-generation"
	ModeText            Mode = "text"
)

// webSearchPattern flags prompts that likely need fresh external information.
var webSearchPattern = regexp.MustCompile(`(?i)\b(search|find|lookup|current|latest|recent|today|news|weather|price|stock|score|update|happening|now|trending|video|videos|image|images|picture|photo)\b`)

// videoIntentPattern flags prompts asking for actual video content.
var videoIntentPattern = regexp.MustCompile(`(?i)\b(videos?|watch|youtube|clip|trailer|footage)\b`)

// DecideMode picks the routing mode for a turn. File presence always wins
// over the image-generation toggle.
func DecideMode(hasFiles, imageGeneration bool) Mode {
	if hasFiles {
		return ModeFileAnalysis
	}
	if imageGeneration {
		return ModeImageGeneration
	}
	return ModeText
}

// DetectWebSearch reports whether the message should enable web search on
// the outgoing request.
func DetectWebSearch(text string) bool {
	return webSearchPattern.MatchString(text)
}

// DetectVideoIntent reports whether the message asks for video content, in
// which case the request carries an extra instruction demanding literal
// video-platform URLs in the reply.
func DetectVideoIntent(text string) bool {
	return videoIntentPattern.MatchString(text)
}
