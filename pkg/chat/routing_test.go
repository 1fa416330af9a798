package chat

import "testing"

func TestDecideMode(t *testing.T) {
	tests := []struct {
		name            string
		hasFiles        bool
		imageGeneration bool
		want            Mode
	}{
		{name: "plain text", want: ModeText},
		{name: "image toggle", imageGeneration: true, want: ModeImageGeneration},
		{name: "files win over toggle", hasFiles: true, imageGeneration: true, want: ModeFileAnalysis},
		{name: "files only", hasFiles: true, want: ModeFileAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideMode(tt.hasFiles, tt.imageGeneration); got != tt.want {
				t.Errorf("DecideMode(%v, %v) = %q, want %q", tt.hasFiles, tt.imageGeneration, got, tt.want)
			}
		})
	}
}

func TestDetectWebSearch(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"what's the latest news on the election", true},
		{"search for cheap flights", true},
		{"weather in Berlin today", true},
		{"what is the stock price of ACME", true},
		{"explain binary search trees", true}, // "search" keyword still triggers
		{"write me a poem about autumn", false},
		{"summarize this paragraph", false},
		{"LATEST developments please", true},
	}

	for _, tt := range tests {
		if got := DetectWebSearch(tt.text); got != tt.want {
			t.Errorf("DetectWebSearch(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDetectVideoIntent(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"find me a video of the launch", true},
		{"show me videos about cooking", true},
		{"I want to watch the trailer", true},
		{"search youtube for lectures", true},
		{"what's the latest news", false},
		{"picture of a cat", false},
	}

	for _, tt := range tests {
		if got := DetectVideoIntent(tt.text); got != tt.want {
			t.Errorf("DetectVideoIntent(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
