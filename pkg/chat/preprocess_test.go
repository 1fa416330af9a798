package chat

import "testing"

func TestLinkifyMediaURLs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no urls",
			in:   "just some text",
			want: "just some text",
		},
		{
			name: "bare image url",
			in:   "look at https://x.test/cat.png please",
			want: "look at ![image](https://x.test/cat.png) please",
		},
		{
			name: "bare video url becomes link",
			in:   "see https://x.test/demo.mp4",
			want: "see [demo.mp4](https://x.test/demo.mp4)",
		},
		{
			name: "pdf url becomes link",
			in:   "https://x.test/docs/report.pdf",
			want: "[report.pdf](https://x.test/docs/report.pdf)",
		},
		{
			name: "url with query keeps query in target",
			in:   "https://x.test/pic.jpg?w=100",
			want: "![image](https://x.test/pic.jpg?w=100)",
		},
		{
			name: "already markdown image untouched",
			in:   "![alt](https://x.test/cat.png)",
			want: "![alt](https://x.test/cat.png)",
		},
		{
			name: "autolink untouched",
			in:   "<https://x.test/cat.png>",
			want: "<https://x.test/cat.png>",
		},
		{
			name: "uppercase extension",
			in:   "https://x.test/CAT.PNG",
			want: "![image](https://x.test/CAT.PNG)",
		},
		{
			name: "two urls",
			in:   "https://x.test/a.png and https://x.test/b.mp3",
			want: "![image](https://x.test/a.png) and [b.mp3](https://x.test/b.mp3)",
		},
		{
			name: "non-media url untouched",
			in:   "visit https://example.com/page",
			want: "visit https://example.com/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkifyMediaURLs(tt.in); got != tt.want {
				t.Errorf("LinkifyMediaURLs(%q)\n got %q\nwant %q", tt.in, got, tt.want)
			}
		})
	}
}
