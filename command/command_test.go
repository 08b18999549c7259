package command

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Result
	}{
		{
			name: "empty",
			in:   "",
			want: Result{Kind: KindNone},
		},
		{
			name: "whitespace only",
			in:   "   ",
			want: Result{Kind: KindNone},
		},
		{
			name: "help",
			in:   "help",
			want: Result{Kind: KindHelp},
		},
		{
			name: "help shorthand",
			in:   "?",
			want: Result{Kind: KindHelp},
		},
		{
			name: "quit",
			in:   "q",
			want: Result{Kind: KindQuit},
		},
		{
			name: "save unnamed",
			in:   "save",
			want: Result{Kind: KindSave},
		},
		{
			name: "save named",
			in:   "save weekly review",
			want: Result{Kind: KindSave, Name: "weekly review"},
		},
		{
			name: "load named",
			in:   "load weekly review",
			want: Result{Kind: KindLoad, Name: "weekly review"},
		},
		{
			name: "load latest",
			in:   "load",
			want: Result{Kind: KindLoad},
		},
		{
			name: "delete named",
			in:   "rm weekly review",
			want: Result{Kind: KindDelete, Name: "weekly review"},
		},
		{
			name: "delete without name",
			in:   "delete",
			want: Result{Kind: KindUnknown, Raw: "delete"},
		},
		{
			name: "sessions",
			in:   "sessions",
			want: Result{Kind: KindSessions},
		},
		{
			name: "relabel",
			in:   "relabel",
			want: Result{Kind: KindRelabel},
		},
		{
			name: "labels on",
			in:   "labels on",
			want: Result{Kind: KindLabels, On: true},
		},
		{
			name: "labels off",
			in:   "labels off",
			want: Result{Kind: KindLabels},
		},
		{
			name: "labels toggle",
			in:   "labels",
			want: Result{Kind: KindLabels, Toggle: true},
		},
		{
			name: "labels junk",
			in:   "labels maybe",
			want: Result{Kind: KindUnknown, Raw: "labels maybe"},
		},
		{
			name: "http url",
			in:   "https://example.com/page",
			want: Result{Kind: KindNavigate, URL: "https://example.com/page"},
		},
		{
			name: "open url",
			in:   "open example.com",
			want: Result{Kind: KindNavigate, URL: "https://example.com"},
		},
		{
			name: "bare domain",
			in:   "news.ycombinator.com",
			want: Result{Kind: KindNavigate, URL: "https://news.ycombinator.com"},
		},
		{
			name: "localhost",
			in:   "localhost:8080",
			want: Result{Kind: KindNavigate, URL: "https://localhost:8080"},
		},
		{
			name: "unknown word",
			in:   "frobnicate",
			want: Result{Kind: KindUnknown, Raw: "frobnicate"},
		},
		{
			name: "mixed case command",
			in:   "Save project",
			want: Result{Kind: KindSave, Name: "project"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if got != tt.want {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
