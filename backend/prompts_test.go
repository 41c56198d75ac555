package backend

import (
	"strings"
	"testing"

	"persona-l/api"
	"persona-l/storage"
)

func TestParsePersona(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantNickname string
		wantDescHas  string
	}{
		{
			name:         "standard heading",
			raw:          "## Nickname: The Midnight Gardener\n\nWrites about soil and patience.",
			wantNickname: "The Midnight Gardener",
			wantDescHas:  "soil and patience",
		},
		{
			name:         "styled nickname",
			raw:          "## Nickname: **The Cartographer**\n\nMaps everything twice.",
			wantNickname: "The Cartographer",
			wantDescHas:  "Maps everything",
		},
		{
			name:         "heading with extra spaces",
			raw:          "##   Nickname:   Quiet Hands\n\nSpeaks in diffs.",
			wantNickname: "Quiet Hands",
			wantDescHas:  "Speaks in diffs",
		},
		{
			name:         "preamble before heading",
			raw:          "Here is the persona you asked for.\n\n## Nickname: The Ledger\n\nCounts beans with joy.",
			wantNickname: "The Ledger",
			wantDescHas:  "Counts beans",
		},
		{
			name:         "no heading falls back",
			raw:          "A wandering essayist who never signs their work.",
			wantNickname: "Unnamed Author",
			wantDescHas:  "wandering essayist",
		},
		{
			name:         "empty nickname falls back",
			raw:          "## Nickname: \nAll description, no name.",
			wantNickname: "Unnamed Author",
			wantDescHas:  "no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parsePersona(tt.raw)
			if p.Nickname != tt.wantNickname {
				t.Errorf("nickname = %q, want %q", p.Nickname, tt.wantNickname)
			}
			if !strings.Contains(p.Description, tt.wantDescHas) {
				t.Errorf("description = %q, want it to contain %q", p.Description, tt.wantDescHas)
			}
		})
	}
}

func TestParsePersonaHeadingOnly(t *testing.T) {
	// Nothing after the heading, so the description comes from the text
	// before it.
	p := parsePersona("I imagined this author.\n\n## Nickname: The Brief")
	if p.Nickname != "The Brief" {
		t.Fatalf("nickname = %q", p.Nickname)
	}
	if !strings.Contains(p.Description, "imagined this author") {
		t.Fatalf("description = %q", p.Description)
	}
}

func TestBuildPersonaPrompt(t *testing.T) {
	got := buildPersonaPrompt("body text", "https://example.com")
	if !strings.Contains(got, "Page URL: https://example.com") {
		t.Fatalf("prompt missing URL: %q", got)
	}
	if !strings.Contains(got, "body text") {
		t.Fatalf("prompt missing content: %q", got)
	}

	noURL := buildPersonaPrompt("body text", "")
	if strings.Contains(noURL, "Page URL") {
		t.Fatalf("prompt should omit URL line: %q", noURL)
	}
}

func TestBuildChatSystemPrompt(t *testing.T) {
	persona := storage.Persona{Nickname: "The Ledger", Description: "Counts beans."}
	got := buildChatSystemPrompt(persona, "page body")

	for _, want := range []string{`"The Ledger"`, "Counts beans.", "page body"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestCapHistory(t *testing.T) {
	long := make([]storage.Message, api.HistoryLimit+7)
	for i := range long {
		long[i] = storage.Message{Role: "user", Content: strings.Repeat("x", i+1)}
	}

	capped := capHistory(long)
	if len(capped) != api.HistoryLimit {
		t.Fatalf("len = %d, want %d", len(capped), api.HistoryLimit)
	}
	// Newest messages survive
	if capped[len(capped)-1].Content != long[len(long)-1].Content {
		t.Fatal("newest message dropped")
	}

	short := long[:3]
	if got := capHistory(short); len(got) != 3 {
		t.Fatalf("short history len = %d, want 3", len(got))
	}
}
