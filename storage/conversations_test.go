package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func testConversation(nickname string, savedAt time.Time) *Conversation {
	return &Conversation{
		PersonaNickname:    nickname,
		PersonaDescription: "a description",
		URL:                "https://example.com/post",
		Messages: []Message{
			{Role: "assistant", Content: "Hello.", Timestamp: savedAt},
			{Role: "user", Content: "Hi there.", Timestamp: savedAt},
		},
		SavedAt: savedAt,
	}
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	store, err := NewConversationStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewConversationStore: %v", err)
	}

	conv := testConversation("The Archivist", time.Now())
	if err := store.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("Save must assign an ID")
	}

	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.PersonaNickname != conv.PersonaNickname {
		t.Fatalf("nickname = %q", loaded.PersonaNickname)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("messages = %d", len(loaded.Messages))
	}
}

func TestSaveKeepsExplicitID(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())

	conv := testConversation("Keeper", time.Now())
	conv.ID = "fixed-id"
	if err := store.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if conv.ID != "fixed-id" {
		t.Fatalf("ID = %q", conv.ID)
	}
}

func TestListNewestFirst(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())

	now := time.Now()
	for i, name := range []string{"oldest", "middle", "newest"} {
		conv := testConversation(name, now.Add(time.Duration(i)*time.Hour))
		if err := store.Save(conv); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list length = %d", len(list))
	}
	if list[0].PersonaNickname != "newest" || list[2].PersonaNickname != "oldest" {
		t.Fatalf("order = %s, %s, %s", list[0].PersonaNickname, list[1].PersonaNickname, list[2].PersonaNickname)
	}
}

func TestListSkipsCorruptedFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewConversationStore(dir)

	if err := store.Save(testConversation("Good", time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	corrupted := filepath.Join(dir, "conversations", "broken.json")
	if err := os.WriteFile(corrupted, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, corrupted files must be skipped", len(list))
	}
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())
	if err := store.Delete("does-not-exist"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDelete(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())

	conv := testConversation("Victim", time.Now())
	store.Save(conv)

	if err := store.Delete(conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(conv.ID); err == nil {
		t.Fatal("deleted conversation must not load")
	}
}

func TestExportToJSON(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())

	conv := testConversation("Exported", time.Now())
	store.Save(conv)

	exportPath := filepath.Join(t.TempDir(), "sub", "export.json")
	if err := store.ExportToJSON(conv.ID, exportPath); err != nil {
		t.Fatalf("ExportToJSON: %v", err)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("export file is empty")
	}
}

func TestGenerateExportPath(t *testing.T) {
	path := GenerateExportPath("The Archivist")
	if filepath.Base(filepath.Dir(path)) != "Downloads" {
		t.Fatalf("path = %q, want a Downloads file", path)
	}
	base := filepath.Base(path)
	if !(len(base) > 0 && base[:10] == "persona-l-") {
		t.Fatalf("filename = %q", base)
	}
}

func TestSearchAll(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())

	conv := testConversation("Gardener", time.Now())
	conv.Messages = append(conv.Messages, Message{
		Role: "assistant", Content: "The slugs and I keep the same hours.", Timestamp: time.Now(),
	})
	store.Save(conv)
	store.Save(testConversation("Other", time.Now()))

	search := NewArchiveSearch(store)

	hits, err := search.SearchAll("SLUGS")
	if err != nil {
		t.Fatalf("SearchAll: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1 (case-insensitive)", len(hits))
	}
	if hits[0].ConversationID != conv.ID || hits[0].MessageIndex != 2 {
		t.Fatalf("hit = %+v", hits[0])
	}

	if hits, _ := search.SearchAll(""); len(hits) != 0 {
		t.Fatal("empty query must match nothing")
	}
}

func TestSearchAllPreviewKeepsRunesIntact(t *testing.T) {
	store, _ := NewConversationStore(t.TempDir())

	// Multibyte content long enough to force preview truncation
	conv := testConversation("Polyglot", time.Now())
	conv.Messages = append(conv.Messages, Message{
		Role:      "assistant",
		Content:   "ü" + strings.Repeat("ö", 200),
		Timestamp: time.Now(),
	})
	store.Save(conv)

	hits, err := NewArchiveSearch(store).SearchAll("ü")
	if err != nil {
		t.Fatalf("SearchAll: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}

	preview := hits[0].Preview
	if !utf8.ValidString(preview) {
		t.Fatalf("preview is not valid UTF-8: %q", preview)
	}
	trimmed := strings.TrimSuffix(preview, "...")
	if got := utf8.RuneCountInString(trimmed); got != 100 {
		t.Fatalf("preview length = %d runes, want 100", got)
	}
}
