package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	"persona-l/api"
	"persona-l/backend/testutil"
	"persona-l/extract"
	"persona-l/storage"
)

func newTestModel(t *testing.T, mock *testutil.MockBackend) *Model {
	t.Helper()

	dir := t.TempDir()
	kv, err := storage.NewKV(dir)
	if err != nil {
		t.Fatalf("NewKV: %v", err)
	}
	conversations, err := storage.NewConversationStore(dir)
	if err != nil {
		t.Fatalf("NewConversationStore: %v", err)
	}

	return NewModel(nil, mock, nil, kv, conversations, extract.New(extract.NewFetcher()), "test", "test")
}

func testPage() extract.Result {
	return extract.Result{
		URL:     "https://example.com/article",
		Title:   "An Article",
		Content: testutil.TestPageContent(),
	}
}

func TestCreatePersonaSuccess(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := newTestModel(t, mock)

	cmd := m.CreatePersonaFromContent(testPage())
	if cmd == nil {
		t.Fatal("expected a command from idle state")
	}
	if m.Phase != PhaseCreating {
		t.Fatalf("phase = %v, want Creating", m.Phase)
	}

	msg := cmd().(PersonaCreatedMsg)
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}

	m.ApplyPersonaCreated(msg)

	if m.Phase != PhaseActive {
		t.Fatalf("phase = %v, want Active", m.Phase)
	}
	if !m.PersonaActive() {
		t.Fatal("expected an active persona")
	}
	if m.Persona.Nickname != testutil.TestPersona().Nickname {
		t.Fatalf("nickname = %q", m.Persona.Nickname)
	}
	if len(m.Messages) != 1 || m.Messages[0].Role != "assistant" {
		t.Fatalf("expected a single intro message, got %d messages", len(m.Messages))
	}
	if !strings.Contains(m.Messages[0].Content, m.Persona.Nickname) {
		t.Fatal("intro message should mention the persona nickname")
	}
}

func TestCreatePersonaRejectsShortContent(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := newTestModel(t, mock)

	page := testPage()
	page.Content = "too short"

	msg := m.CreatePersonaFromContent(page)().(PersonaCreatedMsg)

	var apiErr *api.Error
	if !errors.As(msg.Err, &apiErr) {
		t.Fatalf("expected an api.Error, got %v", msg.Err)
	}
	if apiErr.Kind != api.KindValidation {
		t.Fatalf("kind = %v, want validation", apiErr.Kind)
	}
	if mock.GeneratePersonaCalls != 0 {
		t.Fatal("backend must not be called for short content")
	}

	m.ApplyPersonaCreated(msg)
	if m.Phase != PhaseIdle || m.PersonaActive() {
		t.Fatal("failed creation must leave the model idle with no persona")
	}
	if m.Err == "" {
		t.Fatal("expected a display error")
	}
}

func TestCreatePersonaWhitespaceOnlyContent(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := newTestModel(t, mock)

	page := testPage()
	page.Content = strings.Repeat(" \n\t", 100)

	msg := m.CreatePersonaFromContent(page)().(PersonaCreatedMsg)
	if msg.Err == nil {
		t.Fatal("expected a validation error for whitespace-only content")
	}
	if mock.GeneratePersonaCalls != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestCreatePersonaGuardWhileBusy(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := newTestModel(t, mock)

	if cmd := m.CreatePersonaFromContent(testPage()); cmd == nil {
		t.Fatal("first create should return a command")
	}
	if cmd := m.CreatePersonaFromContent(testPage()); cmd != nil {
		t.Fatal("second create while Creating must be dropped")
	}
}

func TestCreatePersonaBackendFailureLeavesNoPartialState(t *testing.T) {
	mock := testutil.NewMockBackend()
	mock.GeneratePersonaFunc = func(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
		return storage.Persona{}, &api.Error{Kind: api.KindBackend, Op: "generate-persona", Message: "quota exceeded"}
	}
	m := newTestModel(t, mock)

	msg := m.CreatePersonaFromContent(testPage())().(PersonaCreatedMsg)
	m.ApplyPersonaCreated(msg)

	if m.Phase != PhaseIdle {
		t.Fatalf("phase = %v, want Idle", m.Phase)
	}
	if m.PersonaActive() || m.PageURL != "" || len(m.Messages) != 0 {
		t.Fatal("failed creation must not leave partial persona state")
	}
	if m.Err != "quota exceeded" {
		t.Fatalf("display error = %q", m.Err)
	}
}

func activeModel(t *testing.T, mock *testutil.MockBackend) *Model {
	t.Helper()
	m := newTestModel(t, mock)
	msg := m.CreatePersonaFromContent(testPage())().(PersonaCreatedMsg)
	m.ApplyPersonaCreated(msg)
	if m.Phase != PhaseActive {
		t.Fatalf("setup: phase = %v", m.Phase)
	}
	return m
}

func TestSendMessageAppendsAndReplies(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)

	cmd := m.SendMessage("  why do you write?  ")
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if m.Phase != PhaseSending {
		t.Fatalf("phase = %v, want Sending", m.Phase)
	}

	// User message appended optimistically before the reply arrives
	last := m.Messages[len(m.Messages)-1]
	if last.Role != "user" || last.Content != "why do you write?" {
		t.Fatalf("optimistic user message = %+v", last)
	}

	reply := cmd().(ChatReplyMsg)
	if reply.Err != nil {
		t.Fatalf("unexpected error: %v", reply.Err)
	}
	m.ApplyChatReply(reply)

	if m.Phase != PhaseActive {
		t.Fatalf("phase = %v, want Active", m.Phase)
	}
	last = m.Messages[len(m.Messages)-1]
	if last.Role != "assistant" || last.Content != "A canned reply." {
		t.Fatalf("assistant message = %+v", last)
	}
}

func TestSendMessageHistoryExcludesPrompt(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)

	cmd := m.SendMessage("first question")
	cmd()

	// History holds only the intro message; the prompt travels separately.
	if len(mock.LastHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(mock.LastHistory))
	}
	if mock.LastPrompt != "first question" {
		t.Fatalf("prompt = %q", mock.LastPrompt)
	}
}

func TestSendMessageGuards(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)

	if cmd := m.SendMessage("   "); cmd != nil {
		t.Fatal("blank text must be dropped")
	}

	// A second send while one is pending is dropped, not queued
	if cmd := m.SendMessage("one"); cmd == nil {
		t.Fatal("first send should go through")
	}
	if cmd := m.SendMessage("two"); cmd != nil {
		t.Fatal("send while Sending must return nil")
	}

	idle := newTestModel(t, mock)
	if cmd := idle.SendMessage("hello"); cmd != nil {
		t.Fatal("send without a persona must return nil")
	}
}

func TestSendMessageFailureKeepsUserMessage(t *testing.T) {
	mock := testutil.NewMockBackend()
	mock.ChatTurnFunc = func(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
		return "", &api.Error{Kind: api.KindNetwork, Op: "chat-with-persona", Message: "connection refused"}
	}
	m := activeModel(t, mock)

	cmd := m.SendMessage("are you there?")
	before := len(m.Messages)

	m.ApplyChatReply(cmd().(ChatReplyMsg))

	if m.Phase != PhaseActive {
		t.Fatalf("phase = %v, want Active", m.Phase)
	}
	if len(m.Messages) != before {
		t.Fatal("failed turn must not change the transcript")
	}
	if m.Messages[len(m.Messages)-1].Content != "are you there?" {
		t.Fatal("user message must stay in the transcript")
	}
	if m.Err != "connection refused" {
		t.Fatalf("display error = %q", m.Err)
	}
}

func TestEndChatSaveArchivesConversation(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)

	reply := m.SendMessage("hello")().(ChatReplyMsg)
	m.ApplyChatReply(reply)

	cmd := m.EndChat(true)
	if cmd == nil {
		t.Fatal("expected an archive command")
	}

	// Live state clears immediately, before the archive write
	if m.PersonaActive() || m.Phase != PhaseIdle || len(m.Messages) != 0 || m.PageURL != "" {
		t.Fatal("live session must be cleared synchronously")
	}

	saved := cmd().(ConversationSavedMsg)
	if saved.Err != nil {
		t.Fatalf("save failed: %v", saved.Err)
	}

	list, err := m.Conversations.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("archive has %d conversations, want 1", len(list))
	}
	if list[0].ID == "" {
		t.Fatal("archived conversation must get an ID")
	}
	if list[0].PersonaNickname != testutil.TestPersona().Nickname {
		t.Fatalf("nickname = %q", list[0].PersonaNickname)
	}
	if list[0].MessageCount != 3 {
		t.Fatalf("message count = %d, want 3", list[0].MessageCount)
	}
}

func TestEndChatSaveWithoutMessagesArchivesNothing(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := newTestModel(t, mock)

	// A restored snapshot can carry a persona with no transcript yet.
	if err := m.KV.Set(snapshotKey, storage.Snapshot{
		Persona: testutil.TestPersona(),
		PageURL: "https://example.com/article",
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	restored := NewModel(nil, mock, nil, m.KV, m.Conversations, m.Extractor, "test", "test")
	if !restored.PersonaActive() || len(restored.Messages) != 0 {
		t.Fatalf("setup: persona active = %v, messages = %d", restored.PersonaActive(), len(restored.Messages))
	}

	if cmd := restored.EndChat(true); cmd != nil {
		t.Fatal("saving an empty transcript must not produce an archive command")
	}
	if restored.PersonaActive() || restored.Phase != PhaseIdle {
		t.Fatal("live session must still be cleared")
	}

	list, err := restored.Conversations.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("archive has %d conversations, want 0", len(list))
	}
}

func TestEndChatDiscard(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)

	if cmd := m.EndChat(false); cmd != nil {
		t.Fatal("discard must not produce an archive command")
	}
	if m.PersonaActive() || len(m.Messages) != 0 {
		t.Fatal("discard must clear the live session")
	}

	list, err := m.Conversations.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatal("discard must not write to the archive")
	}
}

func TestEndChatWithoutPersona(t *testing.T) {
	m := newTestModel(t, testutil.NewMockBackend())
	if cmd := m.EndChat(true); cmd != nil {
		t.Fatal("ending without a persona is a no-op")
	}
}

func TestSnapshotRestore(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)
	m.ApplyChatReply(m.SendMessage("hello")().(ChatReplyMsg))

	// A new model over the same stores resumes the conversation
	restored := NewModel(nil, mock, nil, m.KV, m.Conversations, m.Extractor, "test", "test")

	if restored.Phase != PhaseActive {
		t.Fatalf("restored phase = %v, want Active", restored.Phase)
	}
	if restored.Persona != m.Persona {
		t.Fatalf("restored persona = %+v", restored.Persona)
	}
	if restored.PageURL != m.PageURL {
		t.Fatalf("restored URL = %q", restored.PageURL)
	}
	if len(restored.Messages) != len(m.Messages) {
		t.Fatalf("restored %d messages, want %d", len(restored.Messages), len(m.Messages))
	}
}

func TestSnapshotClearedAfterEndChat(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)
	m.EndChat(false)

	restored := NewModel(nil, mock, nil, m.KV, m.Conversations, m.Extractor, "test", "test")
	if restored.Phase != PhaseIdle || restored.PersonaActive() {
		t.Fatal("ended session must not be restored")
	}
}

func TestDeleteSavedLeavesLiveSessionUntouched(t *testing.T) {
	mock := testutil.NewMockBackend()
	m := activeModel(t, mock)

	// Archive one conversation while another chat is live
	conv := &storage.Conversation{
		PersonaNickname: "Someone Else",
		Messages:        testutil.TestMessages(),
	}
	if err := m.Conversations.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	msg := m.DeleteSaved(conv.ID)().(ConversationDeletedMsg)
	if msg.Err != nil {
		t.Fatalf("delete failed: %v", msg.Err)
	}

	if !m.PersonaActive() || len(m.Messages) == 0 {
		t.Fatal("deleting an archived conversation must not touch the live session")
	}

	list, _ := m.Conversations.List()
	if len(list) != 0 {
		t.Fatal("conversation should be gone")
	}
}

func TestErrorMessagePrefersAPIError(t *testing.T) {
	err := &api.Error{Kind: api.KindBackend, Op: "generate-persona", Message: "readable message"}
	if got := ErrorMessage(err); got != "readable message" {
		t.Fatalf("ErrorMessage = %q", got)
	}
	if got := ErrorMessage(errors.New("plain failure")); got != "plain failure" {
		t.Fatalf("ErrorMessage = %q", got)
	}
	if got := ErrorMessage(nil); got != "" {
		t.Fatalf("ErrorMessage(nil) = %q", got)
	}
}
