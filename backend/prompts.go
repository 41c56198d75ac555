// Package backend implements persona synthesis and chat against the
// hosted Persona-L service or directly against OpenAI, Anthropic or a
// local Ollama server.
//
// The hosted backend keeps all prompting server-side. The direct
// backends build the prompts locally, so this file defines the shared
// prompt templates and the parser for the model's persona answer.
package backend

import (
	"fmt"
	"regexp"
	"strings"

	"persona-l/api"
	"persona-l/storage"
)

// personaSystemPrompt instructs the model to invent an author persona
// for a page. The answer format is parsed by parsePersona, so the
// nickname heading is part of the contract.
const personaSystemPrompt = `You are a creative writer. Given the text of a web page, imagine the person who wrote it and invent a fictional author persona for them.

Respond in markdown. Start with a level-two heading of the form:

## Nickname: <a short, evocative nickname>

Then write one or two paragraphs describing the persona: their voice, interests, quirks and relationship to the page's subject. Write the description in first person is not required; third person is fine. Do not mention that the persona is fictional or that you are an AI.`

// chatSystemPromptTemplate puts the model in character for chat turns
const chatSystemPromptTemplate = `You are role-playing as "%s", the author of a web page. Persona description:

%s

Stay in character. Answer the user's questions about the page and its subject in the persona's voice. If asked about something outside the page, answer briefly and steer back to your writing.

Page content:

%s`

var nicknameRegexp = regexp.MustCompile(`##\s*Nickname:\s*(.+)`)

// buildPersonaPrompt assembles the user message for persona generation
func buildPersonaPrompt(pageContent, pageURL string) string {
	var b strings.Builder
	if pageURL != "" {
		fmt.Fprintf(&b, "Page URL: %s\n\n", pageURL)
	}
	b.WriteString("Page content:\n\n")
	b.WriteString(pageContent)
	return b.String()
}

// buildChatSystemPrompt assembles the in-character system prompt
func buildChatSystemPrompt(persona storage.Persona, pageContent string) string {
	return fmt.Sprintf(chatSystemPromptTemplate, persona.Nickname, persona.Description, pageContent)
}

// parsePersona extracts the nickname and description from the model's
// markdown answer. A missing nickname heading falls back to "Unnamed
// Author" with the full text as the description.
func parsePersona(raw string) storage.Persona {
	raw = strings.TrimSpace(raw)

	match := nicknameRegexp.FindStringSubmatchIndex(raw)
	if match == nil {
		return storage.Persona{
			Nickname:    "Unnamed Author",
			Description: raw,
		}
	}

	nickname := strings.TrimSpace(raw[match[2]:match[3]])
	nickname = strings.Trim(nickname, "*_`")

	description := strings.TrimSpace(raw[match[1]:])
	if description == "" {
		description = strings.TrimSpace(raw[:match[0]])
	}

	if nickname == "" {
		nickname = "Unnamed Author"
	}

	return storage.Persona{
		Nickname:    nickname,
		Description: description,
	}
}

// capHistory trims history to the most recent messages the backends
// forward with a chat turn.
func capHistory(history []storage.Message) []storage.Message {
	if len(history) > api.HistoryLimit {
		return history[len(history)-api.HistoryLimit:]
	}
	return history
}
