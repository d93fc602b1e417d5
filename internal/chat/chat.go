// Package chat implements the conversational assistant: chat records with
// message history, AI replies, and automatic titling of new conversations.
package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"meal-genie/internal/llm"
	"meal-genie/internal/metrics"
)

// Message is a single chat message, from the user or the assistant.
type Message struct {
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is a persisted conversation. It is a distinct record type from a
// meal plan: the two share identity and timestamps but nothing else.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const defaultTitle = "New Conversation"

const assistantPrompt = "You are a helpful nutritionist and cooking expert named Genie. " +
	"Answer questions about food, cooking, nutrition, and meal planning. " +
	"Be concise but thorough, when necessary give things in a list format. " +
	"Be very specific and detailed. Be very friendly, engaging and helpful."

const titlePrompt = "Generate a short, concise title (max 5 words) for a conversation that starts with this message:"

// Service generates assistant replies and conversation titles.
type Service struct {
	textGen  llm.TextGenerator
	recorder metrics.Recorder
}

// NewService creates a chat Service.
func NewService(textGen llm.TextGenerator, recorder metrics.Recorder) *Service {
	return &Service{textGen: textGen, recorder: recorder}
}

// Reply generates the assistant response to the latest user message given
// the conversation history.
func (s *Service) Reply(ctx context.Context, history []Message) (string, error) {
	var b strings.Builder
	for _, msg := range history {
		if msg.IsUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Genie: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("Genie:")

	return s.complete(ctx, "chat_reply", assistantPrompt, b.String(), llm.Options{
		Temperature: 0.7,
	})
}

// Title generates a conversation title from its first message. The result
// is stripped of surrounding quotes and capped at 50 characters.
func (s *Service) Title(ctx context.Context, firstMessage string) (string, error) {
	title, err := s.complete(ctx, "chat_title", titlePrompt, firstMessage, llm.Options{
		Temperature: 0.7,
		MaxTokens:   20,
	})
	if err != nil {
		return "", err
	}

	title = strings.Trim(strings.TrimSpace(title), `"`)
	if len(title) > 50 {
		title = title[:50]
	}
	if title == "" {
		title = defaultTitle
	}
	return title, nil
}

// complete runs one LLM call and records its execution metric. Metric
// failures are logged only.
func (s *Service) complete(ctx context.Context, task, system, prompt string, opts llm.Options) (string, error) {
	started := time.Now()
	response, err := s.textGen.Complete(ctx, system, prompt, opts)
	if err != nil {
		return "", err
	}

	if err := s.recorder.Record(ctx, metrics.ExecutionMetric{
		Task:            task,
		Model:           llm.ModelName(s.textGen),
		PromptChars:     len(prompt),
		CompletionChars: len(response),
		LatencyMS:       time.Since(started).Milliseconds(),
	}); err != nil {
		log.Printf("Failed to record execution metric for %s: %v", task, err)
	}
	return response, nil
}
