package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatConfig configures the hosted completion API behind the chat widget.
type ChatConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ChatService streams assistant replies from a hosted completion model.
// It is a thin proxy: no history is kept server-side.
type ChatService struct {
	config ChatConfig
	client *http.Client
}

// NewChatService creates a new chat completion service.
func NewChatService(config ChatConfig) *ChatService {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	return &ChatService{
		config: config,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// ChatMessage is one turn of the conversation, as the widget sends it.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

const chatSystemPrompt = "You are the TicketLive assistant. Help visitors find events, " +
	"understand ticket purchases, coupons, and refunds. Keep answers short and friendly."

// Stream sends the conversation to the completion API and writes reply
// tokens to w as they arrive, flushing after each token when w supports
// it. Returns the full reply text.
func (s *ChatService) Stream(ctx context.Context, messages []ChatMessage, w io.Writer) (string, error) {
	request := chatCompletionRequest{
		Model:    s.config.Model,
		Messages: append([]ChatMessage{{Role: "system", Content: chatSystemPrompt}}, messages...),
		Stream:   true,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	flusher, _ := w.(http.Flusher)
	var reply strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			reply.WriteString(choice.Delta.Content)
			if _, err := io.WriteString(w, choice.Delta.Content); err != nil {
				return reply.String(), err
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return reply.String(), fmt.Errorf("failed to read completion stream: %w", err)
	}

	return reply.String(), nil
}
