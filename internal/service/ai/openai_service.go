package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/curugbadak/pasar-desa/backend/internal/config"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIService talks to any OpenAI-compatible chat completion endpoint.
type OpenAIService struct {
	client *openai.Client
	cfg    config.AIConfig
}

// NewOpenAIService builds a client from the OPENAI_* settings.
func NewOpenAIService(cfg config.AIConfig) (*OpenAIService, error) {
	if cfg.OpenAIAPIKey == "" || cfg.OpenAIModel == "" {
		return nil, fmt.Errorf("openai credentials or model missing, set OPENAI_API_KEY and OPENAI_MODEL")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// StreamingEnabled reports whether SSE clients receive chunk deltas.
func (s *OpenAIService) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Complete issues exactly one chat completion request.
func (s *OpenAIService) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, s.buildRequest(req, false))
	if err != nil {
		return "", fmt.Errorf("%w: openai request: %w", ErrCompletion, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	log.Printf("[ai] openai completion done, model=%s, history=%d, length=%d", resp.Model, len(req.History), len(content))
	return content, nil
}

// CompleteStream relays content deltas to onDelta and returns the full text.
func (s *OpenAIService) CompleteStream(ctx context.Context, req chat.CompletionRequest, onDelta func(string)) (string, error) {
	if !s.StreamingEnabled() {
		return s.Complete(ctx, req)
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, s.buildRequest(req, true))
	if err != nil {
		return "", fmt.Errorf("%w: openai stream: %w", ErrCompletion, err)
	}
	defer stream.Close()

	var answer strings.Builder
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: openai stream recv: %w", ErrCompletion, err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		answer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	if strings.TrimSpace(answer.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return answer.String(), nil
}

func (s *OpenAIService) buildRequest(req chat.CompletionRequest, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemText(req),
	})
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    roleFor(turn.Role),
			Content: turn.Text,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	return openai.ChatCompletionRequest{
		Model:       s.cfg.OpenAIModel,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		N:           1,
		Messages:    messages,
		Stream:      stream,
	}
}

func roleFor(role chat.Role) string {
	if role == chat.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
