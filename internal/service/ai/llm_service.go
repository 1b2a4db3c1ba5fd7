package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/curugbadak/pasar-desa/backend/internal/config"
	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

var (
	// ErrCompletion marks every failure of the completion provider.
	ErrCompletion = errors.New("completion failed")
	// ErrEmptyCompletion means the provider answered with no text.
	ErrEmptyCompletion = fmt.Errorf("%w: empty response", ErrCompletion)
)

// Service runs completions through an eino prompt chain.
type Service struct {
	chatModel model.BaseChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the Ark-backed completion service.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel compiles the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, cfg config.AIConfig) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled reports whether SSE clients receive chunk deltas.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Complete issues exactly one provider request and returns the raw text.
func (s *Service) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	response, err := s.chain.Invoke(ctx, buildChainInput(req))
	if err != nil {
		return "", fmt.Errorf("%w: run chain: %w", ErrCompletion, err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyCompletion
	}

	log.Printf("[ai] completion done, history=%d, length=%d", len(req.History), len(response.Content))
	return response.Content, nil
}

// CompleteStream behaves like Complete but relays chunks to onDelta as they
// arrive. The returned text is the concatenation of all chunks.
func (s *Service) CompleteStream(ctx context.Context, req chat.CompletionRequest, onDelta func(string)) (string, error) {
	if !s.StreamingEnabled() {
		return s.Complete(ctx, req)
	}

	stream, err := s.chain.Stream(ctx, buildChainInput(req))
	if err != nil {
		return "", fmt.Errorf("%w: stream chain: %w", ErrCompletion, err)
	}
	defer stream.Close()

	var chunks []*schema.Message
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: receive chunk: %w", ErrCompletion, err)
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	if len(chunks) == 0 {
		return "", ErrEmptyCompletion
	}
	full, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", fmt.Errorf("%w: concat chunks: %w", ErrCompletion, err)
	}
	if strings.TrimSpace(full.Content) == "" {
		return "", ErrEmptyCompletion
	}

	log.Printf("[ai] streamed completion done, chunks=%d, length=%d", len(chunks), len(full.Content))
	return full.Content, nil
}

func buildChainInput(req chat.CompletionRequest) map[string]any {
	return map[string]any{
		"system":  buildSystemText(req),
		"history": buildHistoryMessages(req.History),
		"query":   req.Message,
	}
}

func buildSystemText(req chat.CompletionRequest) string {
	if req.CatalogText == "" {
		return req.Instruction
	}
	return req.Instruction + "\n\nDATA PRODUK:\n" + req.CatalogText
}

// buildHistoryMessages maps turns to model messages. The window has already
// been applied by the caller.
func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}

	return history
}
