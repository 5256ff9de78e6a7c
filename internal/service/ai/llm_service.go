package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/config"
	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

// ErrEmptyResponse is reported when the model answers with blank content.
var ErrEmptyResponse = errors.New("empty model response")

// GenerationError wraps any failure of a narrative request.
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Service generates chart narratives through the configured chat model
type Service struct {
	prompts *ReadingPromptManager
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService creates the Ark-backed service from configuration
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg.Timeout)
}

// NewServiceWithModel builds the chain around an existing model. timeout <= 0 disables the per-call limit.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, timeout time.Duration) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reading chain: %w", err)
	}

	return &Service{
		prompts: NewReadingPromptManager(),
		chain:   runnable,
		timeout: timeout,
	}, nil
}

// InterpretChart asks for the full multi-part reading of chart.
func (s *Service) InterpretChart(ctx context.Context, chart bazi.ChartData) (string, error) {
	return s.generate(ctx, KindInterpretation, s.prompts.BuildInterpretationQuery(chart))
}

// DailyInsight asks for a short insight tied to date, formatted yyyy-MM-dd in the user's zone.
func (s *Service) DailyInsight(ctx context.Context, chart bazi.ChartData, date string) (string, error) {
	return s.generate(ctx, KindDailyInsight, s.prompts.BuildDailyInsightQuery(chart, date))
}

func (s *Service) generate(ctx context.Context, kind Kind, query string) (string, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "ai").Str("kind", string(kind)).Logger()

	system, err := s.prompts.BuildSystemPrompt(kind)
	if err != nil {
		return "", &GenerationError{Kind: kind, Err: err}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": system,
		"query":  query,
	})
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("model call failed")
		return "", &GenerationError{Kind: kind, Err: err}
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		logger.Warn().Dur("elapsed", time.Since(started)).Msg("model returned empty content")
		return "", &GenerationError{Kind: kind, Err: ErrEmptyResponse}
	}

	logger.Info().Int("length", len(response.Content)).Dur("elapsed", time.Since(started)).Msg("generated narrative")
	return response.Content, nil
}
