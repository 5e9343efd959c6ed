// Package generation sends an assembled prompt pair to the completion model, either
// buffered or as a fragment stream.
package generation

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

type Options struct {
	Temperature float32
	MaxTokens   int
	Stream      bool
}

// Output holds Text for buffered calls and Fragments for streamed ones. Fragments
// must be drained or abandoned by breaking the loop; either releases the connection.
// A failure mid-stream is the last element and carries a non-nil error.
type Output struct {
	Text      string
	Fragments iter.Seq2[string, error]
}

type Invoker struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewInvoker(provider llm.Provider) *Invoker {
	return &Invoker{provider: provider, logger: logger_i.NewLogger("generation")}
}

func (g *Invoker) Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Output, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, fmt.Errorf("%w: empty user prompt", commonModels.ErrInvalidInput)
	}
	if opts.Temperature < 0 || opts.Temperature > 2 {
		return nil, fmt.Errorf("%w: temperature %v outside [0, 2]", commonModels.ErrInvalidArgument, opts.Temperature)
	}
	if opts.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: negative max tokens", commonModels.ErrInvalidArgument)
	}

	req := llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  opts.Temperature,
		MaxTokens:    opts.MaxTokens,
	}
	log := g.logger.WithTrace(ctx).With("provider", g.provider.Name(), "stream", opts.Stream)

	if !opts.Stream {
		text, err := g.provider.Generate(ctx, req)
		if err != nil {
			log.Error("generation failed", "error", err)
			return nil, err
		}
		return &Output{Text: text}, nil
	}

	name := g.provider.Name()
	fragments := func(yield func(string, error) bool) {
		for fragment, err := range g.provider.Stream(ctx, req) {
			if err != nil {
				log.Warn("stream ended with error", "error", err)
				yield("", err)
				return
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield("", commonModels.FromContext(ctxErr))
				return
			}
			metrics.IncrementStreamedFragments(name)
			if !yield(fragment, nil) {
				log.Debug("consumer stopped the stream")
				return
			}
		}
	}
	return &Output{Fragments: fragments}, nil
}

// Drain concatenates a stream, returning the text received before any error.
func Drain(fragments iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for fragment, err := range fragments {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}

// MaxTokensFor budgets completion tokens for a target word count.
func MaxTokensFor(words int) int {
	if words <= 0 {
		words = config.DefaultWordCount
	}
	return words * config.TokensPerWord
}
