// Package profile derives a brand's style profile and memory facts from the whole
// set of its source texts.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/internal/rag/llm"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

const fallbackThemeCount = 5

type Builder struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewBuilder(provider llm.Provider) *Builder {
	return &Builder{provider: provider, logger: logger_i.NewLogger("profile_builder")}
}

// BuildProfile characterises the brand from all of its sources at once. Near-empty
// input yields the neutral profile rather than an error.
func (b *Builder) BuildProfile(ctx context.Context, sources []string) (commonModels.StyleProfile, error) {
	log := b.logger.WithTrace(ctx).With("sources", len(sources))

	corpus := buildCorpus(sources)
	if nonSpaceLen(corpus) < config.MinProfileSourceChars {
		log.Info("not enough source material, using neutral profile")
		return commonModels.NeutralProfile(), nil
	}

	start := time.Now()
	raw, err := b.provider.Generate(ctx, llm.Request{
		SystemPrompt: profileInstruction,
		UserPrompt:   corpus,
		Temperature:  config.ProfileTemperature,
		JSONOutput:   true,
	})
	metrics.CaptureExecutionMetrics("profile_generation", time.Since(start))
	if err != nil {
		log.Error("profile generation failed", "error", err)
		return commonModels.StyleProfile{}, fmt.Errorf("%w: %w", commonModels.ErrProfileGenerationFailed, err)
	}

	var p commonModels.StyleProfile
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &p); err != nil {
		log.Error("profile response is not valid JSON", "error", err)
		return commonModels.StyleProfile{}, fmt.Errorf("%w: unparseable response: %w", commonModels.ErrProfileGenerationFailed, err)
	}

	p = p.Normalize()
	if len(p.Voice.Tone) == 0 {
		p.Voice.Tone = commonModels.NeutralProfile().Voice.Tone
	}
	if len(p.Content.Themes) == 0 {
		p.Content.Themes = Keywords(corpus, fallbackThemeCount)
	}
	return p, nil
}

// ExtractMemoryFacts asks for short standalone statements about the brand, grounded
// in the profile and the sources. The result is deduplicated and capped.
func (b *Builder) ExtractMemoryFacts(ctx context.Context, profile commonModels.StyleProfile, sources []string) ([]string, error) {
	log := b.logger.WithTrace(ctx)

	corpus := buildCorpus(sources)
	if nonSpaceLen(corpus) < config.MinProfileSourceChars {
		return []string{}, nil
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commonModels.ErrInvalidArgument, err)
	}

	start := time.Now()
	raw, err := b.provider.Generate(ctx, llm.Request{
		SystemPrompt: factsInstruction,
		UserPrompt:   "Brand profile:\n" + string(profileJSON) + "\n\nSources:\n" + corpus,
		Temperature:  config.ProfileTemperature,
		JSONOutput:   true,
	})
	metrics.CaptureExecutionMetrics("profile_generation", time.Since(start))
	if err != nil {
		log.Error("memory fact extraction failed", "error", err)
		return nil, fmt.Errorf("%w: %w", commonModels.ErrProfileGenerationFailed, err)
	}

	facts, err := parseFacts(stripCodeFence(raw))
	if err != nil {
		log.Error("memory fact response is not valid JSON", "error", err)
		return nil, fmt.Errorf("%w: unparseable facts: %w", commonModels.ErrProfileGenerationFailed, err)
	}
	return cleanFacts(facts), nil
}

func parseFacts(raw string) ([]string, error) {
	var wrapped struct {
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		return wrapped.Facts, nil
	}
	var bare []string
	if err := json.Unmarshal([]byte(raw), &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

func cleanFacts(facts []string) []string {
	out := make([]string, 0, len(facts))
	seen := make(map[string]struct{}, len(facts))
	for _, f := range facts {
		f = strings.Join(strings.Fields(f), " ")
		if f == "" {
			continue
		}
		key := strings.ToLower(strings.TrimRight(f, "."))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
		if len(out) == config.MaxMemoryFacts {
			break
		}
	}
	return out
}

// buildCorpus joins the non-blank sources and truncates to the corpus budget on a rune boundary.
func buildCorpus(sources []string) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	corpus := strings.Join(parts, "\n\n")
	if len(corpus) <= config.MaxProfileCorpusChars {
		return corpus
	}
	cut := config.MaxProfileCorpusChars
	for cut > 0 && !utf8.RuneStart(corpus[cut]) {
		cut--
	}
	return corpus[:cut]
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
