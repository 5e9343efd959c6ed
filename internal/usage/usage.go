// Package usage is the billing gate consulted before generation.
package usage

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/metrics"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

type Gate struct {
	store  jobModel.UsageStore
	quota  int64
	now    func() time.Time
	logger *logger_i.Logger
}

// NewGate limits each user to quota generated words per calendar month (UTC).
// A quota <= 0 disables the limit.
func NewGate(store jobModel.UsageStore, quota int64) *Gate {
	return &Gate{store: store, quota: quota, now: time.Now, logger: logger_i.NewLogger("usage_gate")}
}

func (g *Gate) month() string {
	return g.now().UTC().Format("2006-01")
}

// Allowed reports whether userId may generate wordCount more words this month.
func (g *Gate) Allowed(ctx context.Context, userId string, wordCount int) (bool, error) {
	if g.quota <= 0 {
		return true, nil
	}
	used, err := g.store.WordsUsed(ctx, userId, g.month())
	if err != nil {
		g.logger.WithTrace(ctx).Error("could not read usage", "userId", userId, "error", err)
		return false, err
	}
	if used+int64(wordCount) > g.quota {
		metrics.IncrementUsageDenied()
		g.logger.WithTrace(ctx).Info("word quota exhausted", "userId", userId, "used", used, "requested", wordCount)
		return false, nil
	}
	return true, nil
}

// Record adds the words actually generated.
func (g *Gate) Record(ctx context.Context, userId, text string) {
	words := int64(len(strings.Fields(text)))
	if words == 0 {
		return
	}
	if err := g.store.AddWords(ctx, userId, g.month(), words); err != nil {
		g.logger.WithTrace(ctx).Warn("could not record usage", "userId", userId, "words", words, "error", err)
	}
}
