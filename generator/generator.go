package generator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrGenerationFailed is the only error Generate returns; the cause is logged, not wrapped.
var ErrGenerationFailed = errors.New("failed to generate the daily briefing, please try again later")

// Filename is the repository filename for the briefing of the given date.
func Filename(date string) string {
	return date + "-daily-briefing.md"
}

// Generator 负责请求模型生成每日简报。
type Generator struct {
	llm    LLMClient
	model  string
	now    func() time.Time
	logger zerolog.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger that receives the underlying failure causes.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func NewGenerator(llm LLMClient, model string, opts ...Option) (*Generator, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	g := &Generator{
		llm:    llm,
		model:  model,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Generate asks the model for today's briefing.
func (g *Generator) Generate(ctx context.Context) (Summary, error) {
	now := g.now()
	prompt := BuildBriefingPrompt(now, g.model)

	c, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		g.logger.Error().Err(err).Str("model", g.model).Msg("briefing generation failed")
		return Summary{}, ErrGenerationFailed
	}

	// Date is the UTC calendar day, while the prompt uses local time.
	s := PostProcess(c, now.UTC().Format("2006-01-02"))
	g.logger.Debug().Str("date", s.Date).Int("sources", len(s.Sources)).Int("bytes", len(s.Content)).
		Msg("briefing generated")
	return s, nil
}
