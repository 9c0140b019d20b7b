package cli

import (
	"context"
	"fmt"

	"obsidian_briefing_sync/config"
	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/generator"
	"obsidian_briefing_sync/logger"
	"obsidian_briefing_sync/publisher"
	"obsidian_briefing_sync/settings"
)

func (o *options) openSettings() (*settings.Store, error) {
	store, err := settings.Open(o.fs, o.cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return store, nil
}

func (o *options) newPublisher() *publisher.Publisher {
	return publisher.New(o.httpClient, o.cfg.GitHubAPIURL, o.verbose, logger.WithField("component", "publisher"))
}

// buildApp wires generator, publisher and settings into a controller.
func (o *options) buildApp(ctx context.Context) (*controller.App, *settings.Store, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, err := o.openSettings()
	if err != nil {
		return nil, nil, err
	}
	llm, err := buildLLM(ctx, o.cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	gen, err := generator.NewGenerator(llm, o.cfg.LLM.Model,
		generator.WithLogger(logger.WithField("component", "generator")))
	if err != nil {
		return nil, nil, err
	}
	app := controller.New(gen, o.newPublisher(), store,
		controller.WithLogger(logger.WithField("component", "controller")))
	return app, store, nil
}

func buildLLM(ctx context.Context, cfg config.LLMConfig) (generator.LLMClient, error) {
	llmCfg := &generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	}
	switch cfg.Provider {
	case "gemini":
		return generator.NewGeminiLLMFromConfig(ctx, llmCfg)
	case "openai":
		return generator.NewOpenAILLMFromConfig(llmCfg)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(llmCfg)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
