package generator

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// GeminiLLM implements LLMClient on the Gemini API with Google Search grounding.
type GeminiLLM struct {
	Model  string
	client *genai.Client
}

func NewGeminiLLMFromConfig(ctx context.Context, cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; provide llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &GeminiLLM{Model: cfg.Model, client: client}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "text/plain",
	}
	if prompt.System != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.WebSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt.User), config)
	if err != nil {
		return Completion{}, err
	}
	return Completion{Text: resp.Text(), Sources: groundingSources(resp)}, nil
}

// groundingSources reads candidates[0].groundingMetadata.groundingChunks[].web.
// A response without that shape yields no sources.
func groundingSources(resp *genai.GenerateContentResponse) []Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}
	var sources []Source
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return sources
}
