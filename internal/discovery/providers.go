package discovery

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ccs-group/leadgen-cli/internal/model"
	"github.com/ccs-group/leadgen-cli/pkg/anthropic"
	"github.com/ccs-group/leadgen-cli/pkg/perplexity"
)

// SearchProvider runs search-augmented discovery via Perplexity. The model
// performs live web lookups, so calls run on the order of minutes.
type SearchProvider struct {
	client perplexity.Client
	model  string
}

// NewSearchProvider wraps a Perplexity client as the search-augmented tier.
func NewSearchProvider(client perplexity.Client, model string) *SearchProvider {
	return &SearchProvider{client: client, model: model}
}

func (p *SearchProvider) Mode() model.DiscoveryMode {
	return model.ModeSearchAugmented
}

func (p *SearchProvider) Generate(ctx context.Context, req Request) (*RawOutput, error) {
	messages := []perplexity.Message{}
	if req.System != "" {
		messages = append(messages, perplexity.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, perplexity.Message{Role: "user", Content: req.Prompt})

	chatReq := perplexity.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = &req.MaxTokens
	}

	resp, err := p.client.ChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: search-augmented call")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("discovery: search-augmented response had no choices")
	}

	return &RawOutput{
		Text:             resp.Choices[0].Message.Content,
		Citations:        resp.Citations,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// KnowledgeProvider runs knowledge-only discovery via the Anthropic API.
// No live search happens, so results are lower-confidence and the timeout
// is much shorter.
type KnowledgeProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewKnowledgeProvider wraps an Anthropic client as the knowledge-only tier.
func NewKnowledgeProvider(client anthropic.Client, modelName string, maxTokens int64) *KnowledgeProvider {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &KnowledgeProvider{client: client, model: modelName, maxTokens: maxTokens}
}

func (p *KnowledgeProvider) Mode() model.DiscoveryMode {
	return model.ModeKnowledgeOnly
}

func (p *KnowledgeProvider) Generate(ctx context.Context, req Request) (*RawOutput, error) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []anthropic.Message{
			{Role: "user", Content: req.Prompt},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "discovery: knowledge-only call")
	}

	resp.Usage.LogCost(p.model, "discovery")

	return &RawOutput{
		Text:             resp.Text(),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}
