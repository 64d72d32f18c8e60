// Package groq implements the answer generator port against the Groq API.
// Groq exposes an OpenAI-compatible surface, so the adapter rides on the
// go-openai client with a swapped base URL.
package groq

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
	"github.com/kirillkom/roadsign-assistant/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

const systemRole = "You are a senior traffic engineer specializing in IRC:67-2022 road signage rules."

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	topP        float32
	executor    *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if clientConfig.BaseURL == "" {
		clientConfig.BaseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	return &Client{
		api:         openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		executor:    executor,
	}
}

// Generate sends the composed prompt as a single user turn. The caller owns
// the deadline; a timeout or transport failure comes back as ErrGeneration
// and the pipeline degrades to its fallback answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var answer string
	call := func(callCtx context.Context) error {
		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemRole},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			TopP:        c.topP,
		})
		if err != nil {
			return fmt.Errorf("groq chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("groq returned no choices")
		}
		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "groq.generate", call, classifyGenerateError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}
	return answer, nil
}
