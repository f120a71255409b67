package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey  string
	BaseURL string
	Parser  *model.ParserModelConfig
	Answer  *model.AnswerModelConfig
}

// ChatModels holds the shared genai client and the two completion models.
// Parser serves order parsing, modification parsing and classification;
// Answer serves knowledge questions.
type ChatModels struct {
	Client          *genai.Client
	Parser          model.Generator
	Answer          model.Generator
	ParserModelName string
	AnswerModelName string
}

// NewGenAIClient creates the Gemini API client shared by chat and embedding calls.
func NewGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModels creates the parser and answer chat models on one client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.Parser == nil || config.Answer == nil {
		return nil, fmt.Errorf("chat model config is incomplete")
	}

	client, err := NewGenAIClient(ctx, config.APIKey, config.BaseURL)
	if err != nil {
		return nil, err
	}

	// Parsing is latency bound and needs no reasoning budget.
	parser, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Parser.Model,
		Temperature: &config.Parser.Temperature,
		MaxTokens:   &config.Parser.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating parser model")
		return nil, fmt.Errorf("error creating parser model: %w", err)
	}

	answer, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Answer.Model,
		Temperature: &config.Answer.Temperature,
		MaxTokens:   &config.Answer.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(512)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating answer model")
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return &ChatModels{
		Client:          client,
		Parser:          NewMeteredGenerator(parser, config.Parser.Model),
		Answer:          NewMeteredGenerator(answer, config.Answer.Model),
		ParserModelName: config.Parser.Model,
		AnswerModelName: config.Answer.Model,
	}, nil
}
