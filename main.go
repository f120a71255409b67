package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/orderbot/internal/core"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// AppConfig defines all configurable parameters of the order bot,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Env string `envconfig:"APP_ENV" default:"development"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Parser    model.ParserModelConfig
	Answer    model.AnswerModelConfig
	Embedding model.EmbeddingConfig
	Catalog   model.CatalogConfig
	Match     model.MatchConfig
	Retrieval model.RetrievalConfig
	Sink      model.OrderSinkConfig
	HTTP      model.HTTPConfig
}

func (c *AppConfig) requireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

var envFile string

var rootCmd = &cobra.Command{
	Use:           "orderbot",
	Short:         "Conversational order-taking hook for a restaurant menu",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, embedMenuCmd, buildIndexCmd, importMenuCmd)
}

// loadConfig reads the dotenv file, processes the environment and sets up logging.
func loadConfig() (*AppConfig, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Env)})
	return &cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logx.Fatal().Err(err).Msg("orderbot failed")
	}
}
