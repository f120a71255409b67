package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/embedding"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/repo"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/retrieval"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

var embedMenuCmd = &cobra.Command{
	Use:   "embed-menu",
	Short: "Precompute item-name embeddings into the SQLite catalog",
	RunE:  runEmbedMenu,
}

var (
	kbPath    string
	indexPath string
	menuPath  string
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build the question-answering index from a knowledge-base JSON file",
	RunE:  runBuildIndex,
}

var importMenuCmd = &cobra.Command{
	Use:   "import-menu",
	Short: "Load a YAML menu file into the SQLite catalog",
	RunE:  runImportMenu,
}

func init() {
	buildIndexCmd.Flags().StringVar(&kbPath, "kb", "knowledge_base.json", "knowledge-base JSON file")
	buildIndexCmd.Flags().StringVar(&indexPath, "out", "", "index output path (default RETRIEVAL_INDEX_PATH)")
	importMenuCmd.Flags().StringVar(&menuPath, "file", "menu.yaml", "YAML menu file")
}

func runEmbedMenu(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.requireAPIKey(); err != nil {
		return err
	}
	ctx := cmd.Context()

	client, err := nodes.NewGenAIClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return err
	}
	embedder := embedding.NewGenAIEmbedder(client, cfg.Embedding.Model, embedding.TaskDocument)

	store, err := repo.OpenSQLiteCatalog(ctx, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	logx.Info().Int("items", len(records)).Msg("embedding menu items")

	saved := 0
	for i, rec := range records {
		text := strings.TrimSpace(rec.Name)
		if d := strings.TrimSpace(rec.Description); d != "" {
			text += " - " + d
		}
		if text == "" {
			logx.Warn().Int("item_number", rec.ItemNumber).Msg("skipping item without name")
			continue
		}
		vector, err := embedder.Embed(ctx, text)
		if err != nil {
			logx.Error().Err(err).Str("item", rec.Name).Msg("embedding failed, skipping item")
			continue
		}
		if err := store.SaveEmbedding(ctx, rec.ItemNumber, rec.Name, vector); err != nil {
			logx.Error().Err(err).Str("item", rec.Name).Msg("saving embedding failed")
			continue
		}
		saved++
		logx.Debug().Int("n", i+1).Int("of", len(records)).Str("item", rec.Name).Msg("embedded")
	}
	logx.Info().Int("saved", saved).Int("items", len(records)).Msg("menu embeddings complete")
	return nil
}

func runBuildIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.requireAPIKey(); err != nil {
		return err
	}
	ctx := cmd.Context()

	out := indexPath
	if out == "" {
		out = cfg.Retrieval.IndexPath
	}

	kb, err := retrieval.LoadKnowledgeBase(kbPath)
	if err != nil {
		return err
	}
	client, err := nodes.NewGenAIClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return err
	}
	idx, err := retrieval.Build(ctx, kb, embedding.NewGenAIEmbedder(client, cfg.Embedding.Model, embedding.TaskDocument))
	if err != nil {
		return err
	}
	if err := idx.Save(out); err != nil {
		return err
	}
	logx.Info().Int("chunks", len(idx.Chunks)).Int("dimension", idx.Dimension).Str("path", out).Msg("knowledge index written")
	return nil
}

func runImportMenu(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	records, err := repo.NewFileCatalogStore(menuPath).LoadCatalog(ctx)
	if err != nil {
		return err
	}
	store, err := repo.OpenSQLiteCatalog(ctx, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpsertItems(ctx, records); err != nil {
		return fmt.Errorf("import %s: %w", menuPath, err)
	}
	logx.Info().Int("items", len(records)).Str("db", cfg.Catalog.Path).Msg("menu imported")
	return nil
}
