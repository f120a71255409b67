package model

// ================ Config ================

type ParserModelConfig struct {
	Model       string  `envconfig:"PARSER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"PARSER_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"PARSER_TEMPERATURE" default:"0.1"`
}

type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0.2"`
}

type EmbeddingConfig struct {
	Model string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
}

type CatalogConfig struct {
	Driver string `envconfig:"CATALOG_DRIVER" default:"sqlite"`
	Path   string `envconfig:"CATALOG_PATH" default:"menu.db"`
	TTL    string `envconfig:"CATALOG_TTL" default:"1h"`
}

type MatchConfig struct {
	DishCutoff  float64 `envconfig:"MATCH_DISH_CUTOFF" default:"0.6"`
	DrinkCutoff float64 `envconfig:"MATCH_DRINK_CUTOFF" default:"0.6"`
}

type RetrievalConfig struct {
	IndexPath string `envconfig:"RETRIEVAL_INDEX_PATH" default:"rag_index.json"`
	TopK      int    `envconfig:"RETRIEVAL_TOP_K" default:"3"`
}

type OrderSinkConfig struct {
	TTL string `envconfig:"ORDER_SINK_TTL" default:"24h"`
}

type HTTPConfig struct {
	Addr string `envconfig:"HTTP_ADDR" default:":8080"`
}
