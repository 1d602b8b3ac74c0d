package config

import (
	"github.com/JaimeStill/catalyst/internal/analyses"
	"github.com/JaimeStill/catalyst/internal/index"
	"github.com/JaimeStill/catalyst/internal/taxonomy"
	"github.com/JaimeStill/catalyst/internal/workflow"
	"github.com/JaimeStill/catalyst/pkg/cache"
	"github.com/JaimeStill/catalyst/pkg/database"
	"github.com/JaimeStill/catalyst/pkg/llm"
	"github.com/JaimeStill/catalyst/pkg/storage"
	"github.com/JaimeStill/catalyst/pkg/telemetry"
	"github.com/JaimeStill/catalyst/pkg/vector"
)

var databaseEnv = &database.Env{
	Enabled:         "CATALYST_DB_ENABLED",
	URL:             "CATALYST_DB_URL",
	Host:            "CATALYST_DB_HOST",
	Port:            "CATALYST_DB_PORT",
	Name:            "CATALYST_DB_NAME",
	User:            "CATALYST_DB_USER",
	Password:        "CATALYST_DB_PASSWORD",
	SSLMode:         "CATALYST_DB_SSL_MODE",
	MaxOpenConns:    "CATALYST_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CATALYST_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CATALYST_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CATALYST_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "CATALYST_STORAGE_BACKEND",
	Root:             "CATALYST_STORAGE_ROOT",
	ContainerName:    "CATALYST_STORAGE_CONTAINER_NAME",
	ConnectionString: "CATALYST_STORAGE_CONNECTION_STRING",
	AccountURL:       "CATALYST_STORAGE_ACCOUNT_URL",
}

var generationEnv = &llm.Env{
	Provider:   "CATALYST_LLM_PROVIDER",
	Model:      "CATALYST_LLM_MODEL",
	APIKey:     "CATALYST_LLM_API_KEY",
	BaseURL:    "CATALYST_LLM_BASE_URL",
	APIVersion: "CATALYST_LLM_API_VERSION",
	AuthType:   "CATALYST_LLM_AUTH_TYPE",
	MaxRetries: "CATALYST_LLM_MAX_RETRIES",
	Timeout:    "CATALYST_LLM_TIMEOUT",
}

var embeddingEnv = &llm.EmbeddingEnv{
	Model:   "CATALYST_EMBEDDING_MODEL",
	APIKey:  "CATALYST_EMBEDDING_API_KEY",
	BaseURL: "CATALYST_EMBEDDING_BASE_URL",
}

var vectorEnv = &vector.Env{
	Backend:    "CATALYST_VECTOR_BACKEND",
	Collection: "CATALYST_VECTOR_COLLECTION",
	Dimension:  "CATALYST_VECTOR_DIMENSION",
	Path:       "CATALYST_VECTOR_PATH",
}

var indexEnv = &index.Env{
	BatchSize:   "CATALYST_INDEX_BATCH_SIZE",
	Concurrency: "CATALYST_INDEX_CONCURRENCY",
}

var pipelineEnv = &workflow.Env{
	Topology:    "CATALYST_PIPELINE_TOPOLOGY",
	Collection:  "CATALYST_PIPELINE_COLLECTION",
	TopK:        "CATALYST_PIPELINE_TOP_K",
	Temperature: "CATALYST_PIPELINE_TEMPERATURE",
	MaxTokens:   "CATALYST_PIPELINE_MAX_TOKENS",
	KeywordMin:  "CATALYST_PIPELINE_KEYWORD_MIN",
	KeywordMax:  "CATALYST_PIPELINE_KEYWORD_MAX",
}

var referenceEnv = &taxonomy.Env{
	CategoriesFile:    "CATALYST_REFERENCE_CATEGORIES_FILE",
	TaxCategoriesFile: "CATALYST_REFERENCE_TAX_CATEGORIES_FILE",
}

var cacheEnv = &cache.Env{
	Backend:  "CATALYST_CACHE_BACKEND",
	Addr:     "CATALYST_CACHE_ADDR",
	Password: "CATALYST_CACHE_PASSWORD",
	DB:       "CATALYST_CACHE_DB",
	TTL:      "CATALYST_CACHE_TTL",
}

var telemetryEnv = &telemetry.Env{
	Enabled:     "CATALYST_OTEL_ENABLED",
	Exporter:    "CATALYST_OTEL_EXPORTER",
	Endpoint:    "CATALYST_OTEL_ENDPOINT",
	Insecure:    "CATALYST_OTEL_INSECURE",
	Headers:     "CATALYST_OTEL_HEADERS",
	SampleRatio: "CATALYST_OTEL_SAMPLE_RATIO",
	ServiceName: "CATALYST_OTEL_SERVICE_NAME",
}

var analysesEnv = &analyses.Env{
	BatchConcurrency: "CATALYST_ANALYSES_BATCH_CONCURRENCY",
	MaxBatchSize:     "CATALYST_ANALYSES_MAX_BATCH_SIZE",
}
