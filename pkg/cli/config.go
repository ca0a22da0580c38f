package cli

import (
	"context"
	"os"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/adapter"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/prompt"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/repository"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/chat"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/memory"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	project   string
	database  string
	indexPath string

	// Adapters
	geminiProject  string
	geminiLocation string

	// Prompt
	personaPath string

	// Transcript archive
	bucket string

	// Logging
	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "index-path",
			Usage:       "Vector index path (empty for in-memory)",
			Sources:     cli.EnvVars("MEERA_INDEX_PATH"),
			Destination: &cfg.indexPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MEERA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// chatFlags returns flags for the conversation pipeline with destination config
func chatFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "persona",
			Usage:       "Path to a YAML persona file (optional)",
			Sources:     cli.EnvVars("MEERA_PERSONA"),
			Destination: &cfg.personaPath,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for transcript archival (optional)",
			Sources:     cli.EnvVars("MEERA_TRANSCRIPT_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
}

// setupLogger installs the default logger at the configured level
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// newRepository creates the dual-backend repository
func (cfg *config) newRepository(ctx context.Context) (*repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	docs, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create document store")
	}

	index, err := repository.NewChromemIndex(cfg.indexPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create vector index")
	}

	return repository.New(docs, index), nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
}

// newPersona loads the persona file, falling back to the built-in persona
func (cfg *config) newPersona() (prompt.Persona, error) {
	if cfg.personaPath == "" {
		return prompt.DefaultPersona(), nil
	}
	return prompt.LoadPersona(cfg.personaPath)
}

// newMemories creates the memory use case
func (cfg *config) newMemories(ctx context.Context) (*memory.UseCase, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	return memory.New(repo, gemini), nil
}

// newSession assembles the full conversation pipeline
func (cfg *config) newSession(ctx context.Context) (*chat.Session, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	persona, err := cfg.newPersona()
	if err != nil {
		return nil, err
	}

	memories := memory.New(repo, gemini)
	builder := prompt.NewBuilder(persona)

	var opts []chat.Option
	if cfg.bucket != "" {
		archive, err := adapter.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create transcript archive")
		}
		opts = append(opts, chat.WithArchive(archive))
	}

	return chat.New(memories, gemini, builder, opts...), nil
}
