// Package cli provides the command-line interface for draftmill.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Config holds the wired backends the commands compose into services.
// Optional fields may be nil; commands degrade the way the services do.
type Config struct {
	// Settings is the resolved application configuration.
	Settings domain.Settings

	// ConfigStore backs the config command.
	ConfigStore driven.ConfigStore

	// Generator is the generation backend. Required for generate.
	Generator driven.Generator

	// Embedder is the embedding service. Optional.
	Embedder driven.EmbeddingService

	// SearchBackend is the external lookup backend. Optional.
	SearchBackend driven.SearchBackend

	// EvidenceStore persists cached lookups.
	EvidenceStore driven.EvidenceStore

	// UnitStore persists terminal units for resume. Optional.
	UnitStore driven.UnitStore

	// CheckpointStore persists chapter checkpoints. Optional.
	CheckpointStore driven.CheckpointStore

	// Renderers is the cascade order for chart artifacts.
	Renderers []driven.Renderer

	// Registry maps source files to normalisers.
	Registry driven.NormaliserRegistry

	// Chunker splits normalised documents.
	Chunker driven.Chunker
}

// config holds the active configuration.
var config *Config

// SetConfig sets the configuration for all commands.
func SetConfig(cfg *Config) {
	config = cfg
}

var rootCmd = &cobra.Command{
	Use:   "draftmill",
	Short: "Evidence-grounded long-form report generation",
	Long: `Draftmill turns a topic, an outline, and a folder of source material
into a long-form analytical report. Every section is drafted strictly
from retrieved evidence, illustrated with charts extracted from the
draft, and refined against a deterministic quality rubric.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

var verboseFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print pipeline progress to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
