package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driving"
	"github.com/draftmill/draftmill-cli/internal/core/services"
)

var (
	generateOutline     string
	generateMaterials   string
	generateOutDir      string
	generateResume      bool
	generateForceLookup bool
)

// Summary styles.
var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a report from an outline and source material",
	Long: `Generates a full report for a topic. Source files in the materials
folder are chunked and indexed; every outline leaf is drafted from the
retrieved evidence, illustrated, edited, and scored. Units that fail
appear in the report as placeholders and in the run summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutline, "outline", "o", "", "path to the outline JSON file (required)")
	generateCmd.Flags().StringVarP(&generateMaterials, "materials", "m", "materials", "folder of source material")
	generateCmd.Flags().StringVar(&generateOutDir, "out", "", "output folder (overrides the configured default)")
	generateCmd.Flags().BoolVar(&generateResume, "resume", false, "skip units completed by a previous run")
	generateCmd.Flags().BoolVar(&generateForceLookup, "force-lookup", false, "bypass the external lookup trigger gate")
	generateCmd.MarkFlagRequired("outline")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if config == nil || config.Generator == nil {
		return domain.ErrGeneratorUnavailable
	}
	if strings.TrimSpace(args[0]) == "" {
		return errMissingTopic
	}

	outline, err := loadOutline(generateOutline)
	if err != nil {
		return err
	}

	ingest := services.NewIngestService(config.Registry, config.Chunker)
	if _, err := ingest.Ingest(cmd.Context(), generateMaterials); err != nil {
		return fmt.Errorf("ingest materials: %w", err)
	}

	settings := config.Settings
	if generateOutDir != "" {
		settings.Workspace.OutDir = generateOutDir
	}

	retriever := services.NewRetrievalService(ingest.Chunks(), config.Embedder, settings.Retrieval)
	evidence := services.NewEvidenceService(config.SearchBackend, config.EvidenceStore, settings.Evidence)
	cascade := services.NewRenderCascade(config.Renderers...)

	pipeline := services.NewPipelineService(
		retriever, evidence, config.Generator,
		services.NewQualityScorer(), cascade, settings,
		services.WithUnitStore(config.UnitStore),
		services.WithCheckpointStore(config.CheckpointStore),
	)

	summary, err := pipeline.GenerateReport(cmd.Context(), driving.GenerateRequest{
		Topic:        args[0],
		Outline:      *outline,
		MaterialsDir: generateMaterials,
		Resume:       generateResume,
		ForceLookup:  generateForceLookup,
	})
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	printRunSummary(cmd, summary)
	return nil
}

// loadOutline reads and validates the outline JSON file.
func loadOutline(path string) (*domain.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}

	var outline domain.Outline
	if err := json.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parse outline: %w", err)
	}
	if err := outline.Validate(); err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	return &outline, nil
}

// printRunSummary renders the per-unit outcome list.
func printRunSummary(cmd *cobra.Command, summary *driving.RunSummary) {
	cmd.Println(headerStyle.Render("Run summary"))
	for _, path := range summary.Finalized {
		cmd.Printf("  %s %s\n", okStyle.Render("✓"), path)
	}
	for _, path := range summary.Skipped {
		cmd.Printf("  %s %s (resumed)\n", skipStyle.Render("~"), path)
	}
	for _, path := range summary.Failed {
		cmd.Printf("  %s %s\n", failStyle.Render("✗"), path)
	}
	cmd.Println()
	cmd.Printf("Report written to %s\n", summary.ReportPath)

	if len(summary.Failed) > 0 {
		cmd.Printf("%s\n", failStyle.Render(
			fmt.Sprintf("%d unit(s) lack evidence and need manual research", len(summary.Failed))))
	}
}

// errMissingTopic guards against blank topics before any backend call.
var errMissingTopic = errors.New("topic must not be empty")
