package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driving"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.ReportService = (*PipelineService)(nil)

// dataMissingPlaceholder replaces the text of units that failed for lack
// of evidence. The placeholder is visible in the output; failed units are
// never silently omitted.
const dataMissingPlaceholder = "> **Data missing.** No supporting evidence was found for this section; it requires manual research."

// PipelineService drives each writing unit through the generation state
// machine: retrieve evidence, draft, extract a visual spec, render, edit,
// score, and refine a bounded number of rounds. One unit's failure never
// halts the traversal.
type PipelineService struct {
	retriever driving.RetrieveService
	evidence  *EvidenceService
	generator driven.Generator
	scorer    *QualityScorer
	cascade   *RenderCascade
	settings  domain.Settings

	unitStore       driven.UnitStore
	checkpointStore driven.CheckpointStore

	now func() time.Time
}

// PipelineOption configures the pipeline service.
type PipelineOption func(*PipelineService)

// WithUnitStore enables resume support.
func WithUnitStore(store driven.UnitStore) PipelineOption {
	return func(p *PipelineService) { p.unitStore = store }
}

// WithCheckpointStore enables chapter-boundary checkpoints.
func WithCheckpointStore(store driven.CheckpointStore) PipelineOption {
	return func(p *PipelineService) { p.checkpointStore = store }
}

// WithPipelineClock replaces the time source.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *PipelineService) { p.now = now }
}

// NewPipelineService creates the generation pipeline.
func NewPipelineService(
	retriever driving.RetrieveService,
	evidence *EvidenceService,
	generator driven.Generator,
	scorer *QualityScorer,
	cascade *RenderCascade,
	settings domain.Settings,
	opts ...PipelineOption,
) *PipelineService {
	p := &PipelineService{
		retriever: retriever,
		evidence:  evidence,
		generator: generator,
		scorer:    scorer,
		cascade:   cascade,
		settings:  settings,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// runContext carries the shared, append-only contexts every unit reads:
// the fixed global thesis and the rolling summary of the previous
// chapter, rewritten only at chapter boundaries.
type runContext struct {
	topic          string
	thesis         string
	styleGuide     string
	chapterSummary string
	forceLookup    bool
	chartsDir      string
}

// GenerateReport processes every leaf unit of the outline in document
// order. Unit failures are collected into the summary; the error return
// covers run-level failures only.
func (p *PipelineService) GenerateReport(ctx context.Context, req driving.GenerateRequest) (*driving.RunSummary, error) {
	if p.generator == nil {
		return nil, domain.ErrGeneratorUnavailable
	}
	if err := req.Outline.Validate(); err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}

	outDir := p.settings.Workspace.OutDir
	chartsDir := filepath.Join(outDir, "charts")
	if err := os.MkdirAll(chartsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}

	logger.Section("Report Generation")
	logger.Info("Topic: %s", req.Topic)

	run := &runContext{
		topic:       req.Topic,
		forceLookup: req.ForceLookup,
		chartsDir:   chartsDir,
	}
	p.plan(ctx, req, run)

	resumed := p.loadResumable(req.Resume)
	summary := &driving.RunSummary{}
	var report strings.Builder
	fmt.Fprintf(&report, "# %s\n", req.Outline.Title)

	units := req.Outline.Leaves()
	lastChapter, lastSection := "", ""
	var chapterText strings.Builder
	chapterIndex := -1

	for i := range units {
		unit := &units[i]
		unit.ID = uuid.New().String()

		if unit.ChapterTitle != lastChapter {
			if lastChapter != "" {
				p.closeChapter(ctx, run, chapterIndex, lastChapter, chapterText.String())
				chapterText.Reset()
			}
			chapterIndex++
			lastChapter = unit.ChapterTitle
			lastSection = ""
			fmt.Fprintf(&report, "\n## %s\n", unit.ChapterTitle)
		}
		if unit.SectionTitle != lastSection {
			lastSection = unit.SectionTitle
			fmt.Fprintf(&report, "\n### %s\n", unit.SectionTitle)
		}

		if prev, ok := resumed[unit.Path()]; ok {
			logger.Info("Skipping %s (already %s)", unit.Path(), prev.State)
			*unit = *prev
			summary.Skipped = append(summary.Skipped, unit.Path())
		} else {
			p.processUnit(ctx, unit, run)
			p.persistUnit(*unit)
		}

		if unit.SubsectionTitle != "" {
			fmt.Fprintf(&report, "\n#### %s\n", unit.SubsectionTitle)
		}
		fmt.Fprintf(&report, "\n%s\n", unit.FinalText)
		chapterText.WriteString(unit.FinalText)
		chapterText.WriteString("\n\n")

		switch unit.State {
		case domain.UnitStateFinalized:
			summary.Finalized = append(summary.Finalized, unit.Path())
		case domain.UnitStateFailed:
			summary.Failed = append(summary.Failed, unit.Path())
		}
	}
	if lastChapter != "" {
		p.closeChapter(ctx, run, chapterIndex, lastChapter, chapterText.String())
	}

	reportPath := filepath.Join(outDir, "report.md")
	if err := os.WriteFile(reportPath, []byte(report.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	summary.ReportPath = reportPath

	logger.Info("Run complete: %d finalized, %d failed, %d skipped",
		len(summary.Finalized), len(summary.Failed), len(summary.Skipped))
	return summary, nil
}

// plan produces the run's shared contexts. Planning failures degrade to
// empty contexts, never to a failed run.
func (p *PipelineService) plan(ctx context.Context, req driving.GenerateRequest, run *runContext) {
	thesis, err := p.generate(ctx, thesisPrompt(req.Topic, req.Outline), driven.GenerateOptions{Temperature: 0.4})
	if err != nil {
		logger.Warn("Thesis planning failed, continuing without: %v", err)
	} else {
		run.thesis = thesis
	}

	guide, err := p.generate(ctx, styleGuidePrompt(req.Topic), driven.GenerateOptions{Temperature: 0.3})
	if err != nil {
		logger.Warn("Style guide planning failed, continuing without: %v", err)
	} else {
		run.styleGuide = guide
	}
}

// loadResumable returns terminal units from a previous run keyed by path.
func (p *PipelineService) loadResumable(resume bool) map[string]*domain.GenerationUnit {
	resumed := make(map[string]*domain.GenerationUnit)
	if !resume || p.unitStore == nil {
		return resumed
	}

	paths, err := p.unitStore.ListTerminal()
	if err != nil {
		logger.Warn("Resume disabled, unit store unreadable: %v", err)
		return resumed
	}
	for _, path := range paths {
		unit, err := p.unitStore.GetUnit(path)
		if err != nil {
			continue
		}
		resumed[path] = unit
	}
	logger.Info("Resuming: %d units carried over", len(resumed))
	return resumed
}

// persistUnit saves a terminal unit for resume. Store failures only warn.
func (p *PipelineService) persistUnit(unit domain.GenerationUnit) {
	if p.unitStore == nil {
		return
	}
	if err := p.unitStore.SaveUnit(unit); err != nil {
		logger.Warn("Persist unit %s failed: %v", unit.Path(), err)
	}
}

// closeChapter writes the rolling executive summary and the checkpoint at
// a chapter boundary. The summary must be in place before the next
// chapter's units read it.
func (p *PipelineService) closeChapter(ctx context.Context, run *runContext, index int, title, text string) {
	summary, err := p.generate(ctx, summaryPrompt(title, text), driven.GenerateOptions{Temperature: 0.3})
	if err != nil {
		logger.Warn("Chapter summary failed, truncating chapter text instead: %v", err)
		summary = truncateRunes(text, 500)
	}
	run.chapterSummary = summary

	if p.checkpointStore == nil {
		return
	}
	cp := domain.Checkpoint{
		LastCompletedChapterIndex: index,
		LastCompletedChapterTitle: title,
		ExecutiveSummary:          summary,
		GlobalThesis:              run.thesis,
		Timestamp:                 p.now(),
	}
	if err := p.checkpointStore.SaveCheckpoint(cp); err != nil {
		logger.Warn("Checkpoint write failed: %v", err)
	}
}

// processUnit drives one unit through the state machine to a terminal
// state. Never returns an error: failures land in the unit itself.
func (p *PipelineService) processUnit(ctx context.Context, unit *domain.GenerationUnit, run *runContext) {
	logger.Section(unit.Path())

	// Drafting: gather evidence from both sources.
	p.advance(unit, domain.UnitStateDrafting)
	query := strings.TrimSpace(run.topic + " " + unit.ChapterTitle + " " + unit.SectionTitle + " " + unit.SubsectionTitle)

	localEvidence, err := p.retriever.EvidenceBlock(ctx, query, p.settings.Retrieval.TopK)
	if err != nil {
		logger.Warn("Local retrieval failed for %s: %v", unit.Path(), err)
	}
	var externalEvidence string
	if p.evidence != nil {
		externalEvidence, err = p.evidence.Lookup(ctx, query, run.forceLookup)
		if err != nil {
			logger.Warn("External lookup failed for %s: %v", unit.Path(), err)
		}
	}

	evidence := joinEvidence(localEvidence, externalEvidence)
	if evidence == "" {
		p.fail(unit, domain.ErrNoEvidence.Error())
		return
	}

	draft, err := p.generate(ctx, draftPrompt(run.topic, *unit, evidence, run.thesis, run.chapterSummary, run.styleGuide),
		driven.GenerateOptions{Temperature: 0.7})
	if err != nil {
		p.fail(unit, fmt.Sprintf("drafting: %v", err))
		return
	}
	unit.DraftText = draft

	// ExtractingVisual: a malformed spec means no chart, not a failure.
	p.advance(unit, domain.UnitStateExtractingVisual)
	unit.Visual = p.extractVisual(ctx, draft)

	// Rendering: failure never aborts the unit.
	p.advance(unit, domain.UnitStateRendering)
	if unit.Visual != nil {
		p.renderVisual(ctx, unit, run)
	}

	// Editing and the bounded refinement loop.
	p.advance(unit, domain.UnitStateEditing)
	text := p.edit(ctx, unit, run, unit.DraftText, "", nil)

	p.advance(unit, domain.UnitStateEvaluating)
	result := p.scorer.Score(text, run.topic, unit.Title())
	logger.Info("Quality %.1f/10 (round 0): %s", result.Score, result.Feedback)

	for result.Score < p.settings.Quality.Threshold && unit.RefinementRound < p.settings.Quality.MaxRounds {
		p.advance(unit, domain.UnitStateRefining)
		unit.RefinementRound++

		p.advance(unit, domain.UnitStateEditing)
		text = p.edit(ctx, unit, run, text, result.Feedback, result.Hints)

		p.advance(unit, domain.UnitStateEvaluating)
		result = p.scorer.Score(text, run.topic, unit.Title())
		logger.Info("Quality %.1f/10 (round %d): %s", result.Score, unit.RefinementRound, result.Feedback)
	}

	// Accept the text regardless of score once rounds are exhausted.
	unit.QualityScore = result.Score
	unit.Feedback = result.Feedback
	unit.FinalText = p.ensureArtifactReference(text, unit.ArtifactRef)
	p.advance(unit, domain.UnitStateFinalized)
}

// edit runs one editing pass. An editing failure keeps the prior text
// rather than failing the unit.
func (p *PipelineService) edit(ctx context.Context, unit *domain.GenerationUnit, run *runContext, prior, feedback string, hints []string) string {
	artifactRef := unit.ArtifactRef
	edited, err := p.generate(ctx,
		editPrompt(run.topic, *unit, prior, artifactRef, feedback, hints, unit.RefinementRound),
		driven.GenerateOptions{Temperature: 0.5})
	if err != nil {
		logger.Warn("Editing failed for %s, keeping prior text: %v", unit.Path(), err)
		return prior
	}
	return edited
}

// extractVisual asks the backend for a VisualSpec and validates it.
// Anything malformed, unknown, or empty yields nil.
func (p *PipelineService) extractVisual(ctx context.Context, draft string) *domain.VisualSpec {
	raw, err := p.generate(ctx, visualPrompt(draft), driven.GenerateOptions{Temperature: 0, JSONMode: true})
	if err != nil {
		logger.Warn("Visual extraction failed: %v", err)
		return nil
	}
	return parseVisualSpec(raw)
}

// renderVisual runs the cascade and attaches the artifact.
func (p *PipelineService) renderVisual(ctx context.Context, unit *domain.GenerationUnit, run *runContext) {
	baseName := chartBaseName(unit.Path())
	result, err := p.cascade.Render(ctx, *unit.Visual, run.chartsDir, baseName)
	if err != nil {
		logger.Warn("Rendering failed for %s: %v", unit.Path(), err)
		return
	}
	if result.Inline {
		// The table fallback is markdown, embedded directly so the
		// editor keeps it with the prose.
		unit.DraftText += "\n\n" + result.ArtifactRef
		return
	}
	unit.ArtifactRef = result.ArtifactRef
}

// ensureArtifactReference appends the chart reference when the editor
// dropped it.
func (p *PipelineService) ensureArtifactReference(text, artifactRef string) string {
	if artifactRef == "" || strings.Contains(text, filepath.Base(artifactRef)) {
		return text
	}
	return text + fmt.Sprintf("\n\n![chart](%s)\n", artifactRef)
}

// generate calls the backend and trims the response.
func (p *PipelineService) generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	out, err := p.generator.Generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("empty generation response")
	}
	return out, nil
}

// advance moves the unit to the next state, enforcing the transition
// table.
func (p *PipelineService) advance(unit *domain.GenerationUnit, next domain.UnitState) {
	if !unit.State.CanTransitionTo(next) {
		logger.Warn("Illegal transition %s -> %s for %s", unit.State, next, unit.Path())
		return
	}
	unit.State = next
	unit.UpdatedAt = p.now()
}

// fail moves the unit to Failed with the data-missing placeholder.
func (p *PipelineService) fail(unit *domain.GenerationUnit, reason string) {
	logger.Warn("Unit %s failed: %s", unit.Path(), reason)
	unit.FailReason = reason
	unit.FinalText = dataMissingPlaceholder
	p.advance(unit, domain.UnitStateFailed)
}

// parseVisualSpec parses the backend's JSON response into a validated
// spec. The fallback parse strips code fences and clamps to the outermost
// braces before giving up.
func parseVisualSpec(raw string) *domain.VisualSpec {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil
	}

	var spec domain.VisualSpec
	if err := json.Unmarshal([]byte(raw[start:end+1]), &spec); err != nil {
		logger.Debug("Visual spec parse failed: %v", err)
		return nil
	}
	if spec.Kind == "none" || spec.Kind == "" {
		return nil
	}
	if err := spec.Validate(); err != nil {
		logger.Debug("Visual spec rejected: %v", err)
		return nil
	}
	if !spec.HasData() {
		return nil
	}
	return &spec
}

// joinEvidence merges the local and external evidence blocks.
func joinEvidence(local, external string) string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(local) != "" {
		parts = append(parts, "Local materials:\n"+local)
	}
	if strings.TrimSpace(external) != "" {
		parts = append(parts, "External lookup:\n"+external)
	}
	return strings.Join(parts, "\n\n")
}

// chartBaseName derives a filesystem-safe chart name from a unit path.
func chartBaseName(path string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '>', r == '/':
			return '_'
		default:
			return r
		}
	}, path)
	clean = strings.Trim(strings.ReplaceAll(clean, "___", "_"), "_")
	if clean == "" {
		clean = "chart"
	}
	return clean
}

// truncateRunes shortens text to at most n runes.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
