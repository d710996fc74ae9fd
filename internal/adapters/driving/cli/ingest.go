package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/draftmill/draftmill-cli/internal/core/ports/driving"
	"github.com/draftmill/draftmill-cli/internal/core/services"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Inspect how source material would be chunked",
	Long: `Walks a materials folder, normalises every supported file, and reports
the chunk counts the retrieval index would be built from. With --watch
the folder is re-scanned whenever a file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-scan when files change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if config == nil {
		return fmt.Errorf("ingest backends not configured")
	}
	dir := args[0]

	report, err := ingestOnce(cmd, dir)
	if err != nil {
		return err
	}
	printIngestReport(cmd, report)

	if !ingestWatch {
		return nil
	}
	return watchMaterials(cmd, dir)
}

// ingestOnce runs a fresh scan of the folder.
func ingestOnce(cmd *cobra.Command, dir string) (*driving.IngestReport, error) {
	svc := services.NewIngestService(config.Registry, config.Chunker)
	report, err := svc.Ingest(cmd.Context(), dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return report, nil
}

// printIngestReport lists per-file chunk counts and failures.
func printIngestReport(cmd *cobra.Command, report *driving.IngestReport) {
	paths := make([]string, 0, len(report.FileChunks))
	for path := range report.FileChunks {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		cmd.Printf("  %s %s: %d chunks\n", okStyle.Render("✓"), filepath.Base(path), report.FileChunks[path])
	}
	for _, failure := range report.Failed {
		cmd.Printf("  %s %s: %s\n", failStyle.Render("✗"), filepath.Base(failure.Path), failure.Reason)
	}
	cmd.Printf("\n%d files, %d chunks total\n", len(report.FileChunks), report.TotalChunks)
}

// watchMaterials re-scans the folder on filesystem changes until
// interrupted. Rapid bursts of events collapse into one re-scan.
func watchMaterials(cmd *cobra.Command, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	// Watch immediate subfolders too; fsnotify is not recursive.
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				watcher.Add(filepath.Join(dir, entry.Name()))
			}
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	cmd.Printf("Watching %s for changes (ctrl-c to stop)\n", dir)

	var rescan <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: editors fire several events per save.
			rescan = time.After(500 * time.Millisecond)
		case <-rescan:
			rescan = nil
			report, err := ingestOnce(cmd, dir)
			if err != nil {
				logger.Warn("Re-scan failed: %v", err)
				continue
			}
			printIngestReport(cmd, report)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		case <-interrupt:
			return nil
		case <-cmd.Context().Done():
			return nil
		}
	}
}
