package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"note-updater/core/batch"
	"note-updater/core/config"
	"note-updater/core/database"
	"note-updater/core/logger"
	"note-updater/core/storage"
	"note-updater/feature/notes"
	"note-updater/feature/notes/changelog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by the batch subcommands
	batchFile     string
	batchFileKey  string
	batchNoteKey  string
	batchMappings []string
	batchNoteIDs  []string
	batchYes      bool

	// diff flags
	batchOut     string
	batchPublish string
)

// batchCmd is the parent command for all batch update operations.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch update note fields from an external record file",
	Long: `Batch update note fields from a CSV record file.
Rows are joined to notes by a chosen key pair, then per-field updates are
validated, previewed as an HTML diff, or applied with a full audit trail.`,
}

// batchValidateCmd checks the record file against the store without mutating anything.
var batchValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the record file and report pending changes",
	Long: `Join the record file to the note store and report what would change.
No notes are modified.

Examples:
  # Validate with the default key pair (nid column)
  batch validate --file records.csv

  # Join on a secondary field and remap a column
  batch validate --file records.csv --file-key GUID --note-key GUID --map "Reading=Pronunciation"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(batch.ModeValidate)
	},
}

// batchDiffCmd renders the pending changes as an HTML report.
var batchDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Render pending changes as an HTML diff report",
	Long: `Join the record file to the note store and render the pending changes
as an HTML report with insertions and deletions highlighted.

Examples:
  # Write the report to a file
  batch diff --file records.csv --out report.html

  # Publish the report to object storage instead
  batch diff --file records.csv --publish reports/2026-08-31.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(batch.ModeDiff)
	},
}

// batchApplyCmd applies the pending changes after confirmation.
var batchApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply pending changes to the note store (with confirmation)",
	Long: `Join the record file to the note store and apply the pending changes.
Every field write is recorded in the change log under one batch id.

Examples:
  # Apply with interactive confirmation
  batch apply --file records.csv

  # Apply non-interactively
  batch apply --file records.csv --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(batch.ModeApply)
	},
}

func init() {
	batchCmd.AddCommand(batchValidateCmd)
	batchCmd.AddCommand(batchDiffCmd)
	batchCmd.AddCommand(batchApplyCmd)

	batchCmd.PersistentFlags().StringVar(&batchFile, "file", "", "Path to the CSV record file (required)")
	batchCmd.PersistentFlags().StringVar(&batchFileKey, "file-key", "", "File field to join on (default: nid column, else first column)")
	batchCmd.PersistentFlags().StringVar(&batchNoteKey, "note-key", "", "Note field to join on (default: mirrors the file key)")
	batchCmd.PersistentFlags().StringArrayVar(&batchMappings, "map", nil, "Field mapping override as FileField=NoteField (repeatable; use -Nothing- to unmap)")
	batchCmd.PersistentFlags().StringSliceVar(&batchNoteIDs, "note-ids", nil, "Restrict the candidate notes to these ids (default: whole store)")
	batchCmd.PersistentFlags().BoolVar(&batchYes, "yes", false, "Auto-confirm prompts (non-interactive)")
	_ = batchCmd.MarkPersistentFlagRequired("file")

	batchDiffCmd.Flags().StringVar(&batchOut, "out", "", "Write the HTML report to this path")
	batchDiffCmd.Flags().StringVar(&batchPublish, "publish", "", "Publish the HTML report to object storage under this object name")

	RootCmd.AddCommand(batchCmd)
}

func runBatch(mode batch.Mode) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := notes.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate note tables: %w", err)
	}
	if err := changelog.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate change log table: %w", err)
	}

	// Connect to storage only when the report is published
	var client storage.Client
	if batchPublish != "" {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	targets, err := parseMappings(batchMappings)
	if err != nil {
		return err
	}

	svc := notes.NewService(db, client, cfg.Storage.Bucket, l)

	req := notes.Request{
		Mode:         mode,
		FileJoinKey:  batchFileKey,
		NoteJoinKey:  batchNoteKey,
		Targets:      targets,
		NoteIDs:      batchNoteIDs,
		ReportObject: batchPublish,
	}

	if mode == batch.ModeApply {
		return runApply(ctx, svc, req, l)
	}

	res, err := runOnce(ctx, svc, req)
	if err != nil {
		return err
	}

	if mode == batch.ModeDiff {
		if batchOut != "" {
			if err := writeReportFile(batchOut, res.Report); err != nil {
				return err
			}
			l.Info("Wrote diff report", zap.String("path", batchOut))
		}
		if batchPublish != "" {
			l.Info("Published diff report", zap.String("object", batchPublish))
		}
	}

	l.Info("Batch action finished",
		zap.String("mode", string(mode)),
		zap.Int("notes_changed", res.Summary.NotesChanged),
		zap.Int("field_changes", res.Summary.FieldChanges),
	)
	return nil
}

// runApply computes the pending changes first so the confirmation prompt can
// name a count, then reruns in apply mode with the confirmation set.
func runApply(ctx context.Context, svc *notes.Service, req notes.Request, l *zap.Logger) error {
	preview := req
	preview.Mode = batch.ModeValidate
	res, err := runOnce(ctx, svc, preview)
	if err != nil {
		return err
	}

	if res.Summary.NotesChanged == 0 {
		l.Info("No changes need to be made.")
		return nil
	}

	if !confirmBatchApply(res.Summary.NotesChanged) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	req.Mode = batch.ModeApply
	req.Confirmed = true
	res, err = runOnce(ctx, svc, req)
	if err != nil {
		return err
	}

	l.Info("Successfully updated notes",
		zap.Int("updated", res.Updated),
		zap.String("batch_id", res.BatchID),
	)
	return nil
}

// runOnce executes one service call and prints its progress lines. The
// record file is reopened per call because the service reads it exactly once.
func runOnce(ctx context.Context, svc *notes.Service, req notes.Request) (*notes.Result, error) {
	f, err := os.Open(batchFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	req.Records = f
	res, err := svc.Run(ctx, req)
	if res != nil {
		for _, line := range res.Log {
			fmt.Println(line)
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// parseMappings turns repeated "FileField=NoteField" flags into a target map.
func parseMappings(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	targets := make(map[string]string, len(raw))
	for _, entry := range raw {
		fileField, noteField, ok := strings.Cut(entry, "=")
		if !ok || fileField == "" {
			return nil, fmt.Errorf("invalid --map entry %q: expected FileField=NoteField", entry)
		}
		targets[fileField] = noteField
	}
	return targets, nil
}

// writeReportFile writes the report, asking before clobbering an existing file.
func writeReportFile(path string, report []byte) error {
	if _, err := os.Stat(path); err == nil {
		if !confirmOverwrite(path) {
			return errors.New("report not written: file exists")
		}
	}
	return os.WriteFile(path, report, 0644)
}

// confirmBatchApply prompts the user for confirmation or uses the --yes flag.
func confirmBatchApply(count int) bool {
	if batchYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %d note(s) will be updated. Type 'yes' to confirm: ", count)
	return readYes()
}

// confirmOverwrite prompts before replacing an existing report file.
func confirmOverwrite(path string) bool {
	if batchYes {
		return true
	}

	fmt.Printf("\n⚠️  %s exists. Type 'yes' to overwrite: ", path)
	return readYes()
}

func readYes() bool {
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
