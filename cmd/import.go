package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scout/internal/fetcher"
	"github.com/sells-group/scout/internal/model"
	"github.com/sells-group/scout/internal/reconcile"
)

var (
	importFilePath  string
	importApply     bool
	importBatchSize int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a target-account list and reconcile it against the book of record",
	Long:  "Reads a CSV or XLSX account list, previews the changes against existing TAM accounts, and with --apply writes new accounts, field updates, and auto-created parent plans.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}
		policy, err := cfg.Import.Policy()
		if err != nil {
			return err
		}

		records, err := loadImportRecords(ctx, importFilePath)
		if err != nil {
			return err
		}
		zap.L().Info("import file loaded",
			zap.String("file", importFilePath),
			zap.Int("records", len(records)),
		)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		rec := reconcile.New(st, policy)

		preview, err := rec.Preview(ctx, records)
		if err != nil {
			return eris.Wrap(err, "preview import")
		}
		zap.L().Info("import preview",
			zap.Int("new", preview.Summary.New),
			zap.Int("modified", preview.Summary.Modified),
			zap.Int("unchanged", preview.Summary.Unchanged),
			zap.Int("total", preview.Summary.Total),
		)

		if !importApply {
			for _, ch := range preview.Changes {
				if ch.ChangeType == model.ChangeUnchanged {
					continue
				}
				fields := make([]zap.Field, 0, 2+len(ch.Diffs))
				fields = append(fields,
					zap.String("change", string(ch.ChangeType)),
					zap.String("company", ch.CompanyName),
				)
				for _, d := range ch.Diffs {
					fields = append(fields, zap.String(d.Field, d.Old+" -> "+d.New))
				}
				zap.L().Info("pending change", fields...)
			}
			zap.L().Info("dry run, re-run with --apply to write changes")
			return nil
		}

		batchSize := importBatchSize
		if batchSize == 0 {
			batchSize = cfg.Import.BatchSize
		}

		outcome, err := rec.Apply(ctx, preview.Changes, reconcile.Options{BatchSize: batchSize})
		if err != nil {
			return eris.Wrap(err, "apply import")
		}

		for _, msg := range outcome.Errors {
			zap.L().Warn("import record skipped", zap.String("reason", msg))
		}
		zap.L().Info("import complete",
			zap.Int("created", outcome.Created),
			zap.Int("updated", outcome.Updated),
			zap.Int("linked_to_parent", outcome.LinkedToParent),
			zap.Int("skipped", len(outcome.Errors)),
		)
		return nil
	},
}

// loadImportRecords reads a tabular account list and maps it onto import
// records. The format is picked by file extension; http(s) sources are
// fetched and parsed as CSV.
func loadImportRecords(ctx context.Context, path string) ([]model.ImportRecord, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		body, err := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}).Download(ctx, path)
		if err != nil {
			return nil, eris.Wrap(err, "download import file")
		}
		defer body.Close()
		return readCSVRecords(ctx, path, body)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrap(err, "read xlsx")
		}
		if len(rows) == 0 {
			return nil, eris.Errorf("%s is empty", path)
		}
		return fetcher.MapRows(rows[0], rows[1:])
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "open csv")
		}
		defer f.Close()
		return readCSVRecords(ctx, path, f)
	default:
		return nil, eris.Errorf("unsupported import format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func readCSVRecords(ctx context.Context, source string, r io.Reader) ([]model.ImportRecord, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "read csv")
	}

	// The stream is drained, so the header is buffered if one was read.
	var header []string
	select {
	case header = <-headerCh:
	default:
		return nil, eris.Errorf("%s is empty", source)
	}
	return fetcher.MapRows(header, rows)
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to CSV or XLSX account list (required)")
	importCmd.Flags().BoolVar(&importApply, "apply", false, "write changes (default is a dry-run preview)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "insert batch size (default from config)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
