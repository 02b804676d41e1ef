// Command schemamap maps a raw CSV onto the canonical retail schema,
// cleans it, applies targeted fixes, and writes the exports.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/audit"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/cleaner"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/config"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/dictionary"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/fixer"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/mapper"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/schema"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/session"
)

func main() {
	inputPath := flag.String("input", "", "Input CSV file")
	mappedPath := flag.String("out-mapped", "", "Mapped-columns CSV output path")
	completePath := flag.String("out-complete", "", "Full-schema CSV output path")
	applyFixes := flag.Bool("apply-fixes", false, "Apply every detected fix column-wide before export")
	showLog := flag.Bool("show-log", false, "Print the cleaning change log")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "error: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*inputPath, *mappedPath, *completePath, *applyFixes, *showLog); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(inputPath, mappedPath, completePath string, applyFixes, showLog bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	canonical, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}

	store, err := dictionary.OpenStore(cfg.Dictionary.Backend, cfg.Dictionary.DSN)
	if err != nil {
		return fmt.Errorf("failed to open dictionary store: %w", err)
	}
	dict, err := dictionary.New(store, logger)
	if err != nil {
		return err
	}
	defer dict.Close()

	ds, err := readCSV(inputPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded input file",
		zap.String("path", inputPath),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("columns", len(ds.Columns)))

	engineCfg := mapper.DefaultConfig()
	engineCfg.FuzzyThreshold = cfg.FuzzyThreshold
	engineCfg.SynonymConfidence = cfg.SynonymConfidence
	engineCfg.PromotedConfidence = cfg.PromotedConfidence
	engine, err := mapper.NewEngineWithConfig(canonical, dict, mapper.LevenshteinScorer{}, engineCfg, logger)
	if err != nil {
		return err
	}

	suggestions := engine.SuggestMappings(ds.Columns)
	var confirmed []model.MappingRule
	for _, s := range suggestions {
		if s.TargetColumn == model.Unmapped {
			fmt.Printf("  %-30s -> (unmapped, best score %.2f)\n", s.SourceColumn, s.Confidence)
			continue
		}
		fmt.Printf("  %-30s -> %-20s %.2f (%s)\n", s.SourceColumn, s.TargetColumn, s.Confidence, s.Transformation)
		confirmed = append(confirmed, s)
	}
	if err := engine.Confirm(confirmed); err != nil {
		return err
	}

	sess, err := session.New(canonical, ds, logger)
	if err != nil {
		return err
	}
	sess.SetMapping(confirmed)

	cleanCfg := cleaner.DefaultConfig()
	cleanCfg.DefaultCountry = cfg.DefaultCountry
	cleanCfg.DefaultCurrency = cfg.DefaultCurrency
	cleanCfg.PhoneLocalLength = cfg.PhoneLocalLength
	if defaults := dict.DefaultValues(); len(defaults) > 0 {
		cleanCfg.ExtraDefaults = make(map[string]string, len(defaults))
		for col, dv := range defaults {
			cleanCfg.ExtraDefaults[col] = dv.Value
		}
	}
	pipeline, err := cleaner.NewWithConfig(canonical, dict.CleaningRules(), cleanCfg, logger)
	if err != nil {
		return err
	}
	if err := sess.Clean(pipeline); err != nil {
		return fmt.Errorf("cleaning failed: %w", err)
	}

	fixCfg := fixer.DefaultConfig()
	fixCfg.CountryCode = cfg.PhoneCountryCode
	fixCfg.LocalPhoneLength = cfg.PhoneLocalLength
	fixEngine, err := fixer.NewEngineWithConfig(canonical, dict, fixCfg, logger)
	if err != nil {
		return err
	}
	if err := sess.Detect(fixEngine); err != nil {
		return err
	}

	pending := sess.Pending()
	fmt.Printf("\n%d fix proposals detected\n", len(pending))
	for _, p := range pending {
		fmt.Printf("  [%s] row %d %s: %q -> %q (%.2f) %s\n",
			p.Kind, p.RowIndex, p.Column, p.CurrentValue, p.ProposedValue, p.Confidence, p.Description)
	}

	if applyFixes {
		for {
			remaining := sess.Pending()
			if len(remaining) == 0 {
				break
			}
			if _, err := sess.Apply(remaining[0].ID, model.ScopeColumn); err != nil {
				return fmt.Errorf("failed to apply fix %s: %w", remaining[0].ID, err)
			}
		}
	}

	if showLog {
		for _, e := range sess.ChangeLog() {
			fmt.Printf("  row %d %s [%s] %q -> %q (%s)\n",
				e.RowIndex, e.Column, e.Stage, e.OldValue, e.NewValue, e.Reason)
		}
	}

	if cfg.Audit.Enabled {
		if err := recordAudit(cfg, logger, sess); err != nil {
			return err
		}
	}

	if mappedPath != "" {
		out, err := sess.ExportMapped()
		if err != nil {
			return err
		}
		if err := writeCSV(mappedPath, out); err != nil {
			return err
		}
		logger.Info("Wrote mapped export", zap.String("path", mappedPath))
	}
	if completePath != "" {
		out, err := sess.ExportComplete()
		if err != nil {
			return err
		}
		if err := writeCSV(completePath, out); err != nil {
			return err
		}
		logger.Info("Wrote complete export", zap.String("path", completePath))
	}

	return nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}
	s, err := schema.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema from %s: %w", path, err)
	}
	return s, nil
}

func recordAudit(cfg *config.Config, logger *zap.Logger, sess *session.Session) error {
	db, err := sqlx.Connect(cfg.Audit.Driver, cfg.Audit.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect audit database: %w", err)
	}
	recorder, err := audit.NewRecorder(db, logger)
	if err != nil {
		return err
	}
	defer recorder.Close()
	return recorder.Record(context.Background(), sess.ID, sess.ChangeLog())
}

func readCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	ds := model.NewDataset(records[0])
	for _, record := range records[1:] {
		row := make(model.Row, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		ds.Append(row)
	}
	return ds, nil
}

func writeCSV(path string, ds *model.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns); err != nil {
		return err
	}
	for i := range ds.Rows {
		record := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			record[j] = ds.Get(i, col)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
