package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/locojk/CSV-converter/internal"
	"github.com/locojk/CSV-converter/internal/config"
	"github.com/locojk/CSV-converter/internal/logging"
	"github.com/locojk/CSV-converter/internal/util"
)

// Prompter supplies the metadata that only a person can provide. Both
// methods block until an answer is available; an error (for example io.EOF
// on a closed terminal) aborts the run.
type Prompter interface {
	AskBuilding(defaultName string) (string, error)
	AskDeviceName(key, source string) (string, error)
}

type ConversionService struct {
	cfg      config.Config
	prompter Prompter
	logger   *logging.Logger
	report   io.Writer
}

func NewConversionService(cfg config.Config, prompter Prompter, logger *logging.Logger, report io.Writer) *ConversionService {
	if logger == nil {
		logger = logging.Discard()
	}
	if report == nil {
		report = io.Discard
	}
	return &ConversionService{cfg: cfg, prompter: prompter, logger: logger, report: report}
}

type Summary struct {
	Files        int
	SkippedFiles int
	FailedFiles  int
	Groups       int
	Written      int
	Retried      int
	Failed       int

	// workbook companions, counted only when XLSX output is enabled
	Workbooks       int
	WorkbooksFailed int
}

// HasFailures reports whether any file, group or workbook was not written.
func (s Summary) HasFailures() bool {
	return s.FailedFiles > 0 || s.Failed > 0 || s.WorkbooksFailed > 0
}

type GroupResult struct {
	Key        string
	Source     string
	DeviceName string
	Rows       int
	CSV        internal.WriteOutcome
	XLSX       *internal.WriteOutcome
}

type GroupPreview struct {
	Source string
	Key    string
	Rows   int
}

// Run converts every CSV file under the input directory. The building name
// is asked once; a device name is asked once per device group. Problems with
// one file or one group are logged and the run moves on.
func (s *ConversionService) Run(ctx context.Context) (Summary, error) {
	opts, err := s.readOptions()
	if err != nil {
		return Summary{}, err
	}

	files, err := DiscoverCSVFiles(s.cfg.InputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("discover input files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(s.report, "No CSV files found in '%s'. Nothing to do.\n", s.cfg.InputDir)
		return Summary{}, nil
	}

	building, err := askNonEmpty(ctx, func() (string, error) {
		return s.prompter.AskBuilding(util.NormalizeText(s.cfg.BuildingDefault))
	})
	if err != nil {
		return Summary{}, fmt.Errorf("building name: %w", err)
	}

	summary := Summary{}
	written := map[string]string{}
	for _, src := range files {
		summary.Files++
		log := s.logger.With("source", src)

		rows, err := ReadRowsFromFile(src, opts)
		if err != nil {
			summary.FailedFiles++
			log.Error("read failed", "error", err)
			continue
		}
		if len(rows) == 0 {
			summary.SkippedFiles++
			fmt.Fprintf(s.report, "No usable rows in %s, skipping.\n", src)
			log.Debug("no usable rows")
			continue
		}

		for _, group := range GroupRows(rows, src) {
			res, err := s.convertGroup(ctx, group, building)
			if err != nil {
				return summary, err
			}
			summary.Groups++
			switch res.CSV.Status {
			case internal.WriteSuccess:
				summary.Written++
			case internal.WriteRetriedAt:
				summary.Retried++
			case internal.WriteFailed:
				summary.Failed++
			}
			if res.XLSX != nil {
				if res.XLSX.Status == internal.WriteFailed {
					summary.WorkbooksFailed++
				} else {
					summary.Workbooks++
				}
			}
			if prev, ok := written[res.CSV.Path]; ok && res.CSV.Path != "" {
				log.Warn("output overwritten", "path", res.CSV.Path, "previous_source", prev)
			}
			if res.CSV.Path != "" {
				written[res.CSV.Path] = src
			}
		}
	}

	return summary, nil
}

func (s *ConversionService) convertGroup(ctx context.Context, group internal.DeviceGroup, building string) (GroupResult, error) {
	source := displaySource(s.cfg.InputDir, group.Source)
	deviceName, err := askNonEmpty(ctx, func() (string, error) {
		return s.prompter.AskDeviceName(group.Key, source)
	})
	if err != nil {
		return GroupResult{}, fmt.Errorf("device name for %s: %w", group.Key, err)
	}

	opts := WriteOptions{
		Building:    building,
		DeviceName:  deviceName,
		WriteHeader: s.cfg.WriteHeader,
		Placeholder: s.cfg.EmptyPlaceholder,
	}
	res := GroupResult{Key: group.Key, Source: group.Source, DeviceName: deviceName, Rows: len(group.Rows)}

	dst := filepath.Join(s.cfg.OutputDir, group.Key+".csv")
	res.CSV = WriteWithFallback(dst, s.cfg.FallbackSuffix, func(path string) error {
		return WriteGroupCSV(group, path, opts)
	})
	s.reportOutcome(group.Source, res.CSV)

	if s.cfg.WriteXLSX && res.CSV.Status != internal.WriteFailed {
		xlsxPath := strings.TrimSuffix(dst, filepath.Ext(dst)) + ".xlsx"
		outcome := WriteWithFallback(xlsxPath, s.cfg.FallbackSuffix, func(path string) error {
			return WriteGroupXLSX(group, path, opts)
		})
		s.reportOutcome(group.Source, outcome)
		res.XLSX = &outcome
	}

	return res, nil
}

func (s *ConversionService) reportOutcome(src string, outcome internal.WriteOutcome) {
	switch outcome.Status {
	case internal.WriteSuccess:
		fmt.Fprintf(s.report, "Converted: %s -> %s\n", src, outcome.Path)
	case internal.WriteRetriedAt:
		fmt.Fprintf(s.report, "Converted: %s -> %s\n", src, outcome.Path)
		s.logger.Warn("could not write primary output (locked?), wrote fallback instead",
			"path", outcome.PrimaryPath, "fallback", outcome.Path, "error", outcome.Err)
	case internal.WriteFailed:
		s.logger.Error("could not write output; close any application holding the file and retry",
			"path", outcome.PrimaryPath, "error", outcome.Err)
	}
}

// Preview reads and groups every input file without prompting or writing.
func (s *ConversionService) Preview(ctx context.Context) ([]GroupPreview, error) {
	opts, err := s.readOptions()
	if err != nil {
		return nil, err
	}
	files, err := DiscoverCSVFiles(s.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("discover input files: %w", err)
	}

	var out []GroupPreview
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rows, err := ReadRowsFromFile(src, opts)
		if err != nil {
			s.logger.Error("read failed", "source", src, "error", err)
			continue
		}
		if len(rows) == 0 {
			s.logger.Info("no usable rows, skipping", "source", src)
			continue
		}
		for _, g := range GroupRows(rows, src) {
			out = append(out, GroupPreview{Source: displaySource(s.cfg.InputDir, src), Key: g.Key, Rows: len(g.Rows)})
		}
	}
	return out, nil
}

func (s *ConversionService) readOptions() (ReadOptions, error) {
	delim, err := s.cfg.Delimiter()
	if err != nil {
		return ReadOptions{}, err
	}
	if !isAutoEncoding(s.cfg.SourceEncoding) {
		if _, err := LookupEncoding(s.cfg.SourceEncoding); err != nil {
			return ReadOptions{}, err
		}
	}
	return ReadOptions{Encoding: s.cfg.SourceEncoding, Delimiter: delim}, nil
}

// WriteWithFallback calls write for primary and, if that fails, once more
// for the fallback path built with FallbackPath.
func WriteWithFallback(primary, suffix string, write func(path string) error) internal.WriteOutcome {
	err := write(primary)
	if err == nil {
		return internal.WriteOutcome{Status: internal.WriteSuccess, Path: primary, PrimaryPath: primary}
	}

	alt := FallbackPath(primary, suffix)
	if altErr := write(alt); altErr != nil {
		return internal.WriteOutcome{
			Status:      internal.WriteFailed,
			PrimaryPath: primary,
			Err:         fmt.Errorf("%w: %s: %v; %s: %v", ErrWriteFailed, primary, err, alt, altErr),
		}
	}
	return internal.WriteOutcome{Status: internal.WriteRetriedAt, Path: alt, PrimaryPath: primary, Err: err}
}

// FallbackPath inserts suffix between the file stem and extension:
// "out/500.csv" -> "out/500_new.csv".
func FallbackPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

func askNonEmpty(ctx context.Context, ask func() (string, error)) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		value, err := ask()
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		if err != nil {
			return "", err
		}
		if value = util.NormalizeText(value); value != "" {
			return value, nil
		}
	}
}
