package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/locojk/CSV-converter/internal"
	"github.com/locojk/CSV-converter/internal/util"
)

type WriteOptions struct {
	Building    string
	DeviceName  string
	WriteHeader bool
	Placeholder string
}

func (o WriteOptions) cell(value string) string {
	if v := util.NormalizeText(value); v != "" {
		return v
	}
	return o.Placeholder
}

// BuildOutputRecords materialises the seven output columns for a group. The
// building and device name come from the caller, not from the rows.
func BuildOutputRecords(group internal.DeviceGroup, opts WriteOptions) []internal.OutputRecord {
	out := make([]internal.OutputRecord, 0, len(group.Rows))
	for _, row := range group.Rows {
		out = append(out, internal.OutputRecord{
			ObjectType:   opts.cell(row.ObjectType),
			ObjectNumber: opts.cell(row.ObjectNumber),
			Name:         opts.cell(row.Name),
			Units:        opts.cell(row.Units),
			Building:     opts.cell(opts.Building),
			DeviceNumber: opts.cell(row.DeviceNumber),
			DeviceName:   opts.cell(opts.DeviceName),
		})
	}
	return out
}

// WriteGroupCSV writes a group as UTF-8 CSV with a byte-order mark so that
// spreadsheet tools keep symbols such as "°" intact.
func WriteGroupCSV(group internal.DeviceGroup, outputPath string, opts WriteOptions) error {
	return createOutput(outputPath, func(out io.Writer) error {
		bw := transform.NewWriter(out, unicode.UTF8BOM.NewEncoder())
		w := csv.NewWriter(bw)
		if opts.WriteHeader {
			if err := w.Write(internal.OutputHeader); err != nil {
				return err
			}
		}
		for _, rec := range BuildOutputRecords(group, opts) {
			if err := w.Write(rec.Cells()); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		return bw.Close()
	})
}

// WriteGroupXLSX writes the same records as WriteGroupCSV to a workbook with
// a single sheet named after the device key.
func WriteGroupXLSX(group internal.DeviceGroup, outputPath string, opts WriteOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if name := sheetName(group.Key); name != "" && name != sheet {
		if err := f.SetSheetName(sheet, name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		sheet = name
	}

	r := 1
	setRow := func(cells []string) {
		for i, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(i+1, r)
			_ = f.SetCellStr(sheet, cell, v)
		}
		r++
	}

	if opts.WriteHeader {
		setRow(internal.OutputHeader)
	}
	for _, rec := range BuildOutputRecords(group, opts) {
		setRow(rec.Cells())
	}

	return createOutput(outputPath, func(out io.Writer) error {
		return f.Write(out)
	})
}

// createOutput creates path (and its parent directories) and hands it to
// write. A file that could not be written completely is removed.
func createOutput(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return write(f)
}

func sheetName(key string) string {
	repl := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	name := strings.Trim(repl.Replace(key), "'")
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
