package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/locojk/CSV-converter/internal"
	"github.com/locojk/CSV-converter/internal/util"
)

// Source columns consumed from a point export.
const (
	colReference = 0
	colName      = 4
	colValue     = 5
	minColumns   = 6
)

type ReadOptions struct {
	Encoding  string
	Delimiter rune
}

// ExtractRow turns one raw export record into a normalized row. Records with
// fewer than six cells are rejected with ok=false.
func ExtractRow(record []string) (row internal.NormalizedRow, ok bool) {
	if len(record) < minColumns {
		return internal.NormalizedRow{}, false
	}

	ref := util.NormalizeText(record[colReference])
	name := util.NormalizeText(record[colName])
	value := strings.TrimSpace(record[colValue])

	token := ParseObjectToken(LastSegment(ref))
	row = internal.NormalizedRow{
		ObjectType:   token.Type(),
		ObjectNumber: token.Number(),
		Name:         name,
		Units:        util.ExtractUnits(value),
		DeviceNumber: ExtractDeviceNumber(ref),
	}
	return NormalizeRow(row), true
}

// ReadRows decodes r with the configured source encoding and extracts every
// data record. The first line is always a header and is dropped, even when
// it is blank. Short records are skipped. An empty or header-only input gives
// an empty result. The encoding name "auto" detects the charset from the
// content.
func ReadRows(r io.Reader, opts ReadOptions) ([]internal.NormalizedRow, error) {
	var enc encoding.Encoding
	if isAutoEncoding(opts.Encoding) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		enc = DetectEncoding(data)
		r = bytes.NewReader(data)
	} else {
		var err error
		if enc, err = LookupEncoding(opts.Encoding); err != nil {
			return nil, err
		}
	}

	// encoding/csv skips blank lines, so a blank header line is taken off
	// the stream here.
	decoded := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	first, err := decoded.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if first == "" {
		return nil, nil
	}
	blankHeader := strings.TrimRight(first, "\r\n") == ""

	var src io.Reader = decoded
	if !blankHeader {
		// a quoted header cell may span lines; let the csv reader consume it
		src = io.MultiReader(strings.NewReader(first), decoded)
	}
	reader := csv.NewReader(src)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if !blankHeader {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
	}

	var out []internal.NormalizedRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row, ok := ExtractRow(record)
		if !ok {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func ReadRowsFromFile(path string, opts ReadOptions) ([]internal.NormalizedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// DetectEncoding guesses the charset of data. Anything chardet cannot name,
// or names without a matching decoder, is read as UTF-8.
func DetectEncoding(data []byte) encoding.Encoding {
	if len(data) == 0 {
		return unicode.UTF8
	}
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil {
		return unicode.UTF8
	}
	enc, err := LookupEncoding(res.Charset)
	if err != nil {
		return unicode.UTF8
	}
	return enc
}

func isAutoEncoding(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "auto")
}

// LookupEncoding resolves a source encoding name such as "utf-8", "cp1252"
// or "latin1". An empty name means UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	label = strings.TrimSuffix(label, "-sig")
	switch label {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "latin-1", "latin_1", "latin", "l1", "iso-8859-1", "iso8859-1", "iso_8859_1", "8859", "cp819":
		// htmlindex maps these to windows-1252
		return charmap.ISO8859_1, nil
	}

	if enc, err := htmlindex.Get(label); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}
