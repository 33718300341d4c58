package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/locojk/CSV-converter/internal"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func sampleGroup() internal.DeviceGroup {
	return internal.DeviceGroup{
		Key:    "10409",
		Source: "raw/points.csv",
		Rows: []internal.NormalizedRow{
			{ObjectType: "AV", ObjectNumber: "28", Name: "Zone Temp", Units: "°C", DeviceNumber: "10409"},
			{ObjectType: "BV", ObjectNumber: "3", Name: "Fan Enable", DeviceNumber: "10409"},
		},
	}
}

func readOutputCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatalf("%s does not start with a UTF-8 BOM", path)
	}
	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}

func TestBuildOutputRecords(t *testing.T) {
	recs := BuildOutputRecords(sampleGroup(), WriteOptions{Building: " 007_MRT ", DeviceName: "AHU  1", Placeholder: "-"})
	want := []internal.OutputRecord{
		{ObjectType: "AV", ObjectNumber: "28", Name: "Zone Temp", Units: "°C", Building: "007_MRT", DeviceNumber: "10409", DeviceName: "AHU 1"},
		{ObjectType: "BV", ObjectNumber: "3", Name: "Fan Enable", Units: "-", Building: "007_MRT", DeviceNumber: "10409", DeviceName: "AHU 1"},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("got %+v want %+v", recs, want)
	}
}

func TestWriteGroupCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "10409.csv")
	opts := WriteOptions{Building: "007_MRT", DeviceName: "AHU-1", WriteHeader: true}
	if err := WriteGroupCSV(sampleGroup(), path, opts); err != nil {
		t.Fatalf("WriteGroupCSV: %v", err)
	}

	records := readOutputCSV(t, path)
	want := [][]string{
		internal.OutputHeader,
		{"AV", "28", "Zone Temp", "°C", "007_MRT", "10409", "AHU-1"},
		{"BV", "3", "Fan Enable", "", "007_MRT", "10409", "AHU-1"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("got %v want %v", records, want)
	}
}

func TestWriteGroupCSVWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10409.csv")
	opts := WriteOptions{Building: "B", DeviceName: "D", Placeholder: "n/a"}
	if err := WriteGroupCSV(sampleGroup(), path, opts); err != nil {
		t.Fatalf("WriteGroupCSV: %v", err)
	}
	records := readOutputCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("got %d records want 2", len(records))
	}
	if records[1][3] != "n/a" {
		t.Fatalf("empty units got %q want placeholder", records[1][3])
	}
}

func TestWriteGroupCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10409.csv")
	if err := os.WriteFile(path, []byte("stale content that is longer than the new file\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	group := sampleGroup()
	group.Rows = group.Rows[:1]
	if err := WriteGroupCSV(group, path, WriteOptions{Building: "B", DeviceName: "D"}); err != nil {
		t.Fatalf("WriteGroupCSV: %v", err)
	}
	if records := readOutputCSV(t, path); len(records) != 1 {
		t.Fatalf("got %d records want 1", len(records))
	}
}

func TestWriteGroupXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "10409.xlsx")
	opts := WriteOptions{Building: "007_MRT", DeviceName: "AHU-1", WriteHeader: true, Placeholder: "-"}
	if err := WriteGroupXLSX(sampleGroup(), path, opts); err != nil {
		t.Fatalf("WriteGroupXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("10409")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		internal.OutputHeader,
		{"AV", "28", "Zone Temp", "°C", "007_MRT", "10409", "AHU-1"},
		{"BV", "3", "Fan Enable", "-", "007_MRT", "10409", "AHU-1"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("got %v want %v", rows, want)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10409", "10409"},
		{"a/b:c", "a_b_c"},
		{"'quoted'", "quoted"},
		{"abcdefghijklmnopqrstuvwxyz0123456789", "abcdefghijklmnopqrstuvwxyz01234"},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in); got != tt.want {
			t.Fatalf("sheetName(%q) got %q want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteGroupCSVRoundTrip(t *testing.T) {
	row := internal.NormalizedRow{ObjectType: "AV", ObjectNumber: "28", Name: "Zone Temp, North", Units: "°C", DeviceNumber: "10409"}
	group := internal.DeviceGroup{Key: "10409", Rows: []internal.NormalizedRow{row}}
	opts := WriteOptions{Building: "007_MRT", DeviceName: "AHU \"A\"", Placeholder: "N/A"}

	path := filepath.Join(t.TempDir(), "10409.csv")
	if err := WriteGroupCSV(group, path, opts); err != nil {
		t.Fatalf("WriteGroupCSV: %v", err)
	}
	records := readOutputCSV(t, path)
	want := []string{"AV", "28", "Zone Temp, North", "°C", "007_MRT", "10409", "AHU \"A\""}
	if len(records) != 1 || !reflect.DeepEqual(records[0], want) {
		t.Fatalf("got %v want %v", records, want)
	}
}

func TestCreateOutputRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "500.csv")
	errDiskFull := errors.New("disk full")

	err := createOutput(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "Object_Type,Obj"); err != nil {
			return err
		}
		return errDiskFull
	})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("got %v want %v", err, errDiskFull)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial output left behind: %v", err)
	}
}

func TestWriteWithFallbackLeavesNoPartialPrimary(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "500.csv")

	outcome := WriteWithFallback(primary, "_new", func(path string) error {
		return createOutput(path, func(w io.Writer) error {
			if path == primary {
				_, _ = io.WriteString(w, "trunc")
				return errors.New("write interrupted")
			}
			_, err := io.WriteString(w, "complete\n")
			return err
		})
	})
	if outcome.Status != internal.WriteRetriedAt {
		t.Fatalf("got %+v", outcome)
	}
	if _, err := os.Stat(primary); !os.IsNotExist(err) {
		t.Fatalf("truncated primary left behind: %v", err)
	}
	if data, err := os.ReadFile(filepath.Join(dir, "500_new.csv")); err != nil || string(data) != "complete\n" {
		t.Fatalf("fallback got %q, %v", data, err)
	}
}
