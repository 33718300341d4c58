package pipeline

import (
	"github.com/locojk/CSV-converter/internal"
	"github.com/locojk/CSV-converter/internal/util"
)

// NormalizeRow canonicalises every text field of a row.
func NormalizeRow(row internal.NormalizedRow) internal.NormalizedRow {
	return internal.NormalizedRow{
		ObjectType:   util.NormalizeText(row.ObjectType),
		ObjectNumber: util.NormalizeText(row.ObjectNumber),
		Name:         util.NormalizeText(row.Name),
		Units:        util.NormalizeText(row.Units),
		DeviceNumber: util.NormalizeText(row.DeviceNumber),
		DeviceName:   util.NormalizeText(row.DeviceName),
	}
}
