package export

import (
	"math"
	"sort"
	"strings"

	"github.com/Rana718/seedforge/internal/types"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	minColWidth  = 10
	maxColWidth  = 60
)

func encodeXLSX(ds types.Dataset, opts Options) ([]byte, error) {
	return workbook(SheetName(opts.datasetName()), ds)
}

// EncodeSpreadsheet encodes rows as a workbook without a schema. When fields
// is empty the columns are the first row's keys in sorted order.
func EncodeSpreadsheet(rows []map[string]any, fields []string, opts Options) (*Artifact, error) {
	if len(rows) == 0 {
		return nil, types.WrapError(types.KindEncodeFailed, types.ErrEncodeFailed.Message, ErrNoRows)
	}
	if len(fields) == 0 {
		for k := range rows[0] {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}
	ds := types.Dataset{Fields: fields, Rows: make([]types.GeneratedRow, len(rows))}
	for i, r := range rows {
		ds.Rows[i] = types.GeneratedRow(r)
	}
	return Encode(types.FormatXLSX, ds, opts)
}

// SheetName strips the characters Excel rejects and trims to 31 runes.
func SheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.Trim(strings.TrimSpace(cleaned), "'")
	if runes := []rune(cleaned); len(runes) > maxSheetName {
		cleaned = string(runes[:maxSheetName])
	}
	if cleaned == "" {
		return "Sheet1"
	}
	return cleaned
}

func columnWidth(name string) float64 {
	w := float64(len([]rune(name)))*1.2 + 4
	return math.Min(maxColWidth, math.Max(minColWidth, w))
}

func workbook(sheet string, ds types.Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E7EEF7"}},
	})
	if err != nil {
		return nil, err
	}

	for c, field := range ds.Fields {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, field); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, columnWidth(field)); err != nil {
			return nil, err
		}
	}

	for r, row := range ds.Rows {
		for c, field := range ds.Fields {
			v := row[field]
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if len(ds.Fields) > 0 {
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
