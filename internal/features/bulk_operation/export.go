package bulk_operation

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/schema"

	"github.com/xuri/excelize/v2"
)

// Export fetches the selected records and renders them as a spreadsheet.
// format is "xlsx" (default) or "csv". Export is read-only and does not
// create an operation record.
func (s *BulkOperationServiceImpl) Export(ctx context.Context, module string, ids []string, format string) ([]byte, string, error) {
	mod, ok := s.Registry.Module(module)
	if !ok {
		return nil, "", apperr.Validation("unknown module %q", module)
	}
	if len(ids) == 0 {
		return nil, "", apperr.Validation("no record ids given")
	}

	columns := make([]string, 0, len(mod.Fields))
	for _, f := range mod.Fields {
		columns = append(columns, f.Name)
	}

	var rows []map[string]any
	for _, id := range ids {
		rec, err := s.Records.Get(ctx, module, id)
		if err != nil {
			// Records deleted between selection and export are skipped, not fatal
			continue
		}
		rows = append(rows, rec)
	}

	base := fmt.Sprintf("%s_export_%s", module, time.Now().Format("20060102_150405"))
	switch format {
	case "csv":
		data, err := exportCSV(rows, columns)
		if err != nil {
			return nil, "", err
		}
		return data, base + ".csv", nil
	case "", "xlsx":
		data, err := exportExcel(rows, columns, mod)
		if err != nil {
			return nil, "", err
		}
		return data, base + ".xlsx", nil
	default:
		return nil, "", apperr.Validation("unsupported export format %q", format)
	}
}

func exportExcel(rows []map[string]any, columns []string, mod schema.Module) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := mod.Label
	if sheetName == "" {
		sheetName = "Export"
	}
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		label := col
		if field, ok := mod.Field(col); ok && field.Label != "" {
			label = field.Label
		}
		f.SetCellValue(sheetName, cell, label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, rec := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch v := rec[col].(type) {
			case time.Time:
				f.SetCellValue(sheetName, cell, v.Format("2006-01-02 15:04:05"))
			case []any:
				parts := make([]string, 0, len(v))
				for _, item := range v {
					parts = append(parts, fmt.Sprintf("%v", item))
				}
				f.SetCellValue(sheetName, cell, strings.Join(parts, ", "))
			default:
				f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func exportCSV(rows []map[string]any, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columns); err != nil {
		return nil, err
	}

	for _, rec := range rows {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			val := rec[col]
			strVal := ""
			switch v := val.(type) {
			case nil:
			case time.Time:
				strVal = v.Format("2006-01-02 15:04:05")
			case []any:
				parts := make([]string, 0, len(v))
				for _, item := range v {
					parts = append(parts, fmt.Sprintf("%v", item))
				}
				strVal = strings.Join(parts, ", ")
			default:
				strVal = fmt.Sprintf("%v", v)
			}
			row = append(row, strVal)
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
