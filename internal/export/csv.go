package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV — плоская табличная форма одного листа. encoding/csv сам экранирует
// разделители и кавычки внутри значений.
func WriteCSV(w io.Writer, sheet SheetSpec) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.Header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
