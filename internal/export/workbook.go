package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetSpec — лист отчёта: заголовок + уже готовые строки. Экспортёр ничего
// не пересчитывает, только сериализует результат движка.
type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

// NewWorkbook — книга из набора листов: жирная шапка, автофильтр по первой
// строке, эвристическая ширина колонок.
func NewWorkbook(sheets []SheetSpec) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("пустой отчёт")
	}
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}

	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}

		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}

		// ширина: по заголовку и первым строкам
		for c := 1; c <= len(s.Header); c++ {
			maxim := len([]rune(s.Header[c-1]))
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if c <= len(s.Rows[r]) {
					if l := len([]rune(s.Rows[r][c-1])); l > maxim {
						maxim = l
					}
				}
			}
			w := float64(maxim) * 1.1
			if w < 12 {
				w = 12
			}
			if w > 50 {
				w = 50
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return f, nil
}

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
