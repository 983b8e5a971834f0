package export

import (
	"strconv"

	"github.com/Spok95/tuition-center-admin/internal/reconcile"
)

// BuildAttendanceSheet — помесячный свод посещаемости из готовых счётчиков
// движка. classLabel — дополнительный срез поверх фильтра, с которым считался
// свод; счётчики уже посчитаны по-ученически, срез их не меняет.
func BuildAttendanceSheet(st *reconcile.DerivedState, classLabel string) SheetSpec {
	sheet := SheetSpec{
		Title:  "Посещаемость " + st.Month.Key(),
		Header: []string{"ФИО ученика", "Класс", "Присутствовал", "Отсутствовал", "Отпущен", "Праздник"},
	}
	for _, t := range st.Attendance {
		if classLabel != "" && t.Student.ClassLabel != classLabel {
			continue
		}
		sheet.Rows = append(sheet.Rows, []string{
			t.Student.FullName,
			t.Student.ClassLabel,
			strconv.Itoa(t.Present),
			strconv.Itoa(t.Absent),
			strconv.Itoa(t.Leave),
			strconv.Itoa(t.Holiday),
		})
	}
	return sheet
}
