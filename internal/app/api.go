package app

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/tuition-center-admin/internal/export"
	"github.com/Spok95/tuition-center-admin/internal/models"
	"github.com/Spok95/tuition-center-admin/internal/reconcile"
	"github.com/Spok95/tuition-center-admin/internal/session"
	"github.com/Spok95/tuition-center-admin/internal/store"
)

// API — тонкий слой над движком: читает опубликованное состояние цикла,
// проксирует записи в хранилище. Сам ничего не пересчитывает.
type API struct {
	DB   *sql.DB
	Loop *reconcile.Loop
	Sess *session.Session
	Log  *zap.SugaredLogger
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", a.handleDashboard)
	mux.HandleFunc("GET /api/attendance", a.handleAttendance)

	mux.HandleFunc("PUT /api/period", a.handleSetPeriod)
	mux.HandleFunc("PUT /api/attendance-date", a.handleSetDate)
	mux.HandleFunc("PUT /api/class-filter", a.handleSetFilter)

	mux.HandleFunc("POST /api/students", a.handleAddStudent)
	mux.HandleFunc("POST /api/students/{id}/leave", a.handleStudentLeave)
	mux.HandleFunc("POST /api/payments", a.handleAddPayment)
	mux.HandleFunc("POST /api/attendance/mark", a.handleMark)
	mux.HandleFunc("POST /api/attendance/mark-all", a.handleMarkAll)

	mux.HandleFunc("GET /api/export/fees.xlsx", a.handleExportFeesXLSX)
	mux.HandleFunc("GET /api/export/fees.csv", a.handleExportFeesCSV)
	mux.HandleFunc("GET /api/export/attendance.xlsx", a.handleExportAttendanceXLSX)
	mux.HandleFunc("GET /api/export/attendance.csv", a.handleExportAttendanceCSV)
}

// --- чтение производных представлений ---

type studentView struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	ClassLabel  string `json:"class_label"`
	ParentPhone string `json:"parent_phone"`
	Status      string `json:"status"`
}

type dashboardView struct {
	Month          string        `json:"month"`
	Fresh          bool          `json:"fresh"`
	ReconciledAt   time.Time     `json:"reconciled_at"`
	ActiveCount    int           `json:"active_count"`
	Total          int64         `json:"total_collected"`
	Cash           int64         `json:"cash"`
	Online         int64         `json:"online"`
	PaidCount      int           `json:"paid_count"`
	UnpaidCount    int           `json:"unpaid_count"`
	LeftThisPeriod int           `json:"left_this_period"`
	Unpaid         []studentView `json:"unpaid_students"`
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st, fresh, _ := a.currentState(w)
	if st == nil {
		return
	}
	view := dashboardView{
		Month:          st.Month.Key(),
		Fresh:          fresh,
		ReconciledAt:   st.ReconciledAt,
		ActiveCount:    len(st.Active),
		Total:          st.Fees.Total,
		Cash:           st.Fees.Cash,
		Online:         st.Fees.Online,
		PaidCount:      st.Fees.PaidCount,
		UnpaidCount:    st.Fees.UnpaidCount,
		LeftThisPeriod: st.Fees.LeftThisPeriod,
		Unpaid:         make([]studentView, 0, len(st.Fees.Unpaid)),
	}
	for _, s := range st.Fees.Unpaid {
		view.Unpaid = append(view.Unpaid, toStudentView(s))
	}
	writeJSON(w, http.StatusOK, view)
}

type tallyView struct {
	Student studentView `json:"student"`
	Present int         `json:"present"`
	Absent  int         `json:"absent"`
	Leave   int         `json:"leave"`
	Holiday int         `json:"holiday"`
}

type attendanceView struct {
	Month    string           `json:"month"`
	Date     string           `json:"date"`
	Fresh    bool             `json:"fresh"`
	Tallies  []tallyView      `json:"tallies"`
	DayMarks map[int64]string `json:"day_marks"`
}

func (a *API) handleAttendance(w http.ResponseWriter, r *http.Request) {
	st, fresh, _ := a.currentState(w)
	if st == nil {
		return
	}
	view := attendanceView{
		Month:    st.Month.Key(),
		Date:     st.AttendanceDate.Format("2006-01-02"),
		Fresh:    fresh,
		Tallies:  make([]tallyView, 0, len(st.Attendance)),
		DayMarks: make(map[int64]string, len(st.DayMarks)),
	}
	for _, t := range st.Attendance {
		view.Tallies = append(view.Tallies, tallyView{
			Student: toStudentView(t.Student),
			Present: t.Present, Absent: t.Absent, Leave: t.Leave, Holiday: t.Holiday,
		})
	}
	for id, s := range st.DayMarks {
		view.DayMarks[id] = string(s)
	}
	writeJSON(w, http.StatusOK, view)
}

// --- селекторы, триггерящие пересчёт ---

func (a *API) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if !decode(w, r, &req) {
		return
	}
	m, err := models.ParseMonth(req.Month)
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	a.Loop.SetMonth(m)
	writeJSON(w, http.StatusAccepted, map[string]string{"month": m.Key()})
}

func (a *API) handleSetDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверная дата: %w", err))
		return
	}
	a.Loop.SetDate(d)
	writeJSON(w, http.StatusAccepted, map[string]string{"date": req.Date})
}

func (a *API) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Class string `json:"class"`
	}
	if !decode(w, r, &req) {
		return
	}
	a.Loop.SetClassFilter(req.Class)
	writeJSON(w, http.StatusAccepted, map[string]string{"class": req.Class})
}

// --- записи: уходят в хранилище, пересчёт запустит NOTIFY ---

func (a *API) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName      string  `json:"full_name"`
		ClassLabel    string  `json:"class_label"`
		SchoolName    *string `json:"school_name"`
		ParentPhone   string  `json:"parent_phone"`
		AdmissionDate string  `json:"admission_date"`
		BatchLabel    *string `json:"batch_label"`
		Notes         *string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.FullName == "" || req.ClassLabel == "" {
		httpError(w, http.StatusBadRequest, fmt.Errorf("имя и класс обязательны"))
		return
	}
	adm, err := time.Parse("2006-01-02", req.AdmissionDate)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверная дата поступления: %w", err))
		return
	}
	id, err := store.InsertStudent(r.Context(), a.DB, models.Student{
		FullName:      req.FullName,
		ClassLabel:    req.ClassLabel,
		SchoolName:    req.SchoolName,
		ParentPhone:   req.ParentPhone,
		AdmissionDate: adm,
		BatchLabel:    req.BatchLabel,
		Status:        models.StatusActive,
		Notes:         req.Notes,
		OwnerID:       a.Sess.OwnerID,
	})
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) handleStudentLeave(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверный id"))
		return
	}
	var req struct {
		LeavingDate string `json:"leaving_date"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := time.Parse("2006-01-02", req.LeavingDate)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверная дата ухода: %w", err))
		return
	}
	if err := store.MarkStudentLeft(r.Context(), a.DB, a.Sess.OwnerID, id, d); err != nil {
		httpError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusLeft)})
}

func (a *API) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID int64   `json:"student_id"`
		Period    string  `json:"period"`
		Amount    int64   `json:"amount"`
		PaidOn    string  `json:"paid_on"`
		Channel   string  `json:"channel"`
		Reference *string `json:"reference"`
	}
	if !decode(w, r, &req) {
		return
	}
	paidOn, err := time.Parse("2006-01-02", req.PaidOn)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверная дата оплаты: %w", err))
		return
	}
	ch := models.PaymentChannel(req.Channel)
	if ch != models.ChannelCash && ch != models.ChannelOnline {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неизвестный канал оплаты %q", req.Channel))
		return
	}
	id, err := store.InsertFeePayment(r.Context(), a.DB, models.FeePayment{
		StudentID: req.StudentID,
		Period:    req.Period,
		Amount:    req.Amount,
		PaidOn:    paidOn,
		Channel:   ch,
		Reference: req.Reference,
		OwnerID:   a.Sess.OwnerID,
	})
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) handleMark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID int64  `json:"student_id"`
		Date      string `json:"date"`
		Status    string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверная дата: %w", err))
		return
	}
	if err := store.UpsertAttendance(r.Context(), a.DB, a.Sess.OwnerID, req.StudentID, d, models.AttendanceStatus(req.Status)); err != nil {
		httpError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// handleMarkAll — «отметить всех»: применяем отметку ко всем ученикам
// текущего отфильтрованного свода. Батч best-effort: при частичном отказе
// возвращаем ошибку, фактическое состояние покажет следующий пересчёт.
func (a *API) handleMarkAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   string `json:"date"`
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	d, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверная дата: %w", err))
		return
	}
	st, _, _ := a.Loop.State()
	if st == nil {
		httpError(w, http.StatusConflict, fmt.Errorf("представление ещё не готово, повторите позже"))
		return
	}
	ids := make([]int64, 0, len(st.Attendance))
	for _, t := range st.Attendance {
		ids = append(ids, t.Student.ID)
	}
	written, err := store.BulkUpsertAttendance(r.Context(), a.DB, a.Sess.OwnerID, d, models.AttendanceStatus(req.Status), ids)
	if err != nil {
		a.Log.Warnw("массовая отметка прошла частично", "written", written, "total", len(ids), "err", err)
		httpError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": written})
}

// --- экспорт ---

func (a *API) handleExportFeesXLSX(w http.ResponseWriter, r *http.Request) {
	st, _, _ := a.currentState(w)
	if st == nil {
		return
	}
	f, err := export.NewWorkbook(export.BuildFeeSheets(st, r.URL.Query().Get("class")))
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=fees_%s.xlsx", st.Month.Key()))
	if err := f.Write(w); err != nil {
		a.Log.Errorw("выгрузка xlsx не удалась", "err", err)
	}
}

func (a *API) handleExportFeesCSV(w http.ResponseWriter, r *http.Request) {
	st, _, _ := a.currentState(w)
	if st == nil {
		return
	}
	sheets := export.BuildFeeSheets(st, r.URL.Query().Get("class"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=fees_%s.csv", st.Month.Key()))
	// в CSV уходит лист с учениками, сводные цифры есть в /api/dashboard
	if err := export.WriteCSV(w, sheets[1]); err != nil {
		a.Log.Errorw("выгрузка csv не удалась", "err", err)
	}
}

func (a *API) handleExportAttendanceXLSX(w http.ResponseWriter, r *http.Request) {
	st, _, _ := a.currentState(w)
	if st == nil {
		return
	}
	sheet := export.BuildAttendanceSheet(st, r.URL.Query().Get("class"))
	f, err := export.NewWorkbook([]export.SheetSpec{sheet})
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=attendance_%s.xlsx", st.Month.Key()))
	if err := f.Write(w); err != nil {
		a.Log.Errorw("выгрузка xlsx не удалась", "err", err)
	}
}

func (a *API) handleExportAttendanceCSV(w http.ResponseWriter, r *http.Request) {
	st, _, _ := a.currentState(w)
	if st == nil {
		return
	}
	sheet := export.BuildAttendanceSheet(st, r.URL.Query().Get("class"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=attendance_%s.csv", st.Month.Key()))
	if err := export.WriteCSV(w, sheet); err != nil {
		a.Log.Errorw("выгрузка csv не удалась", "err", err)
	}
}

// --- helpers ---

// currentState — опубликованное состояние; при его отсутствии пишет ответ сам
// и возвращает nil.
func (a *API) currentState(w http.ResponseWriter) (*reconcile.DerivedState, bool, error) {
	st, fresh, lastErr := a.Loop.State()
	if st == nil {
		if lastErr != nil {
			httpError(w, http.StatusServiceUnavailable, fmt.Errorf("хранилище недоступно: %w", lastErr))
		} else {
			httpError(w, http.StatusServiceUnavailable, fmt.Errorf("первый пересчёт ещё не завершён"))
		}
		return nil, false, lastErr
	}
	return st, fresh, lastErr
}

func toStudentView(s models.Student) studentView {
	return studentView{
		ID:          s.ID,
		FullName:    s.FullName,
		ClassLabel:  s.ClassLabel,
		ParentPhone: s.ParentPhone,
		Status:      string(s.Status),
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("неверное тело запроса: %w", err))
		return false
	}
	return true
}

func httpError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
