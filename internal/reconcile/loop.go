package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/tuition-center-admin/internal/ctxutil"
	"github.com/Spok95/tuition-center-admin/internal/metrics"
	"github.com/Spok95/tuition-center-admin/internal/models"
	"github.com/Spok95/tuition-center-admin/internal/observability"
	"github.com/Spok95/tuition-center-admin/internal/session"
)

// Source — снимки сущностей, которые цикл перечитывает на каждом проходе.
type Source interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListFeePayments(ctx context.Context, period string) ([]models.FeePaymentWithStudent, error)
	ListAttendanceRange(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
	ListAttendanceByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error)
}

type TriggerReason string

const (
	TriggerPeriodChange TriggerReason = "period_change"
	TriggerDateChange   TriggerReason = "date_change"
	TriggerFilterChange TriggerReason = "filter_change"
	TriggerTableChange  TriggerReason = "table_change"
	TriggerRefresh      TriggerReason = "refresh"
)

// DerivedState — опубликованный результат одного прохода. Публикуется целиком
// и далее только читается: никаких инкрементальных правок.
type DerivedState struct {
	Month          models.Month
	AttendanceDate time.Time
	ClassFilter    string

	Active     []models.Student
	Fees       FeeSummary
	Attendance []AttendanceTally
	// Отметки на выбранную дату — дневной журнал.
	DayMarks map[int64]models.AttendanceStatus

	ReconciledAt time.Time
	Generation   uint64
}

// Loop — цикл пересчёта. Два состояния: Stale (после триггера) и Fresh
// (опубликован результат последнего прохода). Любой триггер ведёт к полному
// перечитыванию снимков и пересчёту с нуля; проходы не параллелятся, триггеры
// во время прохода коалесцируются в один следующий проход.
type Loop struct {
	src  Source
	sess *session.Session
	log  *zap.SugaredLogger

	trigger chan struct{}

	mu          sync.Mutex
	gen         uint64 // поколение последнего триггера
	month       models.Month
	date        time.Time
	classFilter string
	published   *DerivedState
	fresh       bool
	lastErr     error
}

func NewLoop(src Source, sess *session.Session, log *zap.SugaredLogger) *Loop {
	today := sess.Today()
	return &Loop{
		src:     src,
		sess:    sess,
		log:     log,
		trigger: make(chan struct{}, 1),
		month:   models.MonthOf(today),
		date:    today,
	}
}

// SetMonth — смена отчётного периода.
func (l *Loop) SetMonth(m models.Month) {
	l.mu.Lock()
	l.month = m
	l.mu.Unlock()
	l.fire(TriggerPeriodChange)
}

// SetDate — смена даты дневного журнала посещаемости.
func (l *Loop) SetDate(d time.Time) {
	l.mu.Lock()
	l.date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	l.mu.Unlock()
	l.fire(TriggerDateChange)
}

// SetClassFilter — фильтр по классу для свода посещаемости.
func (l *Loop) SetClassFilter(classLabel string) {
	l.mu.Lock()
	l.classFilter = classLabel
	l.mu.Unlock()
	l.fire(TriggerFilterChange)
}

// Notify — внешний сигнал об изменении какой-либо из трёх таблиц. Полезная
// нагрузка не важна, сигнал лишь делает состояние Stale.
func (l *Loop) Notify(table string) {
	_ = table
	l.fire(TriggerTableChange)
}

// Refresh — принудительный пересчёт (страховочный фоновой job, ручной запрос).
func (l *Loop) Refresh() {
	l.fire(TriggerRefresh)
}

func (l *Loop) fire(reason TriggerReason) {
	l.mu.Lock()
	l.gen++
	l.fresh = false
	l.mu.Unlock()

	metrics.ReconcileTriggers.WithLabelValues(string(reason)).Inc()
	// канал ёмкостью 1: лишние триггеры схлопываются в один проход
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Run — рабочая горутина. Первый проход запускается сразу, дальше — по
// триггерам, до отмены ctx.
func (l *Loop) Run(ctx context.Context) {
	l.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.trigger:
			l.runPass(ctx)
		}
	}
}

// State — последний опубликованный результат (может быть nil до первого
// успешного прохода), признак Fresh и ошибка последнего неудачного прохода.
// Результат только для чтения.
func (l *Loop) State() (*DerivedState, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.published, l.fresh, l.lastErr
}

func (l *Loop) runPass(ctx context.Context) {
	l.mu.Lock()
	gen := l.gen
	month := l.month
	date := l.date
	filter := l.classFilter
	l.mu.Unlock()

	start := time.Now()
	st, err := l.derive(ctx, month, date, filter)
	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		// хранилище недоступно: прежний опубликованный результат не трогаем
		l.lastErr = err
		metrics.ReconcileErrors.Inc()
		l.log.Errorw("проход пересчёта не удался", "month", month.Key(), "err", err)
		observability.CaptureErr(err)
		return
	}

	if l.gen != gen {
		// пока шёл проход, пришёл новый триггер: результат уже устарел,
		// публиковать его нельзя — следующий проход уже в очереди
		metrics.ReconcileSuperseded.Inc()
		l.log.Debugw("результат прохода вытеснен", "gen", gen, "current", l.gen)
		return
	}

	st.Generation = gen
	l.published = st
	l.fresh = true
	l.lastErr = nil
	metrics.ReconcilePasses.Inc()
	l.log.Infow("пересчёт опубликован",
		"month", month.Key(),
		"active", len(st.Active),
		"unpaid", st.Fees.UnpaidCount,
		"took", time.Since(start))
}

// derive — один полный проход: перечитать снимки, прогнать три свёртки.
func (l *Loop) derive(parent context.Context, m models.Month, date time.Time, filter string) (*DerivedState, error) {
	ctx, cancel := ctxutil.WithTimeout(parent, 30*time.Second)
	defer cancel()

	students, err := l.src.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := l.src.ListFeePayments(ctx, m.Key())
	if err != nil {
		return nil, err
	}
	records, err := l.src.ListAttendanceRange(ctx, m.Start(), m.End())
	if err != nil {
		return nil, err
	}
	dayRecords, err := l.src.ListAttendanceByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	active := ActiveStudents(students, m)
	st := &DerivedState{
		Month:          m,
		AttendanceDate: date,
		ClassFilter:    filter,
		Active:         active,
		Fees:           ReconcileFees(students, active, payments, m),
		Attendance:     SummarizeAttendance(students, records, m, filter),
		DayMarks:       make(map[int64]models.AttendanceStatus, len(dayRecords)),
		ReconciledAt:   time.Now(),
	}
	for _, r := range dayRecords {
		st.DayMarks[r.StudentID] = r.Status
	}
	return st, nil
}
