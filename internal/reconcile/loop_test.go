package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/tuition-center-admin/internal/models"
	"github.com/Spok95/tuition-center-admin/internal/session"
)

// fakeSource — управляемый источник снимков: можно подменять данные,
// возвращать ошибку и притормаживать чтение, чтобы поймать момент
// «триггер пришёл во время прохода».
type fakeSource struct {
	mu       sync.Mutex
	students []models.Student
	payments map[string][]models.FeePaymentWithStudent
	records  []models.AttendanceRecord
	err      error

	gate chan struct{} // если не nil — ListStudents ждёт сигнала
}

func (f *fakeSource) ListStudents(ctx context.Context) ([]models.Student, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Student(nil), f.students...), nil
}

func (f *fakeSource) ListFeePayments(ctx context.Context, period string) ([]models.FeePaymentWithStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.FeePaymentWithStudent(nil), f.payments[period]...), nil
}

func (f *fakeSource) ListAttendanceRange(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.AttendanceRecord
	for _, r := range f.records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) ListAttendanceByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	return f.ListAttendanceRange(ctx, date, date)
}

func (f *fakeSource) set(fn func(*fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func newTestLoop(t *testing.T, src Source) (*Loop, context.CancelFunc) {
	t.Helper()
	sess := session.New(42, time.UTC)
	l := NewLoop(src, sess, zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	return l, cancel
}

// waitState — ждём, пока опубликованное состояние не удовлетворит предикату.
func waitState(t *testing.T, l *Loop, cond func(*DerivedState, bool) bool) *DerivedState {
	t.Helper()
	dead := time.Now().Add(5 * time.Second)
	for time.Now().Before(dead) {
		st, fresh, _ := l.State()
		if st != nil && cond(st, fresh) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("не дождались нужного состояния цикла")
	return nil
}

func TestLoop_PublishesFirstPass(t *testing.T) {
	src := &fakeSource{
		students: []models.Student{activeStudent(1, date(2020, 1, 1))},
		payments: map[string][]models.FeePaymentWithStudent{},
	}
	l, cancel := newTestLoop(t, src)
	defer cancel()

	st := waitState(t, l, func(st *DerivedState, fresh bool) bool { return fresh })
	if len(st.Active) != 1 {
		t.Fatalf("ожидали 1 активного ученика, получили %d", len(st.Active))
	}
	if st.Fees.UnpaidCount != 1 {
		t.Fatalf("без платежей единственный ученик — должник: %+v", st.Fees)
	}
}

func TestLoop_ErrorKeepsPriorState(t *testing.T) {
	src := &fakeSource{
		students: []models.Student{activeStudent(1, date(2020, 1, 1))},
		payments: map[string][]models.FeePaymentWithStudent{},
	}
	l, cancel := newTestLoop(t, src)
	defer cancel()

	first := waitState(t, l, func(st *DerivedState, fresh bool) bool { return fresh })

	// хранилище падает: следующий проход не должен затереть публикацию
	boom := errors.New("store unreachable")
	src.set(func(f *fakeSource) { f.err = boom })
	l.Refresh()

	dead := time.Now().Add(2 * time.Second)
	for time.Now().Before(dead) {
		_, _, lastErr := l.State()
		if lastErr != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	st, fresh, lastErr := l.State()
	if !errors.Is(lastErr, boom) {
		t.Fatalf("ожидали ошибку прохода, получили %v", lastErr)
	}
	if fresh {
		t.Fatal("после неудачного прохода состояние не Fresh")
	}
	if st == nil || st.Generation != first.Generation {
		t.Fatal("прежняя публикация должна сохраниться нетронутой")
	}

	// восстановление: цикл принимает следующий триггер и снова публикует
	src.set(func(f *fakeSource) { f.err = nil })
	l.Refresh()
	waitState(t, l, func(st *DerivedState, fresh bool) bool { return fresh })
}

func TestLoop_SupersededPassDiscarded(t *testing.T) {
	feb := models.Month{Year: 2024, Month: time.February}
	mar := models.Month{Year: 2024, Month: time.March}
	src := &fakeSource{
		students: []models.Student{activeStudent(1, date(2020, 1, 1))},
		payments: map[string][]models.FeePaymentWithStudent{
			"2024-02": {payment(1, "2024-02", 100, models.ChannelCash)},
			"2024-03": {payment(1, "2024-03", 999, models.ChannelOnline)},
		},
	}
	l, cancel := newTestLoop(t, src)
	defer cancel()

	waitState(t, l, func(st *DerivedState, fresh bool) bool { return fresh })

	// тормозим следующий проход на чтении снимка
	gate := make(chan struct{})
	src.set(func(f *fakeSource) { f.gate = gate })
	l.SetMonth(feb)

	// даём проходу стартовать и застрять, затем меняем период ещё раз
	time.Sleep(50 * time.Millisecond)
	l.SetMonth(mar)
	src.set(func(f *fakeSource) { f.gate = nil })
	close(gate)

	// опубликоваться обязан только результат последнего периода; промежуточный
	// результат за февраль вытеснен и не виден никогда
	st := waitState(t, l, func(st *DerivedState, fresh bool) bool {
		return fresh && st.Month == mar
	})
	if st.Fees.Total != 999 || st.Fees.Online != 999 {
		t.Fatalf("опубликован разнородный результат: %+v", st.Fees)
	}
}

// Публикация атомарна: состояние всегда согласовано с одним периодом,
// платежи чужого месяца в него не просачиваются.
func TestLoop_NoTornState(t *testing.T) {
	jan := models.Month{Year: 2024, Month: time.January}
	src := &fakeSource{
		students: []models.Student{activeStudent(1, date(2020, 1, 1))},
		payments: map[string][]models.FeePaymentWithStudent{
			"2024-01": {payment(1, "2024-01", 700, models.ChannelCash)},
			"2024-02": {payment(1, "2024-02", 300, models.ChannelCash)},
		},
	}
	l, cancel := newTestLoop(t, src)
	defer cancel()

	l.SetMonth(jan)
	st := waitState(t, l, func(st *DerivedState, fresh bool) bool {
		return fresh && st.Month == jan
	})
	if st.Fees.Total != 700 {
		t.Fatalf("в своде января только январские платежи: %+v", st.Fees)
	}
}

// Дневной журнал читается отдельным запросом по выбранной дате: отметки
// соседних дней в DayMarks не попадают.
func TestLoop_DayMarksFollowSelectedDate(t *testing.T) {
	mar := models.Month{Year: 2024, Month: time.March}
	src := &fakeSource{
		students: []models.Student{activeStudent(1, date(2020, 1, 1))},
		payments: map[string][]models.FeePaymentWithStudent{},
		records: []models.AttendanceRecord{
			{StudentID: 1, Date: date(2024, 3, 4), Status: models.AttendancePresent},
			{StudentID: 1, Date: date(2024, 3, 5), Status: models.AttendanceAbsent},
		},
	}
	l, cancel := newTestLoop(t, src)
	defer cancel()

	l.SetMonth(mar)
	l.SetDate(date(2024, 3, 4))
	st := waitState(t, l, func(st *DerivedState, fresh bool) bool {
		return fresh && st.Month == mar && st.AttendanceDate.Equal(date(2024, 3, 4))
	})
	if got := st.DayMarks[1]; got != models.AttendancePresent {
		t.Fatalf("ожидали отметку за 4 марта, получили %q", got)
	}

	l.SetDate(date(2024, 3, 5))
	st = waitState(t, l, func(st *DerivedState, fresh bool) bool {
		return fresh && st.AttendanceDate.Equal(date(2024, 3, 5))
	})
	if got := st.DayMarks[1]; got != models.AttendanceAbsent {
		t.Fatalf("ожидали отметку за 5 марта, получили %q", got)
	}
	if len(st.DayMarks) != 1 {
		t.Fatalf("в журнале дня ровно одна отметка, получили %d", len(st.DayMarks))
	}
}

func TestLoop_CoalescesTriggerBurst(t *testing.T) {
	src := &fakeSource{
		students: []models.Student{activeStudent(1, date(2020, 1, 1))},
		payments: map[string][]models.FeePaymentWithStudent{},
	}
	l, cancel := newTestLoop(t, src)
	defer cancel()

	for i := 0; i < 100; i++ {
		l.Notify("attendance")
	}
	st := waitState(t, l, func(st *DerivedState, fresh bool) bool { return fresh })
	if st == nil {
		t.Fatal("после шквала триггеров цикл обязан прийти в Fresh")
	}
}
