//go:build testutil
// +build testutil

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/tuition-center-admin/internal/models"
	"github.com/Spok95/tuition-center-admin/internal/store"
	"github.com/Spok95/tuition-center-admin/internal/testutil/testdb"
)

func TestListStudents_OrderedAndOwnerScoped(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admitted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mustSeedStudent(t, h.DB, "Зайнаб Малик", "9", admitted)
	mustSeedStudent(t, h.DB, "Айша Хан", "9", admitted)

	// чужой владелец — не должен попасть в выборку
	if _, err := store.InsertStudent(ctx, h.DB, models.Student{
		FullName: "Чужой Ученик", ClassLabel: "9", AdmissionDate: admitted,
		Status: models.StatusActive, OwnerID: testOwner + 1,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListStudents(ctx, h.DB, testOwner)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ожидали 2 учеников владельца, получили %d", len(got))
	}
	if got[0].FullName != "Айша Хан" || got[1].FullName != "Зайнаб Малик" {
		t.Fatalf("ожидали алфавитный порядок, получили %q, %q", got[0].FullName, got[1].FullName)
	}
}

func TestListStudents_HonorsCancelledContext(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	// запросы сами вешают на контекст таймаут БД, но отмену вызывающего
	// обязаны уважать
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.ListStudents(cancelled, h.DB, testOwner); err == nil {
		t.Fatal("ожидали ошибку на отменённом контексте")
	}
}

func TestMarkStudentLeft_OneWay(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admitted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	leaving := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	id := mustSeedStudent(t, h.DB, "Билал Ахмед", "10", admitted)

	if err := store.MarkStudentLeft(ctx, h.DB, testOwner, id, leaving); err != nil {
		t.Fatal(err)
	}
	s, err := store.GetStudent(ctx, h.DB, testOwner, id)
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != models.StatusLeft || s.LeavingDate == nil {
		t.Fatalf("ожидали статус left с датой ухода, получили %+v", s)
	}

	// переход односторонний: повторное списание — ошибка
	if err := store.MarkStudentLeft(ctx, h.DB, testOwner, id, leaving); err == nil {
		t.Fatal("повторное списание обязано вернуть ошибку")
	}
}

func TestInsertStudent_LeavingBeforeAdmissionRejected(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admitted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	leaving := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.InsertStudent(ctx, h.DB, models.Student{
		FullName: "Некорректный", ClassLabel: "9", AdmissionDate: admitted,
		Status: models.StatusLeft, LeavingDate: &leaving, OwnerID: testOwner,
	})
	if err == nil {
		t.Fatal("уход раньше поступления обязан нарушить CHECK")
	}
}

func TestFeePayments_InsertAndList(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admitted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	paidOn := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	id := mustSeedStudent(t, h.DB, "Айша Хан", "9", admitted)

	// две строки за один период — допустимо по модели данных
	for _, amount := range []int64{50000, 30000} {
		if _, err := store.InsertFeePayment(ctx, h.DB, models.FeePayment{
			StudentID: id, Period: "2024-03", Amount: amount, PaidOn: paidOn,
			Channel: models.ChannelCash, OwnerID: testOwner,
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListFeePayments(ctx, h.DB, testOwner, "2024-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ожидали 2 платежа, получили %d", len(got))
	}
	if got[0].StudentName != "Айша Хан" || got[0].ClassLabel != "9" {
		t.Fatalf("display-поля ученика не подтянулись: %+v", got[0])
	}

	if _, err := store.InsertFeePayment(ctx, h.DB, models.FeePayment{
		StudentID: id, Period: "2024-03", Amount: 0, PaidOn: paidOn,
		Channel: models.ChannelCash, OwnerID: testOwner,
	}); err == nil {
		t.Fatal("нулевая сумма обязана быть отклонена")
	}

	if _, err := store.InsertFeePayment(ctx, h.DB, models.FeePayment{
		StudentID: id, Period: "март-2024", Amount: 100, PaidOn: paidOn,
		Channel: models.ChannelCash, OwnerID: testOwner,
	}); err == nil {
		t.Fatal("кривой период обязан быть отклонён")
	}
}
