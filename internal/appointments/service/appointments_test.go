package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appts "github.com/clinika/clinika-backend/internal/appointments"
	"github.com/clinika/clinika-backend/internal/appointments/repository"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/pkg/testutil"
)

func newService(t *testing.T) (*AppointmentService, *testutil.MockDB) {
	t.Helper()
	mock := testutil.NewMockDB(t)
	orch := lookup.New(mock.DB, mock.Logger)

	svc := NewAppointmentService(
		repository.NewAppointmentRepository(orch, []string{"appointments_view"}),
		repository.NewHistoryCacheRepository(mock.DB),
		time.Minute,
		time.Hour,
		mock.Logger,
	)
	t.Cleanup(svc.Close)
	return svc, mock
}

func TestTodayAggregatesAndCaches(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`SELECT * FROM "appointments_view" WHERE "date" = $1`).
		WillReturnRows(testutil.MockRows("id", "patient_name", "time", "status", "cash", "cashless").
			AddRow("A2", "Иванов", "15:00", "Ожидаем", 0.0, 0.0).
			AddRow("A1", "Асанова", "09:30", "Оплачено", 1000.0, 500.0))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "appointments_view" WHERE "date" = $1`).
		WillReturnRows(testutil.MockRows("count").AddRow(2))

	dash, err := svc.Today(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, dash.Paid)
	assert.Equal(t, 1, dash.Waiting)
	assert.Equal(t, 1000.0, dash.CashTotal)
	assert.Equal(t, 500.0, dash.NonCashTotal)
	// Ordered by time of day.
	require.Len(t, dash.Appointments, 2)
	assert.Equal(t, "A1", dash.Appointments[0].ID)

	// Second call is served from the cache.
	again, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Same(t, dash, again)

	mock.ExpectationsWereMet(t)
}

func TestHistoryServedFromPersistentCache(t *testing.T) {
	svc, mock := newService(t)

	visits := []*appts.Appointment{{ID: "A1", PatientName: "Асанова", Date: "01.02.2025"}}
	payload, err := json.Marshal(visits)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT patient_key, payload, updated_at").
		WillReturnRows(testutil.MockRows("patient_key", "payload", "updated_at").
			AddRow("P1", payload, time.Now()))

	got, err := svc.History(context.Background(), "P1", "Асанова", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A1", got[0].ID)

	mock.ExpectationsWereMet(t)
}

func TestHistoryMissScansAndRefreshesCache(t *testing.T) {
	svc, mock := newService(t)

	// Cache miss.
	mock.ExpectQuery("SELECT patient_key, payload, updated_at").
		WillReturnRows(testutil.MockRows("patient_key", "payload", "updated_at"))

	mock.ExpectQuery(`SELECT * FROM "appointments_view" WHERE "patient_name" ILIKE $1`).
		WillReturnRows(testutil.MockRows("id", "patient_name", "date").
			AddRow("A1", "Асанова Айгуль", "01.02.2025").
			AddRow("A2", "Асанова Айгуль", "15.03.2025"))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "appointments_view"`).
		WillReturnRows(testutil.MockRows("count").AddRow(2))

	mock.ExpectExec("INSERT INTO patient_history_cache").
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.History(context.Background(), "P1", "Асанова Айгуль", "")
	require.NoError(t, err)

	// Newest visit first.
	require.Len(t, got, 2)
	assert.Equal(t, "A2", got[0].ID)
	assert.Equal(t, "A1", got[1].ID)

	mock.ExpectationsWereMet(t)
}

func TestHistoryFallsBackToPhone(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery("SELECT patient_key, payload, updated_at").
		WillReturnRows(testutil.MockRows("patient_key", "payload", "updated_at"))

	// Name match finds nothing; the phone fallback compares digits only,
	// so a CRM row stored as "0700 11-22-33" still matches.
	mock.ExpectQuery(`SELECT * FROM "appointments_view" WHERE "patient_name" ILIKE $1`).
		WillReturnRows(testutil.MockRows("id", "patient_name", "date"))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "appointments_view"`).
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	mock.ExpectQuery(`SELECT * FROM "appointments_view" WHERE regexp_replace("phone", '[^0-9]', '', 'g') LIKE $1`).
		WithArgs("%700112233%").
		WillReturnRows(testutil.MockRows("id", "patient_name", "date").
			AddRow("A3", "Асанова А.", "02.04.2025"))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "appointments_view"`).
		WillReturnRows(testutil.MockRows("count").AddRow(1))

	mock.ExpectExec("INSERT INTO patient_history_cache").
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.History(context.Background(), "P1", "Асанова Айгуль", "700112233")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A3", got[0].ID)

	mock.ExpectationsWereMet(t)
}
