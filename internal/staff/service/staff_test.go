package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/lookup"
	"github.com/clinika/clinika-backend/internal/normalize"
	"github.com/clinika/clinika-backend/internal/staff/repository"
	"github.com/clinika/clinika-backend/pkg/testutil"
)

func newService(t *testing.T) (*StaffService, *testutil.MockDB) {
	t.Helper()
	mock := testutil.NewMockDB(t)
	orch := lookup.New(mock.DB, mock.Logger)
	repo := repository.NewStaffRepository(mock.DB, orch,
		[]string{"employees", "Сотрудники CRM"},
		[]string{"full_name", "phone"})

	svc := NewStaffService(repo, time.Minute, audit.Nop{}, mock.Logger)
	t.Cleanup(svc.Close)
	return svc, mock
}

func TestDirectoryMergesRelations(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillReturnRows(testutil.MockRows("id", "full_name", "phone").
			AddRow("E1", "Иванов Петр", "+996555112233").
			AddRow("E2", "Асанова Айгуль", nil))
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("Код", "Доктор ФИО", "Роль").
			AddRow("E1", "Иванов Петр Сергеевич", "Врач").
			AddRow("E3", "Жумалиев Бакыт", "Админ"))

	list, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Sorted by name under Russian collation.
	assert.Equal(t, "E2", list[0].ID)
	assert.Equal(t, "E3", list[1].ID)
	assert.Equal(t, "E1", list[2].ID)

	// E1 came from the first relation first: its name wins, the second
	// relation only fills the missing role.
	e1 := list[2]
	assert.Equal(t, "Иванов Петр", e1.FullName)
	require.NotNil(t, e1.Phone)
	assert.Equal(t, "555112233", *e1.Phone)
	require.NotNil(t, e1.Role)
	assert.Equal(t, "doctor", *e1.Role)

	mock.ExpectationsWereMet(t)
}

func TestDirectoryConcurrentReadersAllAnswered(t *testing.T) {
	svc, mock := newService(t)
	mock.Mock.MatchExpectationsInOrder(false)

	// The slow reader's queries.
	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillDelayFor(300 * time.Millisecond).
		WillReturnRows(testutil.MockRows("id", "full_name").AddRow("E1", "Иванов"))
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("id", "full_name"))

	// The fast reader's.
	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillReturnRows(testutil.MockRows("id", "full_name").AddRow("E1", "Иванов"))
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("id", "full_name"))

	type result struct {
		list []*normalize.Employee
		err  error
	}
	results := make(chan result, 2)
	read := func() {
		list, err := svc.Directory(context.Background())
		results <- result{list, err}
	}

	// The second reader starts while the first is still waiting on the
	// database. It must not abort the first reader's query: both callers
	// asked a valid question and both get the directory.
	go read()
	time.Sleep(100 * time.Millisecond)
	go read()

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.NotEmpty(t, r.list)
		assert.Equal(t, "E1", r.list[0].ID)
	}
}

func TestDirectoryServedFromCache(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillReturnRows(testutil.MockRows("id", "full_name").AddRow("E1", "Иванов"))
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("id", "full_name"))

	first, err := svc.Directory(context.Background())
	require.NoError(t, err)

	// No further expectations: the second call must not touch the database.
	second, err := svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	mock.ExpectationsWereMet(t)
}

func TestDirectorySkipsMissingRelation(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillReturnError(&pq.Error{Code: "42P01", Message: "relation does not exist"})
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("id", "full_name").AddRow("E1", "Иванов"))

	list, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "E1", list[0].ID)
}

func TestCreateInvalidatesDirectory(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillReturnRows(testutil.MockRows("id", "full_name").AddRow("E1", "Иванов"))
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("id", "full_name"))

	_, err := svc.Directory(context.Background())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "employees"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	emp, err := svc.Create(context.Background(), &CreateInput{
		FullName: "Новый Сотрудник",
		Phone:    "0555 44 33 22",
		Role:     "Доктор",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, emp.ID)
	require.NotNil(t, emp.Phone)
	assert.Equal(t, "555443322", *emp.Phone)
	require.NotNil(t, emp.Role)
	assert.Equal(t, "doctor", *emp.Role)

	// The next directory read goes back to the database.
	mock.ExpectQuery(`SELECT * FROM "employees"`).
		WillReturnRows(testutil.MockRows("id", "full_name").
			AddRow("E1", "Иванов").
			AddRow(emp.ID, "Новый Сотрудник"))
	mock.ExpectQuery(`SELECT * FROM "Сотрудники CRM"`).
		WillReturnRows(testutil.MockRows("id", "full_name"))

	list, err := svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	mock.ExpectationsWereMet(t)
}

func TestDeleteMissingEmployee(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectExec(`DELETE FROM "employees"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), "no-such")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
