package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/expenses/repository"
	"github.com/clinika/clinika-backend/internal/storage"
	"github.com/clinika/clinika-backend/pkg/testutil"
)

func newService(t *testing.T) (*ExpenseService, *storage.FileStore, *testutil.MockDB) {
	t.Helper()
	mock := testutil.NewMockDB(t)

	files, err := storage.NewFileStore(t.TempDir(), "/uploads", mock.Logger)
	require.NoError(t, err)

	svc := NewExpenseService(repository.NewExpenseRepository(mock.DB), files, audit.Nop{}, mock.Logger)
	return svc, files, mock
}

func TestCreateAppliesTotalRule(t *testing.T) {
	svc, _, mock := newService(t)

	mock.ExpectQuery("INSERT INTO expenses").
		WithArgs(nil, "Перчатки", "Расходники", 100.0, 50.0, 150.0, nil, nil).
		WillReturnRows(testutil.MockRows("id", "created_at", "updated_at").
			AddRow(int64(7), time.Now(), time.Now()))

	e, err := svc.Create(context.Background(), &Input{
		Name:           "Перчатки",
		Category:       "Расходники",
		CashAmount:     100,
		CashlessAmount: 50,
		TotalAmount:    0,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, 150.0, e.TotalAmount)
	mock.ExpectationsWereMet(t)
}

func TestUpdateTrustsPositiveTotal(t *testing.T) {
	svc, _, mock := newService(t)

	mock.ExpectQuery("UPDATE expenses").
		WithArgs(int64(7), nil, "Аренда", "", 0.0, 0.0, 30000.0, nil).
		WillReturnRows(testutil.MockRows("updated_at").AddRow(time.Now()))

	e, err := svc.Update(context.Background(), 7, &Input{
		Name:        "Аренда",
		TotalAmount: 30000,
	})
	require.NoError(t, err)
	assert.Equal(t, 30000.0, e.TotalAmount)
}

func TestReplacePhotoDeletesOld(t *testing.T) {
	svc, files, mock := newService(t)

	oldName, err := files.Save(strings.NewReader("old"), "old.png")
	require.NoError(t, err)
	oldURL := files.PublicURL(oldName)

	mock.ExpectQuery("UPDATE expenses").
		WillReturnRows(testutil.MockRows("photo").AddRow(oldURL))

	url, err := svc.ReplacePhoto(context.Background(), 7, strings.NewReader("new"), "receipt.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))

	// The replaced file is gone, the new one exists.
	_, err = os.Stat(filepath.Join(files.Dir(), oldName))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(files.Dir(), files.NameFromURL(url)))
	assert.NoError(t, err)
}

func TestDeleteRemovesPhotoBestEffort(t *testing.T) {
	svc, files, mock := newService(t)

	name, err := files.Save(strings.NewReader("x"), "r.png")
	require.NoError(t, err)
	url := files.PublicURL(name)

	mock.ExpectQuery("SELECT id, employee_id, name").
		WillReturnRows(testutil.MockRows(
			"id", "employee_id", "name", "category", "cash_amount", "cashless_amount",
			"total_amount", "comment", "photo", "created_at", "updated_at").
			AddRow(int64(7), nil, "Перчатки", "", 0.0, 0.0, 0.0, nil, url, time.Now(), time.Now()))
	mock.ExpectExec("DELETE FROM expenses").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(context.Background(), 7))

	_, err = os.Stat(filepath.Join(files.Dir(), name))
	assert.True(t, os.IsNotExist(err))
}
