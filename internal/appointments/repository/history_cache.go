package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/clinika/clinika-backend/pkg/database"
	"github.com/clinika/clinika-backend/pkg/errors"
)

// CachedHistory is one patient's visit history snapshot.
type CachedHistory struct {
	PatientKey string          `db:"patient_key"`
	Payload    json.RawMessage `db:"payload"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// HistoryCacheRepository persists computed visit histories so repeat lookups
// for the same patient skip the appointment scan. Unlike the in-memory
// caches this one survives restarts; staleness is bounded by the caller's
// max age, not by eviction.
type HistoryCacheRepository struct {
	db *database.DB
}

// NewHistoryCacheRepository creates a new history cache repository
func NewHistoryCacheRepository(db *database.DB) *HistoryCacheRepository {
	return &HistoryCacheRepository{db: db}
}

// Set creates or refreshes a patient's cached history
func (r *HistoryCacheRepository) Set(ctx context.Context, patientKey string, payload json.RawMessage) error {
	query := `
		INSERT INTO patient_history_cache (patient_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (patient_key)
		DO UPDATE SET payload = $2, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, patientKey, payload)
	return err
}

// Get returns a patient's cached history no older than maxAge.
func (r *HistoryCacheRepository) Get(ctx context.Context, patientKey string, maxAge time.Duration) (*CachedHistory, error) {
	var cached CachedHistory
	query := `
		SELECT patient_key, payload, updated_at
		FROM patient_history_cache
		WHERE patient_key = $1 AND updated_at > $2
	`

	cutoff := time.Now().Add(-maxAge)
	if err := r.db.GetContext(ctx, &cached, query, patientKey, cutoff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("cached history")
		}
		return nil, err
	}

	return &cached, nil
}

// Delete drops a patient's cached history
func (r *HistoryCacheRepository) Delete(ctx context.Context, patientKey string) error {
	query := `DELETE FROM patient_history_cache WHERE patient_key = $1`
	_, err := r.db.ExecContext(ctx, query, patientKey)
	return err
}
