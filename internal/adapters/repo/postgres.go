package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id, month, year, created_at, status`

type PostgresRequestStore struct {
	db *pgxpool.Pool
}

func NewPostgresRequestStore(db *pgxpool.Pool) *PostgresRequestStore {
	return &PostgresRequestStore{db: db}
}

func (r *PostgresRequestStore) Create(ctx context.Context, month string, year int) (*domain.ConsultationRequest, error) {
	query := `
		INSERT INTO consultation_requests (month, year, status)
		VALUES ($1, $2, $3)
		RETURNING ` + selectColumns

	req, err := scanRequest(r.db.QueryRow(ctx, query, month, year, domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create consultation request: %w", err)
	}
	return req, nil
}

func (r *PostgresRequestStore) Get(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	query := `SELECT ` + selectColumns + ` FROM consultation_requests WHERE id = $1`

	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get consultation request %d: %w", id, err)
	}
	return req, nil
}

func (r *PostgresRequestStore) List(ctx context.Context) ([]*domain.ConsultationRequest, error) {
	query := `SELECT ` + selectColumns + ` FROM consultation_requests ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultation requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*domain.ConsultationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate consultation requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus locks the row, checks the transition and writes the new status.
// An id with no row is a no-op.
func (r *PostgresRequestStore) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	if !status.IsValid() {
		return domain.NewInvalidStatusError(status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + selectColumns + ` FROM consultation_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to lock consultation request %d: %w", id, err)
	}

	if err := req.TransitionTo(status); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE consultation_requests SET status = $1 WHERE id = $2`, req.Status, id); err != nil {
		return fmt.Errorf("failed to update consultation request %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanRequest(row pgx.Row) (*domain.ConsultationRequest, error) {
	var (
		req    domain.ConsultationRequest
		status string
	)
	if err := row.Scan(&req.ID, &req.Month, &req.Year, &req.Timestamp, &status); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	req.Timestamp = req.Timestamp.UTC()
	return &req, nil
}
