package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) Store {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO usage_log (user_id, request_id, model, estimated_cost, input_tokens)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		entry.UserID, entry.RequestID, entry.Model, entry.EstimatedCost, entry.InputTokens,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append usage entry: %w", err)
	}

	return nil
}

func (s *PostgresStore) EntriesSince(ctx context.Context, userID string, since time.Time) ([]Entry, error) {
	query := `
		SELECT id, user_id, request_id, model, estimated_cost, input_tokens, created_at
		FROM usage_log
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID, &e.UserID, &e.RequestID, &e.Model,
			&e.EstimatedCost, &e.InputTokens, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage entries: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) UsersOverCost(ctx context.Context, since time.Time, threshold float64) ([]UserCost, error) {
	query := `
		SELECT user_id, SUM(estimated_cost)
		FROM usage_log
		WHERE created_at >= $1
		GROUP BY user_id
		HAVING SUM(estimated_cost) > $2
		ORDER BY SUM(estimated_cost) DESC
	`
	rows, err := s.db.Query(ctx, query, since, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query user costs: %w", err)
	}
	defer rows.Close()

	var users []UserCost
	for rows.Next() {
		var u UserCost
		if err := rows.Scan(&u.UserID, &u.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan user cost: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user costs: %w", err)
	}

	return users, nil
}
