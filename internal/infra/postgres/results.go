package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archetype-bot/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultRepository persists finalized reports and answer logs.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// SaveReport stores one positioned row per ranked category. All rows of a
// report share the same created_at so they can be fetched back as one unit.
func (r *ResultRepository) SaveReport(ctx context.Context, report domain.Report) error {
	for i, entry := range report.Entries {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO test_results (user_id, archetype_name, score, percentage, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, report.UserID, entry.Category, entry.Score, entry.Percentage, i+1, report.CreatedAt)
		if err != nil {
			return fmt.Errorf("save report entry: %w", err)
		}
	}
	return nil
}

// SaveAnswers replaces the user's answer log with the latest attempt.
func (r *ResultRepository) SaveAnswers(ctx context.Context, userID int64, answers []domain.Answer) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM question_answers WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	for _, answer := range answers {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO question_answers (user_id, question_index, answer_value, archetype)
			VALUES ($1, $2, $3, $4)
		`, userID, answer.Position, answer.Value, answer.Category)
		if err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
	}
	return nil
}

// LatestReport fetches the user's most recent finalized report, or
// domain.ErrReportNotFound when the user has never finished a test.
func (r *ResultRepository) LatestReport(ctx context.Context, userID int64) (domain.Report, error) {
	var latest time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT created_at FROM test_results
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Report{}, domain.ErrReportNotFound
	}
	if err != nil {
		return domain.Report{}, fmt.Errorf("latest report timestamp: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT archetype_name, score, percentage FROM test_results
		WHERE user_id=$1 AND created_at=$2
		ORDER BY position ASC
	`, userID, latest)
	if err != nil {
		return domain.Report{}, fmt.Errorf("latest report rows: %w", err)
	}
	defer rows.Close()

	report := domain.Report{UserID: userID, CreatedAt: latest}
	for rows.Next() {
		var entry domain.ReportEntry
		if err := rows.Scan(&entry.Category, &entry.Score, &entry.Percentage); err != nil {
			return domain.Report{}, fmt.Errorf("scan report entry: %w", err)
		}
		report.Entries = append(report.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.Report{}, fmt.Errorf("read report rows: %w", err)
	}
	return report, nil
}

// TestCount reports how many completed tests the user has on record.
func (r *ResultRepository) TestCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT created_at) FROM test_results WHERE user_id=$1
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tests: %w", err)
	}
	return count, nil
}
