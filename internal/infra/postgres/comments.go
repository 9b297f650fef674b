package postgres

import (
	"context"
	"fmt"

	"archetype-bot/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CommentStore tracks group comments used for quiz access checks.
type CommentStore struct {
	pool *pgxpool.Pool
}

func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

// SaveComment records a comment. Edits arrive with the same key and are
// ignored; the count matters, not the text history.
func (s *CommentStore) SaveComment(ctx context.Context, comment domain.Comment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO comments (user_id, message_id, chat_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, message_id, chat_id) DO NOTHING
	`, comment.UserID, comment.MessageID, comment.ChatID, comment.Text, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

func (s *CommentStore) CommentCount(ctx context.Context, userID, chatID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM comments WHERE user_id=$1 AND chat_id=$2
	`, userID, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// AccessCheck summarizes whether a user may take another test.
type AccessCheck struct {
	CanTake          bool
	CommentCount     int
	TestCount        int
	RequiredComments int
}

// CanTakeTest allows a retake when the user has left at least as many
// comments as tests already completed.
func (s *CommentStore) CanTakeTest(ctx context.Context, userID, chatID int64) (AccessCheck, error) {
	commentCount, err := s.CommentCount(ctx, userID, chatID)
	if err != nil {
		return AccessCheck{}, err
	}

	var testCount int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT created_at) FROM test_results WHERE user_id=$1
	`, userID).Scan(&testCount)
	if err != nil {
		return AccessCheck{}, fmt.Errorf("count tests: %w", err)
	}

	return AccessCheck{
		CanTake:          commentCount >= testCount,
		CommentCount:     commentCount,
		TestCount:        testCount,
		RequiredComments: testCount,
	}, nil
}

// CommentStats is an aggregate view for the admin console.
type CommentStats struct {
	TotalComments int
	UniqueUsers   int
}

func (s *CommentStore) Stats(ctx context.Context, chatID int64) (CommentStats, error) {
	var stats CommentStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id) FROM comments WHERE chat_id=$1
	`, chatID).Scan(&stats.TotalComments, &stats.UniqueUsers)
	if err != nil {
		return CommentStats{}, fmt.Errorf("comment stats: %w", err)
	}
	return stats, nil
}
