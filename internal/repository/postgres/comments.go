package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
)

const commentColumns = `id, question_id, author_id, body, created_at, updated_at`

// CreateComment inserts a comment.
func (r *Repository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	const query = `INSERT INTO comments (id, question_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`
	_, err := r.pool.Exec(ctx, query, comment.ID, comment.QuestionID, comment.AuthorID, comment.Body, comment.CreatedAt)
	return err
}

// GetCommentByID fetches a single comment.
func (r *Repository) GetCommentByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.QuestionID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCommentsByQuestion returns a question's comments oldest first.
func (r *Repository) ListCommentsByQuestion(ctx context.Context, questionID string) ([]domain.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM comments WHERE question_id = $1 ORDER BY created_at ASC`
	return r.scanComments(ctx, query, questionID)
}

// ListCommentsByAuthor returns comments written by the given user.
func (r *Repository) ListCommentsByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM comments WHERE author_id = $1 ORDER BY created_at DESC`
	return r.scanComments(ctx, query, authorID)
}

func (r *Repository) scanComments(ctx context.Context, query string, args ...any) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateComment mutates the comment body. AuthorID is never updated.
func (r *Repository) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	const query = `UPDATE comments
		SET body = $2, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, comment.ID, comment.Body).Scan(&comment.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// DeleteComment removes a comment.
func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
