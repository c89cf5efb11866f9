package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
)

const questionColumns = `id, author_id, title, body, created_at, updated_at`

// CreateQuestion inserts a question.
func (r *Repository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	const query = `INSERT INTO questions (id, author_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`
	_, err := r.pool.Exec(ctx, query, question.ID, question.AuthorID, question.Title, question.Body, question.CreatedAt)
	return err
}

// GetQuestionByID fetches a single question.
func (r *Repository) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	const query = `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var q domain.Question
	if err := row.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Body, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns all questions, newest first.
func (r *Repository) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	const query = `SELECT ` + questionColumns + ` FROM questions ORDER BY created_at DESC`
	return r.scanQuestions(ctx, query)
}

// ListQuestionsByAuthor returns questions written by the given user.
func (r *Repository) ListQuestionsByAuthor(ctx context.Context, authorID string) ([]domain.Question, error) {
	const query = `SELECT ` + questionColumns + ` FROM questions WHERE author_id = $1 ORDER BY created_at DESC`
	return r.scanQuestions(ctx, query, authorID)
}

func (r *Repository) scanQuestions(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Body, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// UpdateQuestion mutates title and body. AuthorID is never updated.
func (r *Repository) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	const query = `UPDATE questions
		SET title = $2, body = $3, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, question.ID, question.Title, question.Body).Scan(&question.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// DeleteQuestion removes a question; comments cascade at the schema level.
func (r *Repository) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
