// Package question implements question CRUD with author-only mutation.
package question

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/apperr"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
)

// Service handles question workflows.
type Service struct {
	questions repository.QuestionRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

// New constructs a Service.
func New(questions repository.QuestionRepository, users repository.UserRepository, logger *slog.Logger) Service {
	return Service{questions: questions, users: users, logger: logger}
}

// CreateInput carries a new question's fields.
type CreateInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdateInput carries mutable question fields; empty fields are kept.
type UpdateInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Create stores a question authored by the caller.
func (s Service) Create(ctx context.Context, authorID string, input CreateInput) (*domain.Question, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	if input.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if input.Body == "" {
		return nil, apperr.BadRequest("body is required")
	}

	q := &domain.Question{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}
	q.UpdatedAt = q.CreatedAt
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("question created", "question_id", q.ID, "author_id", authorID)
	return q, nil
}

// List returns every question.
func (s Service) List(ctx context.Context) ([]domain.Question, error) {
	return s.questions.ListQuestions(ctx)
}

// Get returns one question with the author username resolved.
func (s Service) Get(ctx context.Context, id string) (*domain.QuestionDetail, error) {
	q, err := s.questions.GetQuestionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}
	detail := &domain.QuestionDetail{Question: *q}
	if author, err := s.users.GetUserByID(ctx, q.AuthorID); err == nil {
		detail.AuthorUsername = author.Username
	}
	return detail, nil
}

// ListByAuthor returns questions written by one user.
func (s Service) ListByAuthor(ctx context.Context, authorID string) ([]domain.Question, error) {
	return s.questions.ListQuestionsByAuthor(ctx, authorID)
}

// Update mutates a question after an ownership check against the immutable
// author reference.
func (s Service) Update(ctx context.Context, callerID, questionID string, input UpdateInput) (*domain.Question, error) {
	q, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}
	if q.AuthorID != callerID {
		return nil, apperr.Forbidden("not authorized to update this question")
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		q.Title = title
	}
	if body := strings.TrimSpace(input.Body); body != "" {
		q.Body = body
	}
	if err := s.questions.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("question updated", "question_id", questionID, "author_id", callerID)
	return q, nil
}

// Delete removes a question after an ownership check.
func (s Service) Delete(ctx context.Context, callerID, questionID string) error {
	q, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("question not found")
		}
		return err
	}
	if q.AuthorID != callerID {
		return apperr.Forbidden("not authorized to delete this question")
	}
	if err := s.questions.DeleteQuestion(ctx, questionID); err != nil {
		return err
	}
	s.logger.Info("question deleted", "question_id", questionID, "author_id", callerID)
	return nil
}
