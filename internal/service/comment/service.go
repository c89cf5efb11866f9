// Package comment implements comment CRUD with author-only mutation.
package comment

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
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/ws"
)

// Service handles comment workflows.
type Service struct {
	comments  repository.CommentRepository
	questions repository.QuestionRepository
	hub       *ws.Hub
	logger    *slog.Logger
}

// New constructs a Service. hub may be nil in tests.
func New(comments repository.CommentRepository, questions repository.QuestionRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{comments: comments, questions: questions, hub: hub, logger: logger}
}

// CreateInput carries a new comment's fields.
type CreateInput struct {
	QuestionID string `json:"questionId"`
	Body       string `json:"body"`
}

// Create stores a comment on an existing question and announces it to the
// question's activity stream.
func (s Service) Create(ctx context.Context, authorID string, input CreateInput) (*domain.Comment, error) {
	input.Body = strings.TrimSpace(input.Body)
	if input.Body == "" {
		return nil, apperr.BadRequest("body is required")
	}
	if _, err := s.questions.GetQuestionByID(ctx, input.QuestionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}

	c := &domain.Comment{
		ID:         uuid.NewString(),
		QuestionID: input.QuestionID,
		AuthorID:   authorID,
		Body:       input.Body,
		CreatedAt:  time.Now().UTC(),
	}
	c.UpdatedAt = c.CreatedAt
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("comment created", "comment_id", c.ID, "question_id", c.QuestionID, "author_id", authorID)
	s.hub.Publish(ws.Event{
		Type:       "comment",
		QuestionID: c.QuestionID,
		ItemID:     c.ID,
		UserID:     authorID,
	})
	return c, nil
}

// Get returns one comment with author and question context resolved.
func (s Service) Get(ctx context.Context, id string) (*domain.CommentDetail, error) {
	c, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, err
	}
	detail := &domain.CommentDetail{Comment: *c}
	if q, err := s.questions.GetQuestionByID(ctx, c.QuestionID); err == nil {
		detail.QuestionTitle = q.Title
	}
	return detail, nil
}

// ListByQuestion returns the comments on an existing question.
func (s Service) ListByQuestion(ctx context.Context, questionID string) ([]domain.Comment, error) {
	if _, err := s.questions.GetQuestionByID(ctx, questionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}
	return s.comments.ListCommentsByQuestion(ctx, questionID)
}

// ListByAuthor returns comments written by one user.
func (s Service) ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error) {
	return s.comments.ListCommentsByAuthor(ctx, authorID)
}

// Update mutates a comment after an ownership check against the immutable
// author reference.
func (s Service) Update(ctx context.Context, callerID, commentID, body string) (*domain.Comment, error) {
	c, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, err
	}
	if c.AuthorID != callerID {
		return nil, apperr.Forbidden("not authorized to update this comment")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.BadRequest("body is required")
	}
	c.Body = body
	if err := s.comments.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("comment updated", "comment_id", commentID, "author_id", callerID)
	return c, nil
}

// Delete removes a comment after an ownership check.
func (s Service) Delete(ctx context.Context, callerID, commentID string) error {
	c, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("comment not found")
		}
		return err
	}
	if c.AuthorID != callerID {
		return apperr.Forbidden("not authorized to delete this comment")
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", "comment_id", commentID, "author_id", callerID)
	return nil
}
