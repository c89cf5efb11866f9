// Package like implements the like ledger: a constraint-backed toggle plus
// read-only aggregate projections.
package like

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/apperr"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/ws"
)

const previewLength = 100

// Service handles like workflows.
type Service struct {
	likes     repository.LikeRepository
	questions repository.QuestionRepository
	comments  repository.CommentRepository
	users     repository.UserRepository
	hub       *ws.Hub
	logger    *slog.Logger
}

// New constructs a Service. hub may be nil in tests.
func New(likes repository.LikeRepository, questions repository.QuestionRepository, comments repository.CommentRepository, users repository.UserRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{likes: likes, questions: questions, comments: comments, users: users, hub: hub, logger: logger}
}

// ToggleResult reports the state after a toggle transition.
type ToggleResult struct {
	Liked      bool `json:"liked"`
	TotalLikes int  `json:"totalLikes"`
}

// Toggle flips the like state for (userID, itemID, itemType). The storage
// uniqueness constraint is the serialization point: when two concurrent
// toggles both observe "absent", the losing insert surfaces ErrDuplicate and
// is absorbed as "already liked" instead of corrupting the at-most-one
// invariant.
func (s Service) Toggle(ctx context.Context, userID, itemID string, itemType domain.ItemType) (ToggleResult, error) {
	questionID, err := s.resolveItem(ctx, itemID, itemType)
	if err != nil {
		return ToggleResult{}, err
	}

	liked := false
	existing, err := s.likes.GetLike(ctx, userID, itemID, itemType)
	switch {
	case err == nil:
		// A concurrent toggle may have removed the row already; absence
		// still lands in the unliked state this call wants.
		if err := s.likes.DeleteLike(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return ToggleResult{}, err
		}
	case errors.Is(err, repository.ErrNotFound):
		like := &domain.Like{
			ID:        uuid.NewString(),
			UserID:    userID,
			ItemID:    itemID,
			ItemType:  itemType,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.likes.CreateLike(ctx, like); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return ToggleResult{}, err
			}
			s.logger.Info("duplicate like insert absorbed", "user_id", userID, "item_id", itemID, "item_type", itemType)
		}
		liked = true
	default:
		return ToggleResult{}, err
	}

	total, err := s.likes.CountLikes(ctx, itemID, itemType)
	if err != nil {
		return ToggleResult{}, err
	}

	eventType := "unlike"
	if liked {
		eventType = "like"
	}
	s.hub.Publish(ws.Event{
		Type:       eventType,
		QuestionID: questionID,
		ItemID:     itemID,
		ItemType:   string(itemType),
		UserID:     userID,
		TotalLikes: total,
	})
	return ToggleResult{Liked: liked, TotalLikes: total}, nil
}

// CheckIfLiked reports whether the exact key currently holds a like. No
// ordering guarantee is made relative to an in-flight toggle.
func (s Service) CheckIfLiked(ctx context.Context, userID, itemID string, itemType domain.ItemType) (bool, error) {
	if !itemType.Valid() {
		return false, apperr.BadRequest("itemType must be 'question' or 'comment'")
	}
	_, err := s.likes.GetLike(ctx, userID, itemID, itemType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LikerView names one user who liked an item.
type LikerView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ItemLikes aggregates the like state of one item.
type ItemLikes struct {
	TotalLikes int         `json:"totalLikes"`
	Likes      []LikerView `json:"likes"`
}

// QuestionLikes returns the like roster for a question.
func (s Service) QuestionLikes(ctx context.Context, questionID string) (*ItemLikes, error) {
	if _, err := s.questions.GetQuestionByID(ctx, questionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}
	return s.itemLikes(ctx, questionID, domain.ItemTypeQuestion)
}

// CommentLikes returns the like roster for a comment.
func (s Service) CommentLikes(ctx context.Context, commentID string) (*ItemLikes, error) {
	if _, err := s.comments.GetCommentByID(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, err
	}
	return s.itemLikes(ctx, commentID, domain.ItemTypeComment)
}

func (s Service) itemLikes(ctx context.Context, itemID string, itemType domain.ItemType) (*ItemLikes, error) {
	likes, err := s.likes.ListLikes(ctx, itemID, itemType)
	if err != nil {
		return nil, err
	}
	result := &ItemLikes{TotalLikes: len(likes), Likes: make([]LikerView, 0, len(likes))}
	for _, l := range likes {
		view := LikerView{ID: l.ID, UserID: l.UserID, CreatedAt: l.CreatedAt}
		if u, err := s.users.GetUserByID(ctx, l.UserID); err == nil {
			view.Username = u.Username
		}
		result.Likes = append(result.Likes, view)
	}
	return result, nil
}

// LikedQuestion is one entry in a user's liked-question list.
type LikedQuestion struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	BodyPreview    string    `json:"body"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	LikedAt        time.Time `json:"likedAt"`
}

// UserLikedQuestions lists the questions a user has liked, newest like first.
// Likes whose question has since been deleted are skipped.
func (s Service) UserLikedQuestions(ctx context.Context, userID string) ([]LikedQuestion, error) {
	likes, err := s.likes.ListLikesByUser(ctx, userID, domain.ItemTypeQuestion)
	if err != nil {
		return nil, err
	}
	results := make([]LikedQuestion, 0, len(likes))
	for _, l := range likes {
		q, err := s.questions.GetQuestionByID(ctx, l.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		entry := LikedQuestion{
			ID:          q.ID,
			Title:       q.Title,
			BodyPreview: preview(q.Body),
			LikedAt:     l.CreatedAt,
		}
		if u, err := s.users.GetUserByID(ctx, q.AuthorID); err == nil {
			entry.AuthorUsername = u.Username
		}
		results = append(results, entry)
	}
	return results, nil
}

// LikedComment is one entry in a user's liked-comment list.
type LikedComment struct {
	ID             string    `json:"id"`
	BodyPreview    string    `json:"body"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	QuestionID     string    `json:"questionId"`
	QuestionTitle  string    `json:"questionTitle,omitempty"`
	LikedAt        time.Time `json:"likedAt"`
}

// UserLikedComments lists the comments a user has liked, newest like first.
// Likes whose comment has since been deleted are skipped.
func (s Service) UserLikedComments(ctx context.Context, userID string) ([]LikedComment, error) {
	likes, err := s.likes.ListLikesByUser(ctx, userID, domain.ItemTypeComment)
	if err != nil {
		return nil, err
	}
	results := make([]LikedComment, 0, len(likes))
	for _, l := range likes {
		c, err := s.comments.GetCommentByID(ctx, l.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		entry := LikedComment{
			ID:          c.ID,
			BodyPreview: preview(c.Body),
			QuestionID:  c.QuestionID,
			LikedAt:     l.CreatedAt,
		}
		if u, err := s.users.GetUserByID(ctx, c.AuthorID); err == nil {
			entry.AuthorUsername = u.Username
		}
		if q, err := s.questions.GetQuestionByID(ctx, c.QuestionID); err == nil {
			entry.QuestionTitle = q.Title
		}
		results = append(results, entry)
	}
	return results, nil
}

// resolveItem validates itemType and item existence, returning the question
// id the item belongs to (the item itself for questions) for event routing.
func (s Service) resolveItem(ctx context.Context, itemID string, itemType domain.ItemType) (string, error) {
	switch itemType {
	case domain.ItemTypeQuestion:
		if _, err := s.questions.GetQuestionByID(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", apperr.NotFound("question not found")
			}
			return "", err
		}
		return itemID, nil
	case domain.ItemTypeComment:
		c, err := s.comments.GetCommentByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", apperr.NotFound("comment not found")
			}
			return "", err
		}
		return c.QuestionID, nil
	default:
		return "", apperr.BadRequest("itemType must be 'question' or 'comment'")
	}
}

func preview(body string) string {
	if len(body) > previewLength {
		return body[:previewLength]
	}
	return body
}
