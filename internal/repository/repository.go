package repository

import (
	"context"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
)

// UserRepository persists forum accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, user *domain.User) error
	UpdateUserPassword(ctx context.Context, id string, passwordHash []byte) error
}

// QuestionRepository persists questions.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *domain.Question) error
	GetQuestionByID(ctx context.Context, id string) (*domain.Question, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	ListQuestionsByAuthor(ctx context.Context, authorID string) ([]domain.Question, error)
	UpdateQuestion(ctx context.Context, question *domain.Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetCommentByID(ctx context.Context, id string) (*domain.Comment, error)
	ListCommentsByQuestion(ctx context.Context, questionID string) ([]domain.Comment, error)
	ListCommentsByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

// LikeRepository persists the like ledger. CreateLike must surface
// ErrDuplicate when the (user, item, item type) key already holds a row.
type LikeRepository interface {
	CreateLike(ctx context.Context, like *domain.Like) error
	DeleteLike(ctx context.Context, id string) error
	GetLike(ctx context.Context, userID, itemID string, itemType domain.ItemType) (*domain.Like, error)
	ListLikes(ctx context.Context, itemID string, itemType domain.ItemType) ([]domain.Like, error)
	ListLikesByUser(ctx context.Context, userID string, itemType domain.ItemType) ([]domain.Like, error)
	CountLikes(ctx context.Context, itemID string, itemType domain.ItemType) (int, error)
}
