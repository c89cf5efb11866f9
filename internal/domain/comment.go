package domain

import "time"

// Comment is a reply attached to a question. AuthorID is immutable after
// creation and drives ownership checks on update and delete.
type Comment struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	AuthorID   string    `json:"authorId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CommentDetail embeds author and question context for read-side responses.
type CommentDetail struct {
	Comment
	AuthorUsername string `json:"authorUsername,omitempty"`
	QuestionTitle  string `json:"questionTitle,omitempty"`
}
