package domain

import "time"

// Question is a top-level forum post. AuthorID is immutable after creation
// and drives ownership checks on update and delete.
type Question struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuestionDetail embeds the author username for read-side responses.
type QuestionDetail struct {
	Question
	AuthorUsername string `json:"authorUsername,omitempty"`
}
