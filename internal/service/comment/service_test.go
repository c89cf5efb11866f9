package comment

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type commentRepoMock struct {
	comments map[string]*domain.Comment
}

func newCommentRepoMock() *commentRepoMock {
	return &commentRepoMock{comments: make(map[string]*domain.Comment)}
}

func (m *commentRepoMock) CreateComment(_ context.Context, c *domain.Comment) error {
	clone := *c
	m.comments[c.ID] = &clone
	return nil
}

func (m *commentRepoMock) GetCommentByID(_ context.Context, id string) (*domain.Comment, error) {
	if c, ok := m.comments[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (m *commentRepoMock) ListCommentsByQuestion(_ context.Context, questionID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.comments {
		if c.QuestionID == questionID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *commentRepoMock) ListCommentsByAuthor(_ context.Context, authorID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range m.comments {
		if c.AuthorID == authorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *commentRepoMock) UpdateComment(_ context.Context, c *domain.Comment) error {
	if _, ok := m.comments[c.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *c
	m.comments[c.ID] = &clone
	return nil
}

func (m *commentRepoMock) DeleteComment(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type questionRepoMock struct {
	questions map[string]*domain.Question
}

func (m questionRepoMock) CreateQuestion(context.Context, *domain.Question) error { return nil }

func (m questionRepoMock) GetQuestionByID(_ context.Context, id string) (*domain.Question, error) {
	if q, ok := m.questions[id]; ok {
		clone := *q
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (m questionRepoMock) ListQuestions(context.Context) ([]domain.Question, error) {
	return nil, nil
}

func (m questionRepoMock) ListQuestionsByAuthor(context.Context, string) ([]domain.Question, error) {
	return nil, nil
}

func (m questionRepoMock) UpdateQuestion(context.Context, *domain.Question) error { return nil }
func (m questionRepoMock) DeleteQuestion(context.Context, string) error           { return nil }

func questionFixture() questionRepoMock {
	return questionRepoMock{questions: map[string]*domain.Question{
		"q1": {ID: "q1", AuthorID: "author-1", Title: "How do channels close?", Body: "Body"},
	}}
}

func seedComment(repo *commentRepoMock, id, questionID, authorID string) *domain.Comment {
	now := time.Now().UTC()
	c := &domain.Comment{ID: id, QuestionID: questionID, AuthorID: authorID, Body: "Body", CreatedAt: now, UpdatedAt: now}
	repo.comments[id] = c
	return c
}

func TestCreateRequiresExistingQuestion(t *testing.T) {
	svc := New(newCommentRepoMock(), questionFixture(), nil, newLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, "author-2", CreateInput{QuestionID: "missing", Body: "hello"})
	if err == nil || err.Error() != "question not found" {
		t.Fatalf("expected question not found, got %v", err)
	}

	if _, err := svc.Create(ctx, "author-2", CreateInput{QuestionID: "q1", Body: "  "}); err == nil || err.Error() != "body is required" {
		t.Fatalf("expected body rejection, got %v", err)
	}
}

func TestCreatePersistsComment(t *testing.T) {
	repo := newCommentRepoMock()
	svc := New(repo, questionFixture(), nil, newLogger())

	c, err := svc.Create(context.Background(), "author-2", CreateInput{QuestionID: "q1", Body: " hello "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.QuestionID != "q1" || c.AuthorID != "author-2" || c.Body != "hello" {
		t.Fatalf("unexpected comment %+v", c)
	}
	if _, ok := repo.comments[c.ID]; !ok {
		t.Fatalf("comment not persisted")
	}
}

func TestGetResolvesQuestionTitle(t *testing.T) {
	repo := newCommentRepoMock()
	seedComment(repo, "c1", "q1", "author-2")
	svc := New(repo, questionFixture(), nil, newLogger())

	detail, err := svc.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.QuestionTitle != "How do channels close?" {
		t.Fatalf("expected question title, got %q", detail.QuestionTitle)
	}
}

func TestListByQuestionValidatesQuestion(t *testing.T) {
	repo := newCommentRepoMock()
	seedComment(repo, "c1", "q1", "author-2")
	svc := New(repo, questionFixture(), nil, newLogger())

	comments, err := svc.ListByQuestion(context.Background(), "q1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(comments))
	}

	if _, err := svc.ListByQuestion(context.Background(), "missing"); err == nil || err.Error() != "question not found" {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	repo := newCommentRepoMock()
	seedComment(repo, "c1", "q1", "author-2")
	svc := New(repo, questionFixture(), nil, newLogger())
	ctx := context.Background()

	if _, err := svc.Update(ctx, "intruder", "c1", "hijacked"); err == nil || err.Error() != "not authorized to update this comment" {
		t.Fatalf("expected ownership rejection, got %v", err)
	}

	c, err := svc.Update(ctx, "author-2", "c1", "edited")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if c.Body != "edited" {
		t.Fatalf("expected edited body, got %q", c.Body)
	}
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newCommentRepoMock()
	seedComment(repo, "c1", "q1", "author-2")
	svc := New(repo, questionFixture(), nil, newLogger())
	ctx := context.Background()

	if err := svc.Delete(ctx, "intruder", "c1"); err == nil || err.Error() != "not authorized to delete this comment" {
		t.Fatalf("expected ownership rejection, got %v", err)
	}
	if err := svc.Delete(ctx, "author-2", "c1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, "author-2", "c1"); err == nil || err.Error() != "comment not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}
