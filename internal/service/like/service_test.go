package like

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type likeKey struct {
	userID   string
	itemID   string
	itemType domain.ItemType
}

// likeStoreMock mirrors the storage contract: at most one row per
// (user, item, item type), with the losing concurrent insert reported as
// ErrDuplicate.
type likeStoreMock struct {
	mu     sync.Mutex
	byKey  map[likeKey]*domain.Like
	byID   map[string]likeKey
	create func(ctx context.Context, like *domain.Like) error
	get    func(ctx context.Context, userID, itemID string, itemType domain.ItemType) (*domain.Like, error)
}

func newLikeStoreMock() *likeStoreMock {
	return &likeStoreMock{
		byKey: make(map[likeKey]*domain.Like),
		byID:  make(map[string]likeKey),
	}
}

func (m *likeStoreMock) CreateLike(ctx context.Context, like *domain.Like) error {
	if m.create != nil {
		return m.create(ctx, like)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey{like.UserID, like.ItemID, like.ItemType}
	if _, exists := m.byKey[key]; exists {
		return repository.ErrDuplicate
	}
	clone := *like
	m.byKey[key] = &clone
	m.byID[like.ID] = key
	return nil
}

func (m *likeStoreMock) DeleteLike(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byKey, key)
	return nil
}

func (m *likeStoreMock) GetLike(ctx context.Context, userID, itemID string, itemType domain.ItemType) (*domain.Like, error) {
	if m.get != nil {
		return m.get(ctx, userID, itemID, itemType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.byKey[likeKey{userID, itemID, itemType}]; ok {
		clone := *l
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (m *likeStoreMock) ListLikes(_ context.Context, itemID string, itemType domain.ItemType) ([]domain.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var likes []domain.Like
	for key, l := range m.byKey {
		if key.itemID == itemID && key.itemType == itemType {
			likes = append(likes, *l)
		}
	}
	return likes, nil
}

func (m *likeStoreMock) ListLikesByUser(_ context.Context, userID string, itemType domain.ItemType) ([]domain.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var likes []domain.Like
	for key, l := range m.byKey {
		if key.userID == userID && key.itemType == itemType {
			likes = append(likes, *l)
		}
	}
	return likes, nil
}

func (m *likeStoreMock) CountLikes(_ context.Context, itemID string, itemType domain.ItemType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for key := range m.byKey {
		if key.itemID == itemID && key.itemType == itemType {
			count++
		}
	}
	return count, nil
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

type commentRepoMock struct {
	comments map[string]*domain.Comment
}

func (m commentRepoMock) CreateComment(context.Context, *domain.Comment) error { return nil }

func (m commentRepoMock) GetCommentByID(_ context.Context, id string) (*domain.Comment, error) {
	if c, ok := m.comments[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (m commentRepoMock) ListCommentsByQuestion(context.Context, string) ([]domain.Comment, error) {
	return nil, nil
}

func (m commentRepoMock) ListCommentsByAuthor(context.Context, string) ([]domain.Comment, error) {
	return nil, nil
}

func (m commentRepoMock) UpdateComment(context.Context, *domain.Comment) error { return nil }
func (m commentRepoMock) DeleteComment(context.Context, string) error          { return nil }

type userRepoMock struct {
	users map[string]*domain.User
}

func (m userRepoMock) CreateUser(context.Context, *domain.User) error { return nil }

func (m userRepoMock) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (m userRepoMock) GetUserByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (m userRepoMock) GetUserByUsername(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (m userRepoMock) UpdateUserProfile(context.Context, *domain.User) error { return nil }
func (m userRepoMock) UpdateUserPassword(context.Context, string, []byte) error {
	return nil
}

func fixtures() (questionRepoMock, commentRepoMock, userRepoMock) {
	questions := questionRepoMock{questions: map[string]*domain.Question{
		"q1": {ID: "q1", AuthorID: "author-1", Title: "How do goroutines work?", Body: "Details please."},
	}}
	comments := commentRepoMock{comments: map[string]*domain.Comment{
		"c1": {ID: "c1", QuestionID: "q1", AuthorID: "author-2", Body: "They are cheap."},
	}}
	users := userRepoMock{users: map[string]*domain.User{
		"author-1": {ID: "author-1", Username: "alice"},
		"author-2": {ID: "author-2", Username: "bob"},
		"liker-1":  {ID: "liker-1", Username: "carol"},
	}}
	return questions, comments, users
}

func newService(likes repository.LikeRepository) Service {
	questions, comments, users := fixtures()
	return New(likes, questions, comments, users, nil, newLogger())
}

func TestToggleLikeThenUnlike(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)
	ctx := context.Background()

	result, err := svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !result.Liked || result.TotalLikes != 1 {
		t.Fatalf("expected liked with total 1, got %+v", result)
	}

	result, err = svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if result.Liked || result.TotalLikes != 0 {
		t.Fatalf("expected unliked with total 0, got %+v", result)
	}
}

func TestToggleCommentRoutesThroughParentQuestion(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)

	result, err := svc.Toggle(context.Background(), "liker-1", "c1", domain.ItemTypeComment)
	if err != nil {
		t.Fatalf("toggle comment: %v", err)
	}
	if !result.Liked || result.TotalLikes != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestToggleRejectsInvalidItemType(t *testing.T) {
	svc := newService(newLikeStoreMock())

	_, err := svc.Toggle(context.Background(), "liker-1", "q1", "answer")
	if err == nil || err.Error() != "itemType must be 'question' or 'comment'" {
		t.Fatalf("expected item type rejection, got %v", err)
	}
}

func TestToggleRejectsMissingItem(t *testing.T) {
	svc := newService(newLikeStoreMock())

	_, err := svc.Toggle(context.Background(), "liker-1", "missing", domain.ItemTypeQuestion)
	if err == nil || err.Error() != "question not found" {
		t.Fatalf("expected question not found, got %v", err)
	}
	_, err = svc.Toggle(context.Background(), "liker-1", "missing", domain.ItemTypeComment)
	if err == nil || err.Error() != "comment not found" {
		t.Fatalf("expected comment not found, got %v", err)
	}
}

func TestToggleAbsorbsDuplicateInsert(t *testing.T) {
	// Simulate the losing side of a concurrent double-insert: the row was
	// absent at read time but present at insert time.
	store := newLikeStoreMock()
	store.get = func(context.Context, string, string, domain.ItemType) (*domain.Like, error) {
		return nil, repository.ErrNotFound
	}
	store.create = func(context.Context, *domain.Like) error {
		return repository.ErrDuplicate
	}
	svc := newService(store)

	result, err := svc.Toggle(context.Background(), "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("duplicate insert must be absorbed, got %v", err)
	}
	if !result.Liked {
		t.Fatalf("expected liked state after absorbed duplicate")
	}
}

func TestToggleToleratesConcurrentDelete(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion); err != nil {
		t.Fatalf("seed like: %v", err)
	}
	// The row vanishes between the read and the delete.
	existing, err := store.GetLike(ctx, "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("get like: %v", err)
	}
	store.get = func(context.Context, string, string, domain.ItemType) (*domain.Like, error) {
		clone := *existing
		return &clone, nil
	}
	if err := store.DeleteLike(ctx, existing.ID); err != nil {
		t.Fatalf("delete like: %v", err)
	}

	result, err := svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("toggle over vanished row: %v", err)
	}
	if result.Liked {
		t.Fatalf("expected unliked outcome, got %+v", result)
	}
}

func TestConcurrentTogglesNeverExceedOneRow(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := store.CountLikes(ctx, "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if count != 0 && count != 1 {
		t.Fatalf("uniqueness violated: %d rows for one (user, item, type) key", count)
	}
}

func TestCheckIfLiked(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)
	ctx := context.Background()

	liked, err := svc.CheckIfLiked(ctx, "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if liked {
		t.Fatalf("expected not liked before toggle")
	}

	if _, err := svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	liked, err = svc.CheckIfLiked(ctx, "liker-1", "q1", domain.ItemTypeQuestion)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked after toggle")
	}

	if _, err := svc.CheckIfLiked(ctx, "liker-1", "q1", "answer"); err == nil {
		t.Fatalf("expected invalid item type rejection")
	}
}

func TestQuestionLikesResolvesUsernames(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "liker-1", "q1", domain.ItemTypeQuestion); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	likes, err := svc.QuestionLikes(ctx, "q1")
	if err != nil {
		t.Fatalf("question likes: %v", err)
	}
	if likes.TotalLikes != 1 || len(likes.Likes) != 1 {
		t.Fatalf("unexpected roster %+v", likes)
	}
	if likes.Likes[0].Username != "carol" {
		t.Fatalf("expected username resolved, got %q", likes.Likes[0].Username)
	}

	if _, err := svc.QuestionLikes(ctx, "missing"); err == nil || err.Error() != "question not found" {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestUserLikedQuestionsSkipsDeletedAndTruncatesBody(t *testing.T) {
	longBody := strings.Repeat("x", previewLength+40)
	questions := questionRepoMock{questions: map[string]*domain.Question{
		"q1": {ID: "q1", AuthorID: "author-1", Title: "Long one", Body: longBody},
	}}
	_, comments, users := fixtures()
	store := newLikeStoreMock()
	svc := New(store, questions, comments, users, nil, newLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	seed := []domain.Like{
		{ID: "l1", UserID: "liker-1", ItemID: "q1", ItemType: domain.ItemTypeQuestion, CreatedAt: now},
		{ID: "l2", UserID: "liker-1", ItemID: "gone", ItemType: domain.ItemTypeQuestion, CreatedAt: now},
	}
	for i := range seed {
		if err := store.CreateLike(ctx, &seed[i]); err != nil {
			t.Fatalf("seed like: %v", err)
		}
	}

	liked, err := svc.UserLikedQuestions(ctx, "liker-1")
	if err != nil {
		t.Fatalf("user liked questions: %v", err)
	}
	if len(liked) != 1 {
		t.Fatalf("expected deleted question skipped, got %d entries", len(liked))
	}
	if len(liked[0].BodyPreview) != previewLength {
		t.Fatalf("expected %d-char preview, got %d", previewLength, len(liked[0].BodyPreview))
	}
	if liked[0].AuthorUsername != "alice" {
		t.Fatalf("expected author username resolved, got %q", liked[0].AuthorUsername)
	}
}

func TestUserLikedCommentsResolvesQuestionTitle(t *testing.T) {
	store := newLikeStoreMock()
	svc := newService(store)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "liker-1", "c1", domain.ItemTypeComment); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	liked, err := svc.UserLikedComments(ctx, "liker-1")
	if err != nil {
		t.Fatalf("user liked comments: %v", err)
	}
	if len(liked) != 1 {
		t.Fatalf("expected one entry, got %d", len(liked))
	}
	if liked[0].QuestionID != "q1" || liked[0].QuestionTitle != "How do goroutines work?" {
		t.Fatalf("expected question context resolved, got %+v", liked[0])
	}
	if liked[0].AuthorUsername != "bob" {
		t.Fatalf("expected comment author resolved, got %q", liked[0].AuthorUsername)
	}
}
