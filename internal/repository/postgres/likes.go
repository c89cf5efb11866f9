package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository"
)

const likeColumns = `id, user_id, item_id, item_type, created_at`

// CreateLike inserts a like row. The unique index on
// (user_id, item_id, item_type) makes this the serialization point for
// concurrent toggles: the losing insert comes back as ErrDuplicate.
func (r *Repository) CreateLike(ctx context.Context, like *domain.Like) error {
	const query = `INSERT INTO likes (id, user_id, item_id, item_type, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, like.ID, like.UserID, like.ItemID, like.ItemType, like.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// DeleteLike removes a like by row id.
func (r *Repository) DeleteLike(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetLike looks up the like for an exact (user, item, item type) key.
func (r *Repository) GetLike(ctx context.Context, userID, itemID string, itemType domain.ItemType) (*domain.Like, error) {
	const query = `SELECT ` + likeColumns + ` FROM likes
		WHERE user_id = $1 AND item_id = $2 AND item_type = $3`
	row := r.pool.QueryRow(ctx, query, userID, itemID, itemType)
	var l domain.Like
	if err := row.Scan(&l.ID, &l.UserID, &l.ItemID, &l.ItemType, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ListLikes returns the likes on one item, newest first.
func (r *Repository) ListLikes(ctx context.Context, itemID string, itemType domain.ItemType) ([]domain.Like, error) {
	const query = `SELECT ` + likeColumns + ` FROM likes
		WHERE item_id = $1 AND item_type = $2 ORDER BY created_at DESC`
	return r.scanLikes(ctx, query, itemID, itemType)
}

// ListLikesByUser returns one user's likes of a given item type, newest first.
func (r *Repository) ListLikesByUser(ctx context.Context, userID string, itemType domain.ItemType) ([]domain.Like, error) {
	const query = `SELECT ` + likeColumns + ` FROM likes
		WHERE user_id = $1 AND item_type = $2 ORDER BY created_at DESC`
	return r.scanLikes(ctx, query, userID, itemType)
}

func (r *Repository) scanLikes(ctx context.Context, query string, args ...any) ([]domain.Like, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := make([]domain.Like, 0)
	for rows.Next() {
		var l domain.Like
		if err := rows.Scan(&l.ID, &l.UserID, &l.ItemID, &l.ItemType, &l.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// CountLikes returns the number of likes currently on an item.
func (r *Repository) CountLikes(ctx context.Context, itemID string, itemType domain.ItemType) (int, error) {
	const query = `SELECT COUNT(1) FROM likes WHERE item_id = $1 AND item_type = $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, itemID, itemType).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
