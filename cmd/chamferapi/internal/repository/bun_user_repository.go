package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// UserColumns are the user fields open to list search.
var UserColumns = Columns{
	"id":       "id",
	"email":    "email",
	"username": "username",
	"joinedAt": "joined_at",
}

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// Create inserts a new user after checking email and username are free.
func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkUserUnique(ctx, tx, user); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}

// Update rewrites every column of an existing user, re-checking uniqueness.
func (r *BunUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if !user.Deleted {
			if err := checkUserUnique(ctx, tx, user); err != nil {
				return err
			}
		}
		result, err := tx.NewUpdate().
			Model(user).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return notFound("user", user.ID)
		}
		return nil
	})
}

// GetActiveByID retrieves a non-deleted user by ID
func (r *BunUserRepository) GetActiveByID(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Where("deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("get user by ID: %w", err)
	}
	return user, nil
}

// GetActiveByIDs retrieves the non-deleted users among ids. Missing IDs are skipped.
func (r *BunUserRepository) GetActiveByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(ids)).
		Where("deleted = ?", false).
		Order("joined_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users by IDs: %w", err)
	}
	return users, nil
}

// FindActiveByLogin finds a non-deleted user of provider matching email or username.
// Empty arguments never match.
func (r *BunUserRepository) FindActiveByLogin(ctx context.Context, provider models.Provider, email, username string) (*models.User, error) {
	if email == "" && username == "" {
		return nil, notFound("user", "(no login)")
	}

	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("deleted = ?", false).
		Where("provider = ?", provider).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			if email != "" {
				q = q.WhereOr("email = ?", email)
			}
			if username != "" {
				q = q.WhereOr("username = ?", username)
			}
			return q
		}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("user with login", firstNonEmpty(email, username))
		}
		return nil, fmt.Errorf("find user by login: %w", err)
	}
	return user, nil
}

// ListActive returns one page of non-deleted users and the total match count.
func (r *BunUserRepository) ListActive(ctx context.Context, search ListSearch, paging *Paging) ([]models.User, int, error) {
	users := []models.User{}
	q := r.db.NewSelect().
		Model(&users).
		Where("deleted = ?", false)

	q, err := applySearch(q, UserColumns, search)
	if err != nil {
		return nil, 0, err
	}
	q = applyPaging(q, paging)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// checkUserUnique reports which of email and username another row of the same provider already holds.
func checkUserUnique(ctx context.Context, db bun.IDB, user *models.User) error {
	var clashing []models.User
	q := db.NewSelect().
		Model(&clashing).
		Column("id", "email", "username").
		Where("provider = ?", user.Provider).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("email = ?", user.Email).WhereOr("username = ?", user.Username)
		})
	if user.ID != "" {
		q = q.Where("id != ?", user.ID)
	}
	if err := q.Scan(ctx); err != nil {
		return fmt.Errorf("check user uniqueness: %w", err)
	}
	if len(clashing) == 0 {
		return nil
	}

	dup := &DuplicateError{}
	var emailTaken, usernameTaken bool
	for _, other := range clashing {
		emailTaken = emailTaken || other.Email == user.Email
		usernameTaken = usernameTaken || other.Username == user.Username
	}
	if emailTaken {
		dup.Collisions = append(dup.Collisions, Collision{Target: "email", Value: user.Email})
	}
	if usernameTaken {
		dup.Collisions = append(dup.Collisions, Collision{Target: "username", Value: user.Username})
	}
	return dup
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
