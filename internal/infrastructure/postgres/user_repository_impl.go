package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dittoaji/user-profile-service/internal/domain/entity"
	"github.com/dittoaji/user-profile-service/internal/domain/repository"
)

const selectColumns = "id, email, name, role, status, avatar, review_count, created_at, updated_at"

// PgxPool is the subset of pgxpool.Pool the repository needs. Keeping it
// narrow lets pgxmock stand in during tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type UserRepository struct {
	pool PgxPool
}

func NewUserRepository(pool PgxPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// listFilter builds the shared filter for the count and data passes of
// FindAll. Search matches name OR email case-insensitively; status and role
// are equality filters applied only when set.
func listFilter(q entity.ListQuery) *sqlBuilder {
	b := &sqlBuilder{}
	if q.Search != "" {
		ph := b.bind("%" + q.Search + "%")
		b.where("(name ILIKE " + ph + " OR email ILIKE " + ph + ")")
	}
	if q.Status != "" {
		b.where("status = " + b.bind(q.Status))
	}
	if q.Role != "" {
		b.where("role = " + b.bind(q.Role))
	}
	return b
}

func (r *UserRepository) FindAll(ctx context.Context, q entity.ListQuery) (*entity.ListUsersResult, error) {
	b := listFilter(q)
	where := b.clause()

	var total int
	countArgs := make([]any, len(b.args))
	copy(countArgs, b.args)
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	// ORDER BY column is resolved through the fixed allow-list; the direction
	// is one of two literals. Neither ever comes from raw input.
	orderCol := entity.SortColumn(q.SortBy)
	orderDir := "DESC"
	if q.SortOrder == entity.SortAsc {
		orderDir = "ASC"
	}

	query := "SELECT " + selectColumns + " FROM users" + where +
		" ORDER BY " + orderCol + " " + orderDir + ", id DESC" +
		" LIMIT " + b.bind(q.Limit) + " OFFSET " + b.bind(q.Offset())

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0, q.Limit)
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	if totalPages < 1 {
		totalPages = 1
	}

	return &entity.ListUsersResult{
		Data: users,
		Pagination: entity.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, "SELECT "+selectColumns+" FROM users WHERE id = $1", id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, in entity.CreateUserInput) (*entity.User, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	status := in.Status
	if status == "" {
		status = entity.StatusActive
	}

	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, status, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+selectColumns,
		in.Email, in.Name, role, status, in.Avatar)
	if err := scanUser(row, u); err != nil {
		// 23505 travels up unchanged; the service classifies it.
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Update writes only the fields present in the patch and stamps updated_at.
// An empty patch degrades to a plain read without touching updated_at.
func (r *UserRepository) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	b := &sqlBuilder{}
	var sets []string
	if patch.Email != nil {
		sets = append(sets, "email = "+b.bind(*patch.Email))
	}
	if patch.Name != nil {
		sets = append(sets, "name = "+b.bind(*patch.Name))
	}
	if patch.Role != nil {
		sets = append(sets, "role = "+b.bind(*patch.Role))
	}
	if patch.Status != nil {
		sets = append(sets, "status = "+b.bind(*patch.Status))
	}
	if patch.Avatar != nil {
		sets = append(sets, "avatar = "+b.bind(*patch.Avatar))
	}
	if patch.ReviewCount != nil {
		sets = append(sets, "review_count = "+b.bind(*patch.ReviewCount))
	}
	sets = append(sets, "updated_at = NOW()")

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = " + b.bind(id) +
		" RETURNING " + selectColumns

	u := &entity.User{}
	if err := scanUser(r.pool.QueryRow(ctx, query, b.args...), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Remove(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.Status,
		&u.Avatar,
		&u.ReviewCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

var _ repository.UserRepository = (*UserRepository)(nil)
