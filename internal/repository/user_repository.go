package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatehub/estate-service/internal/domain"
)

// UserRepository defines persistence access for dashboard users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	Delete(ctx context.Context, id string) error
}

// PresenceRepository maintains the isOnline/lastSeen pair on users.
type PresenceRepository interface {
	SetPresence(ctx context.Context, userID string, online bool, at time.Time) error
	// MarkStaleOffline flips every online user last seen before cutoff.
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
	CountOnline(ctx context.Context) (int, error)
}

// UserStore combines account and presence access; both live on the users table.
type UserStore interface {
	UserRepository
	PresenceRepository
}

// UserFilter defines query params for user listing.
type UserFilter struct {
	Role     *domain.UserRole
	Status   *domain.UserStatus
	IsOnline *bool
	Search   string
	Limit    int
	Offset   int
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed UserStore.
func NewUserRepository(pool *pgxpool.Pool) UserStore {
	return &userRepository{pool: pool}
}

const userColumns = `
        id, name, email, password_hash, role, status, is_online, last_seen,
        agent_id, landlord_id, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.IsOnline,
		&user.LastSeen,
		&user.AgentID,
		&user.LandlordID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, status, agent_id, landlord_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.AgentID,
		user.LandlordID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", translatePgError(err))
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, role=$4, status=$5,
            agent_id=$6, landlord_id=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.AgentID,
		user.LandlordID,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", translatePgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.IsOnline != nil {
		args = append(args, *filter.IsOnline)
		clauses = append(clauses, fmt.Sprintf("is_online=$%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *user)
	}
	return result, total, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", translatePgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetPresence(ctx context.Context, userID string, online bool, at time.Time) error {
	const query = `UPDATE users SET is_online=$1, last_seen=$2 WHERE id=$3`

	if _, err := r.pool.Exec(ctx, query, online, at, userID); err != nil {
		return fmt.Errorf("set presence: %w", err)
	}
	return nil
}

func (r *userRepository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
        UPDATE users SET is_online=FALSE
        WHERE is_online AND (last_seen IS NULL OR last_seen < $1)`

	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark stale users offline: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *userRepository) CountOnline(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_online`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count online users: %w", err)
	}
	return n, nil
}
