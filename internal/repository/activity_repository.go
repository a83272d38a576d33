package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatehub/estate-service/internal/domain"
)

// ActivityRepository stores the user activity log.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.UserActivity) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.UserActivity, int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityFilter defines query params for activity listing.
type ActivityFilter struct {
	UserID *string
	Action *domain.ActivityAction
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository constructs repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.UserActivity) error {
	const query = `
        INSERT INTO user_activities (user_id, action, description, metadata, ip_address, user_agent, created_at)
        VALUES ($1,$2,$3,$4::jsonb,$5,$6,COALESCE($7, NOW()))
        RETURNING id, created_at`

	metadata := activity.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}
	var createdAt *time.Time
	if !activity.CreatedAt.IsZero() {
		createdAt = &activity.CreatedAt
	}

	err = r.pool.QueryRow(ctx, query,
		activity.UserID,
		activity.Action,
		activity.Description,
		string(raw),
		activity.IPAddress,
		activity.UserAgent,
		createdAt,
	).Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.UserActivity, int, error) {
	args := []any{}
	clauses := []string{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		clauses = append(clauses, fmt.Sprintf("action=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_activities`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := `
        SELECT id, user_id, action, description, metadata, ip_address, user_agent, created_at
        FROM user_activities` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var result []domain.UserActivity
	for rows.Next() {
		var (
			a   domain.UserActivity
			raw []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Description, &raw, &a.IPAddress, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &a.Metadata); err != nil {
				return nil, 0, fmt.Errorf("decode activity metadata: %w", err)
			}
		}
		result = append(result, a)
	}
	return result, total, rows.Err()
}

func (r *activityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM user_activities WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old activities: %w", err)
	}
	return cmd.RowsAffected(), nil
}
