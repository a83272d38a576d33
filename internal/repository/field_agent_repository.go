package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatehub/estate-service/internal/domain"
)

// FieldAgentRepository handles persistence for field agents.
type FieldAgentRepository interface {
	Create(ctx context.Context, agent *domain.FieldAgent) error
	Update(ctx context.Context, agent *domain.FieldAgent) error
	GetByID(ctx context.Context, id string) (*domain.FieldAgent, error)
	GetByEmail(ctx context.Context, email string) (*domain.FieldAgent, error)
	List(ctx context.Context, filter FieldAgentFilter) ([]domain.FieldAgent, error)
	Delete(ctx context.Context, id string) error
}

// FieldAgentFilter defines query params for agent listing.
type FieldAgentFilter struct {
	Status *domain.UserStatus
	Region string
	Limit  int
	Offset int
}

type fieldAgentRepository struct {
	pool *pgxpool.Pool
}

// NewFieldAgentRepository instantiates the repository.
func NewFieldAgentRepository(pool *pgxpool.Pool) FieldAgentRepository {
	return &fieldAgentRepository{pool: pool}
}

const fieldAgentColumns = `id, name, email, phone, region, status, created_at, updated_at`

func scanFieldAgent(row pgx.Row) (*domain.FieldAgent, error) {
	var agent domain.FieldAgent
	if err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.Phone,
		&agent.Region,
		&agent.Status,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *fieldAgentRepository) Create(ctx context.Context, agent *domain.FieldAgent) error {
	const query = `
        INSERT INTO field_agents (name, email, phone, region, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		agent.Name,
		agent.Email,
		agent.Phone,
		agent.Region,
		agent.Status,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert field agent: %w", translatePgError(err))
	}
	return nil
}

func (r *fieldAgentRepository) Update(ctx context.Context, agent *domain.FieldAgent) error {
	const query = `
        UPDATE field_agents
        SET name=$1, email=$2, phone=$3, region=$4, status=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		agent.Name,
		agent.Email,
		agent.Phone,
		agent.Region,
		agent.Status,
		agent.ID,
	)
	if err != nil {
		return fmt.Errorf("update field agent: %w", translatePgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *fieldAgentRepository) GetByID(ctx context.Context, id string) (*domain.FieldAgent, error) {
	return scanFieldAgent(r.pool.QueryRow(ctx, `SELECT `+fieldAgentColumns+` FROM field_agents WHERE id=$1`, id))
}

func (r *fieldAgentRepository) GetByEmail(ctx context.Context, email string) (*domain.FieldAgent, error) {
	return scanFieldAgent(r.pool.QueryRow(ctx, `SELECT `+fieldAgentColumns+` FROM field_agents WHERE LOWER(email)=LOWER($1)`, email))
}

func (r *fieldAgentRepository) List(ctx context.Context, filter FieldAgentFilter) ([]domain.FieldAgent, error) {
	query := `SELECT ` + fieldAgentColumns + ` FROM field_agents`
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if region := strings.TrimSpace(filter.Region); region != "" {
		args = append(args, region)
		clauses = append(clauses, fmt.Sprintf("LOWER(region)=LOWER($%d)", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list field agents: %w", err)
	}
	defer rows.Close()

	var result []domain.FieldAgent
	for rows.Next() {
		agent, err := scanFieldAgent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *agent)
	}
	return result, rows.Err()
}

func (r *fieldAgentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM field_agents WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete field agent: %w", translatePgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
