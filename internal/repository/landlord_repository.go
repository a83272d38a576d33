package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatehub/estate-service/internal/domain"
)

// LandlordRepository defines persistence access for landlords.
type LandlordRepository interface {
	Create(ctx context.Context, landlord *domain.Landlord) error
	// Update writes every mutable column when the stored version still equals
	// landlord.Version, and bumps the version. It returns ErrVersionConflict otherwise.
	Update(ctx context.Context, landlord *domain.Landlord) error
	MarkNotified(ctx context.Context, id string, at time.Time) error
	GetByID(ctx context.Context, id string) (*domain.Landlord, error)
	GetByEmail(ctx context.Context, email string) (*domain.Landlord, error)
	List(ctx context.Context, filter LandlordFilter) ([]domain.Landlord, int, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (LandlordSummary, error)
}

// LandlordFilter defines query params for landlord listing.
type LandlordFilter struct {
	IsVerified *bool
	Status     *domain.LandlordStatus
	Search     string
	Limit      int
	Offset     int
}

// LandlordSummary aggregates landlord counts for the dashboard.
type LandlordSummary struct {
	Total      int `json:"total"`
	Verified   int `json:"verified"`
	Unverified int `json:"unverified"`
	Active     int `json:"active"`
	Inactive   int `json:"inactive"`
}

type landlordRepository struct {
	pool *pgxpool.Pool
}

// NewLandlordRepository returns a Postgres-backed implementation.
func NewLandlordRepository(pool *pgxpool.Pool) LandlordRepository {
	return &landlordRepository{pool: pool}
}

const landlordColumns = `
        l.id, l.name, l.email, l.phone, l.company_name, l.address,
        l.is_verified, l.rejection_reason, l.status, l.inactive_reason,
        l.is_sent_email, l.is_sent_at, l.created_by, l.version,
        (SELECT COUNT(*) FROM properties p WHERE p.landlord_id = l.id),
        l.created_at, l.updated_at`

func scanLandlord(row pgx.Row) (*domain.Landlord, error) {
	var l domain.Landlord
	if err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.CompanyName,
		&l.Address,
		&l.IsVerified,
		&l.RejectionReason,
		&l.Status,
		&l.InactiveReason,
		&l.IsSentEmail,
		&l.IsSentAt,
		&l.CreatedByID,
		&l.Version,
		&l.PropertyCount,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *landlordRepository) Create(ctx context.Context, landlord *domain.Landlord) error {
	const query = `
        INSERT INTO landlords (name, email, phone, company_name, address, is_verified, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		landlord.Name,
		landlord.Email,
		landlord.Phone,
		landlord.CompanyName,
		landlord.Address,
		landlord.IsVerified,
		landlord.Status,
		landlord.CreatedByID,
	).Scan(&landlord.ID, &landlord.Version, &landlord.CreatedAt, &landlord.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert landlord: %w", translatePgError(err))
	}
	return nil
}

func (r *landlordRepository) Update(ctx context.Context, landlord *domain.Landlord) error {
	const query = `
        UPDATE landlords
        SET name=$1, email=$2, phone=$3, company_name=$4, address=$5,
            is_verified=$6, rejection_reason=$7, status=$8, inactive_reason=$9,
            version=version+1, updated_at=NOW()
        WHERE id=$10 AND version=$11
        RETURNING version, updated_at`

	err := r.pool.QueryRow(ctx, query,
		landlord.Name,
		landlord.Email,
		landlord.Phone,
		landlord.CompanyName,
		landlord.Address,
		landlord.IsVerified,
		landlord.RejectionReason,
		landlord.Status,
		landlord.InactiveReason,
		landlord.ID,
		landlord.Version,
	).Scan(&landlord.Version, &landlord.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("update landlord: %w", translatePgError(err))
	}
	return nil
}

// MarkNotified leaves the version alone: tracking columns play no part in
// transition edge detection.
func (r *landlordRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE landlords SET is_sent_email=TRUE, is_sent_at=$1 WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("mark landlord notified: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *landlordRepository) GetByID(ctx context.Context, id string) (*domain.Landlord, error) {
	query := `SELECT ` + landlordColumns + ` FROM landlords l WHERE l.id=$1`
	return scanLandlord(r.pool.QueryRow(ctx, query, id))
}

func (r *landlordRepository) GetByEmail(ctx context.Context, email string) (*domain.Landlord, error) {
	query := `SELECT ` + landlordColumns + ` FROM landlords l WHERE LOWER(l.email)=LOWER($1)`
	return scanLandlord(r.pool.QueryRow(ctx, query, email))
}

func (r *landlordRepository) List(ctx context.Context, filter LandlordFilter) ([]domain.Landlord, int, error) {
	args := []any{}
	clauses := []string{}

	if filter.IsVerified != nil {
		args = append(args, *filter.IsVerified)
		clauses = append(clauses, fmt.Sprintf("l.is_verified=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("l.status=$%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(l.name ILIKE $%[1]d OR l.email ILIKE $%[1]d OR l.company_name ILIKE $%[1]d)", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM landlords l`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count landlords: %w", err)
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := `SELECT ` + landlordColumns + ` FROM landlords l` + where +
		fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list landlords: %w", err)
	}
	defer rows.Close()

	var result []domain.Landlord
	for rows.Next() {
		l, err := scanLandlord(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *l)
	}
	return result, total, rows.Err()
}

func (r *landlordRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM landlords WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete landlord: %w", translatePgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *landlordRepository) Summary(ctx context.Context) (LandlordSummary, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_verified),
               COUNT(*) FILTER (WHERE NOT is_verified),
               COUNT(*) FILTER (WHERE status='ACTIVE'),
               COUNT(*) FILTER (WHERE status='INACTIVE')
        FROM landlords`

	var s LandlordSummary
	if err := r.pool.QueryRow(ctx, query).Scan(&s.Total, &s.Verified, &s.Unverified, &s.Active, &s.Inactive); err != nil {
		return s, fmt.Errorf("landlord summary: %w", err)
	}
	return s, nil
}
