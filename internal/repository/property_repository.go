package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatehub/estate-service/internal/domain"
)

// PropertyRepository handles persistence for property listings.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]domain.Property, int, error)
	// Delete removes the property with its payments, applications and images
	// in one transaction.
	Delete(ctx context.Context, id string) error
	CountByLandlord(ctx context.Context, landlordID string) (int, error)
	CountByStatus(ctx context.Context) (map[domain.PropertyStatus]int, error)
}

// PropertyFilter defines query params for property listing.
type PropertyFilter struct {
	Status     *domain.PropertyStatus
	LandlordID *string
	City       string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Limit      int
	Offset     int
}

type propertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository instantiates the repository.
func NewPropertyRepository(pool *pgxpool.Pool) PropertyRepository {
	return &propertyRepository{pool: pool}
}

const propertyColumns = `
        p.id, p.landlord_id, p.title, p.description, p.address, p.city,
        p.price::float8, p.status, p.bedrooms, p.bathrooms,
        COALESCE(ARRAY(SELECT i.url FROM property_images i WHERE i.property_id = p.id ORDER BY i.position), '{}'),
        p.amenities, p.created_at, p.updated_at`

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	if err := row.Scan(
		&p.ID,
		&p.LandlordID,
		&p.Title,
		&p.Description,
		&p.Address,
		&p.City,
		&p.Price,
		&p.Status,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Images,
		&p.Amenities,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO properties (landlord_id, title, description, address, city, price, status, bedrooms, bathrooms, amenities)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            RETURNING id, created_at, updated_at`

		if err := tx.QueryRow(ctx, query,
			property.LandlordID,
			property.Title,
			property.Description,
			property.Address,
			property.City,
			property.Price,
			property.Status,
			property.Bedrooms,
			property.Bathrooms,
			nonNilStrings(property.Amenities),
		).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt); err != nil {
			return fmt.Errorf("insert property: %w", translatePgError(err))
		}
		return insertImages(ctx, tx, property.ID, property.Images)
	})
}

func (r *propertyRepository) Update(ctx context.Context, property *domain.Property) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            UPDATE properties
            SET landlord_id=$1, title=$2, description=$3, address=$4, city=$5, price=$6,
                status=$7, bedrooms=$8, bathrooms=$9, amenities=$10, updated_at=NOW()
            WHERE id=$11
            RETURNING updated_at`

		if err := tx.QueryRow(ctx, query,
			property.LandlordID,
			property.Title,
			property.Description,
			property.Address,
			property.City,
			property.Price,
			property.Status,
			property.Bedrooms,
			property.Bathrooms,
			nonNilStrings(property.Amenities),
			property.ID,
		).Scan(&property.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			return fmt.Errorf("update property: %w", translatePgError(err))
		}
		if _, err := tx.Exec(ctx, `DELETE FROM property_images WHERE property_id=$1`, property.ID); err != nil {
			return fmt.Errorf("clear property images: %w", err)
		}
		return insertImages(ctx, tx, property.ID, property.Images)
	})
}

func insertImages(ctx context.Context, tx pgx.Tx, propertyID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, url := range urls {
		batch.Queue(`INSERT INTO property_images (property_id, url, position) VALUES ($1,$2,$3)`, propertyID, url, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert property images: %w", err)
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	return scanProperty(r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id=$1`, id))
}

func (r *propertyRepository) List(ctx context.Context, filter PropertyFilter) ([]domain.Property, int, error) {
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("p.status=$%d", len(args)))
	}
	if filter.LandlordID != nil {
		args = append(args, *filter.LandlordID)
		clauses = append(clauses, fmt.Sprintf("p.landlord_id=$%d", len(args)))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		args = append(args, city)
		clauses = append(clauses, fmt.Sprintf("LOWER(p.city)=LOWER($%d)", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("p.price <= $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(p.title ILIKE $%[1]d OR p.address ILIKE $%[1]d)", len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := `SELECT ` + propertyColumns + ` FROM properties p` + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var result []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	return result, total, rows.Err()
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM payments WHERE property_id=$1`,
			`DELETE FROM property_applications WHERE property_id=$1`,
			`DELETE FROM property_images WHERE property_id=$1`,
		} {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete property dependents: %w", err)
			}
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
		if err != nil {
			return fmt.Errorf("delete property: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *propertyRepository) CountByLandlord(ctx context.Context, landlordID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE landlord_id=$1`, landlordID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count landlord properties: %w", err)
	}
	return n, nil
}

func (r *propertyRepository) CountByStatus(ctx context.Context) (map[domain.PropertyStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM properties GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count properties by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.PropertyStatus]int, len(domain.PropertyStatuses))
	for _, s := range domain.PropertyStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status domain.PropertyStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
