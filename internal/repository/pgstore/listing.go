package pgstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boma/internal/models"
	"boma/internal/repository"
)

const listingColumns = `id, title, description, address, owner_id, verified, images, price, bedrooms, category,
	rating_count, rating_safety, rating_water, rating_landlord, rating_overall, created_at, updated_at`

type listingRepo struct {
	pool *pgxpool.Pool
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func scanListing(row pgx.Row) (models.Listing, error) {
	var l models.Listing
	if err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Address,
		&l.OwnerID,
		&l.Verified,
		&l.Images,
		&l.Price,
		&l.Bedrooms,
		&l.Category,
		&l.Rating.Count,
		&l.Rating.Safety,
		&l.Rating.Water,
		&l.Rating.Landlord,
		&l.Rating.Overall,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return models.Listing{}, mapError(err)
	}
	return l, nil
}

func nonNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func (r listingRepo) Create(ctx context.Context, l models.Listing) error {
	const query = `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.pool.Exec(ctx, query,
		l.ID, l.Title, l.Description, l.Address, l.OwnerID, l.Verified, nonNil(l.Images),
		l.Price, l.Bedrooms, l.Category,
		l.Rating.Count, l.Rating.Safety, l.Rating.Water, l.Rating.Landlord, l.Rating.Overall,
		l.CreatedAt, l.UpdatedAt,
	)
	return mapError(err)
}

func (r listingRepo) GetByID(ctx context.Context, id string) (models.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(r.pool.QueryRow(ctx, query, id))
}

// likeContains escapes LIKE metacharacters and wraps the term for substring matching.
func likeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// listingWhere translates ListingFilter into a WHERE clause and its arguments.
func listingWhere(f repository.ListingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if f.Search != "" {
		p := arg(likeContains(f.Search))
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+" OR address ILIKE "+p+")")
	}
	if f.Location != "" {
		conds = append(conds, "address ILIKE "+arg(likeContains(f.Location)))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.MinBedrooms != nil {
		conds = append(conds, "bedrooms >= "+arg(*f.MinBedrooms))
	}
	if f.Category != "" {
		conds = append(conds, "lower(category) = lower("+arg(f.Category)+")")
	}
	if f.Verified != nil {
		conds = append(conds, "verified = "+arg(*f.Verified))
	}
	if f.OwnerID != "" {
		conds = append(conds, "owner_id = "+arg(f.OwnerID))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r listingRepo) List(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	where, args := listingWhere(filter)
	query := `SELECT ` + listingColumns + ` FROM listings` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	return collect(rows, err, scanListing)
}

func (r listingRepo) Update(ctx context.Context, l models.Listing) error {
	const query = `
		UPDATE listings SET
			title = $2, description = $3, address = $4, verified = $5, images = $6,
			price = $7, bedrooms = $8, category = $9, updated_at = $10
		WHERE id = $1
	`
	return affectOne(r.pool.Exec(ctx, query,
		l.ID, l.Title, l.Description, l.Address, l.Verified, nonNil(l.Images),
		l.Price, l.Bedrooms, l.Category, l.UpdatedAt,
	))
}

func (r listingRepo) UpdateRating(ctx context.Context, id string, rating models.RatingSummary) error {
	const query = `
		UPDATE listings SET
			rating_count = $2, rating_safety = $3, rating_water = $4, rating_landlord = $5, rating_overall = $6
		WHERE id = $1
	`
	return affectOne(r.pool.Exec(ctx, query, id, rating.Count, rating.Safety, rating.Water, rating.Landlord, rating.Overall))
}

func (r listingRepo) Delete(ctx context.Context, id string) error {
	return affectOne(r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id))
}
