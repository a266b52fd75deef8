package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boma/internal/models"
)

// collect scans every row with scan and always returns a non-nil slice.
func collect[T any](rows pgx.Rows, err error, scan func(pgx.Row) (T, error)) ([]T, error) {
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, mapError(rows.Err())
}

func deleteCount(ctx context.Context, pool *pgxpool.Pool, query string, arg string) (int64, error) {
	tag, err := pool.Exec(ctx, query, arg)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

const reviewColumns = `id, listing_id, user_id, safety_rating, water_rating, landlord_rating, comment, anonymous, created_at`

type reviewRepo struct {
	pool *pgxpool.Pool
}

func scanReview(row pgx.Row) (models.Review, error) {
	var r models.Review
	if err := row.Scan(
		&r.ID,
		&r.ListingID,
		&r.UserID,
		&r.SafetyRating,
		&r.WaterRating,
		&r.LandlordRating,
		&r.Comment,
		&r.Anonymous,
		&r.CreatedAt,
	); err != nil {
		return models.Review{}, mapError(err)
	}
	return r, nil
}

func (r reviewRepo) Create(ctx context.Context, rv models.Review) error {
	const query = `INSERT INTO reviews (` + reviewColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		rv.ID, rv.ListingID, rv.UserID, rv.SafetyRating, rv.WaterRating, rv.LandlordRating,
		rv.Comment, rv.Anonymous, rv.CreatedAt,
	)
	return mapError(err)
}

func (r reviewRepo) GetByID(ctx context.Context, id string) (models.Review, error) {
	return scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
}

func (r reviewRepo) ListByListing(ctx context.Context, listingID string) ([]models.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE listing_id = $1 ORDER BY created_at DESC, id DESC`, listingID)
	return collect(rows, err, scanReview)
}

func (r reviewRepo) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	return collect(rows, err, scanReview)
}

func (r reviewRepo) Delete(ctx context.Context, id string) error {
	return affectOne(r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id))
}

func (r reviewRepo) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	return deleteCount(ctx, r.pool, `DELETE FROM reviews WHERE listing_id = $1`, listingID)
}

func (r reviewRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return deleteCount(ctx, r.pool, `DELETE FROM reviews WHERE user_id = $1`, userID)
}

const postColumns = `id, listing_id, user_id, content, anonymous, complaint, resolved, created_at`

type forumRepo struct {
	pool *pgxpool.Pool
}

func scanPost(row pgx.Row) (models.ForumPost, error) {
	var p models.ForumPost
	if err := row.Scan(&p.ID, &p.ListingID, &p.UserID, &p.Content, &p.Anonymous, &p.Complaint, &p.Resolved, &p.CreatedAt); err != nil {
		return models.ForumPost{}, mapError(err)
	}
	return p, nil
}

func (r forumRepo) Create(ctx context.Context, p models.ForumPost) error {
	const query = `INSERT INTO forum_posts (` + postColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, p.ID, p.ListingID, p.UserID, p.Content, p.Anonymous, p.Complaint, p.Resolved, p.CreatedAt)
	return mapError(err)
}

func (r forumRepo) GetByID(ctx context.Context, id string) (models.ForumPost, error) {
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM forum_posts WHERE id = $1`, id))
}

func (r forumRepo) ListByListing(ctx context.Context, listingID string) ([]models.ForumPost, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM forum_posts WHERE listing_id = $1 ORDER BY created_at DESC, id DESC`, listingID)
	return collect(rows, err, scanPost)
}

func (r forumRepo) SetResolved(ctx context.Context, id string, resolved bool) error {
	return affectOne(r.pool.Exec(ctx, `UPDATE forum_posts SET resolved = $2 WHERE id = $1`, id, resolved))
}

func (r forumRepo) Delete(ctx context.Context, id string) error {
	return affectOne(r.pool.Exec(ctx, `DELETE FROM forum_posts WHERE id = $1`, id))
}

func (r forumRepo) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	return deleteCount(ctx, r.pool, `DELETE FROM forum_posts WHERE listing_id = $1`, listingID)
}

func (r forumRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return deleteCount(ctx, r.pool, `DELETE FROM forum_posts WHERE user_id = $1`, userID)
}

const verificationColumns = `id, landlord_id, reviewer_id, status, notes, created_at, updated_at, reviewed_at`

type verificationRepo struct {
	pool *pgxpool.Pool
}

func scanVerification(row pgx.Row) (models.VerificationRequest, error) {
	var v models.VerificationRequest
	if err := row.Scan(&v.ID, &v.LandlordID, &v.ReviewerID, &v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt, &v.ReviewedAt); err != nil {
		return models.VerificationRequest{}, mapError(err)
	}
	return v, nil
}

func (r verificationRepo) Create(ctx context.Context, v models.VerificationRequest) error {
	const query = `INSERT INTO verification_requests (` + verificationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, v.ID, v.LandlordID, v.ReviewerID, v.Status, v.Notes, v.CreatedAt, v.UpdatedAt, v.ReviewedAt)
	return mapError(err)
}

func (r verificationRepo) GetByLandlord(ctx context.Context, landlordID string) (models.VerificationRequest, error) {
	return scanVerification(r.pool.QueryRow(ctx, `SELECT `+verificationColumns+` FROM verification_requests WHERE landlord_id = $1`, landlordID))
}

func (r verificationRepo) List(ctx context.Context, status models.VerificationStatus) ([]models.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	return collect(rows, err, scanVerification)
}

func (r verificationRepo) Update(ctx context.Context, v models.VerificationRequest) error {
	const query = `
		UPDATE verification_requests
		SET status = $3, reviewer_id = $4, notes = $5, updated_at = $6, reviewed_at = $7
		WHERE id = $1 AND landlord_id = $2
	`
	return affectOne(r.pool.Exec(ctx, query, v.ID, v.LandlordID, v.Status, v.ReviewerID, v.Notes, v.UpdatedAt, v.ReviewedAt))
}

func (r verificationRepo) DeleteByLandlord(ctx context.Context, landlordID string) error {
	return affectOne(r.pool.Exec(ctx, `DELETE FROM verification_requests WHERE landlord_id = $1`, landlordID))
}
