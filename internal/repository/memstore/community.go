package memstore

import (
	"context"
	"slices"
	"strings"

	"boma/internal/models"
	"boma/internal/repository"
)

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(_ context.Context, review models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[review.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.s.reviews {
		if existing.ListingID == review.ListingID && existing.UserID == review.UserID {
			return repository.ErrDuplicate
		}
	}
	r.s.reviews[review.ID] = review
	return nil
}

func (r reviewRepo) GetByID(_ context.Context, id string) (models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return models.Review{}, repository.ErrNotFound
	}
	return rv, nil
}

func (r reviewRepo) ListByListing(_ context.Context, listingID string) ([]models.Review, error) {
	return r.collect(func(rv models.Review) bool { return rv.ListingID == listingID }), nil
}

func (r reviewRepo) ListByUser(_ context.Context, userID string) ([]models.Review, error) {
	return r.collect(func(rv models.Review) bool { return rv.UserID == userID }), nil
}

func (r reviewRepo) collect(match func(models.Review) bool) []models.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Review, 0)
	for _, rv := range r.s.reviews {
		if match(rv) {
			out = append(out, rv)
		}
	}
	slices.SortFunc(out, func(a, b models.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out
}

func (r reviewRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

func (r reviewRepo) DeleteByListing(_ context.Context, listingID string) (int64, error) {
	return r.deleteWhere(func(rv models.Review) bool { return rv.ListingID == listingID }), nil
}

func (r reviewRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(rv models.Review) bool { return rv.UserID == userID }), nil
}

func (r reviewRepo) deleteWhere(match func(models.Review) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, rv := range r.s.reviews {
		if match(rv) {
			delete(r.s.reviews, id)
			n++
		}
	}
	return n
}

type forumRepo struct{ s *Store }

func (r forumRepo) Create(_ context.Context, post models.ForumPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[post.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.posts[post.ID] = post
	return nil
}

func (r forumRepo) GetByID(_ context.Context, id string) (models.ForumPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return models.ForumPost{}, repository.ErrNotFound
	}
	return p, nil
}

func (r forumRepo) ListByListing(_ context.Context, listingID string) ([]models.ForumPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.ForumPost, 0)
	for _, p := range r.s.posts {
		if p.ListingID == listingID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.ForumPost) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r forumRepo) SetResolved(_ context.Context, id string, resolved bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Resolved = resolved
	r.s.posts[id] = p
	return nil
}

func (r forumRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r forumRepo) DeleteByListing(_ context.Context, listingID string) (int64, error) {
	return r.deleteWhere(func(p models.ForumPost) bool { return p.ListingID == listingID }), nil
}

func (r forumRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(p models.ForumPost) bool { return p.UserID == userID }), nil
}

func (r forumRepo) deleteWhere(match func(models.ForumPost) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.posts {
		if match(p) {
			delete(r.s.posts, id)
			n++
		}
	}
	return n
}

type verificationRepo struct{ s *Store }

func (r verificationRepo) Create(_ context.Context, req models.VerificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.verifications[req.LandlordID]; ok {
		return repository.ErrDuplicate
	}
	r.s.verifications[req.LandlordID] = req
	return nil
}

func (r verificationRepo) GetByLandlord(_ context.Context, landlordID string) (models.VerificationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.verifications[landlordID]
	if !ok {
		return models.VerificationRequest{}, repository.ErrNotFound
	}
	return v, nil
}

func (r verificationRepo) List(_ context.Context, status models.VerificationStatus) ([]models.VerificationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.VerificationRequest, 0)
	for _, v := range r.s.verifications {
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b models.VerificationRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r verificationRepo) Update(_ context.Context, req models.VerificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.verifications[req.LandlordID]
	if !ok || cur.ID != req.ID {
		return repository.ErrNotFound
	}
	req.CreatedAt = cur.CreatedAt
	r.s.verifications[req.LandlordID] = req
	return nil
}

func (r verificationRepo) DeleteByLandlord(_ context.Context, landlordID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.verifications[landlordID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.verifications, landlordID)
	return nil
}
