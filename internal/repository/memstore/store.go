// Package memstore is an in-process Store used for development and tests. A single
// mutex guards every collection, so uniqueness checks and inserts are atomic.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"boma/internal/models"
	"boma/internal/repository"
)

type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	listings      map[string]models.Listing
	reviews       map[string]models.Review
	posts         map[string]models.ForumPost
	verifications map[string]models.VerificationRequest // keyed by landlord id
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         make(map[string]models.User),
		listings:      make(map[string]models.Listing),
		reviews:       make(map[string]models.Review),
		posts:         make(map[string]models.ForumPost),
		verifications: make(map[string]models.VerificationRequest),
	}
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Listings() repository.ListingRepository           { return listingRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository             { return reviewRepo{s} }
func (s *Store) Forum() repository.ForumRepository                { return forumRepo{s} }
func (s *Store) Verifications() repository.VerificationRepository { return verificationRepo{s} }

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// users

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.s.users[user.ID] = user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r userRepo) FindByUsername(_ context.Context, username string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r userRepo) find(match func(models.User) bool) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r userRepo) UpdateProfile(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && (u.Email == user.Email || u.Username == user.Username) {
			return repository.ErrDuplicate
		}
	}
	cur.Username = user.Username
	cur.Email = user.Email
	cur.PasswordHash = user.PasswordHash
	cur.UpdatedAt = user.UpdatedAt
	r.s.users[user.ID] = cur
	return nil
}

func (r userRepo) UpdateRole(_ context.Context, id string, role models.Role, state models.VerificationState) error {
	return r.mutate(id, func(u *models.User) {
		u.Role = role
		u.VerificationState = state
	})
}

func (r userRepo) UpdateVerificationState(_ context.Context, id string, state models.VerificationState) error {
	return r.mutate(id, func(u *models.User) { u.VerificationState = state })
}

func (r userRepo) mutate(id string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

func (r userRepo) List(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// listings

type listingRepo struct{ s *Store }

func cloneListing(l models.Listing) models.Listing {
	l.Images = slices.Clone(l.Images)
	return l
}

func (r listingRepo) Create(_ context.Context, listing models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listings[listing.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r listingRepo) GetByID(_ context.Context, id string) (models.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.listings[id]
	if !ok {
		return models.Listing{}, repository.ErrNotFound
	}
	return cloneListing(l), nil
}

func (r listingRepo) List(_ context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	r.s.mu.RLock()
	matched := make([]models.Listing, 0)
	for _, l := range r.s.listings {
		if filter.Matches(l) {
			matched = append(matched, cloneListing(l))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, repository.NewerFirst)

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []models.Listing{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r listingRepo) Update(_ context.Context, listing models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.listings[listing.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// The rating summary belongs to the worker.
	listing.Rating = cur.Rating
	listing.OwnerID = cur.OwnerID
	listing.CreatedAt = cur.CreatedAt
	r.s.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r listingRepo) UpdateRating(_ context.Context, id string, rating models.RatingSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Rating = rating
	r.s.listings[id] = l
	return nil
}

func (r listingRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.listings, id)
	return nil
}
