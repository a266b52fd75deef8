package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository"
)

var (
	ErrVerificationPending = apperr.Conflict("verification_pending", "a verification request is already pending")
	ErrAlreadyVerified     = apperr.Conflict("already_verified", "landlord is already verified")
	ErrNotALandlord        = apperr.Validation("not_a_landlord", "user is not a landlord")
)

type VerificationService struct {
	requests repository.VerificationRepository
	users    repository.UserRepository
	log      zerolog.Logger
}

func NewVerificationService(requests repository.VerificationRepository, users repository.UserRepository, log zerolog.Logger) *VerificationService {
	return &VerificationService{requests: requests, users: users, log: log}
}

type Decision struct {
	Status models.VerificationStatus
	Notes  string
}

// Submit opens a verification request for the calling landlord, or reopens a
// rejected one.
func (s *VerificationService) Submit(ctx context.Context, actor *models.User) (models.VerificationRequest, error) {
	if err := access.Check(access.Roles(models.RoleLandlord), actor); err != nil {
		return models.VerificationRequest{}, err
	}

	now := nowUTC()
	req, err := s.requests.GetByLandlord(ctx, actor.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		req = models.VerificationRequest{
			ID:         ids.New(),
			LandlordID: actor.ID,
			Status:     models.VerificationStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.requests.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.VerificationRequest{}, ErrVerificationPending
			}
			return models.VerificationRequest{}, apperr.Internal(err)
		}
	case err != nil:
		return models.VerificationRequest{}, apperr.Internal(err)
	case req.Status == models.VerificationStatusPending:
		return models.VerificationRequest{}, ErrVerificationPending
	case req.Status == models.VerificationStatusVerified:
		return models.VerificationRequest{}, ErrAlreadyVerified
	default:
		req.Status = models.VerificationStatusPending
		req.ReviewerID = ""
		req.Notes = ""
		req.ReviewedAt = nil
		req.UpdatedAt = now
		if err := s.requests.Update(ctx, req); err != nil {
			return models.VerificationRequest{}, storeErr(err, errVerificationNotFound)
		}
	}

	if err := s.users.UpdateVerificationState(ctx, actor.ID, models.VerificationPending); err != nil {
		return models.VerificationRequest{}, storeErr(err, errUserNotFound)
	}
	s.log.Info().Str("landlord_id", actor.ID).Msg("verification submitted")
	return req, nil
}

// Review records an administrator's decision on a landlord and updates the
// landlord's verification state to match.
func (s *VerificationService) Review(ctx context.Context, actor *models.User, landlordID string, d Decision) (models.VerificationRequest, error) {
	if err := access.Check(access.Roles(models.RoleAdmin), actor); err != nil {
		return models.VerificationRequest{}, err
	}

	var fe apperr.FieldErrors
	if d.Status != models.VerificationStatusVerified && d.Status != models.VerificationStatusRejected {
		fe.Add("status", "must be verified or rejected")
	}
	notes := checkText("notes", d.Notes, 0, maxNotesLen, &fe)
	if err := fe.Err("invalid_decision", "verification decision rejected"); err != nil {
		return models.VerificationRequest{}, err
	}

	if !ids.Valid(landlordID) {
		return models.VerificationRequest{}, errUserNotFound
	}
	landlord, err := s.users.GetByID(ctx, landlordID)
	if err != nil {
		return models.VerificationRequest{}, storeErr(err, errUserNotFound)
	}
	if landlord.Role != models.RoleLandlord {
		return models.VerificationRequest{}, ErrNotALandlord
	}

	now := nowUTC()
	req, err := s.requests.GetByLandlord(ctx, landlordID)
	found := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.VerificationRequest{}, apperr.Internal(err)
	}
	if !found {
		req = models.VerificationRequest{ID: ids.New(), LandlordID: landlordID, CreatedAt: now}
	}
	req.Status = d.Status
	req.Notes = notes
	req.ReviewerID = actor.ID
	req.ReviewedAt = &now
	req.UpdatedAt = now

	if found {
		err = s.requests.Update(ctx, req)
	} else {
		err = s.requests.Create(ctx, req)
	}
	if err != nil {
		return models.VerificationRequest{}, apperr.Internal(err)
	}

	state := models.VerificationUnverified
	if d.Status == models.VerificationStatusVerified {
		state = models.VerificationVerified
	}
	if err := s.users.UpdateVerificationState(ctx, landlordID, state); err != nil {
		return models.VerificationRequest{}, storeErr(err, errUserNotFound)
	}

	s.log.Info().
		Str("landlord_id", landlordID).
		Str("reviewer_id", actor.ID).
		Str("status", string(d.Status)).
		Msg("verification reviewed")
	return req, nil
}

// List returns requests with status, or all of them when status is empty.
func (s *VerificationService) List(ctx context.Context, actor *models.User, status models.VerificationStatus) ([]models.VerificationRequest, error) {
	if err := access.Check(access.Roles(models.RoleAdmin), actor); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid_status", "unknown verification status",
			apperr.FieldError{Field: "status", Message: "must be pending, verified or rejected"})
	}
	out, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Mine returns the calling landlord's request.
func (s *VerificationService) Mine(ctx context.Context, actor *models.User) (models.VerificationRequest, error) {
	if err := access.Check(access.Roles(models.RoleLandlord), actor); err != nil {
		return models.VerificationRequest{}, err
	}
	req, err := s.requests.GetByLandlord(ctx, actor.ID)
	if err != nil {
		return models.VerificationRequest{}, storeErr(err, errVerificationNotFound)
	}
	return req, nil
}
