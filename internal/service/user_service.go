package service

import (
	"context"

	"github.com/rs/zerolog"

	"boma/internal/access"
	"boma/internal/apperr"
	"boma/internal/events"
	"boma/internal/ids"
	"boma/internal/models"
	"boma/internal/repository"
)

var (
	ErrOwnRoleChange = apperr.Validation("cannot_change_own_role", "administrators cannot change their own role")
	ErrSelfDelete    = apperr.Validation("cannot_delete_self", "administrators cannot delete themselves")
)

// UserService backs the administrator user management endpoints.
type UserService struct {
	users  repository.UserRepository
	events eventSink
	log    zerolog.Logger
}

func NewUserService(users repository.UserRepository, sink eventSink, log zerolog.Logger) *UserService {
	return &UserService{users: users, events: sink, log: log}
}

func (s *UserService) List(ctx context.Context, actor *models.User, role string) ([]models.User, error) {
	if err := access.Check(access.Roles(models.RoleAdmin), actor); err != nil {
		return nil, err
	}
	var filter repository.UserFilter
	if role != "" {
		r, err := models.ParseRole(role)
		if err != nil {
			return nil, apperr.Validation("invalid_role", "unknown role",
				apperr.FieldError{Field: "role", Message: "must be tenant, landlord or admin"})
		}
		filter.Role = r
	}
	out, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, actor *models.User, id string) (models.User, error) {
	if err := access.Check(access.Roles(models.RoleAdmin), actor); err != nil {
		return models.User{}, err
	}
	return s.get(ctx, id)
}

// ChangeRole assigns role to the user. A role change resets verification,
// since verification applies to landlords only.
func (s *UserService) ChangeRole(ctx context.Context, actor *models.User, id, role string) (models.User, error) {
	if err := access.Check(access.Roles(models.RoleAdmin), actor); err != nil {
		return models.User{}, err
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return models.User{}, apperr.Validation("invalid_role", "unknown role",
			apperr.FieldError{Field: "role", Message: "must be tenant, landlord or admin"})
	}
	if id == actor.ID {
		return models.User{}, ErrOwnRoleChange
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.Role == r {
		return user, nil
	}

	state := models.VerificationUnverified
	if r == models.RoleAdmin {
		state = models.VerificationVerified
	}
	if err := s.users.UpdateRole(ctx, id, r, state); err != nil {
		return models.User{}, storeErr(err, errUserNotFound)
	}

	s.log.Info().
		Str("user_id", id).
		Str("actor_id", actor.ID).
		Str("from", string(user.Role)).
		Str("to", string(r)).
		Msg("user role changed")
	user.Role = r
	user.VerificationState = state
	return user, nil
}

// Delete removes the account; everything the user authored is removed by the
// user.deleted handler.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := access.Check(access.Roles(models.RoleAdmin), actor); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrSelfDelete
	}
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeErr(err, errUserNotFound)
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actor.ID).Msg("user deleted")
	s.events.publish(ctx, events.Event{Type: events.UserDeleted, UserID: id})
	return nil
}

func (s *UserService) get(ctx context.Context, id string) (models.User, error) {
	if !ids.Valid(id) {
		return models.User{}, errUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, errUserNotFound)
	}
	return user, nil
}
