package service

import (
	"context"
	"time"

	"midtownwebserver/internal/domain"
)

type AdminUsersStore interface {
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	AdminUpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error)
	ToggleActive(ctx context.Context, id string) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (domain.UserStats, error)
}

type AdminService struct {
	Users AdminUsersStore
	Now   func() time.Time
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.Users.ListUsers(ctx, limit, offset)
}

func (s *AdminService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.Users.GetUserByID(ctx, id)
}

func (s *AdminService) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	if upd.Role != nil && !domain.ValidRole(*upd.Role) {
		return domain.User{}, domain.NewValidationError(map[string]string{
			"role": "must be one of user, moderator, admin",
		})
	}
	return s.Users.AdminUpdateUser(ctx, id, upd)
}

func (s *AdminService) ToggleUserActive(ctx context.Context, id string) (domain.User, error) {
	return s.Users.ToggleActive(ctx, id)
}

// DeleteUser refuses self-deletion by the acting admin.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id string) error {
	u, err := s.Users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if u.ID == actorID {
		return domain.ErrCannotDeleteSelf
	}
	return s.Users.DeleteUser(ctx, id)
}

func (s *AdminService) UserStats(ctx context.Context) (domain.UserStats, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return s.Users.Stats(ctx, now)
}
