package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"midtownwebserver/internal/domain"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc               func(context.Context, string, string, string, string, domain.Role) (domain.User, error)
	getUserByIDFunc              func(context.Context, string) (domain.User, error)
	getUserByEmailFunc           func(context.Context, string) (domain.UserWithSecrets, error)
	getUserWithSecretsByIDFunc   func(context.Context, string) (domain.UserWithSecrets, error)
	setLastLoginFunc             func(context.Context, string, time.Time) error
	setVerificationTokenFunc     func(context.Context, string, domain.TokenPair) error
	setResetTokenFunc            func(context.Context, string, domain.TokenPair) error
	clearResetTokenFunc          func(context.Context, string) error
	consumeVerificationTokenFunc func(context.Context, string, time.Time) (domain.User, error)
	consumeResetTokenFunc        func(context.Context, string, string, time.Time) (domain.User, error)
	setPasswordHashFunc          func(context.Context, string, string) error
	updateDetailsFunc            func(context.Context, string, string, string, string) (domain.User, error)
}

func (s *stubUsersStore) CreateUser(ctx context.Context, name, email, phone, passwordHash string, role domain.Role) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, name, email, phone, passwordHash, role)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithSecrets, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithSecrets{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserWithSecretsByID(ctx context.Context, id string) (domain.UserWithSecrets, error) {
	if s.getUserWithSecretsByIDFunc != nil {
		return s.getUserWithSecretsByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserWithSecretsByID called unexpectedly")
	return domain.UserWithSecrets{}, errors.New("unexpected call")
}

func (s *stubUsersStore) SetLastLogin(ctx context.Context, id string, when time.Time) error {
	if s.setLastLoginFunc != nil {
		return s.setLastLoginFunc(ctx, id, when)
	}
	s.t.Fatalf("SetLastLogin called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) SetVerificationToken(ctx context.Context, id string, pair domain.TokenPair) error {
	if s.setVerificationTokenFunc != nil {
		return s.setVerificationTokenFunc(ctx, id, pair)
	}
	s.t.Fatalf("SetVerificationToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) SetResetToken(ctx context.Context, id string, pair domain.TokenPair) error {
	if s.setResetTokenFunc != nil {
		return s.setResetTokenFunc(ctx, id, pair)
	}
	s.t.Fatalf("SetResetToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) ClearResetToken(ctx context.Context, id string) error {
	if s.clearResetTokenFunc != nil {
		return s.clearResetTokenFunc(ctx, id)
	}
	s.t.Fatalf("ClearResetToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	if s.consumeVerificationTokenFunc != nil {
		return s.consumeVerificationTokenFunc(ctx, tokenHash, now)
	}
	s.t.Fatalf("ConsumeVerificationToken called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (domain.User, error) {
	if s.consumeResetTokenFunc != nil {
		return s.consumeResetTokenFunc(ctx, tokenHash, newPasswordHash, now)
	}
	s.t.Fatalf("ConsumeResetToken called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	if s.setPasswordHashFunc != nil {
		return s.setPasswordHashFunc(ctx, id, passwordHash)
	}
	s.t.Fatalf("SetPasswordHash called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) UpdateDetails(ctx context.Context, id, name, email, phone string) (domain.User, error) {
	if s.updateDetailsFunc != nil {
		return s.updateDetailsFunc(ctx, id, name, email, phone)
	}
	s.t.Fatalf("UpdateDetails called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

type stubAdminUsersStore struct {
	t *testing.T

	listUsersFunc       func(context.Context, int, int) ([]domain.User, error)
	getUserByIDFunc     func(context.Context, string) (domain.User, error)
	adminUpdateUserFunc func(context.Context, string, domain.UserUpdate) (domain.User, error)
	toggleActiveFunc    func(context.Context, string) (domain.User, error)
	deleteUserFunc      func(context.Context, string) error
	statsFunc           func(context.Context, time.Time) (domain.UserStats, error)
}

func (s *stubAdminUsersStore) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if s.listUsersFunc != nil {
		return s.listUsersFunc(ctx, limit, offset)
	}
	s.t.Fatalf("ListUsers called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubAdminUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubAdminUsersStore) AdminUpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	if s.adminUpdateUserFunc != nil {
		return s.adminUpdateUserFunc(ctx, id, upd)
	}
	s.t.Fatalf("AdminUpdateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubAdminUsersStore) ToggleActive(ctx context.Context, id string) (domain.User, error) {
	if s.toggleActiveFunc != nil {
		return s.toggleActiveFunc(ctx, id)
	}
	s.t.Fatalf("ToggleActive called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubAdminUsersStore) DeleteUser(ctx context.Context, id string) error {
	if s.deleteUserFunc != nil {
		return s.deleteUserFunc(ctx, id)
	}
	s.t.Fatalf("DeleteUser called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubAdminUsersStore) Stats(ctx context.Context, now time.Time) (domain.UserStats, error) {
	if s.statsFunc != nil {
		return s.statsFunc(ctx, now)
	}
	s.t.Fatalf("Stats called unexpectedly")
	return domain.UserStats{}, errors.New("unexpected call")
}
