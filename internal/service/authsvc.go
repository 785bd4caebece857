package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"midtownwebserver/internal/auth"
	"midtownwebserver/internal/domain"
	"midtownwebserver/internal/email"
)

type UsersStore interface {
	CreateUser(ctx context.Context, name, email, phone, passwordHash string, role domain.Role) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithSecrets, error)
	GetUserWithSecretsByID(ctx context.Context, id string) (domain.UserWithSecrets, error)
	SetLastLogin(ctx context.Context, id string, when time.Time) error
	SetVerificationToken(ctx context.Context, id string, pair domain.TokenPair) error
	SetResetToken(ctx context.Context, id string, pair domain.TokenPair) error
	ClearResetToken(ctx context.Context, id string) error
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (domain.User, error)
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id, name, email, phone string) (domain.User, error)
}

// AuthService owns the credential lifecycle: registration, login, email
// verification, password reset and the bearer-token checks behind protected
// routes.
type AuthService struct {
	Users    UsersStore
	Sessions *auth.SessionIssuer
	Email    email.Sender
	Logger   *slog.Logger

	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration

	// URL builders are injected so the service never reads request state.
	BuildVerifyURL func(token string) string
	BuildResetURL  func(token string) string

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates the account, stores a verification token pair and sends
// the verification email. A delivery failure is logged but does not fail
// registration; the session is issued regardless.
func (s *AuthService) Register(ctx context.Context, name, emailAddr, phone, password string) (domain.User, string, error) {
	emailAddr = NormalizeEmail(emailAddr)
	name = strings.TrimSpace(name)

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	u, err := s.Users.CreateUser(ctx, name, emailAddr, phone, passwordHash, domain.RoleUser)
	if err != nil {
		return domain.User{}, "", err
	}

	plaintext, tokenHash, err := auth.NewToken()
	if err != nil {
		return domain.User{}, "", err
	}
	pair := domain.TokenPair{Hash: tokenHash, ExpiresAt: s.now().Add(s.VerifyTokenTTL)}
	if err := s.Users.SetVerificationToken(ctx, u.ID, pair); err != nil {
		return domain.User{}, "", err
	}

	if err := s.sendVerification(ctx, u.Email, plaintext); err != nil {
		s.logger().Error("send verification email failed", "user_id", u.ID, "err", err)
	}

	bearer, err := s.Sessions.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, bearer, nil
}

// Login checks the secret and activation state. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, string, error) {
	emailAddr = NormalizeEmail(emailAddr)

	u, err := s.Users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	if !u.IsActive {
		return domain.User{}, "", domain.ErrUserDeactivated
	}

	// Best effort; a failed stamp must not block the login.
	_ = s.Users.SetLastLogin(ctx, u.ID, s.now())

	bearer, err := s.Sessions.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u.User, bearer, nil
}

// UserForToken backs the auth gateway: verify the bearer token, load the
// principal and check it still exists and is active.
func (s *AuthService) UserForToken(ctx context.Context, bearer string) (domain.User, error) {
	userID, err := s.Sessions.Verify(bearer)
	if err != nil {
		return domain.User{}, domain.ErrUnauthorized
	}

	u, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	if !u.IsActive {
		return domain.User{}, domain.ErrUserDeactivated
	}
	return u, nil
}

// VerifyEmail consumes a verification token. Matching and expiry are checked
// in a single store operation.
func (s *AuthService) VerifyEmail(ctx context.Context, plaintext string) (domain.User, error) {
	return s.Users.ConsumeVerificationToken(ctx, auth.HashToken(plaintext), s.now())
}

// ForgotPassword issues a reset token pair and emails the link. If the email
// cannot be delivered the pair is cleared again so no unusable token
// lingers in the store.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = NormalizeEmail(emailAddr)

	u, err := s.Users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	plaintext, tokenHash, err := auth.NewToken()
	if err != nil {
		return err
	}
	pair := domain.TokenPair{Hash: tokenHash, ExpiresAt: s.now().Add(s.ResetTokenTTL)}
	if err := s.Users.SetResetToken(ctx, u.ID, pair); err != nil {
		return err
	}

	if err := s.sendReset(ctx, u.Email, plaintext); err != nil {
		s.logger().Error("send reset email failed", "user_id", u.ID, "err", err)
		if clearErr := s.Users.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.logger().Error("clear reset token failed", "user_id", u.ID, "err", clearErr)
		}
		return fmt.Errorf("%w: %w", domain.ErrEmailDelivery, err)
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the secret and issues a
// fresh session. Previously issued sessions stay valid until they expire.
func (s *AuthService) ResetPassword(ctx context.Context, plaintext, newPassword string) (domain.User, string, error) {
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return domain.User{}, "", err
	}

	u, err := s.Users.ConsumeResetToken(ctx, auth.HashToken(plaintext), passwordHash, s.now())
	if err != nil {
		return domain.User{}, "", err
	}

	bearer, err := s.Sessions.Issue(u.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, bearer, nil
}

// UpdatePassword requires the current secret before accepting a new one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	u, err := s.Users.GetUserWithSecretsByID(ctx, userID)
	if err != nil {
		return "", err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, currentPassword)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.Users.SetPasswordHash(ctx, userID, passwordHash); err != nil {
		return "", err
	}

	return s.Sessions.Issue(userID)
}

func (s *AuthService) UpdateDetails(ctx context.Context, userID, name, emailAddr, phone string) (domain.User, error) {
	return s.Users.UpdateDetails(ctx, userID, strings.TrimSpace(name), NormalizeEmail(emailAddr), strings.TrimSpace(phone))
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.Users.GetUserByID(ctx, userID)
}

func (s *AuthService) sendVerification(ctx context.Context, to, token string) error {
	if s.Email == nil || s.BuildVerifyURL == nil {
		return nil
	}
	return s.Email.Send(ctx, email.VerificationMessage(to, s.BuildVerifyURL(token)))
}

func (s *AuthService) sendReset(ctx context.Context, to, token string) error {
	if s.Email == nil {
		return nil
	}
	resetURL := ""
	if s.BuildResetURL != nil {
		resetURL = s.BuildResetURL(token)
	}
	return s.Email.Send(ctx, email.PasswordResetMessage(to, resetURL))
}
