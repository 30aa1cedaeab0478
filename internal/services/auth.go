package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/auth"
	"github.com/BigSlendr/BBE-Menu/internal/mail"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/google/uuid"
)

// Sentinel errors surfaced to handlers.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrThrottled          = errors.New("too many requests")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	sessionTTL    = 7 * 24 * time.Hour
	resetTokenTTL = 30 * time.Minute

	resetWindow     = 15 * time.Minute
	resetIPLimit    = 5
	resetEmailLimit = 3
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, id string, firstName, lastName, phone *string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) error
	Get(ctx context.Context, id string) (types.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID string) error
}

// ResetRepository defines persistence operations for password-reset
// tokens and their request throttle.
type ResetRepository interface {
	Create(ctx context.Context, token types.PasswordResetToken) error
	GetByHash(ctx context.Context, tokenHash string, now time.Time) (types.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
	ThrottleCheck(ctx context.Context, scope, identifier string, limit int, window time.Duration) (bool, error)
}

// AuthService encapsulates signup, session, and password-recovery
// use-cases.
type AuthService struct {
	users         UserRepository
	sessions      SessionRepository
	resets        ResetRepository
	verifications VerificationRepository
	mailer        *mail.Mailer
	from          string
	siteURL       string
}

func NewAuthService(users UserRepository, sessions SessionRepository, resets ResetRepository, verifications VerificationRepository, mailer *mail.Mailer, from, siteURL string) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		resets:        resets,
		verifications: verifications,
		mailer:        mailer,
		from:          from,
		siteURL:       siteURL,
	}
}

// SignupInput carries the validated signup fields.
type SignupInput struct {
	Email     string
	Password  string
	Phone     string
	FirstName string
	LastName  string
	DOB       string
}

// Signup creates a pending account and an initial session. Duplicate
// emails surface as store.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (types.User, types.Session, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return types.User{}, types.Session{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		ID:            uuid.NewString(),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:         strings.TrimSpace(input.Phone),
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		DOB:           input.DOB,
		PasswordHash:  hash,
		AccountStatus: types.VerificationPending,
		Tier:          TierMember,
		IsActive:      true,
	})
	if err != nil {
		return types.User{}, types.Session{}, err
	}

	// Seed the review queue entry so the account is addressable by
	// reviewers before any upload happens.
	if err := s.verifications.Upsert(ctx, types.Verification{
		UserID:    user.ID,
		Status:    types.VerificationUnverified,
		UpdatedAt: time.Now(),
	}); err != nil {
		return types.User{}, types.Session{}, err
	}

	session, err := s.newSession(ctx, user.ID)
	return user, session, err
}

// VerificationStatus reports the user's ID-review state for session
// payloads. Missing rows read as unverified.
func (s *AuthService) VerificationStatus(ctx context.Context, userID string) string {
	verification, err := s.verifications.Get(ctx, userID)
	if err != nil {
		return types.VerificationUnverified
	}
	return verification.Status
}

// Signin verifies credentials and opens a session. Deactivated accounts
// cannot sign in.
func (s *AuthService) Signin(ctx context.Context, email, password string) (types.User, types.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.Session{}, ErrInvalidCredentials
		}
		return types.User{}, types.Session{}, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, types.Session{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return types.User{}, types.Session{}, ErrAccountDisabled
	}

	session, err := s.newSession(ctx, user.ID)
	return user, session, err
}

// Signout deletes the session. A missing session is not an error.
func (s *AuthService) Signout(ctx context.Context, sessionID string) error {
	err := s.sessions.Delete(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// UserFromSession resolves a cookie token to its user. Expired sessions
// and deactivated users resolve to store.ErrNotFound so callers treat
// both as signed-out.
func (s *AuthService) UserFromSession(ctx context.Context, sessionID string) (types.User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return types.User{}, err
	}
	if !session.Valid(time.Now()) {
		return types.User{}, store.ErrNotFound
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return types.User{}, err
	}
	if !user.IsActive {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

// UpdateProfile changes the caller's name and phone fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, firstName, lastName, phone *string) (types.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, firstName, lastName, phone); err != nil {
		return types.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// ForgotPassword issues a single-use reset token and mails its link.
// The response never reveals whether the email has an account; only the
// throttle is observable.
func (s *AuthService) ForgotPassword(ctx context.Context, email, requestIP, userAgent string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := s.resets.ThrottleCheck(ctx, "ip", requestIP, resetIPLimit, resetWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrThrottled
	}
	allowed, err = s.resets.ThrottleCheck(ctx, "email", email, resetEmailLimit, resetWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrThrottled
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.resets.Create(ctx, types.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: auth.HashToken(token),
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
		RequestIP: requestIP,
		UserAgent: userAgent,
	}); err != nil {
		return err
	}

	subject, body := mail.PasswordReset(s.siteURL, token)
	if _, err := s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      []string{user.Email},
		Subject: subject,
		HTML:    body,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrNotifySend, err)
	}
	return nil
}

// ResetPassword consumes a valid token, rewrites the password, and
// revokes every session the account has open.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	record, err := s.resets.GetByHash(ctx, auth.HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if err := s.users.UpdatePassword(ctx, record.UserID, hash); err != nil {
		return err
	}
	return s.sessions.DeleteForUser(ctx, record.UserID)
}

func (s *AuthService) newSession(ctx context.Context, userID string) (types.Session, error) {
	now := time.Now()
	session := types.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return types.Session{}, err
	}
	return session, nil
}
