package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"facultypool/internal/metrics"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// a failed login never reveals which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnknownEmail is internal to the package; handlers never surface it.
	ErrUnknownEmail = errors.New("unknown email")

	// ErrCodeInvalid covers a wrong, already-used, or expired reset code.
	ErrCodeInvalid = errors.New("invalid or expired code")

	// ErrWrongDomain reports an email outside the institution domain.
	ErrWrongDomain = errors.New("email must use the institution domain")

	// Password-rule violations.
	ErrFieldsRequired    = errors.New("please fill in all fields")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordUnchanged = errors.New("new password cannot be the same as the old password")
)

const minPasswordLen = 8

// SessionStore registers and revokes live session ids.
type SessionStore interface {
	Put(ctx context.Context, jti string, facultyID int) error
	Alive(ctx context.Context, jti string) (bool, error)
	Delete(ctx context.Context, jti string) error
}

// CodeStore holds password-reset codes for their validity window.
type CodeStore interface {
	Put(ctx context.Context, email, code string) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// CredentialStore is the persistence surface for faculty credentials.
type CredentialStore interface {
	CredentialsByEmail(ctx context.Context, email string) (Credentials, error)
	UpdatePasswordHash(ctx context.Context, facultyID int, hash string) error
}

// Mailer delivers reset codes; treated as an opaque external collaborator.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// Session is an issued login session.
type Session struct {
	Token     string    `json:"token"`
	FacultyID int       `json:"faculty_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service implements faculty login and the password change/reset flows.
type Service struct {
	creds       CredentialStore
	sessions    SessionStore
	codes       CodeStore
	mailer      Mailer
	emailDomain string
	issuer      string
	signingKey  string
	sessionTTL  time.Duration
	hash        func(password string) (string, error)
	compare     func(hash, password string) error
	newCode     func() string
	logger      *zap.Logger
}

// NewService creates an auth service using bcrypt and 4-digit reset codes.
func NewService(creds CredentialStore, sessions SessionStore, codes CodeStore, mailer Mailer,
	emailDomain, issuer, signingKey string, sessionTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		creds:       creds,
		sessions:    sessions,
		codes:       codes,
		mailer:      mailer,
		emailDomain: strings.ToLower(emailDomain),
		issuer:      issuer,
		signingKey:  signingKey,
		sessionTTL:  sessionTTL,
		hash: func(password string) (string, error) {
			b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			return string(b), err
		},
		compare: func(hash, password string) error {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		},
		newCode: func() string { return fmt.Sprintf("%d", 1000+rand.Intn(9000)) },
		logger:  logger,
	}
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.Logins.WithLabelValues("denied").Inc()
		return Session{}, ErrInvalidCredentials
	}

	creds, err := s.creds.CredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownEmail) {
			metrics.Logins.WithLabelValues("denied").Inc()
			return Session{}, ErrInvalidCredentials
		}
		metrics.Logins.WithLabelValues("error").Inc()
		return Session{}, err
	}

	if err := s.compare(creds.PasswordHash, password); err != nil {
		metrics.Logins.WithLabelValues("denied").Inc()
		return Session{}, ErrInvalidCredentials
	}

	jti := uuid.NewString()
	token, exp, err := IssueToken(creds.FacultyID, creds.FirstName, jti, s.issuer, s.signingKey, s.sessionTTL)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return Session{}, err
	}
	if err := s.sessions.Put(ctx, jti, creds.FacultyID); err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return Session{}, err
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	s.logger.Info("faculty logged in", zap.Int("faculty_id", creds.FacultyID))
	return Session{Token: token, FacultyID: creds.FacultyID, Name: creds.FirstName, ExpiresAt: exp}, nil
}

// Logout revokes the session id.
func (s *Service) Logout(ctx context.Context, jti string) error {
	return s.sessions.Delete(ctx, jti)
}

// ChangePassword verifies the old password and stores a new hash. Unknown
// email and wrong old password both report ErrInvalidCredentials.
func (s *Service) ChangePassword(ctx context.Context, email, oldPassword, newPassword, confirm string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || oldPassword == "" || newPassword == "" || confirm == "" {
		return ErrFieldsRequired
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if oldPassword == newPassword {
		return ErrPasswordUnchanged
	}

	creds, err := s.creds.CredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownEmail) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := s.compare(creds.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.creds.UpdatePasswordHash(ctx, creds.FacultyID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.Int("faculty_id", creds.FacultyID))
	return nil
}

// ForgotPassword emails a reset code to a registered institution address.
// Unknown emails are dropped silently so the endpoint cannot be used to
// probe which addresses are registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.HasSuffix(email, s.emailDomain) {
		return ErrWrongDomain
	}

	if _, err := s.creds.CredentialsByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrUnknownEmail) {
			s.logger.Info("reset requested for unregistered email")
			return nil
		}
		return err
	}

	code := s.newCode()
	if err := s.codes.Put(ctx, email, code); err != nil {
		return err
	}
	if err := s.mailer.SendResetCode(ctx, email, code); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	s.logger.Info("reset code sent")
	return nil
}

// ResetPassword checks the emailed code and stores a new password hash.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword, confirm string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" || newPassword == "" || confirm == "" {
		return ErrFieldsRequired
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeInvalid
	}

	creds, err := s.creds.CredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownEmail) {
			return ErrCodeInvalid
		}
		return err
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.creds.UpdatePasswordHash(ctx, creds.FacultyID, hash); err != nil {
		return err
	}
	_ = s.codes.Delete(ctx, email)
	s.logger.Info("password reset", zap.Int("faculty_id", creds.FacultyID))
	return nil
}
