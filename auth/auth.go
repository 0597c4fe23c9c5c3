/*
Package auth provides login, password handling, and token-based identity.

PURPOSE:
  Session handling for the roster API: bcrypt password verification, HS256
  token issue/verify, and the request-context identity that middleware and
  handlers consult for role checks.

TOKEN SHAPE:
  Standard registered claims with the staff ID as subject, plus a custom
  role claim. Tokens expire; there is no refresh flow, the client logs in
  again.

SEE ALSO:
  - api/middleware.go: where tokens are verified per request
*/
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/shift-engine/schedule"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccountDisabled    = errors.New("account is disabled")
)

const defaultTokenTTL = 12 * time.Hour

// Identity is the authenticated caller, attached to the request context.
type Identity struct {
	StaffID  schedule.StaffID
	Username string
	Role     schedule.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == schedule.RoleAdmin
}

type ctxKey struct{}

// WithIdentity attaches the identity to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity set by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// =============================================================================
// PASSWORDS
// =============================================================================

// HashPassword produces a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// TempPassword generates a random one-time password for new accounts and
// resets. The member must change it on first login.
func TempPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// =============================================================================
// TOKENS
// =============================================================================

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: defaultTokenTTL}
}

// Issue returns a signed token for the staff member.
func (t *TokenIssuer) Issue(staff *schedule.Staff) (string, error) {
	now := time.Now()
	c := claims{
		Role: string(staff.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(staff.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the embedded identity. The username is
// not in the token; callers needing it load the staff record.
func (t *TokenIssuer) Verify(tokenString string) (Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	staffID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		StaffID: schedule.StaffID(staffID),
		Role:    schedule.Role(c.Role),
	}, nil
}

// =============================================================================
// LOGIN SERVICE
// =============================================================================

// Service authenticates users against the staff store.
type Service struct {
	staff  schedule.StaffStore
	issuer *TokenIssuer
}

func NewService(staff schedule.StaffStore, issuer *TokenIssuer) *Service {
	return &Service{staff: staff, issuer: issuer}
}

// LoginResult carries the session token and the flags the client needs
// immediately after login.
type LoginResult struct {
	Token              string
	Staff              *schedule.Staff
	MustChangePassword bool
}

// Login verifies credentials and issues a token. The "_open" placeholder and
// inactive accounts can never log in.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	staff, err := s.staff.GetStaffByUsername(ctx, username)
	if err != nil {
		if schedule.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if staff.IsOpenPlaceholder() {
		return nil, ErrInvalidCredentials
	}
	if !staff.IsActive {
		return nil, ErrAccountDisabled
	}
	if !CheckPassword(staff.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(staff)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:              token,
		Staff:              staff,
		MustChangePassword: staff.MustChangePassword,
	}, nil
}

// ChangePassword verifies the current password and stores a new hash,
// clearing the must-change flag.
func (s *Service) ChangePassword(ctx context.Context, staffID schedule.StaffID, current, next string) error {
	staff, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		return err
	}
	if !CheckPassword(staff.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", schedule.ErrInvalidState)
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	staff.PasswordHash = hash
	staff.MustChangePassword = false
	return s.staff.UpdateStaff(ctx, staff)
}

// Identify resolves a verified token identity against the live staff record,
// so role changes and deactivation take effect on the next request.
func (s *Service) Identify(ctx context.Context, tokenString string) (Identity, error) {
	id, err := s.issuer.Verify(tokenString)
	if err != nil {
		return Identity{}, err
	}
	staff, err := s.staff.GetStaff(ctx, id.StaffID)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if !staff.IsActive || staff.IsOpenPlaceholder() {
		return Identity{}, ErrAccountDisabled
	}
	return Identity{StaffID: staff.ID, Username: staff.Username, Role: staff.Role}, nil
}
