package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmsgraham/secret-santa/internal/email"
	"github.com/cmsgraham/secret-santa/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// loginTokenTTL is the magic link validity window.
const loginTokenTTL = time.Hour

// TokenStore abstracts user and auth-token persistence so the single-use
// guarantee can be tested without a database.
type TokenStore interface {
	GetOrCreateUser(emailAddr, name string) (*models.User, error)
	GetUser(id uint) (*models.User, error)
	CreateToken(token *models.AuthToken) error
	FindToken(token string) (*models.AuthToken, error)
	// ClaimToken atomically marks an unused token used. It reports false when
	// the token was already claimed, including by a concurrent request.
	ClaimToken(token string, usedAt time.Time) (bool, error)
	TouchLastLogin(userID uint, at time.Time) error
}

// AuthService issues magic-link login tokens and session JWTs.
type AuthService struct {
	store     TokenStore
	mailer    email.Mailer
	jwtSecret []byte
	baseURL   string
	now       func() time.Time
}

func NewAuthService(store TokenStore, mailer email.Mailer, jwtSecret, baseURL string) *AuthService {
	return &AuthService{
		store:     store,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

// IssueLoginToken creates (or finds) the user, stores a fresh single-use
// token and emails the magic link. The token string is returned so callers
// that own delivery (tests, CLI) can use it directly.
func (s *AuthService) IssueLoginToken(emailAddr, name string) (string, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if name == "" {
		name, _, _ = strings.Cut(emailAddr, "@")
	}

	user, err := s.store.GetOrCreateUser(emailAddr, name)
	if err != nil {
		return "", err
	}

	now := s.now()
	token := randomToken(32)
	authToken := &models.AuthToken{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(loginTokenTTL),
	}
	if err := s.store.CreateToken(authToken); err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/auth/verify/%s", s.baseURL, token)
	subject, body := email.MagicLinkMessage(user.Name, link)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		return "", fmt.Errorf("failed to send login email: %w", err)
	}

	return token, nil
}

// VerifyLoginToken validates and consumes a magic link token. Verification
// succeeds exactly once per token; every later attempt fails with
// ErrAuthInvalid, and the error never reveals whether the token was unknown,
// expired or already used.
func (s *AuthService) VerifyLoginToken(token string) (*models.User, error) {
	authToken, err := s.store.FindToken(token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if authToken == nil || !authToken.IsValid(now) {
		return nil, ErrAuthInvalid
	}

	claimed, err := s.store.ClaimToken(token, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAuthInvalid
	}

	user, err := s.store.GetUser(authToken.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.store.TouchLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	return user, nil
}

// GenerateToken issues the session JWT handed out after a verified login.
func (s *AuthService) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     s.now().Add(24 * time.Hour).Unix(),
		"iat":     s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses a session JWT and returns the user id it carries.
func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("invalid user_id in token")
	}

	return uint(userIDFloat), nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(id uint) (*models.User, error) {
	return s.store.GetUser(id)
}

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

type gormTokenStore struct {
	db *gorm.DB
}

// NewGormTokenStore backs the auth service with the users and auth_tokens tables.
func NewGormTokenStore(db *gorm.DB) TokenStore {
	return &gormTokenStore{db: db}
}

func (s *gormTokenStore) GetOrCreateUser(emailAddr, name string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", emailAddr).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = models.User{Email: emailAddr, Name: name}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormTokenStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormTokenStore) CreateToken(token *models.AuthToken) error {
	return s.db.Create(token).Error
}

func (s *gormTokenStore) FindToken(token string) (*models.AuthToken, error) {
	var authToken models.AuthToken
	err := s.db.Where("token = ?", token).First(&authToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &authToken, nil
}

func (s *gormTokenStore) ClaimToken(token string, usedAt time.Time) (bool, error) {
	// Compare-and-swap on used so two concurrent verifications cannot both win.
	res := s.db.Model(&models.AuthToken{}).
		Where("token = ? AND used = ?", token, false).
		Updates(map[string]interface{}{"used": true, "used_at": usedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *gormTokenStore) TouchLastLogin(userID uint, at time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", at).Error
}
