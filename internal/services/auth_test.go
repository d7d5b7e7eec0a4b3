package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmsgraham/secret-santa/internal/email"
	"github.com/cmsgraham/secret-santa/internal/models"
)

type memTokenStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	byMail map[string]uint
	tokens map[string]*models.AuthToken
	nextID uint
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{
		users:  map[uint]*models.User{},
		byMail: map[string]uint{},
		tokens: map[string]*models.AuthToken{},
		nextID: 1,
	}
}

func (s *memTokenStore) GetOrCreateUser(emailAddr, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byMail[emailAddr]; ok {
		u := *s.users[id]
		return &u, nil
	}
	u := &models.User{ID: s.nextID, Email: emailAddr, Name: name}
	s.nextID++
	s.users[u.ID] = u
	s.byMail[emailAddr] = u.ID
	out := *u
	return &out, nil
}

func (s *memTokenStore) GetUser(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	out := *u
	return &out, nil
}

func (s *memTokenStore) CreateToken(token *models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	s.tokens[token.Token] = &t
	return nil
}

func (s *memTokenStore) FindToken(token string) (*models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

func (s *memTokenStore) ClaimToken(token string, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	t.UsedAt = &usedAt
	return true, nil
}

func (s *memTokenStore) TouchLastLogin(userID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func newTestAuthService(store TokenStore) *AuthService {
	return NewAuthService(store, &recordingMailer{}, "test-secret", "http://localhost:3000")
}

func TestAuthService_IssueLoginToken(t *testing.T) {
	t.Run("creates user and mails the link", func(t *testing.T) {
		store := newMemTokenStore()
		mailer := &recordingMailer{}
		service := NewAuthService(store, mailer, "test-secret", "http://localhost:3000/")

		token, err := service.IssueLoginToken("Alice@Example.com ", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token == "" {
			t.Fatal("expected a token")
		}

		user, err := store.GetOrCreateUser("alice@example.com", "")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if user.Name != "alice" {
			t.Errorf("expected name from email local part, got %q", user.Name)
		}
		if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com" {
			t.Errorf("expected one mail to normalized address, got %v", mailer.sent)
		}
	})

	t.Run("rejects empty email", func(t *testing.T) {
		service := newTestAuthService(newMemTokenStore())
		if _, err := service.IssueLoginToken("   ", "Alice"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("reuses existing user", func(t *testing.T) {
		store := newMemTokenStore()
		service := newTestAuthService(store)

		if _, err := service.IssueLoginToken("bob@example.com", "Bob"); err != nil {
			t.Fatalf("first issue failed: %v", err)
		}
		if _, err := service.IssueLoginToken("bob@example.com", "Robert"); err != nil {
			t.Fatalf("second issue failed: %v", err)
		}
		if len(store.users) != 1 {
			t.Errorf("expected one user, got %d", len(store.users))
		}
	})
}

func TestAuthService_VerifyLoginToken(t *testing.T) {
	t.Run("succeeds exactly once", func(t *testing.T) {
		store := newMemTokenStore()
		service := newTestAuthService(store)

		token, err := service.IssueLoginToken("alice@example.com", "Alice")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		user, err := service.VerifyLoginToken(token)
		if err != nil {
			t.Fatalf("first verification failed: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("unexpected user %q", user.Email)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last login to be stamped")
		}

		if _, err := service.VerifyLoginToken(token); !errors.Is(err, ErrAuthInvalid) {
			t.Fatalf("expected ErrAuthInvalid on reuse, got %v", err)
		}
	})

	t.Run("unknown token fails", func(t *testing.T) {
		service := newTestAuthService(newMemTokenStore())
		if _, err := service.VerifyLoginToken("no-such-token"); !errors.Is(err, ErrAuthInvalid) {
			t.Fatalf("expected ErrAuthInvalid, got %v", err)
		}
	})

	t.Run("expired token fails", func(t *testing.T) {
		store := newMemTokenStore()
		service := newTestAuthService(store)

		token, err := service.IssueLoginToken("alice@example.com", "Alice")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		service.now = func() time.Time { return time.Now().Add(loginTokenTTL + time.Minute) }
		if _, err := service.VerifyLoginToken(token); !errors.Is(err, ErrAuthInvalid) {
			t.Fatalf("expected ErrAuthInvalid after expiry, got %v", err)
		}
	})

	t.Run("concurrent verification has a single winner", func(t *testing.T) {
		store := newMemTokenStore()
		service := newTestAuthService(store)

		token, err := service.IssueLoginToken("alice@example.com", "Alice")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		const workers = 20
		var wg sync.WaitGroup
		wins := make(chan struct{}, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := service.VerifyLoginToken(token); err == nil {
					wins <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(wins)

		won := 0
		for range wins {
			won++
		}
		if won != 1 {
			t.Fatalf("expected exactly one successful verification, got %d", won)
		}
	})
}

func TestAuthService_SessionTokens(t *testing.T) {
	service := newTestAuthService(newMemTokenStore())

	t.Run("round trip", func(t *testing.T) {
		signed, err := service.GenerateToken(42)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		userID, err := service.ValidateToken(signed)
		if err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		if userID != 42 {
			t.Errorf("expected user 42, got %d", userID)
		}
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewAuthService(newMemTokenStore(), &recordingMailer{}, "other-secret", "http://localhost")
		signed, err := other.GenerateToken(42)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if _, err := service.ValidateToken(signed); err == nil {
			t.Fatal("expected validation failure")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := service.ValidateToken("not-a-jwt"); err == nil {
			t.Fatal("expected validation failure")
		}
	})
}

var _ email.Mailer = (*recordingMailer)(nil)
