package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("username, email and password (min 8 chars) are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Hook runs after an account is stored. A failing hook does not undo the
// account; Register returns its error alongside the user.
type Hook func(ctx context.Context, u *User, req RegisterRequest) error

type Service struct {
	repo        Repository
	afterCreate []Hook
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AfterCreate registers a post-registration hook.
func (s *Service) AfterCreate(h Hook) {
	s.afterCreate = append(s.afterCreate, h)
}

// CreateProfile is the default post-registration hook: every account gets a
// profile row, seeded with the phone given at sign-up.
func (s *Service) CreateProfile(ctx context.Context, u *User, req RegisterRequest) error {
	return s.repo.SaveProfile(ctx, &Profile{UserID: u.ID, Phone: strings.TrimSpace(req.Phone)})
}

// Register creates an account and then runs the post-creation hooks in order.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || len(req.Password) < 8 {
		return nil, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, ErrInvalidInput
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	for _, h := range s.afterCreate {
		if err := h(ctx, u, req); err != nil {
			return u, err
		}
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Profile{UserID: userID}, nil
	}
	return p, err
}

func (s *Service) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	if _, err := s.repo.GetByID(ctx, p.UserID); err != nil {
		return nil, err
	}
	p.Phone = strings.TrimSpace(p.Phone)
	if err := s.repo.SaveProfile(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Phone returns the phone on file, empty when there is none.
func (s *Service) Phone(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p.Phone, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	ok, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
