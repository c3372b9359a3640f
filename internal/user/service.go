package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrBadCredentials = errors.New("invalid email or password")

// ActivationMailer delivers the account-activation link. Delivery is
// best-effort: a failure is logged, never surfaced to the caller.
type ActivationMailer interface {
	SendActivation(ctx context.Context, toEmail, firstName, link string) error
}

type Service struct {
	repo    Repository
	tokens  *TokenMaker
	mailer  ActivationMailer
	baseURL string
	logger  zerolog.Logger
}

func NewService(repo Repository, tokens *TokenMaker, mailer ActivationMailer, baseURL string, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, mailer: mailer, baseURL: baseURL, logger: logger}
}

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates an inactive account and emails an activation link.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Email == "" || in.FirstName == "" || in.LastName == "" || in.Password == "" {
		return nil, errors.New("email, first_name, last_name and password are required")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsActive:     false,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.tokens.ActivationToken(u.ID)
	if err != nil {
		return nil, err
	}
	link := fmt.Sprintf("%s/activate/%s", s.baseURL, token)
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.mailer.SendActivation(ctx, u.Email, u.FirstName, link); err != nil {
			s.logger.Error().Err(err).Str("email", u.Email).Msg("activation mail failed")
		}
	}()
	return u, nil
}

// Activate flips is_active for the account named by a valid activation token.
func (s *Service) Activate(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.VerifyActivation(token)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Login verifies credentials and returns a session token. Inactive accounts
// cannot log in.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if !u.IsActive || !CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrBadCredentials
	}
	token, err := s.tokens.SessionToken(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
