package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
	repo "github.com/oksasatya/meetup-api/internal/domain/repository"
	"github.com/oksasatya/meetup-api/pkg/helpers"
	"github.com/oksasatya/meetup-api/pkg/mailer"
)

// bcrypt ignores everything past 72 bytes and newer x/crypto refuses it outright.
const maxPasswordBytes = 72

// JobPublisher enqueues background jobs. *helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthService struct {
	Repo    repo.UserRepository
	Hasher  *helpers.Hasher
	Tokens  *helpers.TokenManager
	Logger  *logrus.Logger
	Index   *UserIndex
	Mail    JobPublisher
	AppName string

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(repo repo.UserRepository, hasher *helpers.Hasher, tokens *helpers.TokenManager, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:   repo,
		Hasher: hasher,
		Tokens: tokens,
		Logger: logger,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Nickname string
}

func (in RegisterInput) validate() error {
	missing := map[string]string{}
	for field, v := range map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"password": in.Password,
		"nickname": in.Nickname,
	} {
		if strings.TrimSpace(v) == "" {
			missing[field] = "is required"
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Message: MsgAllFieldsRequired, Fields: missing}
	}
	if len(in.Password) > maxPasswordBytes {
		return &ValidationError{Message: MsgInvalidPayload, Fields: map[string]string{"password": "must be at most 72 bytes"}}
	}
	return nil
}

// Register creates an account. The email pre-check only saves a hash on the
// common path; the store's unique constraints decide races.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	_, err := s.Repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, &ConflictError{Field: "email"}
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: digest,
		Nickname: in.Nickname,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		var conflict *repo.ConflictError
		if errors.As(err, &conflict) {
			return nil, &ConflictError{Field: conflict.Field}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	registrationsTotal.Add(1)
	s.afterRegister(ctx, u)
	return u, nil
}

// afterRegister runs best-effort side effects; the account already exists.
func (s *AuthService) afterRegister(ctx context.Context, u *entity.User) {
	if err := s.Index.Put(ctx, u); err != nil {
		helpers.LogError(s.Logger, "index user failed", err, logrus.Fields{"user_id": u.ID})
	}
	if s.Mail != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateWelcome,
			Data: map[string]any{
				"Username": u.Username,
				"Nickname": u.Nickname,
				"AppName":  s.AppName,
			},
		}
		if err := s.Mail.PublishJSON(ctx, job); err != nil {
			helpers.LogError(s.Logger, "enqueue welcome email failed", err, logrus.Fields{"user_id": u.ID})
		}
	}
}

type LoginResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Login checks username/password and issues a bearer token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		loginsFailed.Add(1)
		return nil, ErrInvalidCredentials
	}

	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// burn the same bcrypt time as a real comparison
			s.Hasher.Verify(password, s.dummyHash())
			loginsFailed.Add(1)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if !s.Hasher.Verify(password, u.Password) {
		loginsFailed.Add(1)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	loginsOK.Add(1)
	return &LoginResult{UserID: u.ID, Token: token, ExpiresAt: exp}, nil
}

// Authenticate verifies a bearer token and returns the identity it carries.
// Errors are helpers.ErrInvalidToken or helpers.ErrExpiredToken.
func (s *AuthService) Authenticate(token string) (entity.Identity, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return entity.Identity{}, err
	}
	return entity.Identity{UserID: claims.UserID}, nil
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		d, err := s.Hasher.Hash("meetup-api-dummy-password")
		if err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}
