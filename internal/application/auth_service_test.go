package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
	repo "github.com/oksasatya/meetup-api/internal/domain/repository"
	"github.com/oksasatya/meetup-api/internal/infrastructure/memory"
	"github.com/oksasatya/meetup-api/pkg/helpers"
	"github.com/oksasatya/meetup-api/pkg/mailer"
)

// stubRepo wraps the memory store and lets a test force errors per call.
type stubRepo struct {
	*memory.UserRepository

	getByEmailErr    error
	getByUsernameErr error
	createErr        error
	calls            int
}

func (s *stubRepo) Create(ctx context.Context, u *entity.User) error {
	s.calls++
	if s.createErr != nil {
		return s.createErr
	}
	return s.UserRepository.Create(ctx, u)
}

func (s *stubRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.calls++
	if s.getByEmailErr != nil {
		return nil, s.getByEmailErr
	}
	return s.UserRepository.GetByEmail(ctx, email)
}

func (s *stubRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	s.calls++
	if s.getByUsernameErr != nil {
		return nil, s.getByUsernameErr
	}
	return s.UserRepository.GetByUsername(ctx, username)
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func newTestAuthService(t *testing.T, r repo.UserRepository) (*AuthService, *test.Hook) {
	t.Helper()
	tokens, err := helpers.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()
	return NewAuthService(r, helpers.NewHasher(bcrypt.MinCost), tokens, logger), hook
}

func aliceInput() RegisterInput {
	return RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1", Nickname: "Al"}
}

func TestRegister_Success(t *testing.T) {
	store := memory.NewUserRepository()
	svc, _ := newTestAuthService(t, store)

	u, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, svc.Hasher.Verify("secret1", u.Password))
	assert.Equal(t, 1, store.Len())
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *RegisterInput)
		missing string
	}{
		{name: "username", mutate: func(in *RegisterInput) { in.Username = "" }, missing: "username"},
		{name: "email", mutate: func(in *RegisterInput) { in.Email = "" }, missing: "email"},
		{name: "password", mutate: func(in *RegisterInput) { in.Password = "" }, missing: "password"},
		{name: "nickname blank", mutate: func(in *RegisterInput) { in.Nickname = "   " }, missing: "nickname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubRepo{UserRepository: memory.NewUserRepository()}
			svc, _ := newTestAuthService(t, store)

			in := aliceInput()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, MsgAllFieldsRequired, vErr.Message)
			assert.Contains(t, vErr.Fields, tt.missing)
			assert.Zero(t, store.calls, "store must not be touched")
		})
	}
}

func TestRegister_PasswordTooLong(t *testing.T) {
	store := &stubRepo{UserRepository: memory.NewUserRepository()}
	svc, _ := newTestAuthService(t, store)

	in := aliceInput()
	in.Password = strings.Repeat("p", 73)
	_, err := svc.Register(context.Background(), in)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, MsgInvalidPayload, vErr.Message)
	assert.Zero(t, store.calls)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := memory.NewUserRepository()
	svc, _ := newTestAuthService(t, store)
	_, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	in := aliceInput()
	in.Username = "alice2"
	_, err = svc.Register(context.Background(), in)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Field)
	assert.Equal(t, 1, store.Len())
}

func TestRegister_StoreConstraintWinsRace(t *testing.T) {
	// the pre-check saw nothing, the insert hits the unique constraint
	store := &stubRepo{
		UserRepository: memory.NewUserRepository(),
		createErr:      &repo.ConflictError{Field: "email"},
	}
	svc, _ := newTestAuthService(t, store)

	_, err := svc.Register(context.Background(), aliceInput())

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Field)
	assert.Equal(t, 0, store.Len())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	store := memory.NewUserRepository()
	svc, _ := newTestAuthService(t, store)
	_, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	in := aliceInput()
	in.Email = "other@x.com"
	_, err = svc.Register(context.Background(), in)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "username", conflict.Field)
}

func TestRegister_StoreErrors(t *testing.T) {
	lookupFail := &stubRepo{UserRepository: memory.NewUserRepository(), getByEmailErr: errors.New("db down")}
	svc, _ := newTestAuthService(t, lookupFail)
	_, err := svc.Register(context.Background(), aliceInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))

	createFail := &stubRepo{UserRepository: memory.NewUserRepository(), createErr: errors.New("disk full")}
	svc, _ = newTestAuthService(t, createFail)
	_, err = svc.Register(context.Background(), aliceInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRegister_EnqueuesWelcomeEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, memory.NewUserRepository())
	pub := &recordingPublisher{}
	svc.Mail = pub
	svc.AppName = "meetup"

	_, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", job.To)
	assert.Equal(t, mailer.TemplateWelcome, job.Template)
	assert.Equal(t, "Al", job.Data["Nickname"])
	assert.Equal(t, "meetup", job.Data["AppName"])
}

func TestRegister_MailFailureIsLoggedOnly(t *testing.T) {
	svc, hook := newTestAuthService(t, memory.NewUserRepository())
	svc.Mail = &recordingPublisher{err: errors.New("broker gone")}

	u, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)
	require.NotNil(t, u)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "enqueue welcome email failed", entry.Message)
	assert.Equal(t, u.ID, entry.Data["user_id"])
}

func TestLogin(t *testing.T) {
	store := memory.NewUserRepository()
	svc, _ := newTestAuthService(t, store)
	u, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.Tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	store := memory.NewUserRepository()
	svc, _ := newTestAuthService(t, store)
	_, err := svc.Register(context.Background(), aliceInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "alice", "wrong")
	_, unknownUser := svc.Login(context.Background(), "mallory", "secret1")
	_, blank := svc.Login(context.Background(), "", "")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.ErrorIs(t, blank, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLogin_StoreError(t *testing.T) {
	store := &stubRepo{UserRepository: memory.NewUserRepository(), getByUsernameErr: errors.New("db down")}
	svc, _ := newTestAuthService(t, store)

	_, err := svc.Login(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestAuthService(t, memory.NewUserRepository())
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Tokens = svc.Tokens.WithClock(func() time.Time { return issuedAt })

	tok, _, err := svc.Tokens.Issue("u-1")
	require.NoError(t, err)

	id, err := svc.Authenticate(tok)
	require.NoError(t, err)
	assert.Equal(t, entity.Identity{UserID: "u-1"}, id)

	_, err = svc.Authenticate("garbage")
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)

	svc.Tokens = svc.Tokens.WithClock(func() time.Time { return issuedAt.Add(time.Hour + time.Second) })
	_, err = svc.Authenticate(tok)
	assert.ErrorIs(t, err, helpers.ErrExpiredToken)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Message: MsgAllFieldsRequired, Fields: map[string]string{"nickname": "is required", "email": "is required"}}
	assert.Equal(t, "all fields required: email, nickname", err.Error())
	assert.Equal(t, "x", (&ValidationError{Message: "x"}).Error())
}
