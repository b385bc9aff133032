package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
	"github.com/oksasatya/meetup-api/internal/domain/repository"
)

func TestCreateAndLookup(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	u := &entity.User{Username: "alice", Email: "a@x.com", Password: "digest", Nickname: "Al"}
	require.NoError(t, r.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "digest", byName.Password)

	// callers get copies
	byName.Nickname = "changed"
	again, _ := r.GetByUsername(ctx, "alice")
	assert.Equal(t, "Al", again.Nickname)
}

func TestLookupMissing(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	_, err := r.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByEmail(ctx, "nope@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByUsername(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_Conflicts(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &entity.User{Username: "alice", Email: "a@x.com"}))

	var conflict *repository.ConflictError

	err := r.Create(ctx, &entity.User{Username: "bob", Email: "a@x.com"})
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Field)

	err = r.Create(ctx, &entity.User{Username: "alice", Email: "b@x.com"})
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "username", conflict.Field)

	assert.Equal(t, 1, r.Len())
}

func TestCreate_ConcurrentSameEmail(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- r.Create(ctx, &entity.User{Username: fmt.Sprintf("user%d", i), Email: "same@x.com"})
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, r.Len())
}
