package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

type env struct {
	store   blobstore.Store
	users   *users.FileRepository
	history history.Repository
	locks   *UserLocks
	hist    *HistoryService
	userSvc *UserService
	sieve   *SieveService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ur, err := users.OpenFileRepository(context.Background(), store)
	require.NoError(t, err)
	return newEnvWith(store, ur, history.NewFileRepository(store))
}

func newEnvWith(store blobstore.Store, ur *users.FileRepository, hr history.Repository) *env {
	locks := NewUserLocks()
	hist := NewHistoryService(hr, ur, locks, logging.Nop{})
	return &env{
		store:   store,
		users:   ur,
		history: hr,
		locks:   locks,
		hist:    hist,
		userSvc: NewUserService(ur, hist, locks, logging.Nop{}),
		sieve:   NewSieveService(ur, hist, locks, 1_000_000, nil, logging.Nop{}),
	}
}

func (e *env) register(t *testing.T, login string) *models.User {
	t.Helper()
	u, err := e.userSvc.Register(context.Background(), login, login+"@example.com", "Secret!1")
	require.NoError(t, err)
	return u
}

func operations(t *testing.T, e *env, u *models.User) []string {
	t.Helper()
	entries, err := e.history.List(context.Background(), u.ID)
	require.NoError(t, err)
	ops := make([]string, 0, len(entries))
	for _, en := range entries {
		ops = append(ops, en.Operation)
	}
	return ops
}

func TestRegister(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice")

	assert.Equal(t, int64(1), u.ID)
	assert.Len(t, u.SessionSecret, 64)
	assert.Equal(t, signature.DeriveToken(u.SessionSecret, u.CreatedAt), u.SessionToken)
	assert.Equal(t, []string{models.OpRegister}, operations(t, e, u))
}

func TestRegister_Conflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	_, err := e.userSvc.Register(ctx, "alice", "new@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = e.userSvc.Register(ctx, "bobby", "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	_, err := e.userSvc.Register(context.Background(), " ", "a@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorBadRequest)
}

func TestRegister_ConcurrentSameLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.userSvc.Register(ctx, "alice", fmt.Sprintf("a%d@example.com", i), "pw")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, common.ErrorConflict)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_IssueFailure(t *testing.T) {
	e := newEnv(t)
	e.userSvc.issue = func(time.Time) (signature.Session, error) { return signature.Session{}, errors.New("rng broken") }

	_, err := e.userSvc.Register(context.Background(), "alice", "a@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestAuthenticate_RotatesSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := e.register(t, "alice")

	u, err := e.userSvc.Authenticate(ctx, "alice", "Secret!1")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)
	assert.NotEqual(t, reg.SessionSecret, u.SessionSecret)
	assert.NotEqual(t, reg.SessionToken, u.SessionToken)

	// the old session is no longer accepted
	_, err = e.sieve.ListSaved(ctx, reg)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = e.sieve.ListSaved(ctx, u)
	assert.NoError(t, err)

	assert.Equal(t, []string{models.OpRegister, models.OpAuthenticate}, operations(t, e, u))
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")

	_, err := e.userSvc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = e.userSvc.Authenticate(context.Background(), "nobody", "Secret!1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	_, err := e.userSvc.ChangePassword(ctx, u, "wrong", "New!pass1")
	require.ErrorIs(t, err, common.ErrorBadRequest)

	_, err = e.userSvc.ChangePassword(ctx, u, "Secret!1", "")
	require.ErrorIs(t, err, common.ErrorBadRequest)

	changed, err := e.userSvc.ChangePassword(ctx, u, "Secret!1", "New!pass1")
	require.NoError(t, err)
	assert.NotEqual(t, u.SessionSecret, changed.SessionSecret)

	_, err = e.userSvc.Authenticate(ctx, "alice", "Secret!1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = e.userSvc.Authenticate(ctx, "alice", "New!pass1")
	assert.NoError(t, err)
}

func TestGenerate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	for _, limit := range []int{0, -5, 1_000_001} {
		_, err := e.sieve.Generate(ctx, u, limit)
		assert.ErrorIs(t, err, common.ErrorBadRequest, "limit %d", limit)
	}

	primes, err := e.sieve.Generate(ctx, u, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5, 7}, primes)

	stored, err := e.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SieveParams{Limit: 10, Count: 4}, stored.CurrentParams)

	entries, err := e.history.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "generated 4 primes up to 10", entries[len(entries)-1].Details)
}

func TestCurrentAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	_, _, err := e.sieve.Current(ctx, u)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.sieve.Generate(ctx, u, 30)
	require.NoError(t, err)

	primes, params, err := e.sieve.Current(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, primes)
	assert.Equal(t, models.SieveParams{Limit: 30, Count: 10}, params)

	require.NoError(t, e.sieve.DeleteCurrent(ctx, u))
	require.NoError(t, e.sieve.DeleteCurrent(ctx, u), "deleting nothing is fine")

	_, _, err = e.sieve.Current(ctx, u)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCurrent_LimitOneHasNoResult(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	primes, err := e.sieve.Generate(ctx, u, 1)
	require.NoError(t, err)
	assert.Empty(t, primes)

	_, _, err = e.sieve.Current(ctx, u)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSavedParams(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	list, err := e.sieve.ListSaved(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	total, err := e.sieve.SaveParams(ctx, u, "small", 100)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = e.sieve.SaveParams(ctx, u, "big", 100000)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = e.sieve.SaveParams(ctx, u, "small", 5)
	require.ErrorIs(t, err, common.ErrorConflict)

	_, err = e.sieve.SaveParams(ctx, u, "  ", 5)
	require.ErrorIs(t, err, common.ErrorBadRequest)

	list, err = e.sieve.ListSaved(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "small", list[0].Name)
	assert.Equal(t, "big", list[1].Name)

	remaining, err := e.sieve.DeleteSaved(ctx, u, "small")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = e.sieve.DeleteSaved(ctx, u, "small")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHistory_ClearThenList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	entries, err := e.hist.List(ctx, u)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, e.hist.Clear(ctx, u))

	entries, err = e.hist.List(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_MissingLog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	// a user whose log was never created, e.g. imported records
	orphan := models.NewUser("orphan", "orphan@example.com", "pw")
	orphan.SessionSecret = "s"
	orphan, err := e.users.Create(ctx, orphan)
	require.NoError(t, err)

	_, err = e.sieve.Generate(ctx, orphan, 10)
	require.NoError(t, err, "append to a missing log must not fail the operation")

	_, err = e.hist.List(ctx, orphan)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, e.hist.Clear(ctx, orphan))
	entries, err := e.hist.List(ctx, orphan)
	require.NoError(t, err, "a cleared log exists")
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = e.sieve.Generate(ctx, orphan, 10)
	require.NoError(t, err)
	entries, err = e.hist.List(ctx, orphan)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OpGenerate, entries[0].Operation)

	require.NoError(t, e.hist.Clear(ctx, u))
}

type brokenHistory struct{ history.Repository }

func (brokenHistory) Append(context.Context, models.HistoryEntry) error {
	return errors.New("history disk full")
}

func TestHistoryFailuresAreSwallowed(t *testing.T) {
	e := newEnv(t)
	broken := newEnvWith(e.store, e.users, brokenHistory{e.history})
	ctx := context.Background()

	u := broken.register(t, "alice")
	primes, err := broken.sieve.Generate(ctx, u, 100)
	require.NoError(t, err)
	assert.Len(t, primes, 25)
}

func TestGuard_UserDeletedOrRotated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sieve.ListSaved(ctx, &models.User{ID: 42, SessionSecret: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sieve.SaveParams(ctx, u, fmt.Sprintf("p%02d", i), i+1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := e.sieve.ListSaved(ctx, u)
	require.NoError(t, err)
	assert.Len(t, list, n)
	assert.Zero(t, e.locks.size())
}

func TestEndToEnd_RegisterAuthenticateGenerate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.userSvc.Register(ctx, "alice", "alice@example.com", "Secret!1")
	require.NoError(t, err)

	u, err := e.userSvc.Authenticate(ctx, "alice", "Secret!1")
	require.NoError(t, err)

	primes, err := e.sieve.Generate(ctx, u, 100)
	require.NoError(t, err)

	current, params, err := e.sieve.Current(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, primes, current)
	assert.Len(t, current, 25)
	assert.Equal(t, 25, params.Count)
	assert.Equal(t, 97, current[len(current)-1])
}
