package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"

	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu           sync.Mutex
	accounts     []model.Account
	listCalls    int
	changeErr    error
	changeEnter  chan struct{} // closed-on-enter signal, optional
	changeBlock  chan struct{} // blocks ChangeStatus until closed, optional
	changedCalls int
}

func (f *fakeAPI) ListUsers(ctx context.Context, status string) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]model.Account, len(f.accounts))
	copy(out, f.accounts)
	return out, nil
}

func (f *fakeAPI) ChangeStatus(ctx context.Context, accountID, status string) (*model.Account, error) {
	f.mu.Lock()
	enter, block := f.changeEnter, f.changeBlock
	f.changedCalls++
	f.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	for i := range f.accounts {
		if f.accounts[i].ID == accountID {
			now := time.Now().UTC()
			f.accounts[i].Status = status
			f.accounts[i].StatusChangedAt = &now
			account := f.accounts[i]
			return &account, nil
		}
	}
	return nil, common.ErrNotFound
}

func seedAPI() *fakeAPI {
	return &fakeAPI{accounts: []model.Account{
		{ID: "x", Email: "x@example.com", Status: model.StatusPending},
		{ID: "y", Email: "y@example.com", Status: model.StatusApproved},
	}}
}

func statusOf(t *testing.T, c *Controller, id string) string {
	t.Helper()
	for _, a := range c.Accounts() {
		if a.ID == id {
			return a.Status
		}
	}
	t.Fatalf("account %s not in local view", id)
	return ""
}

func TestUpdateStatusCommits(t *testing.T) {
	api := seedAPI()
	c := NewController(api)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.UpdateStatus(context.Background(), "x", model.StatusApproved))
	require.Equal(t, model.StatusApproved, statusOf(t, c, "x"))

	// Commit reconciles against the server.
	require.GreaterOrEqual(t, api.listCalls, 2)
}

func TestUpdateStatusRollsBackOnFailure(t *testing.T) {
	api := seedAPI()
	api.changeErr = errors.New("network down")
	c := NewController(api)
	require.NoError(t, c.Refresh(context.Background()))

	err := c.UpdateStatus(context.Background(), "x", model.StatusApproved)
	require.Error(t, err)
	require.Equal(t, model.StatusPending, statusOf(t, c, "x"), "view must revert to the snapshot")

	// The account is idle again: a retry goes through.
	api.mu.Lock()
	api.changeErr = nil
	api.mu.Unlock()
	require.NoError(t, c.UpdateStatus(context.Background(), "x", model.StatusApproved))
	require.Equal(t, model.StatusApproved, statusOf(t, c, "x"))
}

func TestOptimisticApplyIsImmediate(t *testing.T) {
	api := seedAPI()
	api.changeEnter = make(chan struct{}, 1)
	api.changeBlock = make(chan struct{})
	c := NewController(api)
	require.NoError(t, c.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.UpdateStatus(context.Background(), "x", model.StatusRejected) }()
	<-api.changeEnter

	// The network call has not resolved, but the view already shows the target.
	require.Equal(t, model.StatusRejected, statusOf(t, c, "x"))

	close(api.changeBlock)
	require.NoError(t, <-done)
	require.Equal(t, model.StatusRejected, statusOf(t, c, "x"))
}

func TestDuplicateTriggerIgnoredWhileInFlight(t *testing.T) {
	api := seedAPI()
	api.changeEnter = make(chan struct{}, 1)
	api.changeBlock = make(chan struct{})
	c := NewController(api)
	require.NoError(t, c.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.UpdateStatus(context.Background(), "x", model.StatusApproved) }()
	<-api.changeEnter

	err := c.UpdateStatus(context.Background(), "x", model.StatusRejected)
	require.ErrorIs(t, err, ErrUpdateInFlight)

	// A different account is not blocked by x's marker. The x call already
	// captured its blocking channels, so they can be detached here.
	api.mu.Lock()
	blockX := api.changeBlock
	api.changeEnter = nil
	api.changeBlock = nil
	api.mu.Unlock()
	require.NoError(t, c.UpdateStatus(context.Background(), "y", model.StatusRejected))

	close(blockX)
	require.NoError(t, <-done)

	require.Equal(t, model.StatusApproved, statusOf(t, c, "x"))
	require.Equal(t, 2, func() int { api.mu.Lock(); defer api.mu.Unlock(); return api.changedCalls }())
}

func TestUpdateStatusValidation(t *testing.T) {
	c := NewController(seedAPI())
	require.NoError(t, c.Refresh(context.Background()))

	require.ErrorIs(t, c.UpdateStatus(context.Background(), "x", "banned"), common.ErrInvalidStatus)
	require.ErrorIs(t, c.UpdateStatus(context.Background(), "missing", model.StatusApproved), common.ErrNotFound)
}

func TestFiltered(t *testing.T) {
	c := NewController(seedAPI())
	require.NoError(t, c.Refresh(context.Background()))

	require.Len(t, c.Filtered("all"), 2)
	require.Len(t, c.Filtered(""), 2)

	pending := c.Filtered(model.StatusPending)
	require.Len(t, pending, 1)
	require.Equal(t, "x", pending[0].ID)
}

func TestInjectedClockStampsOptimisticWrite(t *testing.T) {
	api := seedAPI()
	api.changeEnter = make(chan struct{}, 1)
	api.changeBlock = make(chan struct{})
	stamp := time.Date(2025, 8, 7, 9, 0, 0, 0, time.UTC)
	c := NewController(api, WithClock(func() time.Time { return stamp }))
	require.NoError(t, c.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.UpdateStatus(context.Background(), "x", model.StatusApproved) }()
	<-api.changeEnter

	for _, a := range c.Accounts() {
		if a.ID == "x" {
			require.NotNil(t, a.StatusChangedAt)
			require.Equal(t, stamp, *a.StatusChangedAt)
		}
	}

	close(api.changeBlock)
	require.NoError(t, <-done)
}
