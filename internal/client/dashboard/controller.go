// Package dashboard drives the client's view of the account list. Status
// changes are applied optimistically: the local view flips first, the
// server call follows, and the view rolls back if the call fails.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"
)

// ErrUpdateInFlight is returned when a status change for the same account
// is already running; duplicate triggers are dropped, not queued.
var ErrUpdateInFlight = errors.New("status update already in flight for this account")

// API is the slice of the server client the controller needs.
type API interface {
	ListUsers(ctx context.Context, status string) ([]model.Account, error)
	ChangeStatus(ctx context.Context, accountID, status string) (*model.Account, error)
}

type Controller struct {
	api API

	mu       sync.Mutex
	accounts []model.Account
	inFlight map[string]bool
	// seq increases per account on every issued mutation; a completing
	// update whose captured seq is no longer the latest is stale and its
	// outcome is discarded.
	seq map[string]uint64
	now func() time.Time
}

type Option func(*Controller)

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.now = clock
		}
	}
}

func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		inFlight: map[string]bool{},
		seq:      map[string]uint64{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the local view with server truth.
func (c *Controller) Refresh(ctx context.Context) error {
	accounts, err := c.api.ListUsers(ctx, "")
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.accounts = accounts
	c.mu.Unlock()
	return nil
}

// Accounts returns a copy of the current local view.
func (c *Controller) Accounts() []model.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// Filtered narrows the local view to one status; "" and "all" return
// everything.
func (c *Controller) Filtered(status string) []model.Account {
	if status == "" || status == "all" {
		return c.Accounts()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []model.Account{}
	for _, a := range c.accounts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// UpdateStatus applies the target status to the local view immediately,
// then performs the server call. On success the view is reconciled with
// the server; on failure it reverts to the snapshot taken at the start.
func (c *Controller) UpdateStatus(ctx context.Context, accountID, status string) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, common.ErrInvalidStatus)
	}

	c.mu.Lock()
	if c.inFlight[accountID] {
		c.mu.Unlock()
		return ErrUpdateInFlight
	}
	idx := c.indexOf(accountID)
	if idx < 0 {
		c.mu.Unlock()
		return common.ErrNotFound
	}

	prevStatus := c.accounts[idx].Status
	prevChangedAt := c.accounts[idx].StatusChangedAt

	stamp := c.now()
	c.accounts[idx].Status = status
	c.accounts[idx].StatusChangedAt = &stamp

	c.inFlight[accountID] = true
	c.seq[accountID]++
	mySeq := c.seq[accountID]
	c.mu.Unlock()

	updated, err := c.api.ChangeStatus(ctx, accountID, status)

	c.mu.Lock()
	if c.seq[accountID] != mySeq {
		// A newer mutation owns this account now; this outcome is stale.
		c.mu.Unlock()
		return nil
	}
	delete(c.inFlight, accountID)

	if err != nil {
		if idx := c.indexOf(accountID); idx >= 0 {
			c.accounts[idx].Status = prevStatus
			c.accounts[idx].StatusChangedAt = prevChangedAt
		}
		c.mu.Unlock()
		return err
	}

	if idx := c.indexOf(accountID); idx >= 0 && updated != nil {
		c.accounts[idx] = *updated
	}
	c.mu.Unlock()

	// Reconcile the whole view with server truth; the committed row above
	// already reflects the mutation, so a failed refetch is not fatal.
	if err := c.Refresh(ctx); err != nil {
		return nil
	}
	return nil
}

// indexOf must be called with c.mu held.
func (c *Controller) indexOf(accountID string) int {
	for i := range c.accounts {
		if c.accounts[i].ID == accountID {
			return i
		}
	}
	return -1
}
