package services

import (
	"context"
	"sync"
	"time"

	"carteira/internal/auth"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/summary"
)

const defaultLoadTimeout = 15 * time.Second

// Workspace holds the collections of whoever is signed in. It follows an
// auth.Provider: an owner change reloads everything, signing out empties
// it. A failed load leaves the workspace empty with Err set.
type Workspace struct {
	store       store.Store
	logger      *applog.Logger
	loadTimeout time.Duration

	mu         sync.RWMutex
	owner      core.OwnerID
	data       summary.Snapshot
	err        error
	generation uint64

	unsubscribe func()
}

func NewWorkspace(st store.Store, logger *applog.Logger) *Workspace {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Workspace{
		store:       st,
		logger:      logger.WithComponent(applog.ComponentWorkspace),
		loadTimeout: defaultLoadTimeout,
	}
}

// Attach follows p, loading the current user right away. Calling Attach
// again replaces the previous subscription.
func (w *Workspace) Attach(ctx context.Context, p auth.Provider) error {
	w.Detach()
	unsubscribe := p.Subscribe(func(u *auth.User) {
		w.switchTo(context.WithoutCancel(ctx), u)
	})
	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()
	return w.switchTo(ctx, p.CurrentUser())
}

func (w *Workspace) Detach() {
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Owner is the signed-in owner, empty when signed out.
func (w *Workspace) Owner() core.OwnerID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.owner
}

// Snapshot returns the loaded collections. Never an error: signed out or
// failed loads yield an empty snapshot.
func (w *Workspace) Snapshot() summary.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data
}

// Err is the last load failure for the current owner.
func (w *Workspace) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// Refresh reloads the current owner's collections.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	owner := w.owner
	w.generation++
	gen := w.generation
	w.mu.Unlock()
	if owner == "" {
		return nil
	}
	return w.load(ctx, owner, gen)
}

func (w *Workspace) switchTo(ctx context.Context, u *auth.User) error {
	var owner core.OwnerID
	if u != nil {
		owner = u.ID
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.owner = owner
	w.data = emptySnapshot(owner)
	w.err = nil
	w.mu.Unlock()

	if owner == "" {
		w.logger.InfoContext(ctx, "Workspace cleared after sign out")
		return nil
	}
	return w.load(ctx, owner, gen)
}

func (w *Workspace) load(ctx context.Context, owner core.OwnerID, gen uint64) error {
	ctx, cancel := context.WithTimeout(ctx, w.loadTimeout)
	defer cancel()

	snap, err := LoadSnapshot(ctx, w.store, owner)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		// superseded by a newer switch
		return err
	}
	if err != nil {
		w.data = emptySnapshot(owner)
		w.err = err
		w.logger.ErrorContext(ctx, "Workspace load failed",
			applog.FieldOwner, string(owner),
			applog.FieldError, err.Error(),
			applog.FieldErrorKind, string(store.KindOf(err)),
		)
		return err
	}
	w.data = snap
	w.err = nil
	w.logger.InfoContext(ctx, "Workspace loaded",
		applog.FieldOwner, string(owner),
		"expenses", len(snap.Expenses),
		"cards", len(snap.Cards),
	)
	return nil
}

func emptySnapshot(owner core.OwnerID) summary.Snapshot {
	if owner == "" {
		return summary.Snapshot{}
	}
	return summary.Snapshot{Settings: core.DefaultSettings(owner)}
}
