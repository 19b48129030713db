package http

import (
	"context"
	"net/http"

	"carteira/internal/auth"
	"carteira/internal/core"
	"carteira/internal/store"
)

// record is satisfied by pointers to every stored entity.
type record[T any] interface {
	*T
	Meta() *core.Record
}

// resource serves the CRUD routes of one collection.
type resource[T any, PT record[T]] struct {
	s          *Server
	path       string
	collection func(store.Store) store.Collection[T]

	// normalize cleans client input before it reaches the store.
	normalize func(*T)
	// create replaces the plain store Create, e.g. to route through a service.
	create func(ctx context.Context, owner core.OwnerID, item T) (any, error)
	// keep copies fields an update must not change from prev into next.
	keep func(prev, next *T)
	// customPost takes over the POST route entirely.
	customPost http.HandlerFunc
}

func (res *resource[T, PT]) register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+res.path, res.list)
	mux.HandleFunc("GET "+res.path+"/{id}", res.get)
	mux.HandleFunc("PUT "+res.path+"/{id}", res.update)
	mux.HandleFunc("DELETE "+res.path+"/{id}", res.remove)
	if res.customPost != nil {
		mux.HandleFunc("POST "+res.path, res.customPost)
	} else {
		mux.HandleFunc("POST "+res.path, res.post)
	}
}

func (res *resource[T, PT]) list(w http.ResponseWriter, r *http.Request) {
	items, err := res.collection(res.s.deps.Store).List(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		res.s.writeError(w, r, store.OpList, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	NewJSONResponse().Body(items).Write(w)
}

func (res *resource[T, PT]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.s.writeError(w, r, store.OpGet, err)
		return
	}
	item, err := res.collection(res.s.deps.Store).Get(r.Context(), auth.OwnerFromContext(r.Context()), id)
	if err != nil {
		res.s.writeError(w, r, store.OpGet, err)
		return
	}
	NewJSONResponse().Body(item).Write(w)
}

func (res *resource[T, PT]) post(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		res.s.writeError(w, r, store.OpCreate, err)
		return
	}
	if res.normalize != nil {
		res.normalize(&item)
	}

	ctx, owner := r.Context(), auth.OwnerFromContext(r.Context())
	var (
		created any
		err     error
	)
	if res.create != nil {
		created, err = res.create(ctx, owner, item)
	} else {
		created, err = res.collection(res.s.deps.Store).Create(ctx, owner, item)
	}
	if err != nil {
		res.s.writeError(w, r, store.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}

func (res *resource[T, PT]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.s.writeError(w, r, store.OpUpdate, err)
		return
	}
	var incoming T
	if err := decodeJSON(w, r, &incoming); err != nil {
		res.s.writeError(w, r, store.OpUpdate, err)
		return
	}
	if res.normalize != nil {
		res.normalize(&incoming)
	}

	updated, err := res.collection(res.s.deps.Store).Update(r.Context(), auth.OwnerFromContext(r.Context()), id, func(cur *T) error {
		prev := *cur
		meta := *PT(cur).Meta()
		*cur = incoming
		*PT(cur).Meta() = meta
		if res.keep != nil {
			res.keep(&prev, cur)
		}
		return nil
	})
	if err != nil {
		res.s.writeError(w, r, store.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(updated).Write(w)
}

func (res *resource[T, PT]) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		res.s.writeError(w, r, store.OpRemove, err)
		return
	}
	if err := res.collection(res.s.deps.Store).Remove(r.Context(), auth.OwnerFromContext(r.Context()), id); err != nil {
		res.s.writeError(w, r, store.OpRemove, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) registerRecords(mux *http.ServeMux) {
	(&resource[core.Expense, *core.Expense]{
		s:          s,
		path:       "/api/expenses",
		collection: func(st store.Store) store.Collection[core.Expense] { return st.Expenses() },
		normalize:  func(e *core.Expense) { e.Description = sanitizeInput(e.Description) },
		customPost: s.handleCreateExpense,
	}).register(mux)

	(&resource[core.Income, *core.Income]{
		s:          s,
		path:       "/api/incomes",
		collection: func(st store.Store) store.Collection[core.Income] { return st.Incomes() },
		normalize:  func(i *core.Income) { i.Description = sanitizeInput(i.Description) },
	}).register(mux)

	(&resource[core.RecurringBill, *core.RecurringBill]{
		s:          s,
		path:       "/api/bills",
		collection: func(st store.Store) store.Collection[core.RecurringBill] { return st.Bills() },
		normalize:  normalizeBill,
	}).register(mux)

	(&resource[core.Card, *core.Card]{
		s:          s,
		path:       "/api/cards",
		collection: func(st store.Store) store.Collection[core.Card] { return st.Cards() },
		normalize:  func(c *core.Card) { c.Name = sanitizeInput(c.Name) },
		create:     s.createCard,
		keep:       func(prev, next *core.Card) { next.IsPrimary = prev.IsPrimary },
	}).register(mux)

	(&resource[core.Category, *core.Category]{
		s:          s,
		path:       "/api/categories",
		collection: func(st store.Store) store.Collection[core.Category] { return st.Categories() },
		normalize:  func(c *core.Category) { c.Name = sanitizeInput(c.Name) },
	}).register(mux)

	(&resource[core.Goal, *core.Goal]{
		s:          s,
		path:       "/api/goals",
		collection: func(st store.Store) store.Collection[core.Goal] { return st.Goals() },
		normalize:  func(g *core.Goal) { g.Title = sanitizeInput(g.Title) },
		create:     s.createGoal,
		keep:       func(prev, next *core.Goal) { next.IsPrimary = prev.IsPrimary },
	}).register(mux)
}

func normalizeBill(b *core.RecurringBill) {
	b.Name = sanitizeInput(b.Name)
	b.CustomCategory = sanitizeInput(b.CustomCategory)
}

func (s *Server) createCard(ctx context.Context, owner core.OwnerID, c core.Card) (any, error) {
	return s.deps.Records.CreateCard(ctx, owner, c)
}

func (s *Server) createGoal(ctx context.Context, owner core.OwnerID, g core.Goal) (any, error) {
	return s.deps.Records.CreateGoal(ctx, owner, g)
}

// expenseRequest is an expense plus the number of monthly installments it
// is split into.
type expenseRequest struct {
	core.Expense
	Installments int `json:"installments,omitempty"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, store.OpCreate, err)
		return
	}
	if req.Installments == 0 {
		req.Installments = 1
	}
	req.Description = sanitizeInput(req.Description)

	created, err := s.deps.Records.CreateExpense(r.Context(), auth.OwnerFromContext(r.Context()), req.Expense, req.Installments)
	if err != nil {
		s.writeError(w, r, store.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w)
}
