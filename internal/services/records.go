package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"carteira/internal/classify"
	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/summary"
)

// maxInstallments bounds installment purchases.
const maxInstallments = 72

var ErrInstallmentCount = errors.New("installment count must be between 1 and 72")

// RecordService applies the creation rules that go beyond plain CRUD.
type RecordService struct {
	store      store.Store
	primary    *PrimaryService
	classifier *classify.Classifier
	logger     *applog.Logger
}

func NewRecordService(st store.Store, primary *PrimaryService, classifier *classify.Classifier, logger *applog.Logger) *RecordService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if classifier == nil {
		classifier = classify.Default
	}
	if primary == nil {
		primary = NewPrimaryService(st, logger)
	}
	return &RecordService{
		store:      st,
		primary:    primary,
		classifier: classifier,
		logger:     logger.WithComponent(applog.ComponentRecords),
	}
}

// CreateExpense stores e, classifying an empty category from the
// description. With installments > 1 the purchase becomes one record per
// month; if any of them fails the ones already stored are removed.
func (s *RecordService) CreateExpense(ctx context.Context, owner core.OwnerID, e core.Expense, installments int) ([]core.Expense, error) {
	if installments < 1 || installments > maxInstallments {
		return nil, store.NewError(store.KindValidation, store.OpCreate, store.EntityExpense, 0, ErrInstallmentCount)
	}
	if strings.TrimSpace(e.Category) == "" {
		e.Category = string(s.classifier.Classify(e.Description))
	}

	parts := core.SplitInstallments(e, installments)
	created := make([]core.Expense, 0, len(parts))
	for _, part := range parts {
		stored, err := s.store.Expenses().Create(ctx, owner, part)
		if err != nil {
			s.undoExpenses(ctx, owner, created)
			return nil, err
		}
		created = append(created, stored)
	}

	s.logger.InfoContext(ctx, "Expense created",
		applog.FieldOwner, string(owner),
		applog.FieldAmount, e.Amount.StringFixed(2),
		"category", e.Category,
		"installments", len(created),
	)
	return created, nil
}

func (s *RecordService) undoExpenses(ctx context.Context, owner core.OwnerID, created []core.Expense) {
	ctx = context.WithoutCancel(ctx)
	for _, e := range created {
		if err := s.store.Expenses().Remove(ctx, owner, e.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to remove partial installment",
				applog.FieldOwner, string(owner),
				applog.FieldRecordID, e.ID,
				applog.FieldError, err.Error(),
			)
		}
	}
}

// CreateCard stores c. A card created as primary goes through the primary
// switch so the previous primary is unset.
func (s *RecordService) CreateCard(ctx context.Context, owner core.OwnerID, c core.Card) (core.Card, error) {
	wantPrimary := c.IsPrimary
	c.IsPrimary = false
	created, err := s.store.Cards().Create(ctx, owner, c)
	if err != nil || !wantPrimary {
		return created, err
	}
	if err := s.primary.SetPrimaryCard(ctx, owner, created.ID); err != nil {
		return created, fmt.Errorf("card %d created but not primary: %w", created.ID, err)
	}
	return s.store.Cards().Get(ctx, owner, created.ID)
}

// CreateGoal mirrors CreateCard for goals.
func (s *RecordService) CreateGoal(ctx context.Context, owner core.OwnerID, g core.Goal) (core.Goal, error) {
	wantPrimary := g.IsPrimary
	g.IsPrimary = false
	created, err := s.store.Goals().Create(ctx, owner, g)
	if err != nil || !wantPrimary {
		return created, err
	}
	if err := s.primary.SetPrimaryGoal(ctx, owner, created.ID); err != nil {
		return created, fmt.Errorf("goal %d created but not primary: %w", created.ID, err)
	}
	return s.store.Goals().Get(ctx, owner, created.ID)
}

// SeedCategories creates an EXPENSE category for every classifier label
// the owner does not have yet. Returns how many were created.
func (s *RecordService) SeedCategories(ctx context.Context, owner core.OwnerID) (int, error) {
	existing, err := s.store.Categories().List(ctx, owner)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		if c.Type == core.ExpenseCategory {
			have[c.Name] = true
		}
	}

	created := 0
	for _, label := range s.classifier.Labels() {
		if have[string(label)] {
			continue
		}
		cat := core.Category{Name: string(label), Type: core.ExpenseCategory, Icon: categoryIcons[label]}
		if _, err := s.store.Categories().Create(ctx, owner, cat); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.InfoContext(ctx, "Default categories seeded", applog.FieldOwner, string(owner), "count", created)
	}
	return created, nil
}

var categoryIcons = map[classify.Label]string{
	classify.Food:          "utensils",
	classify.Transport:     "car",
	classify.Housing:       "home",
	classify.Utilities:     "bolt",
	classify.Health:        "heart-pulse",
	classify.Education:     "graduation-cap",
	classify.Leisure:       "ticket",
	classify.Subscriptions: "repeat",
	classify.Clothing:      "shirt",
	classify.Beauty:        "sparkles",
	classify.Pets:          "paw",
	classify.Travel:        "plane",
	classify.Shopping:      "shopping-bag",
	classify.Taxes:         "landmark",
	classify.Gifts:         "gift",
	classify.Investments:   "piggy-bank",
	classify.Unforeseen:    "triangle-alert",
	classify.Other:         "circle",
}

// GoalService adjusts goal balances.
type GoalService struct {
	store store.Store
}

func NewGoalService(st store.Store) *GoalService {
	return &GoalService{store: st}
}

// Adjust adds delta to the goal's current amount, clamped to
// [0, target].
func (s *GoalService) Adjust(ctx context.Context, owner core.OwnerID, id int64, delta decimal.Decimal) (core.Goal, error) {
	return s.store.Goals().Update(ctx, owner, id, func(g *core.Goal) error {
		*g = summary.AdjustGoal(*g, delta)
		return nil
	})
}
