package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Debit  PaymentMethod = "DEBIT"
	Credit PaymentMethod = "CREDIT"
)

const (
	Monthly BillingPeriod = "MONTHLY"
	Annual  BillingPeriod = "ANNUAL"
)

const (
	Subscription   BillKind = "SUBSCRIPTION"
	RentContract   BillKind = "RENT_CONTRACT"
	CustomContract BillKind = "CUSTOM_CONTRACT"
	Agreement      BillKind = "AGREEMENT"
)

const (
	IncomeCategory  CategoryType = "INCOME"
	ExpenseCategory CategoryType = "EXPENSE"
)

const (
	GoalImmediate         GoalStatus = "IMMEDIATE"
	GoalInProgress        GoalStatus = "IN_PROGRESS"
	GoalDistant           GoalStatus = "DISTANT"
	GoalSettledInProgress GoalStatus = "SETTLED_IN_PROGRESS"
	GoalSettledDone       GoalStatus = "SETTLED_DONE"

	settledPrefix = "SETTLED"
)

const (
	ThemeLight Theme = "LIGHT"
	ThemeDark  Theme = "DARK"
)

const maxDescriptionLen = 200

type (
	PaymentMethod string
	BillingPeriod string
	BillKind      string
	CategoryType  string
	GoalStatus    string
	Theme         string

	// OwnerID identifies the authenticated user every record belongs to.
	OwnerID string

	Date struct {
		time.Time
	}

	// Record holds the store-assigned identity shared by every entity.
	Record struct {
		ID        int64     `json:"id"`
		OwnerID   OwnerID   `json:"owner_id"`
		CreatedAt time.Time `json:"created_at"`
	}

	Expense struct {
		Record
		Description      string          `json:"description"`
		Amount           decimal.Decimal `json:"amount"`
		Category         string          `json:"category"`
		Date             Date            `json:"date"`
		PaymentMethod    PaymentMethod   `json:"payment_method"`
		CardID           *int64          `json:"card_id,omitempty"`
		InstallmentIndex *int            `json:"installment_index,omitempty"`
		InstallmentCount *int            `json:"installment_count,omitempty"`
	}

	Income struct {
		Record
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
	}

	RecurringBill struct {
		Record
		Name             string          `json:"name"`
		Amount           decimal.Decimal `json:"amount"`
		BillingDay       int             `json:"billing_day"`
		BillingMonth     *int            `json:"billing_month,omitempty"`
		JoinYear         *int            `json:"join_year,omitempty"`
		Kind             BillKind        `json:"kind"`
		CustomCategory   string          `json:"custom_category,omitempty"`
		PaymentMethod    PaymentMethod   `json:"payment_method"`
		CardID           *int64          `json:"card_id,omitempty"`
		Period           BillingPeriod   `json:"period"`
		InstallmentIndex *int            `json:"installment_index,omitempty"`
		InstallmentCount *int            `json:"installment_count,omitempty"`
	}

	Card struct {
		Record
		Name        string          `json:"name"`
		CreditLimit decimal.Decimal `json:"credit_limit"`
		DueDay      int             `json:"due_day"`
		ClosingDay  int             `json:"closing_day"`
		IsPrimary   bool            `json:"is_primary"`
	}

	Category struct {
		Record
		Name string       `json:"name"`
		Type CategoryType `json:"type"`
		Icon string       `json:"icon"`
	}

	Goal struct {
		Record
		Title         string          `json:"title"`
		TargetAmount  decimal.Decimal `json:"target_amount"`
		CurrentAmount decimal.Decimal `json:"current_amount"`
		Status        GoalStatus      `json:"status"`
		IsPrimary     bool            `json:"is_primary"`
	}

	// Thresholds drive the alert colouring of credit and balance figures.
	Thresholds struct {
		Alert    decimal.Decimal `json:"alert"`
		Critical decimal.Decimal `json:"critical"`
		Positive decimal.Decimal `json:"positive"`
	}

	Settings struct {
		OwnerID           OwnerID    `json:"user_id"`
		Theme             Theme      `json:"theme"`
		Currency          string     `json:"currency"`
		FirstAccess       bool       `json:"first_access"`
		CreditThresholds  Thresholds `json:"credit_thresholds"`
		BalanceThresholds Thresholds `json:"balance_thresholds"`
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrCardRequired        = errors.New("card is required for credit payments")
	ErrCardNotAllowed      = errors.New("card must be empty for debit payments")
	ErrInvalidInstallment  = errors.New("invalid installment")
	ErrInvalidKind         = errors.New("invalid bill kind")
	ErrInvalidPeriod       = errors.New("invalid billing period")
	ErrBillingMonthMissing = errors.New("billing month is required for annual bills")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidStatus       = errors.New("invalid goal status")
	ErrGoalOverTarget      = errors.New("current amount exceeds target")
	ErrInvalidTheme        = errors.New("invalid theme")
	ErrEmptyCurrency       = errors.New("empty currency")
	ErrZeroDate            = errors.New("date cannot be zero")
)

// Meta exposes the embedded record so generic stores can assign identity.
func (r *Record) Meta() *Record {
	return r
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts ISO (2006-01-02) and Brazilian (02/01/2006) layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, errors.New("invalid date: " + s)
}

// ParseDateLenient returns the zero Date when s cannot be parsed.
// Aggregations treat the zero Date as unparseable and skip the record.
func ParseDateLenient(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty reports whether the date is missing or was unparseable.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// IsSettled reports whether the status marks the goal as reached.
func (s GoalStatus) IsSettled() bool {
	return strings.HasPrefix(string(s), settledPrefix)
}

func (m PaymentMethod) Valid() bool {
	return m == Debit || m == Credit
}

func (c *Card) Primary() bool     { return c.IsPrimary }
func (c *Card) SetPrimary(v bool) { c.IsPrimary = v }
func (g *Goal) Primary() bool     { return g.IsPrimary }
func (g *Goal) SetPrimary(v bool) { g.IsPrimary = v }

// IsCreditOn reports whether the expense was charged to the given card.
func (e Expense) IsCreditOn(cardID int64) bool {
	return e.PaymentMethod == Credit && e.CardID != nil && *e.CardID == cardID
}

func validateDescription(s string) error {
	if len(strings.TrimSpace(s)) == 0 {
		return ErrEmptyDescription
	}
	if len(s) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

func validateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func validateDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	return nil
}

func validateMethod(m PaymentMethod, card *int64) error {
	if !m.Valid() {
		return ErrInvalidMethod
	}
	if m == Credit && card == nil {
		return ErrCardRequired
	}
	if m == Debit && card != nil {
		return ErrCardNotAllowed
	}
	return nil
}

func validateInstallments(index, count *int) error {
	if index == nil && count == nil {
		return nil
	}
	if index == nil || count == nil {
		return ErrInvalidInstallment
	}
	if *index < 1 || *count < 1 || *index > *count {
		return ErrInvalidInstallment
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := validateMethod(e.PaymentMethod, e.CardID); err != nil {
		return err
	}
	return validateInstallments(e.InstallmentIndex, e.InstallmentCount)
}

func (i Income) Validate() error {
	if err := validateDescription(i.Description); err != nil {
		return err
	}
	if err := validateAmount(i.Amount); err != nil {
		return err
	}
	return i.Date.Validate()
}

func (b RecurringBill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(b.Amount); err != nil {
		return err
	}
	if err := validateDay(b.BillingDay); err != nil {
		return err
	}
	switch b.Period {
	case Monthly:
	case Annual:
		if b.BillingMonth == nil {
			return ErrBillingMonthMissing
		}
	default:
		return ErrInvalidPeriod
	}
	if b.BillingMonth != nil && (*b.BillingMonth < 1 || *b.BillingMonth > 12) {
		return ErrInvalidMonth
	}
	switch b.Kind {
	case Subscription, RentContract, CustomContract:
		if b.InstallmentIndex != nil || b.InstallmentCount != nil {
			return ErrInvalidInstallment
		}
	case Agreement:
		if b.InstallmentIndex == nil || b.InstallmentCount == nil {
			return ErrInvalidInstallment
		}
	default:
		return ErrInvalidKind
	}
	if err := validateMethod(b.PaymentMethod, b.CardID); err != nil {
		return err
	}
	return validateInstallments(b.InstallmentIndex, b.InstallmentCount)
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(c.CreditLimit); err != nil {
		return err
	}
	if err := validateDay(c.DueDay); err != nil {
		return err
	}
	return validateDay(c.ClosingDay)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Type != IncomeCategory && c.Type != ExpenseCategory {
		return ErrInvalidCategoryType
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyName
	}
	if err := validateAmount(g.TargetAmount); err != nil {
		return err
	}
	if err := validateAmount(g.CurrentAmount); err != nil {
		return err
	}
	if g.CurrentAmount.GreaterThan(g.TargetAmount) {
		return ErrGoalOverTarget
	}
	switch g.Status {
	case GoalImmediate, GoalInProgress, GoalDistant, GoalSettledInProgress, GoalSettledDone:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (s Settings) Validate() error {
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		return ErrInvalidTheme
	}
	if strings.TrimSpace(s.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// DefaultSettings is what a user gets on first read.
func DefaultSettings(owner OwnerID) Settings {
	return Settings{
		OwnerID:     owner,
		Theme:       ThemeLight,
		Currency:    "BRL",
		FirstAccess: true,
		CreditThresholds: Thresholds{
			Alert:    decimal.NewFromInt(30),
			Critical: decimal.NewFromInt(10),
			Positive: decimal.NewFromInt(60),
		},
		BalanceThresholds: Thresholds{
			Alert:    decimal.NewFromInt(500),
			Critical: decimal.Zero,
			Positive: decimal.NewFromInt(2000),
		},
	}
}
