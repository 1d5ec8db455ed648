package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	Salary        Category = "Salary"
	Food          Category = "Food"
	Rent          Category = "Rent"
	Uncategorized Category = "Uncategorized"
)

type (
	// Kind tells whether a transaction adds to or takes from the balance.
	Kind string

	// Category is the closed set of labels a transaction can carry.
	// Anything outside the allow-list is stored as Uncategorized.
	Category string

	Transaction struct {
		Kind     Kind
		Amount   decimal.Decimal
		Category Category
	}
)

var (
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidCategory = errors.New("invalid category")
)

// AllowedCategories lists the categories a user can pick at entry time,
// in prompt order. Uncategorized is the fallback and is not offered.
var AllowedCategories = []Category{Salary, Food, Rent}

var titleCaser = cases.Title(language.Und)

// ParseKind maps the persisted literal to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Income, Expense:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Validate() error {
	if _, err := ParseKind(string(k)); err != nil {
		return err
	}
	return nil
}

func (k Kind) String() string {
	return string(k)
}

// ParseCategory folds arbitrary user text to title case and matches it
// against the allow-list. It never fails: unknown input becomes Uncategorized.
func ParseCategory(s string) Category {
	c := Category(titleCaser.String(strings.TrimSpace(s)))
	for _, allowed := range AllowedCategories {
		if c == allowed {
			return allowed
		}
	}
	return Uncategorized
}

func (c Category) Validate() error {
	if c == Uncategorized {
		return nil
	}
	for _, allowed := range AllowedCategories {
		if c == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
}

func (c Category) String() string {
	return string(c)
}

// NewTransaction builds a validated transaction.
func NewTransaction(kind Kind, amount decimal.Decimal, category Category) (Transaction, error) {
	t := Transaction{Kind: kind, Amount: amount, Category: category}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	return t.Category.Validate()
}

// Equal reports whether two transactions carry the same kind, category and
// numerically equal amount.
func (t Transaction) Equal(other Transaction) bool {
	return t.Kind == other.Kind &&
		t.Category == other.Category &&
		t.Amount.Equal(other.Amount)
}
