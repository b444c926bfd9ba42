package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	Cash         PaymentMode = "cash"
	UPI          PaymentMode = "upi"
	BankTransfer PaymentMode = "bank_transfer"
	CreditCard   PaymentMode = "credit_card"
	DebitCard    PaymentMode = "debit_card"
)

const (
	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
	CategoryBoth    CategoryType = "both"
)

const (
	GroupHome   CategoryGroup = "home"
	GroupOffice CategoryGroup = "office"
	// GroupUnassigned only appears in reports, for transactions whose category no longer resolves.
	GroupUnassigned CategoryGroup = "unassigned"
)

type (
	TransactionType string
	PaymentMode     string
	CategoryType    string
	CategoryGroup   string

	Transaction struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"userId"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		CategoryID  int64           `json:"categoryId"`
		Merchant    string          `json:"merchant,omitempty"`
		PaymentMode PaymentMode     `json:"paymentMode"`
		Note        string          `json:"note,omitempty"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	Category struct {
		ID          int64         `json:"id"`
		Name        string        `json:"name"`
		Type        CategoryType  `json:"type"`
		Group       CategoryGroup `json:"group"`
		Icon        string        `json:"icon"`
		Color       string        `json:"color"`
		IsDefault   bool          `json:"isDefault"`
		OwnerUserID *int64        `json:"ownerUserId"`
	}

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		DisplayName  string    `json:"displayName"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidGroup       = errors.New("invalid category group")
	ErrEmptyName          = errors.New("empty name")
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

func (m PaymentMode) Valid() bool {
	switch m {
	case Cash, UPI, BankTransfer, CreditCard, DebitCard:
		return true
	}
	return false
}

// PaymentModes lists every payment mode in display order.
func PaymentModes() []PaymentMode {
	return []PaymentMode{Cash, UPI, BankTransfer, CreditCard, DebitCard}
}

func (c CategoryType) Valid() bool {
	return c == CategoryExpense || c == CategoryIncome || c == CategoryBoth
}

// Accepts reports whether a transaction of type t may be filed under a category of type c.
func (c CategoryType) Accepts(t TransactionType) bool {
	return c == CategoryBoth || string(c) == string(t)
}

func (g CategoryGroup) Valid() bool {
	return g == GroupHome || g == GroupOffice
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return invalid(ErrInvalidType)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid(err)
	}
	if t.CategoryID <= 0 {
		return invalid(ErrInvalidCategory)
	}
	if !t.PaymentMode.Valid() {
		return invalid(ErrInvalidPaymentMode)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid(err)
	}
	if len(t.Merchant) > 100 {
		return invalid(errors.New("merchant too long (max 100 characters)"))
	}
	if len(t.Note) > 500 {
		return invalid(errors.New("note too long (max 500 characters)"))
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return invalid(ErrEmptyName)
	}
	if len(name) > 50 {
		return invalid(errors.New("name too long (max 50 characters)"))
	}
	if !c.Type.Valid() {
		return invalid(errors.New("invalid category type"))
	}
	if !c.Group.Valid() {
		return invalid(ErrInvalidGroup)
	}
	return nil
}
