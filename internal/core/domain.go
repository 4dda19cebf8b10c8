package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryLeisure   Category = "Leisure"
	CategoryHealth    Category = "Health"
	CategoryHousing   Category = "Housing"
	CategoryOther     Category = "Other"
)

const (
	PaymentVoucher         PaymentMethod = "Voucher"
	PaymentCreditCard      PaymentMethod = "CreditCard"
	PaymentInstantTransfer PaymentMethod = "InstantTransfer"
	PaymentDebit           PaymentMethod = "Debit"
)

const (
	NetworkVisa       CardNetwork = "Visa"
	NetworkMasterCard CardNetwork = "MasterCard"
	NetworkAmex       CardNetwork = "Amex"
	NetworkElo        CardNetwork = "Elo"
	NetworkHipercard  CardNetwork = "Hipercard"
	NetworkOther      CardNetwork = "Other"
)

type (
	Category      string
	PaymentMethod string
	CardNetwork   string

	// Expense is a single recorded outflow. Year and Month are kept as the
	// user-facing text values (year digits and localized month name), which
	// is also how the period filter matches them.
	Expense struct {
		ID          string
		Year        string
		Month       string
		Description string
		Amount      decimal.Decimal
		DueDate     Date
		Category    Category
		Note        string
		Payment     PaymentMethod
		CardName    string // set only when Payment is PaymentCreditCard
	}

	// Card is a credit-card account. ClosingDay 0 means no statement cycle
	// was recorded for the card, which disables invoice prediction.
	Card struct {
		ID           string
		Name         string
		Holder       string
		MaskedNumber string
		Expiry       string // mm/yy
		Network      CardNetwork
		Limit        decimal.Decimal
		ClosingDay   int  // 1-31, 0 when absent
		StatementDue Date // optional
	}

	// Goal is a savings target tracked as current vs. target amount.
	Goal struct {
		ID      string
		Name    string
		Target  decimal.Decimal
		Current decimal.Decimal
		Start   Date
		End     Date
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidExpiry    = errors.New("invalid expiry, use mm/yy")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownPayment   = errors.New("unknown payment method")
	ErrUnknownNetwork   = errors.New("unknown card network")
	ErrNotFound         = errors.New("not found")
)

// Categories lists the fixed category set in presentation order.
func Categories() []Category {
	return []Category{
		CategoryFood, CategoryTransport, CategoryLeisure,
		CategoryHealth, CategoryHousing, CategoryOther,
	}
}

// PaymentMethods lists the accepted payment methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentVoucher, PaymentCreditCard, PaymentInstantTransfer, PaymentDebit,
	}
}

// Networks lists the supported card networks.
func Networks() []CardNetwork {
	return []CardNetwork{
		NetworkVisa, NetworkMasterCard, NetworkAmex,
		NetworkElo, NetworkHipercard, NetworkOther,
	}
}

// MonthNames are the localized month names used for the Expense.Month field.
var MonthNames = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName maps a 1-based month number to its localized name. The second
// return is false when the number is outside 1 through 12.
func MonthName(m int) (string, bool) {
	if m < 1 || m > 12 {
		return "", false
	}
	return MonthNames[m-1], true
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryLeisure,
		CategoryHealth, CategoryHousing, CategoryOther:
		return true
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentVoucher, PaymentCreditCard, PaymentInstantTransfer, PaymentDebit:
		return true
	}
	return false
}

func (n CardNetwork) Valid() bool {
	switch n {
	case NetworkVisa, NetworkMasterCard, NetworkAmex,
		NetworkElo, NetworkHipercard, NetworkOther:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.DueDate.IsZero() {
		return ErrInvalidDate
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if !e.Payment.Valid() {
		return ErrUnknownPayment
	}
	if e.Payment != PaymentCreditCard && strings.TrimSpace(e.CardName) != "" {
		return errors.New("card name set on non credit-card expense")
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty card name")
	}
	if strings.TrimSpace(c.Holder) == "" {
		return errors.New("empty holder name")
	}
	if strings.TrimSpace(c.MaskedNumber) == "" {
		return errors.New("empty card number")
	}
	if err := ValidateExpiry(c.Expiry); err != nil {
		return err
	}
	if !c.Network.Valid() {
		return ErrUnknownNetwork
	}
	if c.Limit.IsNegative() {
		return ErrInvalidAmount
	}
	if c.ClosingDay < 0 || c.ClosingDay > 31 {
		return errors.New("closing day out of range")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("empty goal name")
	}
	if !g.Target.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	if g.Start.IsZero() || g.End.IsZero() {
		return ErrInvalidDate
	}
	if g.End.Before(g.Start.Time) {
		return errors.New("end date before start date")
	}
	return nil
}

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

const dateLayout = "02/01/2006"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a dd/mm/yyyy date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// ValidateExpiry checks an mm/yy card expiry string.
func ValidateExpiry(s string) error {
	if _, err := time.Parse("01/06", strings.TrimSpace(s)); err != nil {
		return ErrInvalidExpiry
	}
	return nil
}
