// Package bank 定義帳務核心：帳戶模型、帳戶目錄（Directory）與交易處理器（Processor）。
// 本檔定義 Account 介面與儲蓄／支票兩種帳戶，不含授權或稽核邏輯。

package bank

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Kind identifies an account variant.
type Kind string

const (
	KindSavings  Kind = "SAVINGS"
	KindChecking Kind = "CHECKING"
)

// ParseKind 不分大小寫解析帳戶種類。
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindSavings:
		return KindSavings, nil
	case KindChecking:
		return KindChecking, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccountKind, s)
}

var (
	// DefaultInterestRate 為未指定利率時的儲蓄帳戶利率。
	DefaultInterestRate = decimal.RequireFromString("0.03")
	// DefaultOverdraftLimit 為未指定額度時的支票帳戶透支額度。
	DefaultOverdraftLimit = decimal.NewFromInt(500)
)

// Account 是封閉的帳戶介面：只有本套件內的 *Savings 與 *Checking 能實作（base 為未匯出方法）。
// 提款下限（Floor）由各變體決定，處理器不做型別判斷。
type Account interface {
	Number() string
	OwnerID() string
	Kind() Kind
	Balance() decimal.Decimal
	Floor() decimal.Decimal
	Deposit(amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(amount decimal.Decimal) (bool, error)
	// History 回傳交易紀錄的拷貝，最新的在最前面。
	History() []Transaction
	Details() string

	base() *account
}

// account 為兩種變體共用的狀態。
// - number、owner 建立後不變。
// - balance 只透過 deposit / withdraw 變動。
// - history 只追加，讀取時反序。
type account struct {
	mu      sync.Mutex
	number  string
	owner   string
	balance decimal.Decimal
	history []Transaction
}

func (a *account) base() *account { return a }

func (a *account) Number() string  { return a.number }
func (a *account) OwnerID() string { return a.owner }

func (a *account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Deposit 存款：金額需 > 0，回傳新餘額。存款沒有下限檢查，合法金額必定成功。
func (a *account) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return a.credit(amount), nil
}

// credit 直接入帳並回傳新餘額；金額需由呼叫端先驗證為正。
func (a *account) credit(amount decimal.Decimal) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
	return a.balance
}

// withdraw 為共用提款規則；floor 於臨界區內呼叫，需在持有 a.mu 時可安全讀取。
// 超過下限回傳 false 且不變動餘額。
func (a *account) withdraw(amount decimal.Decimal, floor func() decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.balance.Sub(amount)
	if next.LessThan(floor()) {
		return false, nil
	}
	a.balance = next
	return true, nil
}

func (a *account) record(tx Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, tx)
}

func (a *account) History() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Transaction, len(a.history))
	for i, tx := range a.history {
		out[len(a.history)-1-i] = tx
	}
	return out
}

// Savings 儲蓄帳戶：餘額永不為負。
type Savings struct {
	account
	rate decimal.Decimal
}

// NewSavings 建立儲蓄帳戶；利率必須 > 0。
func NewSavings(number, owner string, rate decimal.Decimal) (*Savings, error) {
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: interest rate must be > 0", ErrInvalidArgument)
	}
	return &Savings{account: account{number: number, owner: owner}, rate: rate}, nil
}

func (s *Savings) Kind() Kind                    { return KindSavings }
func (s *Savings) InterestRate() decimal.Decimal { return s.rate }
func (s *Savings) Floor() decimal.Decimal        { return decimal.Zero }
func (s *Savings) floorLocked() decimal.Decimal  { return decimal.Zero }

func (s *Savings) Withdraw(amount decimal.Decimal) (bool, error) {
	return s.withdraw(amount, s.floorLocked)
}

// ApplyInterest 一次性計息：balance ← balance × (1 + rate)，回傳新餘額。
func (s *Savings) ApplyInterest() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = s.balance.Mul(decimal.NewFromInt(1).Add(s.rate))
	return s.balance
}

func (s *Savings) Details() string {
	return fmt.Sprintf("%s [%s] owner=%s balance=%s interest=%s%%",
		s.number, KindSavings, s.owner, s.Balance().StringFixed(2), s.rate.Shift(2).StringFixed(2))
}

// Checking 支票帳戶：餘額不得低於 -overdraftLimit。
type Checking struct {
	account
	limit decimal.Decimal
}

// NewChecking 建立支票帳戶；透支額度必須 >= 0。
func NewChecking(number, owner string, limit decimal.Decimal) (*Checking, error) {
	if limit.IsNegative() {
		return nil, fmt.Errorf("%w: overdraft limit must be >= 0", ErrInvalidArgument)
	}
	return &Checking{account: account{number: number, owner: owner}, limit: limit}, nil
}

func (c *Checking) Kind() Kind { return KindChecking }

func (c *Checking) OverdraftLimit() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

func (c *Checking) Floor() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.floorLocked()
}

func (c *Checking) floorLocked() decimal.Decimal { return c.limit.Neg() }

func (c *Checking) Withdraw(amount decimal.Decimal) (bool, error) {
	return c.withdraw(amount, c.floorLocked)
}

// SetOverdraftLimit 調整透支額度：不得為負，也不得讓目前餘額落到新下限之下。
func (c *Checking) SetOverdraftLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("%w: overdraft limit must be >= 0", ErrInvalidArgument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance.LessThan(limit.Neg()) {
		return fmt.Errorf("%w: balance %s is below new floor %s",
			ErrInvalidArgument, c.balance.StringFixed(2), limit.Neg().StringFixed(2))
	}
	c.limit = limit
	return nil
}

func (c *Checking) Details() string {
	return fmt.Sprintf("%s [%s] owner=%s balance=%s overdraft=%s",
		c.number, KindChecking, c.owner, c.Balance().StringFixed(2), c.OverdraftLimit().StringFixed(2))
}

// AccountOption 調整新帳戶的變體參數。
type AccountOption func(*accountOptions)

type accountOptions struct {
	rate  decimal.Decimal
	limit decimal.Decimal
}

// WithInterestRate 指定儲蓄帳戶利率。
func WithInterestRate(rate decimal.Decimal) AccountOption {
	return func(o *accountOptions) { o.rate = rate }
}

// WithOverdraftLimit 指定支票帳戶透支額度。
func WithOverdraftLimit(limit decimal.Decimal) AccountOption {
	return func(o *accountOptions) { o.limit = limit }
}

func newAccount(kind Kind, number, owner string, opts ...AccountOption) (Account, error) {
	o := accountOptions{rate: DefaultInterestRate, limit: DefaultOverdraftLimit}
	for _, opt := range opts {
		opt(&o)
	}
	switch kind {
	case KindSavings:
		s, err := NewSavings(number, owner, o.rate)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindChecking:
		c, err := NewChecking(number, owner, o.limit)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidAccountKind, kind)
}
