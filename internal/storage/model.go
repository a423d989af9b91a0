// internal/storage/model.go
//
// 定義設定檔（TOML）的結構模型。
// 設定檔同時是帳本的啟動資料：參數、身分登錄表、種子客戶與帳戶，以及可重播的操作腳本。
// 此層只描述資料，不含商業邏輯；套用到帳本的流程見 bootstrap.go。
package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/teller"
)

// Meta 為設定檔的中繼資料，用於格式升級時比對版本。
type Meta struct {
	Version   int       `toml:"version"`
	Timestamp time.Time `toml:"timestamp,omitempty"`
	Note      string    `toml:"note,omitempty"`
}

// LedgerSettings 對應 [ledger] 區段。
type LedgerSettings struct {
	MinPasswordLength     int             `toml:"min_password_length"`
	MaxLoginAttempts      int             `toml:"max_login_attempts"`
	DefaultInterestRate   decimal.Decimal `toml:"default_interest_rate"`
	DefaultOverdraftLimit decimal.Decimal `toml:"default_overdraft_limit"`
}

// PrincipalSeed 為 [[principals]] 的一筆身分；CUSTOMER 需填 customer。
type PrincipalSeed struct {
	Username string `toml:"username"`
	Secret   string `toml:"secret"`
	Role     string `toml:"role"`
	Customer string `toml:"customer,omitempty"`
}

// AccountSeed 為客戶名下的一個種子帳戶。
// 未填寫的 interest_rate / overdraft_limit 採用 [ledger] 的預設值；opening_balance 以存款方式入帳。
type AccountSeed struct {
	Number         string           `toml:"number,omitempty"`
	Kind           string           `toml:"kind"`
	InterestRate   *decimal.Decimal `toml:"interest_rate,omitempty"`
	OverdraftLimit *decimal.Decimal `toml:"overdraft_limit,omitempty"`
	OpeningBalance decimal.Decimal  `toml:"opening_balance,omitempty"`
}

// CustomerSeed 為 [[customers]] 的一筆客戶。
type CustomerSeed struct {
	ID       string        `toml:"id,omitempty"`
	Name     string        `toml:"name"`
	Email    string        `toml:"email,omitempty"`
	Phone    string        `toml:"phone,omitempty"`
	Address  string        `toml:"address,omitempty"`
	Accounts []AccountSeed `toml:"accounts,omitempty"`
}

// Config 為整份設定檔。
type Config struct {
	Meta       Meta            `toml:"_meta"`
	Ledger     LedgerSettings  `toml:"ledger"`
	Principals []PrincipalSeed `toml:"principals"`
	Customers  []CustomerSeed  `toml:"customers,omitempty"`
	Steps      []teller.Step   `toml:"steps,omitempty"`
}
