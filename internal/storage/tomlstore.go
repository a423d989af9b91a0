// internal/storage/tomlstore.go
//
// 設定檔的讀寫。寫入採原子方式：先寫 .tmp 檔，再以 rename() 取代原檔，
// 寫入中斷時原檔不會損壞。
package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"ledger/internal/auth"
	"ledger/internal/bank"
	"ledger/internal/teller"
)

// ConfigVersion 為目前的設定檔格式版本。
const ConfigVersion = 1

// DefaultConfig 回傳 `ledger init` 寫出的範例設定：一位管理員、兩位客戶與一段示範腳本。
func DefaultConfig() Config {
	return Config{
		Meta: Meta{Version: ConfigVersion, Note: "sample ledger"},
		Ledger: LedgerSettings{
			MinPasswordLength:     auth.DefaultMinPasswordLength,
			MaxLoginAttempts:      auth.DefaultMaxAttempts,
			DefaultInterestRate:   bank.DefaultInterestRate,
			DefaultOverdraftLimit: bank.DefaultOverdraftLimit,
		},
		Principals: []PrincipalSeed{
			{Username: "admin", Secret: "admin123", Role: string(auth.RoleAdmin)},
			{Username: "alice", Secret: "alice123", Role: string(auth.RoleCustomer), Customer: "C001"},
			{Username: "bob", Secret: "bob12345", Role: string(auth.RoleCustomer), Customer: "C002"},
		},
		Customers: []CustomerSeed{
			{ID: "C001", Name: "Alice", Email: "alice@example.com", Accounts: []AccountSeed{
				{Number: "ACC001", Kind: "savings", OpeningBalance: decimal.NewFromInt(1000)},
				{Number: "ACC002", Kind: "checking", OpeningBalance: decimal.NewFromInt(200)},
			}},
			{ID: "C002", Name: "Bob", Accounts: []AccountSeed{
				{Number: "ACC003", Kind: "checking", OverdraftLimit: ptr(decimal.NewFromInt(100))},
			}},
		},
		Steps: []teller.Step{
			{Action: teller.ActionLogin, User: "alice", Secret: "alice123"},
			{Action: string(auth.ActionWithdraw), Account: "ACC002", Amount: decimal.NewFromInt(800)},
			{Action: string(auth.ActionTransfer), Account: "ACC001", To: "ACC003", Amount: decimal.NewFromInt(250)},
			{Action: string(auth.ActionWithdraw), Account: "ACC003", Amount: decimal.NewFromInt(10)},
			{Action: string(auth.ActionLogout)},
			{Action: teller.ActionLogin, User: "admin", Secret: "admin123"},
			{Action: string(auth.ActionApplyInterest)},
			{Action: string(auth.ActionExit)},
		},
	}
}

// LoadConfig 讀取指定路徑的設定檔。未填寫的 [ledger] 欄位補上預設值。
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	cfg.applyDefaults(md)
	return cfg, nil
}

func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Ledger.MinPasswordLength <= 0 {
		c.Ledger.MinPasswordLength = auth.DefaultMinPasswordLength
	}
	if c.Ledger.MaxLoginAttempts <= 0 {
		c.Ledger.MaxLoginAttempts = auth.DefaultMaxAttempts
	}
	if c.Ledger.DefaultInterestRate.IsZero() {
		c.Ledger.DefaultInterestRate = bank.DefaultInterestRate
	}
	// 透支額度 0 是合法設定，只有未填寫時才補預設值
	if !md.IsDefined("ledger", "default_overdraft_limit") {
		c.Ledger.DefaultOverdraftLimit = bank.DefaultOverdraftLimit
	}
}

// SaveConfig 將設定寫成 TOML，採原子方式寫入。
func SaveConfig(path string, cfg Config) error {
	cfg.Meta.Version = ConfigVersion
	cfg.Meta.Timestamp = time.Now().UTC().Truncate(time.Second)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func ptr[T any](v T) *T { return &v }
