// internal/storage/bootstrap.go
//
// 將設定檔套用為一個可運作的帳本：建立身分登錄表、種子客戶與帳戶，
// 期初餘額透過 Processor 以存款入帳，因此每個帳戶的歷史從第一筆就與餘額一致。
package storage

import (
	"fmt"
	"log"

	"ledger/internal/auth"
	"ledger/internal/bank"
	"ledger/internal/teller"
)

// Settings 轉為 teller 參數。
func (l LedgerSettings) Settings() teller.Settings {
	return teller.Settings{
		MaxLoginAttempts:      l.MaxLoginAttempts,
		DefaultInterestRate:   l.DefaultInterestRate,
		DefaultOverdraftLimit: l.DefaultOverdraftLimit,
	}
}

// Bootstrap 依設定建立帳本。種子資料不經授權流程，也不寫入稽核軌跡。
func Bootstrap(cfg Config) (*teller.Teller, error) {
	reg := auth.NewRegistry(cfg.Ledger.MinPasswordLength)
	for _, ps := range cfg.Principals {
		role, err := auth.ParseRole(ps.Role)
		if err != nil {
			return nil, fmt.Errorf("principal %s: %w", ps.Username, err)
		}
		p, err := auth.NewPrincipal(ps.Username, ps.Secret, role, ps.Customer)
		if err != nil {
			return nil, fmt.Errorf("principal %s: %w", ps.Username, err)
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}

	tl := teller.New(reg, cfg.Ledger.Settings())
	accounts := 0
	for _, cs := range cfg.Customers {
		if err := seedCustomer(tl, cfg.Ledger, cs); err != nil {
			return nil, err
		}
		accounts += len(cs.Accounts)
	}

	for _, ps := range cfg.Principals {
		if ps.Customer == "" {
			continue
		}
		if _, ok := tl.Directory.FindCustomer(ps.Customer); !ok {
			return nil, fmt.Errorf("principal %s: %w: %s", ps.Username, bank.ErrCustomerNotFound, ps.Customer)
		}
	}

	log.Printf("[storage] bootstrapped %d principals, %d customers, %d accounts", reg.Len(), len(cfg.Customers), accounts)
	return tl, nil
}

func seedCustomer(tl *teller.Teller, l LedgerSettings, cs CustomerSeed) error {
	var profile *bank.Profile
	if cs.Email != "" || cs.Phone != "" || cs.Address != "" {
		profile = &bank.Profile{Email: cs.Email, Phone: cs.Phone, Address: cs.Address}
	}
	c, err := tl.Directory.CreateCustomer(cs.ID, cs.Name, profile)
	if err != nil {
		return fmt.Errorf("customer %q: %w", cs.Name, err)
	}

	for _, as := range cs.Accounts {
		kind, err := bank.ParseKind(as.Kind)
		if err != nil {
			return fmt.Errorf("customer %s: %w", c.ID, err)
		}
		rate, limit := l.DefaultInterestRate, l.DefaultOverdraftLimit
		if as.InterestRate != nil {
			rate = *as.InterestRate
		}
		if as.OverdraftLimit != nil {
			limit = *as.OverdraftLimit
		}
		a, err := tl.Directory.CreateAccount(c.ID, kind, as.Number,
			bank.WithInterestRate(rate), bank.WithOverdraftLimit(limit))
		if err != nil {
			return fmt.Errorf("customer %s: %w", c.ID, err)
		}
		if as.OpeningBalance.IsZero() {
			continue
		}
		if _, err := tl.Processor.Deposit(a.Number(), as.OpeningBalance); err != nil {
			return fmt.Errorf("opening balance for %s: %w", a.Number(), err)
		}
	}
	return nil
}
