// internal/teller/operations.go

package teller

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"ledger/internal/auth"
	"ledger/internal/bank"
)

func (t *Teller) countTx(tx bank.Transaction) {
	t.Metrics.Transactions.WithLabelValues(string(tx.Type), string(tx.Status)).Inc()
}

// CreateCustomer 建立客戶（ADMIN）。id 為空時自動配發。
func (t *Teller) CreateCustomer(id, name string, profile *bank.Profile) (*bank.Customer, error) {
	p, err := t.authorize(auth.ActionCreateCustomer)
	if err != nil {
		return nil, err
	}
	c, err := t.Directory.CreateCustomer(id, name, profile)
	if err != nil {
		return nil, err
	}
	t.record(p, string(auth.ActionCreateCustomer), fmt.Sprintf("%s %s", c.ID, c.Name))
	return c, nil
}

// CreateAccount 為客戶開戶（ADMIN）。未另外指定時套用設定檔中的利率與透支額度。
func (t *Teller) CreateAccount(customerID string, kind bank.Kind, accountNo string, opts ...bank.AccountOption) (bank.AccountView, error) {
	p, err := t.authorize(auth.ActionCreateAccount)
	if err != nil {
		return bank.AccountView{}, err
	}
	opts = append([]bank.AccountOption{
		bank.WithInterestRate(t.settings.DefaultInterestRate),
		bank.WithOverdraftLimit(t.settings.DefaultOverdraftLimit),
	}, opts...)
	a, err := t.Directory.CreateAccount(customerID, kind, accountNo, opts...)
	if err != nil {
		return bank.AccountView{}, err
	}
	t.record(p, string(auth.ActionCreateAccount), fmt.Sprintf("%s %s for %s", a.Number(), a.Kind(), customerID))
	return bank.Snapshot(a), nil
}

// FindAccount 查詢帳戶明細。CUSTOMER 只能查詢自己的帳戶。
// 回傳的是快照；餘額只能經由 Deposit、Withdraw、Transfer 變動。
func (t *Teller) FindAccount(no string) (bank.AccountView, error) {
	p, err := t.authorize(auth.ActionViewAccountDetails, no)
	if err != nil {
		return bank.AccountView{}, err
	}
	a, ok := t.Directory.FindAccount(no)
	if !ok {
		return bank.AccountView{}, fmt.Errorf("%w: %s", bank.ErrAccountNotFound, no)
	}
	t.record(p, string(auth.ActionViewAccountDetails), no)
	return bank.Snapshot(a), nil
}

// Deposit 存款。
func (t *Teller) Deposit(no string, amount decimal.Decimal) (bank.Transaction, error) {
	p, err := t.authorize(auth.ActionDeposit, no)
	if err != nil {
		return bank.Transaction{}, err
	}
	tx, err := t.Processor.Deposit(no, amount)
	if err != nil {
		return tx, err
	}
	t.countTx(tx)
	t.record(p, string(auth.ActionDeposit), tx.String())
	return tx, nil
}

// Withdraw 提款。超過下限時回傳 FAILED 交易與 nil 錯誤。
func (t *Teller) Withdraw(no string, amount decimal.Decimal) (bank.Transaction, error) {
	p, err := t.authorize(auth.ActionWithdraw, no)
	if err != nil {
		return bank.Transaction{}, err
	}
	tx, err := t.Processor.Withdraw(no, amount)
	if err != nil {
		return tx, err
	}
	t.countTx(tx)
	t.record(p, string(auth.ActionWithdraw), tx.String())
	return tx, nil
}

// Transfer 轉帳。CUSTOMER 只需擁有轉出帳戶；轉入帳戶只需存在。
func (t *Teller) Transfer(from, to string, amount decimal.Decimal) (bank.Transaction, error) {
	p, err := t.authorize(auth.ActionTransfer, from)
	if err != nil {
		return bank.Transaction{}, err
	}
	tx, err := t.Processor.Transfer(from, to, amount)
	if err != nil {
		return tx, err
	}
	t.countTx(tx)
	t.record(p, string(auth.ActionTransfer), tx.String())
	return tx, nil
}

// History 回傳帳戶交易紀錄，最新在前。
func (t *Teller) History(no string) ([]bank.Transaction, error) {
	p, err := t.authorize(auth.ActionViewHistory, no)
	if err != nil {
		return nil, err
	}
	a, ok := t.Directory.FindAccount(no)
	if !ok {
		return nil, fmt.Errorf("%w: %s", bank.ErrAccountNotFound, no)
	}
	t.record(p, string(auth.ActionViewHistory), no)
	return a.History(), nil
}

// DeleteAccount 刪除帳戶（ADMIN）。帳戶不存在回傳 ErrAccountNotFound。
func (t *Teller) DeleteAccount(no string) error {
	p, err := t.authorize(auth.ActionDeleteAccount, no)
	if err != nil {
		return err
	}
	if !t.Processor.DeleteAccount(no) {
		return fmt.Errorf("%w: %s", bank.ErrAccountNotFound, no)
	}
	t.record(p, string(auth.ActionDeleteAccount), no)
	return nil
}

// DeleteCustomer 連同帳戶刪除客戶（ADMIN）。
// 回傳 false 代表有附屬帳戶未能刪除；客戶本身仍已移除。
func (t *Teller) DeleteCustomer(id string) (bool, error) {
	p, err := t.authorize(auth.ActionDeleteCustomer)
	if err != nil {
		return false, err
	}
	if _, ok := t.Directory.FindCustomer(id); !ok {
		return false, fmt.Errorf("%w: %s", bank.ErrCustomerNotFound, id)
	}
	all := t.Processor.DeleteCustomer(id)
	details := id
	if !all {
		log.Printf("[teller] warning: customer %s deleted with partial account cascade", id)
		details += " (partial)"
	}
	t.record(p, string(auth.ActionDeleteCustomer), details)
	return all, nil
}

// UpdateOverdraftLimit 調整支票帳戶透支額度（ADMIN）。
func (t *Teller) UpdateOverdraftLimit(no string, limit decimal.Decimal) error {
	p, err := t.authorize(auth.ActionUpdateOverdraft, no)
	if err != nil {
		return err
	}
	if err := t.Processor.UpdateOverdraftLimit(no, limit); err != nil {
		return err
	}
	t.record(p, string(auth.ActionUpdateOverdraft), fmt.Sprintf("%s %s", no, limit.StringFixed(2)))
	return nil
}

// ApplyInterestToAllSavings 對所有儲蓄帳戶計息（ADMIN），回傳計息帳戶數。
func (t *Teller) ApplyInterestToAllSavings() (int, error) {
	p, err := t.authorize(auth.ActionApplyInterest)
	if err != nil {
		return 0, err
	}
	n := t.Processor.ApplyInterestToAllSavings()
	t.record(p, string(auth.ActionApplyInterest), fmt.Sprintf("%d accounts", n))
	return n, nil
}

// ListAccounts 依帳號列出所有帳戶（ADMIN）。
func (t *Teller) ListAccounts() ([]bank.AccountView, error) {
	return t.list("", t.Directory.Accounts)
}

// SortAccountsByName 依擁有者名稱排序列出（ADMIN）。
func (t *Teller) SortAccountsByName() ([]bank.AccountView, error) {
	return t.list("by name", t.Directory.SortAccountsByName)
}

// SortAccountsByBalance 依餘額遞減列出（ADMIN）。
func (t *Teller) SortAccountsByBalance() ([]bank.AccountView, error) {
	return t.list("by balance", t.Directory.SortAccountsByBalance)
}

func (t *Teller) list(details string, fn func() []bank.Account) ([]bank.AccountView, error) {
	p, err := t.authorize(auth.ActionListAccounts)
	if err != nil {
		return nil, err
	}
	accts := bank.Snapshots(fn())
	t.record(p, string(auth.ActionListAccounts), details)
	return accts, nil
}
