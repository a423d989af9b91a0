// internal/teller/script.go
//
// 以設定檔中的 [[steps]] 重播一段工作階段，取代互動式選單。
// 每一步的錯誤只會被回報，不會中斷後續步驟。

package teller

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/auth"
	"ledger/internal/bank"
)

// ActionLogin 為腳本專用的登入步驟名稱。
const ActionLogin = "LOGIN"

// Step 為腳本中的一步；未用到的欄位留空即可。
type Step struct {
	Action    string          `toml:"action"`
	User      string          `toml:"user,omitempty"`
	Secret    string          `toml:"secret,omitempty"`
	NewSecret string          `toml:"new_secret,omitempty"`
	Customer  string          `toml:"customer,omitempty"`
	Name      string          `toml:"name,omitempty"`
	Kind      string          `toml:"kind,omitempty"`
	Account   string          `toml:"account,omitempty"`
	To        string          `toml:"to,omitempty"`
	Amount    decimal.Decimal `toml:"amount,omitempty"`
	Details   string          `toml:"details,omitempty"`
}

// Run 依序執行每一步並把結果寫到 out，回傳失敗的步數。
// EXIT 會登出（若已登入）並停止執行。
func (t *Teller) Run(steps []Step, out io.Writer) int {
	failed := 0
	for i, s := range steps {
		msg, err := t.step(s)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%3d %-26s error: %v\n", i+1, s.Action, err)
		} else {
			fmt.Fprintf(out, "%3d %-26s %s\n", i+1, s.Action, msg)
		}
		if strings.EqualFold(s.Action, string(auth.ActionExit)) {
			break
		}
	}
	return failed
}

func (t *Teller) step(s Step) (string, error) {
	switch strings.ToUpper(s.Action) {
	case ActionLogin:
		p, err := t.LoginWith(s.User, s.Secret)
		if err != nil {
			return "", err
		}
		return "logged in as " + p.String(), nil
	case string(auth.ActionLogout):
		return "logged out", t.Logout()
	case string(auth.ActionExit):
		if _, ok := t.Principal(); ok {
			return "bye", t.Logout()
		}
		return "bye", nil
	case string(auth.ActionCreateCustomer):
		c, err := t.CreateCustomer(s.Customer, s.Name, nil)
		if err != nil {
			return "", err
		}
		return "customer " + c.ID, nil
	case string(auth.ActionCreateAccount):
		kind, err := bank.ParseKind(s.Kind)
		if err != nil {
			return "", err
		}
		a, err := t.CreateAccount(s.Customer, kind, s.Account)
		if err != nil {
			return "", err
		}
		return a.Details, nil
	case string(auth.ActionDeleteAccount):
		return "deleted " + s.Account, t.DeleteAccount(s.Account)
	case string(auth.ActionDeleteCustomer):
		all, err := t.DeleteCustomer(s.Customer)
		if err != nil {
			return "", err
		}
		if !all {
			return "deleted " + s.Customer + " (some accounts could not be removed)", nil
		}
		return "deleted " + s.Customer, nil
	case string(auth.ActionViewAccountDetails):
		a, err := t.FindAccount(s.Account)
		if err != nil {
			return "", err
		}
		return a.Details, nil
	case string(auth.ActionDeposit):
		return txResult(t.Deposit(s.Account, s.Amount))
	case string(auth.ActionWithdraw):
		return txResult(t.Withdraw(s.Account, s.Amount))
	case string(auth.ActionTransfer):
		return txResult(t.Transfer(s.Account, s.To, s.Amount))
	case string(auth.ActionViewHistory):
		h, err := t.History(s.Account)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d transactions", len(h)), nil
	case string(auth.ActionUpdateOverdraft):
		return "limit " + s.Amount.StringFixed(2), t.UpdateOverdraftLimit(s.Account, s.Amount)
	case string(auth.ActionApplyInterest):
		n, err := t.ApplyInterestToAllSavings()
		return fmt.Sprintf("%d savings accounts", n), err
	case string(auth.ActionListAccounts):
		accts, err := t.ListAccounts()
		return fmt.Sprintf("%d accounts", len(accts)), err
	case string(auth.ActionChangePassword):
		return "password changed", t.ChangePassword(s.Secret, s.NewSecret)
	case string(auth.ActionViewAuditLog):
		entries, err := t.AuditReplay()
		return fmt.Sprintf("%d audit entries", len(entries)), err
	}
	return "", fmt.Errorf("unknown step action %q", s.Action)
}

func txResult(tx bank.Transaction, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return tx.String(), nil
}
