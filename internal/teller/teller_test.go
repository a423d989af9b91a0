// internal/teller/teller_test.go
//
// 應用層整合測試：以真實的 Directory、Processor、Registry 與 Trail 組合，
// 驗證授權兩層門檻、稽核紀錄（含 *_DENIED）、登入鎖定與計數器。
package teller

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"ledger/internal/audit"
	"ledger/internal/auth"
	"ledger/internal/bank"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// loginAs 切換登入者；已登入時先登出。
func loginAs(t *testing.T, tl *Teller, user, secret string) {
	t.Helper()
	if _, ok := tl.Principal(); ok {
		if err := tl.Logout(); err != nil {
			t.Fatalf("logout: %v", err)
		}
	}
	if _, err := tl.Login(auth.Once(user, secret)); err != nil {
		t.Fatalf("login %s: %v", user, err)
	}
}

// newTeller 建立含兩位客戶的帳本：
// Alice(C001) 擁有 ACC001 儲蓄、ACC002 支票；Bob(C002) 擁有 ACC003 儲蓄。
// 回傳時以 admin 登入。
func newTeller(t *testing.T) *Teller {
	t.Helper()
	reg := auth.NewRegistry(auth.DefaultMinPasswordLength)
	for _, p := range []struct {
		user, secret, cust string
	}{
		{"admin", "admin123", ""},
		{"alice", "alice123", "C001"},
		{"bob", "bob12345", "C002"},
	} {
		var (
			pr  auth.Principal
			err error
		)
		if p.cust == "" {
			pr, err = auth.NewAdmin(p.user, p.secret)
		} else {
			pr, err = auth.NewCustomer(p.user, p.secret, p.cust)
		}
		if err != nil {
			t.Fatal(err)
		}
		if err := reg.Register(pr); err != nil {
			t.Fatal(err)
		}
	}

	tl := New(reg, DefaultSettings())
	loginAs(t, tl, "admin", "admin123")
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := tl.CreateCustomer("", name, nil); err != nil {
			t.Fatal(err)
		}
	}
	for _, o := range []struct {
		cust string
		kind bank.Kind
	}{
		{"C001", bank.KindSavings},
		{"C001", bank.KindChecking},
		{"C002", bank.KindSavings},
	} {
		if _, err := tl.CreateAccount(o.cust, o.kind, ""); err != nil {
			t.Fatal(err)
		}
	}
	return tl
}

func TestCustomerOwnershipGate(t *testing.T) {
	tl := newTeller(t)
	loginAs(t, tl, "alice", "alice123")

	if _, err := tl.Deposit("ACC001", dec("100")); err != nil {
		t.Fatalf("deposit own account: %v", err)
	}
	if _, err := tl.Withdraw("ACC003", dec("1")); !errors.Is(err, auth.ErrAccessDenied) {
		t.Fatalf("withdraw other's account: want ErrAccessDenied, got %v", err)
	}
	if _, err := tl.History("ACC999"); !errors.Is(err, auth.ErrAccessDenied) {
		t.Fatalf("nonexistent account: want ErrAccessDenied, got %v", err)
	}
	if _, err := tl.ListAccounts(); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("list accounts: want ErrPermissionDenied, got %v", err)
	}
	if err := tl.DeleteAccount("ACC001"); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("delete own account: want ErrPermissionDenied, got %v", err)
	}

	// 拒絕事件須寫入同一條稽核軌跡
	var denied []string
	for _, e := range tl.Trail.ReplayFor("alice") {
		if strings.HasSuffix(e.Action, audit.DeniedSuffix) {
			denied = append(denied, e.Action)
		}
	}
	want := []string{"DELETE_ACCOUNT_DENIED", "LIST_ACCOUNTS_DENIED", "VIEW_TRANSACTION_HISTORY_DENIED", "WITHDRAW_MONEY_DENIED"}
	if strings.Join(denied, " ") != strings.Join(want, " ") {
		t.Fatalf("denied=%v want %v", denied, want)
	}
	if got := testutil.ToFloat64(tl.Metrics.Denials.WithLabelValues("WITHDRAW_MONEY")); got != 1 {
		t.Fatalf("withdraw denials=%v want 1", got)
	}
}

// TestTransferToForeignAccount CUSTOMER 可轉入他人帳戶，只需擁有轉出帳戶。
func TestTransferToForeignAccount(t *testing.T) {
	tl := newTeller(t)
	loginAs(t, tl, "alice", "alice123")

	tx, err := tl.Transfer("ACC002", "ACC003", dec("200"))
	if err != nil {
		t.Fatal(err)
	}
	if !tx.OK() {
		t.Fatalf("transfer into overdraft should complete: %v", tx)
	}
	if _, err := tl.Transfer("ACC003", "ACC002", dec("1")); !errors.Is(err, auth.ErrAccessDenied) {
		t.Fatalf("transfer from other's account: want ErrAccessDenied, got %v", err)
	}

	loginAs(t, tl, "admin", "admin123")
	src, _ := tl.FindAccount("ACC002")
	dst, _ := tl.FindAccount("ACC003")
	if !src.Balance.Equal(dec("-200")) || !dst.Balance.Equal(dec("200")) {
		t.Fatalf("balances src=%s dst=%s", src.Balance, dst.Balance)
	}
	if got := testutil.ToFloat64(tl.Metrics.Transactions.WithLabelValues("TRANSFER", "COMPLETED")); got != 1 {
		t.Fatalf("transfer count=%v want 1", got)
	}
}

func TestWithdrawDeclinedIsAudited(t *testing.T) {
	tl := newTeller(t)
	tx, err := tl.Withdraw("ACC001", dec("10"))
	if err != nil {
		t.Fatalf("declined withdraw must not be an error: %v", err)
	}
	if tx.OK() {
		t.Fatal("withdraw beyond floor should be FAILED")
	}
	latest := tl.Trail.Replay()[0]
	if latest.Action != string(auth.ActionWithdraw) || !strings.Contains(latest.Details, "FAILED") {
		t.Fatalf("latest audit=%v", latest)
	}
	if got := testutil.ToFloat64(tl.Metrics.Transactions.WithLabelValues("WITHDRAW", "FAILED")); got != 1 {
		t.Fatalf("failed withdraw count=%v want 1", got)
	}
	// 非法金額屬於程式錯誤：回傳錯誤且不產生交易
	if _, err := tl.Deposit("ACC001", dec("-5")); !errors.Is(err, bank.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestLoginAuditAndLockout(t *testing.T) {
	tl := newTeller(t)
	if err := tl.Logout(); err != nil {
		t.Fatal(err)
	}
	calls := 0
	bad := auth.CredentialFunc(func() (string, string, bool) {
		calls++
		return "bob", "wrong", true
	})
	if _, err := tl.Login(bad); !errors.Is(err, auth.ErrLockedOut) {
		t.Fatalf("want ErrLockedOut, got %v", err)
	}
	if calls != auth.DefaultMaxAttempts {
		t.Fatalf("credential source called %d times", calls)
	}

	entries := tl.Trail.ReplayFor("bob")
	if len(entries) != 4 || entries[0].Action != TagLockedOut {
		t.Fatalf("bob audit=%v", entries)
	}
	for _, e := range entries[1:] {
		if e.Action != TagLoginFailed || e.Role != auth.RoleCustomer {
			t.Fatalf("unexpected entry %v", e)
		}
	}
	if got := testutil.ToFloat64(tl.Metrics.Logins.WithLabelValues("failure")); got != 3 {
		t.Fatalf("login failures=%v want 3", got)
	}

	// 鎖定不延續
	loginAs(t, tl, "bob", "bob12345")
	if tl.Trail.ReplayFor("bob")[0].Action != TagLoginSuccess {
		t.Fatal("successful login should be audited")
	}
}

func TestChangePasswordRefreshesSession(t *testing.T) {
	tl := newTeller(t)
	loginAs(t, tl, "alice", "alice123")

	if err := tl.ChangePassword("alice123", "abc"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
	if err := tl.ChangePassword("alice123", "n3wpass!"); err != nil {
		t.Fatal(err)
	}
	// 變更後同一工作階段仍可操作
	if _, err := tl.Deposit("ACC001", dec("1")); err != nil {
		t.Fatalf("session unusable after password change: %v", err)
	}
	loginAs(t, tl, "alice", "n3wpass!")
}

func TestAdminOperations(t *testing.T) {
	tl := newTeller(t)

	if _, err := tl.Deposit("ACC001", dec("1000")); err != nil {
		t.Fatal(err)
	}
	if _, err := tl.Deposit("ACC999", dec("1")); !errors.Is(err, bank.ErrAccountNotFound) {
		t.Fatalf("admin on missing account: want ErrAccountNotFound, got %v", err)
	}
	if err := tl.UpdateOverdraftLimit("ACC002", dec("50")); err != nil {
		t.Fatal(err)
	}
	if err := tl.UpdateOverdraftLimit("ACC001", dec("50")); !errors.Is(err, bank.ErrInvalidAccountKind) {
		t.Fatalf("savings overdraft: want ErrInvalidAccountKind, got %v", err)
	}
	n, err := tl.ApplyInterestToAllSavings()
	if err != nil || n != 2 {
		t.Fatalf("ApplyInterest n=%d err=%v", n, err)
	}
	a, _ := tl.FindAccount("ACC001")
	if !a.Balance.Equal(dec("1030")) {
		t.Fatalf("balance after interest=%s want 1030", a.Balance)
	}

	byBal, err := tl.SortAccountsByBalance()
	if err != nil || byBal[0].Number != "ACC001" {
		t.Fatalf("SortAccountsByBalance=%v err=%v", byBal, err)
	}
	byName, err := tl.SortAccountsByName()
	if err != nil || byName[len(byName)-1].OwnerID != "C002" {
		t.Fatalf("SortAccountsByName err=%v", err)
	}

	all, err := tl.DeleteCustomer("C001")
	if err != nil || !all {
		t.Fatalf("DeleteCustomer all=%v err=%v", all, err)
	}
	if _, ok := tl.Directory.FindAccount("ACC001"); ok {
		t.Fatal("cascade should remove ACC001")
	}
	if _, err := tl.DeleteCustomer("C001"); !errors.Is(err, bank.ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}

	entries, err := tl.AuditReplay()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Action != string(auth.ActionDeleteCustomer) {
		t.Fatalf("latest entry=%v", entries[0])
	}
	if got := testutil.ToFloat64(tl.Metrics.AuditEntries); int(got) != tl.Trail.Len() {
		t.Fatalf("audit counter=%v trail len=%d", got, tl.Trail.Len())
	}
}

func TestAnonymousRejected(t *testing.T) {
	tl := newTeller(t)
	if err := tl.Logout(); err != nil {
		t.Fatal(err)
	}
	before := tl.Trail.Len()
	if _, err := tl.Deposit("ACC001", dec("1")); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if err := tl.LogAction("NOTE", "x"); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if tl.Trail.Len() != before {
		t.Fatal("anonymous calls have no actor and must not be audited")
	}
}

// TestAccountViewIsSnapshot 客戶查詢得到的是快照：之後的存款不會反映在舊快照上，
// 而且餘額只能經由 Deposit 等操作改變，每次變動都留下交易與稽核紀錄。
func TestAccountViewIsSnapshot(t *testing.T) {
	tl := newTeller(t)
	loginAs(t, tl, "alice", "alice123")

	view, err := tl.FindAccount("ACC001")
	if err != nil {
		t.Fatal(err)
	}
	if view.Number != "ACC001" || view.Kind != bank.KindSavings || view.OwnerID != "C001" || !view.Balance.IsZero() {
		t.Fatalf("view=%+v", view)
	}
	if !strings.Contains(view.Details, "ACC001") || !view.Floor.IsZero() {
		t.Fatalf("view=%+v", view)
	}

	before := tl.Trail.Len()
	if _, err := tl.Deposit("ACC001", dec("25")); err != nil {
		t.Fatal(err)
	}
	if !view.Balance.IsZero() {
		t.Fatalf("snapshot changed after deposit: %s", view.Balance)
	}
	live, _ := tl.Directory.FindAccount("ACC001")
	if !live.Balance().Equal(dec("25")) || len(live.History()) != 1 || tl.Trail.Len() != before+1 {
		t.Fatalf("balance=%s history=%d audit=%d", live.Balance(), len(live.History()), tl.Trail.Len()-before)
	}

	view.Balance = dec("1000000")
	again, _ := tl.FindAccount("ACC001")
	if !again.Balance.Equal(dec("25")) {
		t.Fatalf("editing a snapshot reached the ledger: %s", again.Balance)
	}
}

func TestNewFillsZeroSettings(t *testing.T) {
	reg := auth.NewRegistry(0)
	admin, err := auth.NewAdmin("admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(admin); err != nil {
		t.Fatal(err)
	}
	tl := New(reg, Settings{})
	loginAs(t, tl, "admin", "admin123")
	if _, err := tl.CreateCustomer("", "Carol", nil); err != nil {
		t.Fatal(err)
	}
	sav, err := tl.CreateAccount("C001", bank.KindSavings, "")
	if err != nil {
		t.Fatalf("savings with zero settings: %v", err)
	}
	if !strings.Contains(sav.Details, "interest=3.00%") {
		t.Fatalf("details=%s", sav.Details)
	}
	chk, err := tl.CreateAccount("C001", bank.KindChecking, "")
	if err != nil {
		t.Fatal(err)
	}
	// 透支額度 0 是合法值，不會被預設值取代
	if !chk.Floor.IsZero() {
		t.Fatalf("checking floor=%s want 0", chk.Floor)
	}
}

func TestAuditReplayFor(t *testing.T) {
	tl := newTeller(t)
	loginAs(t, tl, "alice", "alice123")
	if _, err := tl.Deposit("ACC001", dec("5")); err != nil {
		t.Fatal(err)
	}
	if _, err := tl.AuditReplayFor("alice"); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Fatalf("customer audit view: want ErrPermissionDenied, got %v", err)
	}

	loginAs(t, tl, "admin", "admin123")
	entries, err := tl.AuditReplayFor("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 || entries[0].Action != string(auth.ActionLogout) {
		t.Fatalf("alice entries=%v", entries)
	}
	for _, e := range entries {
		if e.Actor != "alice" {
			t.Fatalf("foreign entry %v", e)
		}
	}
	if latest := tl.Trail.Replay()[0]; latest.Actor != "admin" || latest.Details != "actor alice" {
		t.Fatalf("latest=%v", latest)
	}
}
