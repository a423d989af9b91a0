// internal/bank/directory_test.go
//
// 帳戶目錄測試：開戶錯誤、編號配發單調性、連鎖刪除與排序。

package bank

import (
	"errors"
	"slices"
	"testing"
)

// newDirWithCustomers 建立已含指定客戶名稱的目錄（編號依序為 C001、C002…）。
func newDirWithCustomers(t *testing.T, names ...string) *Directory {
	t.Helper()
	d := NewDirectory()
	for _, n := range names {
		if _, err := d.CreateCustomer("", n, nil); err != nil {
			t.Fatalf("CreateCustomer(%s) err=%v", n, err)
		}
	}
	return d
}

func mustOpen(t *testing.T, d *Directory, cust string, kind Kind, opts ...AccountOption) Account {
	t.Helper()
	a, err := d.CreateAccount(cust, kind, "", opts...)
	if err != nil {
		t.Fatalf("CreateAccount(%s,%s) err=%v", cust, kind, err)
	}
	return a
}

func numbers(accts []Account) []string {
	out := make([]string, len(accts))
	for i, a := range accts {
		out[i] = a.Number()
	}
	return out
}

func TestCreateAccountErrors(t *testing.T) {
	d := newDirWithCustomers(t, "Alice")
	if _, err := d.CreateAccount("C999", KindSavings, ""); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
	if _, err := d.CreateAccount("C001", Kind("BROKERAGE"), ""); !errors.Is(err, ErrInvalidAccountKind) {
		t.Fatalf("want ErrInvalidAccountKind, got %v", err)
	}
	if _, err := d.CreateAccount("C001", KindSavings, "ACC1"); !errors.Is(err, ErrMalformedID) {
		t.Fatalf("want ErrMalformedID, got %v", err)
	}
	if _, err := d.CreateAccount("C001", KindSavings, "ACC007"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateAccount("C001", KindChecking, "ACC007"); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
	if _, err := d.CreateAccount("C001", KindSavings, "", WithInterestRate(dec("-0.1"))); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

// TestIDMonotonicity 驗證配發的編號永遠大於任何現存數字尾碼，即使刪除後留下空號。
func TestIDMonotonicity(t *testing.T) {
	d := newDirWithCustomers(t, "Alice", "Bob")
	a1 := mustOpen(t, d, "C001", KindSavings)
	a2 := mustOpen(t, d, "C001", KindChecking)
	if a1.Number() != "ACC001" || a2.Number() != "ACC002" {
		t.Fatalf("got %s %s want ACC001 ACC002", a1.Number(), a2.Number())
	}
	if _, err := d.CreateAccount("C002", KindSavings, "ACC010"); err != nil {
		t.Fatal(err)
	}
	// 刪除中間的帳號留下空號，仍應接續最大值
	if !d.DeleteAccount("ACC002") {
		t.Fatal("DeleteAccount(ACC002) = false")
	}
	if a := mustOpen(t, d, "C002", KindSavings); a.Number() != "ACC011" {
		t.Fatalf("next=%s want ACC011", a.Number())
	}

	c, err := d.CreateCustomer("", "Carol", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "C003" {
		t.Fatalf("customer id=%s want C003", c.ID)
	}
	if _, err := d.CreateCustomer("C002", "Dup", nil); !errors.Is(err, ErrDuplicateCustomer) {
		t.Fatalf("want ErrDuplicateCustomer, got %v", err)
	}
	if _, err := d.CreateCustomer("X1", "Bad", nil); !errors.Is(err, ErrMalformedID) {
		t.Fatalf("want ErrMalformedID, got %v", err)
	}
}

func TestIDSpaceExhausted(t *testing.T) {
	d := newDirWithCustomers(t, "Alice")
	if _, err := d.CreateAccount("C001", KindSavings, "ACC999"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateAccount("C001", KindSavings, ""); !errors.Is(err, ErrIDSpaceExhausted) {
		t.Fatalf("want ErrIDSpaceExhausted, got %v", err)
	}
}

// TestDeleteCustomerCascade 刪除擁有兩個帳戶的客戶，兩個帳戶都應自目錄與擁有者移除。
func TestDeleteCustomerCascade(t *testing.T) {
	d := newDirWithCustomers(t, "Alice", "Bob")
	mustOpen(t, d, "C001", KindSavings)
	mustOpen(t, d, "C001", KindChecking)
	bob := mustOpen(t, d, "C002", KindSavings)

	c, _ := d.FindCustomer("C001")
	if got := c.AccountNumbers(); !slices.Equal(got, []string{"ACC001", "ACC002"}) {
		t.Fatalf("owned=%v", got)
	}

	if !d.DeleteCustomer("C001") {
		t.Fatal("DeleteCustomer should report full success")
	}
	for _, no := range []string{"ACC001", "ACC002"} {
		if _, ok := d.FindAccount(no); ok {
			t.Fatalf("%s still present", no)
		}
		if _, ok := d.OwnerOf(no); ok {
			t.Fatalf("%s still has an owner", no)
		}
	}
	if _, ok := d.FindCustomer("C001"); ok {
		t.Fatal("customer still present")
	}
	if _, ok := d.FindAccount(bob.Number()); !ok {
		t.Fatal("other customer's account must survive")
	}
	if d.DeleteCustomer("C001") {
		t.Fatal("second delete should report false")
	}
}

func TestDeleteAccountUnlinksOwner(t *testing.T) {
	d := newDirWithCustomers(t, "Alice")
	a := mustOpen(t, d, "C001", KindSavings)
	if owner, ok := d.OwnerOf(a.Number()); !ok || owner != "C001" {
		t.Fatalf("OwnerOf=%q,%v", owner, ok)
	}
	if !d.DeleteAccount(a.Number()) {
		t.Fatal("DeleteAccount = false")
	}
	c, _ := d.FindCustomer("C001")
	if c.Owns(a.Number()) {
		t.Fatal("owner still links deleted account")
	}
	if d.DeleteAccount(a.Number()) {
		t.Fatal("deleting twice should report false")
	}
}

// TestFindCustomerReturnsCopy 回傳值為拷貝，修改它不影響目錄。
func TestFindCustomerReturnsCopy(t *testing.T) {
	d := NewDirectory()
	if _, err := d.CreateCustomer("", "Alice", &Profile{Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	c, _ := d.FindCustomer("C001")
	c.Name = "Mallory"
	c.Profile.Email = "m@example.com"
	again, _ := d.FindCustomer("C001")
	if again.Name != "Alice" || again.Profile.Email != "a@example.com" {
		t.Fatalf("directory mutated through copy: %+v", again)
	}
	if err := d.UpdateProfile("C001", nil); err != nil {
		t.Fatal(err)
	}
	if again, _ := d.FindCustomer("C001"); again.Profile != nil {
		t.Fatal("profile should be cleared")
	}
	if err := d.UpdateProfile("C404", nil); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
}

// TestSortAccountsByName 不分大小寫遞增，同名維持帳號順序。
func TestSortAccountsByName(t *testing.T) {
	d := newDirWithCustomers(t, "bob", "Alice", "Bob")
	mustOpen(t, d, "C001", KindSavings)  // ACC001 bob
	mustOpen(t, d, "C002", KindSavings)  // ACC002 Alice
	mustOpen(t, d, "C003", KindChecking) // ACC003 Bob
	mustOpen(t, d, "C001", KindChecking) // ACC004 bob

	got := numbers(d.SortAccountsByName())
	want := []string{"ACC002", "ACC001", "ACC003", "ACC004"}
	if !slices.Equal(got, want) {
		t.Fatalf("SortAccountsByName=%v want %v", got, want)
	}
}

// TestSortAccountsByBalance 餘額遞減，同額維持帳號順序。
func TestSortAccountsByBalance(t *testing.T) {
	d := newDirWithCustomers(t, "Alice")
	p := NewProcessor(d)
	for _, amt := range []string{"50", "200", "50", "0"} {
		a := mustOpen(t, d, "C001", KindChecking)
		if amt != "0" {
			if _, err := p.Deposit(a.Number(), dec(amt)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if _, err := p.Withdraw("ACC004", dec("10")); err != nil {
		t.Fatal(err)
	}

	got := numbers(d.SortAccountsByBalance())
	want := []string{"ACC002", "ACC001", "ACC003", "ACC004"}
	if !slices.Equal(got, want) {
		t.Fatalf("SortAccountsByBalance=%v want %v", got, want)
	}
}

func TestCustomerAccounts(t *testing.T) {
	d := newDirWithCustomers(t, "Alice", "Bob")
	mustOpen(t, d, "C002", KindSavings)
	mustOpen(t, d, "C001", KindSavings)
	accts, err := d.CustomerAccounts("C001")
	if err != nil {
		t.Fatal(err)
	}
	if got := numbers(accts); !slices.Equal(got, []string{"ACC002"}) {
		t.Fatalf("CustomerAccounts=%v", got)
	}
	if _, err := d.CustomerAccounts("C404"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
}

// TestDeleteCustomerPartialCascade 客戶名下登記了帳戶索引中不存在的帳號時，
// 連鎖刪除回報 false，但客戶與其餘帳戶仍被移除。
func TestDeleteCustomerPartialCascade(t *testing.T) {
	d := newDirWithCustomers(t, "Alice")
	a := mustOpen(t, d, "C001", KindSavings)
	d.customers["C001"].accounts["ACC404"] = struct{}{}

	if d.DeleteCustomer("C001") {
		t.Fatal("DeleteCustomer should report a partial cascade")
	}
	if _, ok := d.FindCustomer("C001"); ok {
		t.Fatal("customer still present")
	}
	if _, ok := d.FindAccount(a.Number()); ok {
		t.Fatalf("%s still present", a.Number())
	}
}
