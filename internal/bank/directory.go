// internal/bank/directory.go
//
// Directory 為帳務核心的聚合根：帳號 → 帳戶、客戶編號 → 客戶。
// 使用一把 RWMutex 保護兩張索引表；帳戶餘額本身由 Processor 的逐帳戶鎖保護。

package bank

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
)

// Directory 管理帳戶與客戶，並提供授權層需要的擁有者反查。
type Directory struct {
	mu        sync.RWMutex
	accounts  map[string]Account
	customers map[string]*Customer
}

// NewDirectory 建立空白目錄。
func NewDirectory() *Directory {
	return &Directory{
		accounts:  make(map[string]Account),
		customers: make(map[string]*Customer),
	}
}

// FindAccount 依帳號查詢帳戶。
func (d *Directory) FindAccount(no string) (Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[no]
	return a, ok
}

// FindCustomer 依客戶編號查詢，回傳拷貝。
func (d *Directory) FindCustomer(id string) (*Customer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.customers[id]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

// OwnerOf 回傳帳戶擁有者的客戶編號；帳戶不存在時 ok 為 false。
func (d *Directory) OwnerOf(no string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[no]
	if !ok {
		return "", false
	}
	return a.OwnerID(), true
}

// CreateCustomer 建立客戶；id 為空時自動配發。
func (d *Directory) CreateCustomer(id, name string, profile *Profile) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == "" {
		next, err := nextID(d.customers, customerIDPattern, CustomerPrefix)
		if err != nil {
			return nil, err
		}
		id = next
	}
	if !ValidCustomerID(id) {
		return nil, fmt.Errorf("%w: customer id %q", ErrMalformedID, id)
	}
	if _, dup := d.customers[id]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCustomer, id)
	}
	c := &Customer{ID: id, Name: name, accounts: make(map[string]struct{})}
	if profile != nil {
		p := *profile
		c.Profile = &p
	}
	d.customers[id] = c
	return c.clone(), nil
}

// UpdateProfile 以新值整筆取代客戶明細；傳入 nil 代表清除。
func (d *Directory) UpdateProfile(id string, profile *Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.customers[id]
	if !ok {
		return ErrCustomerNotFound
	}
	if profile == nil {
		c.Profile = nil
		return nil
	}
	p := *profile
	c.Profile = &p
	return nil
}

// CreateAccount 為客戶開立帳戶；accountNo 為空時自動配發。
// 可能錯誤：ErrCustomerNotFound、ErrDuplicateAccount、ErrInvalidAccountKind、ErrMalformedID。
func (d *Directory) CreateAccount(customerID string, kind Kind, accountNo string, opts ...AccountOption) (Account, error) {
	if kind != KindSavings && kind != KindChecking {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountKind, kind)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	owner, ok := d.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
	}
	if accountNo == "" {
		next, err := nextID(d.accounts, accountNoPattern, AccountPrefix)
		if err != nil {
			return nil, err
		}
		accountNo = next
	}
	if !ValidAccountNumber(accountNo) {
		return nil, fmt.Errorf("%w: account number %q", ErrMalformedID, accountNo)
	}
	if _, dup := d.accounts[accountNo]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, accountNo)
	}
	a, err := newAccount(kind, accountNo, customerID, opts...)
	if err != nil {
		return nil, err
	}
	d.accounts[accountNo] = a
	owner.accounts[accountNo] = struct{}{}
	return a, nil
}

// DeleteAccount 移除帳戶並自擁有者解除連結。
// 找不到擁有者時仍會移除，僅記錄警告。
func (d *Directory) DeleteAccount(no string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteAccountLocked(no)
}

func (d *Directory) deleteAccountLocked(no string) bool {
	a, ok := d.accounts[no]
	if !ok {
		return false
	}
	delete(d.accounts, no)
	if owner, ok := d.customers[a.OwnerID()]; ok {
		delete(owner.accounts, no)
	} else {
		log.Printf("[directory] warning: account %s removed without owner (customer %s missing)", no, a.OwnerID())
	}
	return true
}

// DeleteCustomer 連同其所有帳戶一併刪除，整個過程在同一個寫鎖內完成。
// 回傳 true 代表每一個附屬帳戶都刪除成功。客戶名下的帳號若已不在帳戶索引中
// （兩張索引表不一致），該帳號視為刪除失敗：記錄警告、解除連結並回傳 false，客戶仍會被移除。
func (d *Directory) DeleteCustomer(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.customers[id]
	if !ok {
		return false
	}
	all := true
	for _, no := range c.AccountNumbers() {
		if !d.deleteAccountLocked(no) {
			log.Printf("[directory] warning: cascade delete of %s for customer %s failed", no, id)
			delete(c.accounts, no)
			all = false
		}
	}
	delete(d.customers, id)
	return all
}

// Accounts 回傳所有帳戶，依帳號遞增排序。
func (d *Directory) Accounts() []Account {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y Account) int { return cmp.Compare(x.Number(), y.Number()) })
	return out
}

// CustomerAccounts 回傳客戶擁有的帳戶，依帳號遞增排序。
func (d *Directory) CustomerAccounts(id string) ([]Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := make([]Account, 0, len(c.accounts))
	for _, no := range c.AccountNumbers() {
		if a, ok := d.accounts[no]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// ownerName 在持有讀鎖時查詢擁有者名稱；找不到回傳空字串。
func (d *Directory) ownerName(a Account) string {
	if c, ok := d.customers[a.OwnerID()]; ok {
		return c.Name
	}
	return ""
}
