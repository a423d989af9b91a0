// internal/bank/customer.go

package bank

import (
	"maps"
	"slices"
)

// Profile 為客戶的選填明細資料。
type Profile struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Customer 持有一組帳號（單向擁有）。
// 帳號 → 客戶的反查由 Account.OwnerID 提供，該值建立後不變，兩邊不會分歧。
type Customer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Profile *Profile `json:"profile,omitempty"`

	accounts map[string]struct{}
}

// AccountNumbers 回傳此客戶擁有的帳號（遞增排序）。
func (c *Customer) AccountNumbers() []string {
	return slices.Sorted(maps.Keys(c.accounts))
}

// Owns 回報客戶是否擁有指定帳號。
func (c *Customer) Owns(accountNo string) bool {
	_, ok := c.accounts[accountNo]
	return ok
}

// clone 回傳深拷貝，供目錄對外回傳，避免呼叫端改寫內部狀態。
func (c *Customer) clone() *Customer {
	cp := *c
	cp.accounts = maps.Clone(c.accounts)
	if c.Profile != nil {
		p := *c.Profile
		cp.Profile = &p
	}
	return &cp
}
