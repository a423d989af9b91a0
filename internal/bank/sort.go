// internal/bank/sort.go

package bank

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// SortAccountsByName 依擁有者名稱（不分大小寫）遞增排序，穩定排序。
// 找不到擁有者的帳戶以空字串參與排序；同名者維持帳號遞增順序。
func (d *Directory) SortAccountsByName() []Account {
	out := d.Accounts()
	d.mu.RLock()
	names := make(map[string]string, len(out))
	for _, a := range out {
		names[a.Number()] = strings.ToLower(d.ownerName(a))
	}
	d.mu.RUnlock()
	slices.SortStableFunc(out, func(x, y Account) int {
		return strings.Compare(names[x.Number()], names[y.Number()])
	})
	return out
}

// SortAccountsByBalance 依餘額遞減排序，穩定排序；同額者維持帳號遞增順序。
// 排序前先取餘額快照，排序過程中不再讀取帳戶。
func (d *Directory) SortAccountsByBalance() []Account {
	out := d.Accounts()
	balances := make(map[string]decimal.Decimal, len(out))
	for _, a := range out {
		balances[a.Number()] = a.Balance()
	}
	slices.SortStableFunc(out, func(x, y Account) int {
		return balances[y.Number()].Cmp(balances[x.Number()])
	})
	return out
}
