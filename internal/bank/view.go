package bank

import "github.com/shopspring/decimal"

// AccountView 是帳戶在某一時點的值拷貝，不帶任何可變動餘額的方法。
// 授權層之外的呼叫端只拿得到 AccountView，避免繞過 Processor 直接改寫餘額。
type AccountView struct {
	Number  string
	Kind    Kind
	OwnerID string
	Balance decimal.Decimal
	Floor   decimal.Decimal
	Details string
}

// Snapshot 擷取帳戶目前的狀態。
func Snapshot(a Account) AccountView {
	return AccountView{
		Number:  a.Number(),
		Kind:    a.Kind(),
		OwnerID: a.OwnerID(),
		Balance: a.Balance(),
		Floor:   a.Floor(),
		Details: a.Details(),
	}
}

// Snapshots 依原順序擷取多個帳戶。
func Snapshots(accts []Account) []AccountView {
	out := make([]AccountView, len(accts))
	for i, a := range accts {
		out[i] = Snapshot(a)
	}
	return out
}
