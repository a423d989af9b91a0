// internal/bank/transaction.go

package bank

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the kind of ledger operation a Transaction records.
type TxType string

const (
	TxDeposit  TxType = "DEPOSIT"
	TxWithdraw TxType = "WITHDRAW"
	TxTransfer TxType = "TRANSFER"
)

// TxStatus is the outcome of a Transaction.
type TxStatus string

const (
	StatusCompleted TxStatus = "COMPLETED"
	StatusFailed    TxStatus = "FAILED"
)

// Transaction 為不可變的交易紀錄。
// 以值型別保存於每個相關帳戶的歷史中；轉帳成功時兩邊存的是同一筆（同 ID）。
type Transaction struct {
	ID     int64           `json:"id"`
	Type   TxType          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Status TxStatus        `json:"status"`
	Time   time.Time       `json:"time"`
}

// OK 回報交易是否完成。
func (t Transaction) OK() bool {
	return t.Status == StatusCompleted
}

func (t Transaction) String() string {
	switch t.Type {
	case TxTransfer:
		return fmt.Sprintf("#%d %s %s %s -> %s %s", t.ID, t.Type, t.Amount.StringFixed(2), t.From, t.To, t.Status)
	case TxWithdraw:
		return fmt.Sprintf("#%d %s %s from %s %s", t.ID, t.Type, t.Amount.StringFixed(2), t.From, t.Status)
	default:
		return fmt.Sprintf("#%d %s %s to %s %s", t.ID, t.Type, t.Amount.StringFixed(2), t.To, t.Status)
	}
}
