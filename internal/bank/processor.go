// internal/bank/processor.go
//
// Processor 執行存款、提款、轉帳，並產生不可變的 Transaction 紀錄。
// 每個操作固定三步：定位帳戶 → 變動餘額 → 追加交易紀錄（失敗的嘗試同樣追加）。
// 授權不在此層處理；呼叫端必須先通過 auth.Gate。
//
// 並行模型：每個帳號一把互斥鎖，轉帳依帳號字典序取得兩把鎖，避免死結。
// 交易 ID 以 atomic 遞增，只在單一 Processor 實例內唯一。

package bank

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Processor 為交易處理器。
type Processor struct {
	dir    *Directory
	nextID atomic.Int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewProcessor 建立綁定指定目錄的處理器。
func NewProcessor(dir *Directory) *Processor {
	return &Processor{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// lock 依帳號遞增順序取得所有指定帳號的鎖，回傳解鎖函式。
func (p *Processor) lock(nos ...string) func() {
	nos = slices.Clone(nos)
	slices.Sort(nos)
	nos = slices.Compact(nos)

	p.locksMu.Lock()
	ms := make([]*sync.Mutex, len(nos))
	for i, no := range nos {
		m, ok := p.locks[no]
		if !ok {
			m = &sync.Mutex{}
			p.locks[no] = m
		}
		ms[i] = m
	}
	p.locksMu.Unlock()

	for _, m := range ms {
		m.Lock()
	}
	return func() {
		for i := len(ms) - 1; i >= 0; i-- {
			ms[i].Unlock()
		}
	}
}

// acquire 先確認帳戶存在才建立並取得鎖，取得後再查一次目錄，
// 因此不存在的帳號不會在鎖表留下項目，與刪除並行時也只會看到刪除後的狀態。
func (p *Processor) acquire(nos ...string) (func(), []Account, error) {
	for _, no := range nos {
		if _, ok := p.dir.FindAccount(no); !ok {
			return nil, nil, ErrAccountNotFound
		}
	}
	unlock := p.lock(nos...)
	accts := make([]Account, len(nos))
	for i, no := range nos {
		a, ok := p.dir.FindAccount(no)
		if !ok {
			unlock()
			return nil, nil, ErrAccountNotFound
		}
		accts[i] = a
	}
	return unlock, accts, nil
}

// forget 移除已刪除帳號的鎖。呼叫端必須持有這些帳號的鎖；
// 各操作都是先取鎖再查目錄，因此等待中的操作取得舊鎖後會得到 ErrAccountNotFound。
func (p *Processor) forget(nos ...string) {
	p.locksMu.Lock()
	defer p.locksMu.Unlock()
	for _, no := range nos {
		delete(p.locks, no)
	}
}

// DeleteAccount 在帳戶鎖內自目錄移除帳戶，並釋放該帳號的鎖。
func (p *Processor) DeleteAccount(no string) bool {
	unlock, _, err := p.acquire(no)
	if err != nil {
		return false
	}
	defer unlock()
	if !p.dir.DeleteAccount(no) {
		return false
	}
	p.forget(no)
	return true
}

// DeleteCustomer 連同帳戶刪除客戶，語意同 Directory.DeleteCustomer。
func (p *Processor) DeleteCustomer(id string) bool {
	c, ok := p.dir.FindCustomer(id)
	if !ok {
		return false
	}
	nos := c.AccountNumbers()
	unlock := p.lock(nos...)
	defer unlock()
	all := p.dir.DeleteCustomer(id)
	p.forget(nos...)
	return all
}

func (p *Processor) newTx(typ TxType, amount decimal.Decimal, from, to string, status TxStatus) Transaction {
	return Transaction{
		ID:     p.nextID.Add(1),
		Type:   typ,
		Amount: amount,
		From:   from,
		To:     to,
		Status: status,
		Time:   time.Now(),
	}
}

// Deposit 存款。帳戶不存在回傳 ErrAccountNotFound；合法金額必定 COMPLETED。
func (p *Processor) Deposit(no string, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	unlock, accts, err := p.acquire(no)
	if err != nil {
		return Transaction{}, err
	}
	defer unlock()
	a := accts[0]

	a.base().credit(amount)
	tx := p.newTx(TxDeposit, amount, "", no, StatusCompleted)
	a.base().record(tx)
	return tx, nil
}

// Withdraw 提款。低於帳戶下限時回傳 FAILED 交易與 nil error，且該交易仍寫入歷史。
func (p *Processor) Withdraw(no string, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	unlock, accts, err := p.acquire(no)
	if err != nil {
		return Transaction{}, err
	}
	defer unlock()
	a := accts[0]

	done, err := a.Withdraw(amount)
	if err != nil {
		return Transaction{}, err
	}
	status := StatusCompleted
	if !done {
		status = StatusFailed
	}
	tx := p.newTx(TxWithdraw, amount, no, "", status)
	a.base().record(tx)
	return tx, nil
}

// Transfer 轉帳：先自來源提款，成功才存入目標。金額已驗證為正，入帳一側不會失敗。
//   - 提款失敗：只在來源寫入一筆 FAILED 交易，目標不變。
//   - 提款成功：同一筆 COMPLETED 交易寫入雙方歷史。
//
// 相同帳號在任何變動前即被拒絕。
func (p *Processor) Transfer(from, to string, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if from == to {
		return Transaction{}, ErrSameAccount
	}
	unlock, accts, err := p.acquire(from, to)
	if err != nil {
		return Transaction{}, err
	}
	defer unlock()
	src, dst := accts[0], accts[1]

	done, err := src.Withdraw(amount)
	if err != nil {
		return Transaction{}, err
	}
	if !done {
		tx := p.newTx(TxTransfer, amount, from, to, StatusFailed)
		src.base().record(tx)
		return tx, nil
	}
	dst.base().credit(amount)
	tx := p.newTx(TxTransfer, amount, from, to, StatusCompleted)
	src.base().record(tx)
	dst.base().record(tx)
	return tx, nil
}

// UpdateOverdraftLimit 調整支票帳戶透支額度；非支票帳戶回傳 ErrInvalidAccountKind。
func (p *Processor) UpdateOverdraftLimit(no string, limit decimal.Decimal) error {
	unlock, accts, err := p.acquire(no)
	if err != nil {
		return err
	}
	defer unlock()
	c, ok := accts[0].(*Checking)
	if !ok {
		return ErrInvalidAccountKind
	}
	return c.SetOverdraftLimit(limit)
}

// interestBearing 為可計息的帳戶變體。
type interestBearing interface {
	ApplyInterest() decimal.Decimal
}

// ApplyInterestToAllSavings 對所有可計息帳戶計息一次，回傳計息的帳戶數。
func (p *Processor) ApplyInterestToAllSavings() int {
	n := 0
	for _, a := range p.dir.Accounts() {
		ib, ok := a.(interestBearing)
		if !ok {
			continue
		}
		unlock, _, err := p.acquire(a.Number())
		if err != nil {
			continue
		}
		ib.ApplyInterest()
		unlock()
		n++
	}
	return n
}
