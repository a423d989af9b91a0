// internal/audit/trail.go
//
// Package audit 提供只追加的稽核軌跡。
// 內部以一般切片依寫入順序保存，讀取時反序，最新一筆永遠最先被讀到。
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/auth"
)

// DeniedSuffix 為授權失敗事件的標籤後綴，例如 WITHDRAW_MONEY_DENIED。
const DeniedSuffix = "_DENIED"

// Entry 為一筆不可變的稽核紀錄。Seq 為邏輯時間戳（寫入順序）。
type Entry struct {
	ID      uuid.UUID `json:"id"`
	Seq     int64     `json:"seq"`
	Time    time.Time `json:"time"`
	Actor   string    `json:"actor"`
	Role    auth.Role `json:"role"`
	Action  string    `json:"action"`
	Details string    `json:"details,omitempty"`
}

func (e Entry) String() string {
	return fmt.Sprintf("#%d %s %s(%s) %s %s", e.Seq, e.Time.Format(time.RFC3339), e.Actor, e.Role, e.Action, e.Details)
}

// Trail 為稽核軌跡；紀錄永不修改或刪除。
type Trail struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTrail 建立空白稽核軌跡。
func NewTrail() *Trail {
	return &Trail{}
}

// Record 寫入一筆紀錄並回傳。
func (t *Trail) Record(actor string, role auth.Role, action, details string) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := Entry{
		ID:      uuid.New(),
		Seq:     int64(len(t.entries)) + 1,
		Time:    time.Now(),
		Actor:   actor,
		Role:    role,
		Action:  action,
		Details: details,
	}
	t.entries = append(t.entries, e)
	return e
}

// Denied 以 <action>_DENIED 標籤寫入授權失敗事件。
func (t *Trail) Denied(actor string, role auth.Role, action, details string) Entry {
	return t.Record(actor, role, action+DeniedSuffix, details)
}

// Replay 回傳所有紀錄的拷貝，最新的在最前面。
func (t *Trail) Replay() []Entry {
	return t.replay(func(Entry) bool { return true })
}

// ReplayFor 只回傳指定使用者的紀錄，最新的在最前面。
func (t *Trail) ReplayFor(actor string) []Entry {
	return t.replay(func(e Entry) bool { return e.Actor == actor })
}

func (t *Trail) replay(keep func(Entry) bool) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.entries))
	for i := len(t.entries) - 1; i >= 0; i-- {
		if keep(t.entries[i]) {
			out = append(out, t.entries[i])
		}
	}
	return out
}

// Len 回傳紀錄筆數。
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
