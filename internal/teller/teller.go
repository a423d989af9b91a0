// internal/teller/teller.go
//
// Package teller
// ─────────────────────────────────────────────
// 帳本的應用層。每個操作固定四步：
//  1. 取得目前登入的身分
//  2. 經 auth.Gate 授權（失敗時寫入 *_DENIED 稽核並回傳錯誤）
//  3. 呼叫 bank 層執行
//  4. 寫入稽核軌跡與計數器
//
// bank 層不知道身分與稽核的存在；teller 是 Processor 唯一的呼叫者。
package teller

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/audit"
	"ledger/internal/auth"
	"ledger/internal/bank"
	"ledger/internal/metrics"
)

// 登入相關的稽核標籤。
const (
	TagLoginSuccess = "LOGIN_SUCCESS"
	TagLoginFailed  = "LOGIN_FAILED"
	TagLockedOut    = "LOCKED_OUT"
)

// Settings 為可由設定檔調整的參數。
type Settings struct {
	MaxLoginAttempts      int
	DefaultInterestRate   decimal.Decimal
	DefaultOverdraftLimit decimal.Decimal
}

// DefaultSettings 回傳預設參數。
func DefaultSettings() Settings {
	return Settings{
		MaxLoginAttempts:      auth.DefaultMaxAttempts,
		DefaultInterestRate:   bank.DefaultInterestRate,
		DefaultOverdraftLimit: bank.DefaultOverdraftLimit,
	}
}

// Teller 組合目錄、處理器、身分、授權、稽核與計數器，並持有單一工作階段。
type Teller struct {
	Directory *bank.Directory
	Processor *bank.Processor
	Registry  *auth.Registry
	Trail     *audit.Trail
	Metrics   *metrics.Metrics

	gate     *auth.Gate
	session  *auth.Session
	settings Settings

	lastAttempt string
}

// withDefaults 以 DefaultSettings 補上未設定（零值）的欄位。
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxLoginAttempts <= 0 {
		s.MaxLoginAttempts = d.MaxLoginAttempts
	}
	if s.DefaultInterestRate.IsZero() {
		s.DefaultInterestRate = d.DefaultInterestRate
	}
	return s
}

// New 建立空白帳本並綁定身分登錄表。s 中的零值欄位採用預設值；
// 透支額度 0 是合法設定，原樣保留。
func New(reg *auth.Registry, s Settings) *Teller {
	s = s.withDefaults()
	dir := bank.NewDirectory()
	t := &Teller{
		Directory: dir,
		Processor: bank.NewProcessor(dir),
		Registry:  reg,
		Trail:     audit.NewTrail(),
		Metrics:   metrics.New(),
		gate:      auth.NewGate(dir),
		settings:  s,
	}
	t.session = auth.NewSession(reg,
		auth.WithMaxAttempts(s.MaxLoginAttempts),
		auth.WithAttemptHook(t.onAttempt),
	)
	return t
}

// Session 回傳目前的工作階段。
func (t *Teller) Session() *auth.Session { return t.session }

// Principal 回傳目前登入的身分。
func (t *Teller) Principal() (auth.Principal, bool) { return t.session.Principal() }

func (t *Teller) record(p auth.Principal, action, details string) {
	t.Trail.Record(p.Username, p.Role, action, details)
	t.Metrics.AuditEntries.Inc()
}

// authorize 通過時回傳目前身分；失敗時記錄拒絕事件。
// 未登入無從得知行為者，因此不寫入稽核。
func (t *Teller) authorize(action auth.Action, nos ...string) (auth.Principal, error) {
	p, ok := t.session.Principal()
	if !ok {
		return auth.Principal{}, auth.ErrNotAuthenticated
	}
	if err := t.gate.Authorize(p, action, nos...); err != nil {
		t.Trail.Denied(p.Username, p.Role, string(action), strings.Join(nos, ","))
		t.Metrics.AuditEntries.Inc()
		t.Metrics.Denials.WithLabelValues(string(action)).Inc()
		return auth.Principal{}, err
	}
	return p, nil
}

func (t *Teller) onAttempt(a auth.Attempt) {
	t.lastAttempt = a.Username
	if a.Err == nil {
		return
	}
	var role auth.Role
	if p, ok := t.Registry.Lookup(a.Username); ok {
		role = p.Role
	}
	t.Trail.Record(a.Username, role, TagLoginFailed, fmt.Sprintf("attempt %d", a.Number))
	t.Metrics.AuditEntries.Inc()
	t.Metrics.Logins.WithLabelValues("failure").Inc()
}

// Login 自 src 讀取帳密登入。每次失敗都會寫入稽核；連續失敗達上限時記錄 LOCKED_OUT。
func (t *Teller) Login(src auth.CredentialSource) (auth.Principal, error) {
	t.lastAttempt = ""
	p, err := t.session.Login(src)
	switch {
	case err == nil:
		t.record(p, TagLoginSuccess, "session "+t.session.ID.String())
		t.Metrics.Logins.WithLabelValues("success").Inc()
	case errors.Is(err, auth.ErrLockedOut):
		log.Printf("[teller] login locked out after %d failed attempts (last username %q)", t.settings.MaxLoginAttempts, t.lastAttempt)
		t.Trail.Record(t.lastAttempt, "", TagLockedOut, "")
		t.Metrics.AuditEntries.Inc()
		t.Metrics.Logins.WithLabelValues("locked_out").Inc()
	}
	return p, err
}

// LoginWith 以單組帳密登入一次；錯誤時回傳 ErrInvalidCredentials 而非 ErrLoginAborted。
func (t *Teller) LoginWith(username, secret string) (auth.Principal, error) {
	p, err := t.Login(auth.Once(username, secret))
	if errors.Is(err, auth.ErrLoginAborted) {
		return p, auth.ErrInvalidCredentials
	}
	return p, err
}

// Logout 結束工作階段。
func (t *Teller) Logout() error {
	p, err := t.authorize(auth.ActionLogout)
	if err != nil {
		return err
	}
	if err := t.session.Logout(); err != nil {
		return err
	}
	t.record(p, string(auth.ActionLogout), "")
	return nil
}

// ChangePassword 變更目前登入者的密碼，並以新的 Principal 更新工作階段。
func (t *Teller) ChangePassword(oldSecret, newSecret string) error {
	p, err := t.authorize(auth.ActionChangePassword)
	if err != nil {
		return err
	}
	next, err := t.Registry.ChangePassword(p.Username, oldSecret, newSecret)
	if err != nil {
		t.record(p, string(auth.ActionChangePassword), "rejected: "+err.Error())
		return err
	}
	if err := t.session.Refresh(next); err != nil {
		return err
	}
	t.record(next, string(auth.ActionChangePassword), "")
	return nil
}

// LogAction 以目前登入者的身分寫入任意稽核事件。
func (t *Teller) LogAction(action, details string) error {
	p, ok := t.session.Principal()
	if !ok {
		return auth.ErrNotAuthenticated
	}
	t.record(p, action, details)
	return nil
}

// AuditReplay 回傳稽核軌跡（最新在前），僅限 ADMIN。
func (t *Teller) AuditReplay() ([]audit.Entry, error) {
	p, err := t.authorize(auth.ActionViewAuditLog)
	if err != nil {
		return nil, err
	}
	entries := t.Trail.Replay()
	t.record(p, string(auth.ActionViewAuditLog), "")
	return entries, nil
}

// AuditReplayFor 只回傳指定使用者的稽核紀錄（最新在前），僅限 ADMIN。
func (t *Teller) AuditReplayFor(actor string) ([]audit.Entry, error) {
	p, err := t.authorize(auth.ActionViewAuditLog)
	if err != nil {
		return nil, err
	}
	entries := t.Trail.ReplayFor(actor)
	t.record(p, string(auth.ActionViewAuditLog), "actor "+actor)
	return entries, nil
}
