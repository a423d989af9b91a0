// internal/auth/session.go
//
// Session 為單一登入工作階段的狀態機：
//
//	ANONYMOUS → AUTHENTICATING → AUTHENTICATED → ANONYMOUS（登出）
//	AUTHENTICATING → LOCKED_OUT（同一次 Login 連續失敗達上限）
//
// 失敗次數每次 Login 重新計算，鎖定不會延續到下一次呼叫。

package auth

import (
	"github.com/google/uuid"
)

// DefaultMaxAttempts 為單次登入允許的嘗試次數。
const DefaultMaxAttempts = 3

// State 為工作階段狀態。
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateLockedOut
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateLockedOut:
		return "LOCKED_OUT"
	default:
		return "ANONYMOUS"
	}
}

// CredentialSource 提供登入嘗試的帳密；ok 為 false 代表使用者放棄。
type CredentialSource interface {
	NextCredentials() (username, secret string, ok bool)
}

// CredentialFunc 讓一般函式滿足 CredentialSource。
type CredentialFunc func() (string, string, bool)

func (f CredentialFunc) NextCredentials() (string, string, bool) { return f() }

// Once 只提供一次帳密，之後視為使用者放棄。
func Once(username, secret string) CredentialFunc {
	used := false
	return func() (string, string, bool) {
		if used {
			return "", "", false
		}
		used = true
		return username, secret, true
	}
}

// Attempt 為一次登入嘗試的結果，交給 attempt hook（例如寫入稽核）。
type Attempt struct {
	Username string
	Number   int
	Err      error
}

// SessionOption 調整 Session 參數。
type SessionOption func(*Session)

// WithMaxAttempts 設定單次登入的嘗試上限。
func WithMaxAttempts(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithAttemptHook 設定每次嘗試後呼叫的函式。
func WithAttemptHook(fn func(Attempt)) SessionOption {
	return func(s *Session) { s.hook = fn }
}

// Session 持有目前登入的身分；同一時間最多一個。
type Session struct {
	ID uuid.UUID

	reg         *Registry
	maxAttempts int
	hook        func(Attempt)

	state     State
	principal Principal
}

// NewSession 建立匿名狀態的工作階段。
func NewSession(reg *Registry, opts ...SessionOption) *Session {
	s := &Session{reg: reg, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State 回傳目前狀態。
func (s *Session) State() State { return s.state }

// Principal 回傳目前登入的身分。
func (s *Session) Principal() (Principal, bool) {
	if s.state != StateAuthenticated {
		return Principal{}, false
	}
	return s.principal, true
}

// Login 自 src 取得帳密並驗證，最多嘗試 maxAttempts 次。
// 連續失敗達上限回傳 ErrLockedOut；src 放棄時回傳 ErrLoginAborted 並回到匿名狀態。
func (s *Session) Login(src CredentialSource) (Principal, error) {
	if s.state == StateAuthenticated {
		return Principal{}, ErrAlreadyAuthenticated
	}
	s.state = StateAuthenticating
	for n := 1; n <= s.maxAttempts; n++ {
		username, secret, ok := src.NextCredentials()
		if !ok {
			s.state = StateAnonymous
			return Principal{}, ErrLoginAborted
		}
		p, err := s.reg.Authenticate(username, secret)
		if s.hook != nil {
			s.hook(Attempt{Username: username, Number: n, Err: err})
		}
		if err == nil {
			s.ID = uuid.New()
			s.principal = p
			s.state = StateAuthenticated
			return p, nil
		}
	}
	s.state = StateLockedOut
	return Principal{}, ErrLockedOut
}

// Logout 結束工作階段並回到匿名狀態。
func (s *Session) Logout() error {
	if s.state != StateAuthenticated {
		return ErrNotAuthenticated
	}
	s.principal = Principal{}
	s.ID = uuid.Nil
	s.state = StateAnonymous
	return nil
}

// Refresh 以新的 Principal（例如變更密碼後）取代目前持有的值；帳號必須相同。
func (s *Session) Refresh(p Principal) error {
	if s.state != StateAuthenticated {
		return ErrNotAuthenticated
	}
	if p.Username != s.principal.Username {
		return ErrInvalidPrincipal
	}
	s.principal = p
	return nil
}
