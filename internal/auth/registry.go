// internal/auth/registry.go

package auth

import (
	"fmt"
	"sync"
)

// DefaultMinPasswordLength 為變更密碼時的最短長度。
const DefaultMinPasswordLength = 6

// Registry 為身分登錄表。以有序切片保存，驗證時線性掃描。
type Registry struct {
	mu         sync.RWMutex
	principals []Principal
	minLen     int
}

// NewRegistry 建立空白登錄表；minPasswordLength <= 0 時採用預設值。
func NewRegistry(minPasswordLength int) *Registry {
	if minPasswordLength <= 0 {
		minPasswordLength = DefaultMinPasswordLength
	}
	return &Registry{minLen: minPasswordLength}
}

// Register 加入新身分；帳號不得重複。
func (r *Registry) Register(p Principal) error {
	if p.IsZero() {
		return ErrInvalidPrincipal
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(p.Username) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, p.Username)
	}
	r.principals = append(r.principals, p)
	return nil
}

// Lookup 依帳號查詢身分。
func (r *Registry) Lookup(username string) (Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(username); i >= 0 {
		return r.principals[i], true
	}
	return Principal{}, false
}

// Len 回傳已註冊的身分數。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.principals)
}

// Authenticate 帳號與密碼都必須完全相符；失敗時不區分是哪一項錯誤。
func (r *Registry) Authenticate(username, secret string) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.principals {
		if p.matches(username, secret) {
			return p, nil
		}
	}
	return Principal{}, ErrInvalidCredentials
}

// ChangePassword 驗證舊密碼後以新的 Principal 取代登錄表中的項目，並回傳新值。
// 呼叫端持有的舊 Principal 需自行更新。
func (r *Registry) ChangePassword(username, oldSecret, newSecret string) (Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(username)
	if i < 0 || !r.principals[i].matches(username, oldSecret) {
		return Principal{}, ErrInvalidCredentials
	}
	if len(newSecret) < r.minLen {
		return Principal{}, fmt.Errorf("%w: minimum length is %d", ErrWeakPassword, r.minLen)
	}
	if newSecret == oldSecret {
		return Principal{}, ErrPasswordUnchanged
	}
	next := r.principals[i].WithSecret(newSecret)
	r.principals[i] = next
	return next, nil
}

func (r *Registry) indexLocked(username string) int {
	for i, p := range r.principals {
		if p.Username == username {
			return i
		}
	}
	return -1
}
