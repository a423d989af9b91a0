// Package auth 負責身分驗證（Registry、Session）與授權（Gate）。
// Principal 為值型別：變更密碼會產生新的 Principal，舊值不被修改。
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// Principal 為已註冊的身分。CUSTOMER 必須綁定唯一的客戶編號，ADMIN 則不綁定。
type Principal struct {
	Username   string
	Role       Role
	CustomerID string

	secret string
}

// NewAdmin 建立 ADMIN 身分。
func NewAdmin(username, secret string) (Principal, error) {
	return newPrincipal(username, secret, RoleAdmin, "")
}

// NewCustomer 建立綁定 customerID 的 CUSTOMER 身分。
func NewCustomer(username, secret, customerID string) (Principal, error) {
	return newPrincipal(username, secret, RoleCustomer, customerID)
}

// NewPrincipal 依角色建立身分，供 bootstrap 使用。
func NewPrincipal(username, secret string, role Role, customerID string) (Principal, error) {
	return newPrincipal(username, secret, role, customerID)
}

func newPrincipal(username, secret string, role Role, customerID string) (Principal, error) {
	if strings.TrimSpace(username) == "" {
		return Principal{}, fmt.Errorf("%w: username is required", ErrInvalidPrincipal)
	}
	if secret == "" {
		return Principal{}, fmt.Errorf("%w: secret is required", ErrInvalidPrincipal)
	}
	switch role {
	case RoleAdmin:
		if customerID != "" {
			return Principal{}, fmt.Errorf("%w: admin %q cannot be linked to a customer", ErrInvalidPrincipal, username)
		}
	case RoleCustomer:
		if customerID == "" {
			return Principal{}, fmt.Errorf("%w: customer %q must be linked to a customer id", ErrInvalidPrincipal, username)
		}
	default:
		return Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidPrincipal, role)
	}
	return Principal{Username: username, Role: role, CustomerID: customerID, secret: secret}, nil
}

// IsZero 回報是否為零值（未登入）。
func (p Principal) IsZero() bool { return p.Username == "" }

// matches 以常數時間比對帳號與密碼。
func (p Principal) matches(username, secret string) bool {
	u := subtle.ConstantTimeCompare([]byte(p.Username), []byte(username))
	s := subtle.ConstantTimeCompare([]byte(p.secret), []byte(secret))
	return u&s == 1
}

// WithSecret 回傳密碼替換後的新 Principal；原值不變。
func (p Principal) WithSecret(secret string) Principal {
	p.secret = secret
	return p
}

// HasPermission 交由角色判斷：ADMIN 擁有全部權限，CUSTOMER 只有非管理指令。
func (p Principal) HasPermission(a Action) bool {
	return a.CanAccess(p.Role)
}

func (p Principal) String() string {
	if p.Role == RoleCustomer {
		return fmt.Sprintf("%s(%s:%s)", p.Username, p.Role, p.CustomerID)
	}
	return fmt.Sprintf("%s(%s)", p.Username, p.Role)
}
