// internal/auth/gate.go

package auth

// OwnerLookup 提供帳號 → 擁有者客戶編號的反查（由 bank.Directory 實作）。
type OwnerLookup interface {
	OwnerOf(accountNo string) (customerID string, ok bool)
}

// Gate 是所有帳戶操作在進入交易處理器前必須通過的唯一授權點。
type Gate struct {
	owners OwnerLookup
}

// NewGate 建立授權門。
func NewGate(owners OwnerLookup) *Gate {
	return &Gate{owners: owners}
}

// CanAccessAccount 擁有權檢查：ADMIN 一律通過；CUSTOMER 只能存取自己客戶編號下的帳戶，
// 帳戶不存在時回傳 false。
func (g *Gate) CanAccessAccount(p Principal, accountNo string) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		owner, ok := g.owners.OwnerOf(accountNo)
		return ok && p.CustomerID != "" && owner == p.CustomerID
	}
	return false
}

// Authorize 兩層檢查：先角色（指令層級），再對每個帳號做擁有權檢查。
// 角色不符回傳 ErrPermissionDenied，擁有權不符回傳 ErrAccessDenied。
func (g *Gate) Authorize(p Principal, action Action, accountNos ...string) error {
	if p.IsZero() {
		return ErrNotAuthenticated
	}
	if !p.HasPermission(action) {
		return ErrPermissionDenied
	}
	if !action.AccountScoped() {
		return nil
	}
	for _, no := range accountNos {
		if !g.CanAccessAccount(p, no) {
			return ErrAccessDenied
		}
	}
	return nil
}
