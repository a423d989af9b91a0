// internal/auth/action.go

package auth

import "fmt"

// Role 為身分的角色。
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole 解析角色字串（需完全相符）。
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidPrincipal, s)
}

// Action 為使用者可選擇的指令。
type Action string

const (
	ActionCreateCustomer     Action = "CREATE_CUSTOMER"
	ActionDeleteCustomer     Action = "DELETE_CUSTOMER"
	ActionCreateAccount      Action = "CREATE_ACCOUNT"
	ActionDeleteAccount      Action = "DELETE_ACCOUNT"
	ActionListAccounts       Action = "LIST_ACCOUNTS"
	ActionUpdateOverdraft    Action = "UPDATE_OVERDRAFT_LIMIT"
	ActionApplyInterest      Action = "APPLY_INTEREST"
	ActionViewAuditLog       Action = "VIEW_AUDIT_LOG"
	ActionViewAccountDetails Action = "VIEW_ACCOUNT_DETAILS"
	ActionDeposit            Action = "DEPOSIT_MONEY"
	ActionWithdraw           Action = "WITHDRAW_MONEY"
	ActionTransfer           Action = "TRANSFER_MONEY"
	ActionViewHistory        Action = "VIEW_TRANSACTION_HISTORY"
	ActionChangePassword     Action = "CHANGE_PASSWORD"
	ActionLogout             Action = "LOGOUT"
	ActionExit               Action = "EXIT"
)

// actionRule 描述指令的角色門檻：adminOnly 為 true 時只有 ADMIN 可執行，否則任何角色皆可。
type actionRule struct {
	adminOnly     bool
	accountScoped bool
}

var actions = map[Action]actionRule{
	ActionCreateCustomer:     {adminOnly: true},
	ActionDeleteCustomer:     {adminOnly: true},
	ActionCreateAccount:      {adminOnly: true},
	ActionDeleteAccount:      {adminOnly: true, accountScoped: true},
	ActionListAccounts:       {adminOnly: true},
	ActionUpdateOverdraft:    {adminOnly: true, accountScoped: true},
	ActionApplyInterest:      {adminOnly: true},
	ActionViewAuditLog:       {adminOnly: true},
	ActionViewAccountDetails: {accountScoped: true},
	ActionDeposit:            {accountScoped: true},
	ActionWithdraw:           {accountScoped: true},
	ActionTransfer:           {accountScoped: true},
	ActionViewHistory:        {accountScoped: true},
	ActionChangePassword:     {},
	ActionLogout:             {},
	ActionExit:               {},
}

// CanAccess 為指令層級的粗粒度門檻：未定義的指令一律拒絕。
func (a Action) CanAccess(role Role) bool {
	rule, ok := actions[a]
	if !ok {
		return false
	}
	if rule.adminOnly {
		return role == RoleAdmin
	}
	return role == RoleAdmin || role == RoleCustomer
}

// AccountScoped 回報此指令是否作用於特定帳戶（需再通過擁有權門檻）。
func (a Action) AccountScoped() bool {
	return actions[a].accountScoped
}

// Permissions 回傳角色可執行的所有指令。
func (r Role) Permissions() []Action {
	var out []Action
	for a := range actions {
		if a.CanAccess(r) {
			out = append(out, a)
		}
	}
	return out
}
