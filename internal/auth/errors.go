// internal/auth/errors.go
//
// 身分驗證與授權的錯誤。驗證失敗一律回傳 ErrInvalidCredentials，不透露是帳號還是密碼錯誤。

package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidPrincipal     = errors.New("invalid principal")
	ErrDuplicateUser        = errors.New("username already registered")
	ErrWeakPassword         = errors.New("password too short")
	ErrPasswordUnchanged    = errors.New("new password must differ from the old one")
	ErrLockedOut            = errors.New("too many failed login attempts")
	ErrLoginAborted         = errors.New("login aborted")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrPermissionDenied 代表角色層級的拒絕（該角色不得執行此指令）。
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAccessDenied 代表擁有權層級的拒絕（帳戶不屬於此身分）。
	ErrAccessDenied = errors.New("access to account denied")
)
