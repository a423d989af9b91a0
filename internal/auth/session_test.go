// internal/auth/session_test.go
//
// 登入狀態機測試：成功、鎖定、放棄、登出與鎖定不延續。

package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

// scripted 依序回傳預先準備的帳密，用完即視為使用者放棄。
func scripted(creds ...[2]string) CredentialFunc {
	i := 0
	return func() (string, string, bool) {
		if i >= len(creds) {
			return "", "", false
		}
		c := creds[i]
		i++
		return c[0], c[1], true
	}
}

func TestLoginSuccessAfterRetry(t *testing.T) {
	var attempts []Attempt
	s := NewSession(newTestRegistry(t), WithAttemptHook(func(a Attempt) { attempts = append(attempts, a) }))
	if s.State() != StateAnonymous {
		t.Fatalf("initial state=%s", s.State())
	}

	p, err := s.Login(scripted([2]string{"alice", "bad"}, [2]string{"alice", "alice123"}))
	if err != nil {
		t.Fatal(err)
	}
	if p.Username != "alice" || s.State() != StateAuthenticated {
		t.Fatalf("principal=%v state=%s", p, s.State())
	}
	if s.ID == uuid.Nil {
		t.Fatal("session id should be assigned on login")
	}
	if len(attempts) != 2 || attempts[0].Err == nil || attempts[1].Err != nil || attempts[1].Number != 2 {
		t.Fatalf("attempts=%+v", attempts)
	}
	if _, err := s.Login(scripted([2]string{"bob", "bob12345"})); !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Fatalf("want ErrAlreadyAuthenticated, got %v", err)
	}
}

// TestLoginLockout 同一次 Login 連續失敗 3 次進入 LOCKED_OUT；下一次呼叫重新計數。
func TestLoginLockout(t *testing.T) {
	s := NewSession(newTestRegistry(t))
	bad := [2]string{"alice", "nope"}

	_, err := s.Login(scripted(bad, bad, bad, [2]string{"alice", "alice123"}))
	if !errors.Is(err, ErrLockedOut) {
		t.Fatalf("want ErrLockedOut, got %v", err)
	}
	if s.State() != StateLockedOut {
		t.Fatalf("state=%s want LOCKED_OUT", s.State())
	}
	if _, ok := s.Principal(); ok {
		t.Fatal("locked out session must not hold a principal")
	}

	// 鎖定不延續：下一次呼叫重新給予 3 次機會
	if _, err := s.Login(scripted(bad, bad, [2]string{"alice", "alice123"})); err != nil {
		t.Fatalf("second login should succeed: %v", err)
	}
}

func TestLoginMaxAttemptsOption(t *testing.T) {
	s := NewSession(newTestRegistry(t), WithMaxAttempts(1))
	if _, err := s.Login(scripted([2]string{"x", "y"}, [2]string{"alice", "alice123"})); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("want ErrLockedOut after a single failure, got %v", err)
	}
}

func TestLoginAborted(t *testing.T) {
	s := NewSession(newTestRegistry(t))
	if _, err := s.Login(scripted([2]string{"alice", "nope"})); !errors.Is(err, ErrLoginAborted) {
		t.Fatalf("want ErrLoginAborted, got %v", err)
	}
	if s.State() != StateAnonymous {
		t.Fatalf("state=%s want ANONYMOUS", s.State())
	}
}

func TestLogoutAndRefresh(t *testing.T) {
	r := newTestRegistry(t)
	s := NewSession(r)
	if err := s.Logout(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if _, err := s.Login(scripted([2]string{"alice", "alice123"})); err != nil {
		t.Fatal(err)
	}

	next, err := r.ChangePassword("alice", "alice123", "changed1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Refresh(next); err != nil {
		t.Fatal(err)
	}
	held, _ := s.Principal()
	if !held.matches("alice", "changed1") {
		t.Fatal("session should hold the replacement principal")
	}
	bob, _ := r.Lookup("bob")
	if err := s.Refresh(bob); !errors.Is(err, ErrInvalidPrincipal) {
		t.Fatalf("want ErrInvalidPrincipal, got %v", err)
	}

	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateAnonymous || s.ID != uuid.Nil {
		t.Fatalf("state=%s id=%s after logout", s.State(), s.ID)
	}
}
