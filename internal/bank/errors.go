// internal/bank/errors.go
//
// 本檔集中定義帳務核心的「領域錯誤（domain errors）」。
// 餘額不足不在此列：它是提款的正常結果（回傳 false / FAILED 交易），不是錯誤。

package bank

import "errors"

var (
	// ErrAccountNotFound 代表帳號不存在。
	ErrAccountNotFound = errors.New("account not found")

	// ErrCustomerNotFound 代表客戶編號不存在。
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInvalidAmount 代表金額非法（<= 0）。屬於呼叫端的程式錯誤。
	ErrInvalidAmount = errors.New("amount must be > 0")

	// ErrInvalidArgument 代表利率、透支額度等參數非法。
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSameAccount 代表轉帳來源與目標帳戶相同。
	ErrSameAccount = errors.New("from and to are same")

	// ErrDuplicateAccount 代表帳號已被使用。
	ErrDuplicateAccount = errors.New("duplicate account number")

	// ErrDuplicateCustomer 代表客戶編號已被使用。
	ErrDuplicateCustomer = errors.New("duplicate customer id")

	// ErrInvalidAccountKind 代表不支援的帳戶種類。
	ErrInvalidAccountKind = errors.New("invalid account kind")

	// ErrMalformedID 代表帳號或客戶編號不符合 ACC\d{3} / C\d{3} 格式。
	ErrMalformedID = errors.New("malformed id")

	// ErrIDSpaceExhausted 代表三位數編號已用盡（超過 999）。
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)
