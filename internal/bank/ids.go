// internal/bank/ids.go
//
// 帳號與客戶編號的格式檢查與配發。
// 配發採「掃描現有最大值 + 1」：即使中間刪除造成空號，也不會與任何現存編號碰撞。
// 掃描與寫入都在 Directory 的寫鎖內完成。

package bank

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	AccountPrefix  = "ACC"
	CustomerPrefix = "C"
	idDigits       = 3
	maxIDSuffix    = 999
)

var (
	accountNoPattern  = regexp.MustCompile(`^ACC(\d{3})$`)
	customerIDPattern = regexp.MustCompile(`^C(\d{3})$`)
)

// ValidAccountNumber 回報帳號是否符合 ACC\d{3}。
func ValidAccountNumber(no string) bool { return accountNoPattern.MatchString(no) }

// ValidCustomerID 回報客戶編號是否符合 C\d{3}。
func ValidCustomerID(id string) bool { return customerIDPattern.MatchString(id) }

// nextID 掃描 ids 中符合 pattern 的數字尾碼，回傳 prefix + (max+1)。
// 不符合格式的編號直接略過。
func nextID[V any](ids map[string]V, pattern *regexp.Regexp, prefix string) (string, error) {
	max := 0
	for id := range ids {
		m := pattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	if max >= maxIDSuffix {
		return "", fmt.Errorf("%w: %s%0*d", ErrIDSpaceExhausted, prefix, idDigits, max)
	}
	return fmt.Sprintf("%s%0*d", prefix, idDigits, max+1), nil
}
