// internal/metrics/metrics.go
//
// 帳本的 Prometheus 計數器。每個 Metrics 持有自己的 Registry，
// 不註冊到全域預設 Registry，也不對外提供 HTTP 端點。

package metrics

import (
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// Metrics 收集交易、授權、登入與稽核計數。
type Metrics struct {
	reg *prometheus.Registry

	Transactions *prometheus.CounterVec
	Denials      *prometheus.CounterVec
	Logins       *prometheus.CounterVec
	AuditEntries prometheus.Counter
}

// New 建立一組註冊在私有 Registry 上的計數器。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Transactions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "transactions_total",
			Help:      "Total transactions by type and status.",
		}, []string{"type", "status"}),
		Denials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "authorization_denials_total",
			Help:      "Total denied actions by action name.",
		}, []string{"action"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total login attempts by outcome (success, failure, locked_out).",
		}, []string{"outcome"}),
		AuditEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit entries recorded.",
		}),
	}
}

// Sample 為一個計數器在某組 label 下的值。
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot 依名稱與 label 排序回傳所有非零樣本，供 CLI 列印。
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.reg.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, fam := range families {
		for _, mt := range fam.GetMetric() {
			v := mt.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			pairs := make([]string, 0, len(mt.GetLabel()))
			for _, lp := range mt.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}
			out = append(out, Sample{Name: fam.GetName(), Labels: strings.Join(pairs, ","), Value: v})
		}
	}
	slices.SortFunc(out, func(a, b Sample) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Labels, b.Labels)
	})
	return out, nil
}
