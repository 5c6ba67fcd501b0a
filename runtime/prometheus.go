// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/prometheus/client_golang/prometheus"

var (
	executionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runtime_executions_total",
		Help: "Executed operations by module and result",
	}, []string{"module", "result"})
	executionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "runtime_execution_duration_seconds",
		Help:    "Time spent executing and committing one operation",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	seqGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "runtime_seq",
		Help: "Sequence number of the last committed operation",
	})
)

func init() {
	prometheus.MustRegister(executionsCounter, executionDuration, seqGauge)
}
