/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package frequency

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reload outcomes, used as the "outcome" metric label.
const (
	OutcomePublished  = "published"
	OutcomeCancelled  = "cancelled"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
)

// Metrics records reload activity. A nil *Metrics records nothing.
type Metrics struct {
	reloads  *prometheus.CounterVec
	duration prometheus.Histogram
	buckets  prometheus.Histogram
}

// NewMetrics creates the reload metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frequentia",
			Name:      "reloads_total",
			Help:      "Frequency table reloads by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frequentia",
			Name:      "reload_duration_seconds",
			Help:      "Time spent rebuilding a frequency table.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		buckets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frequentia",
			Name:      "published_buckets",
			Help:      "Number of buckets in each published frequency table.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.reloads, m.duration, m.buckets} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(outcome string, elapsed time.Duration, buckets int) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome == OutcomePublished {
		m.buckets.Observe(float64(buckets))
	}
}
