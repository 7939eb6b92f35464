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
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr/testr"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/google/frequentia/core/aggregates"
	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/grouping"
	"github.com/google/frequentia/core/tables"
)

// newOrders returns a six-row view:
//
//	row region channel amount
//	0   north  web     10
//	1   south  store   20
//	2   north  web     30
//	3   east   web     40
//	4   north  store   -
//	5   south  store   60
func newOrders(t *testing.T, amountAgg *columns.Aggregator) *tables.TableView {
	t.Helper()
	region := columns.NewStringColumn(columns.NewColumnDef("region", "Region"))
	channel := columns.NewStringColumn(columns.NewColumnDef("channel", "Channel"))
	amount := columns.NewInt64Column(columns.NewColumnDef("amount", "Amount").WithAggregator(amountAgg))
	for i, r := range []string{"north", "south", "north", "east", "north", "south"} {
		region.Append(r)
		channel.Append([]string{"web", "store", "web", "web", "store", "store"}[i])
		if i == 4 {
			amount.AppendNull()
			continue
		}
		amount.Append(int64(10 * (i + 1)))
	}
	dt := tables.NewDataTable()
	for _, col := range []columns.IDataColumn{region, channel, amount} {
		if err := dt.AddColumn(col); err != nil {
			t.Fatalf("AddColumn: %v", err)
		}
	}
	return tables.NewTableView(dt, "orders")
}

func meanAgg(t *testing.T) *columns.Aggregator {
	t.Helper()
	agg, err := aggregates.Builtin("mean")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return agg
}

func labels(ft *grouping.FrequencyTable) []string {
	var out []string
	for _, b := range ft.Buckets {
		out = append(out, fmt.Sprintf("%s:%d", b.Label, b.Count()))
	}
	return out
}

// gate blocks the first reload that reaches step n until it is released.
type gate struct {
	n       int
	armed   atomic.Bool
	reached chan struct{}
	release chan struct{}
}

func newGate(n int) *gate {
	return &gate{n: n, reached: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) progress(done, total int) {
	if done == g.n && g.armed.CompareAndSwap(false, true) {
		close(g.reached)
		<-g.release
	}
}

func TestReloadPublishes(t *testing.T) {
	g := NewWithT(t)
	view := newOrders(t, meanAgg(t))
	s, err := NewSummary(view, "region", DefaultOptions(), WithLogger(testr.New(t)))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Name()).To(Equal("orders_region_freq"))
	g.Expect(s.Table()).NotTo(BeNil())
	g.Expect(s.Table().Len()).To(Equal(0))

	task := s.Reload(context.Background())
	g.Expect(task.Wait()).To(Succeed())

	ft := s.Table()
	g.Expect(labels(ft)).To(Equal([]string{"north:3", "south:2", "east:1"}))
	g.Expect(ft.Largest).To(Equal(4))
	g.Expect(ft.Total).To(Equal(6))
	g.Expect(ft.Derived).To(Equal([]grouping.DerivedColumn{{Name: "mean_amount", Kind: columns.KindFloat}}))
	g.Expect(ft.Buckets[0].Aggregates).To(Equal([]any{20.0}))

	done, total := task.Progress()
	g.Expect(done).To(Equal(6))
	g.Expect(total).To(Equal(6))
}

func TestReloadBinnedProgress(t *testing.T) {
	g := NewWithT(t)
	view := newOrders(t, nil)
	opts := DefaultOptions()
	opts.Bins = 2
	s, err := NewSummary(view, "amount", opts)
	g.Expect(err).NotTo(HaveOccurred())

	task := s.Reload(context.Background())
	g.Expect(task.Wait()).To(Succeed())
	g.Expect(s.Table().Mode).To(Equal(grouping.Binned))
	g.Expect(labels(s.Table())).To(Equal([]string{"<=[10-]20:2", ">=30[-60]:3", "errors:1"}))

	done, total := task.Progress()
	g.Expect(done).To(Equal(total))
}

func TestNoSuchColumn(t *testing.T) {
	view := newOrders(t, nil)
	if _, err := NewSummary(view, "price", DefaultOptions()); !errors.Is(err, ErrNoSuchColumn) {
		t.Fatalf("expected ErrNoSuchColumn, got %v", err)
	}
	if _, err := NewCombinedSummary(view, []string{"region", "price"}, DefaultOptions()); !errors.Is(err, ErrNoSuchColumn) {
		t.Fatalf("expected ErrNoSuchColumn for combined key, got %v", err)
	}
}

func TestReloadCancel(t *testing.T) {
	g := NewWithT(t)
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	g.Expect(err).NotTo(HaveOccurred())

	gt := newGate(3)
	s, err := NewSummary(newOrders(t, nil), "region", DefaultOptions(),
		WithProgress(gt.progress), WithMetrics(m), WithLogger(testr.New(t)))
	g.Expect(err).NotTo(HaveOccurred())

	task := s.Reload(context.Background())
	<-gt.reached
	task.Cancel()
	close(gt.release)

	err = task.Wait()
	g.Expect(errors.Is(err, context.Canceled)).To(BeTrue(), "got %v", err)
	g.Expect(errors.Is(err, ErrSuperseded)).To(BeFalse())
	g.Expect(s.Table().Len()).To(Equal(0), "a cancelled reload must not publish")
	g.Expect(testutil.ToFloat64(m.reloads.WithLabelValues(OutcomeCancelled))).To(Equal(1.0))
	g.Expect(testutil.ToFloat64(m.reloads.WithLabelValues(OutcomePublished))).To(Equal(0.0))
}

func TestReloadSuperseded(t *testing.T) {
	g := NewWithT(t)
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	g.Expect(err).NotTo(HaveOccurred())

	view := newOrders(t, nil)
	gt := newGate(3)
	s, err := NewSummary(view, "region", DefaultOptions(), WithProgress(gt.progress), WithMetrics(m))
	g.Expect(err).NotTo(HaveOccurred())

	first := s.Reload(context.Background())
	<-gt.reached

	g.Expect(view.SetRows([]uint32{0, 1, 2})).To(Succeed())
	second := s.Reload(context.Background())
	g.Expect(second.Wait()).To(Succeed())
	g.Expect(labels(s.Table())).To(Equal([]string{"north:2", "south:1"}))

	close(gt.release)
	g.Eventually(first.Done()).Should(BeClosed())
	g.Expect(errors.Is(first.Err(), ErrSuperseded)).To(BeTrue(), "got %v", first.Err())
	g.Expect(errors.Is(first.Err(), context.Canceled)).To(BeTrue())

	// The stale rebuild never replaces the newer table.
	g.Expect(labels(s.Table())).To(Equal([]string{"north:2", "south:1"}))
	g.Expect(testutil.ToFloat64(m.reloads.WithLabelValues(OutcomeSuperseded))).To(Equal(1.0))
	g.Expect(testutil.ToFloat64(m.reloads.WithLabelValues(OutcomePublished))).To(Equal(1.0))
	g.Expect(testutil.CollectAndCompare(m.buckets, strings.NewReader(`
		# HELP frequentia_published_buckets Number of buckets in each published frequency table.
		# TYPE frequentia_published_buckets histogram
		frequentia_published_buckets_bucket{le="1"} 0
		frequentia_published_buckets_bucket{le="4"} 1
		frequentia_published_buckets_bucket{le="16"} 1
		frequentia_published_buckets_bucket{le="64"} 1
		frequentia_published_buckets_bucket{le="256"} 1
		frequentia_published_buckets_bucket{le="1024"} 1
		frequentia_published_buckets_bucket{le="4096"} 1
		frequentia_published_buckets_bucket{le="16384"} 1
		frequentia_published_buckets_bucket{le="+Inf"} 1
		frequentia_published_buckets_sum 2
		frequentia_published_buckets_count 1
	`))).To(Succeed())
}

func TestReloadParentContext(t *testing.T) {
	g := NewWithT(t)
	s, err := NewSummary(newOrders(t, nil), "region", DefaultOptions())
	g.Expect(err).NotTo(HaveOccurred())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Reload(ctx).Wait()
	g.Expect(errors.Is(err, context.Canceled)).To(BeTrue(), "got %v", err)
	g.Expect(s.Table().Len()).To(Equal(0))
}

func TestReloadFailureKeepsTable(t *testing.T) {
	g := NewWithT(t)
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	g.Expect(err).NotTo(HaveOccurred())

	failing := &columns.Aggregator{Name: "broken", Kind: columns.KindFloat, Reduce: func([]any) (any, error) {
		return nil, errors.New("boom")
	}}
	view := newOrders(t, failing)
	s, err := NewSummary(view, "region", DefaultOptions(), WithMetrics(m), WithLogger(testr.New(t)))
	g.Expect(err).NotTo(HaveOccurred())

	err = s.Reload(context.Background()).Wait()
	g.Expect(err).To(HaveOccurred())
	var rerr *aggregates.ReducerError
	g.Expect(errors.As(err, &rerr)).To(BeTrue(), "got %v", err)
	g.Expect(rerr.Column).To(Equal("broken_amount"))
	g.Expect(s.Table().Len()).To(Equal(0))
	g.Expect(testutil.ToFloat64(m.reloads.WithLabelValues(OutcomeFailed))).To(Equal(1.0))
}

func TestNewMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestCombinedSummary(t *testing.T) {
	g := NewWithT(t)
	view := newOrders(t, nil)
	s, err := NewCombinedSummary(view, []string{"region", "channel"}, DefaultOptions())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Name()).To(Equal("orders_region+channel_freq"))
	g.Expect(view.GetColumn("region+channel")).NotTo(BeNil())

	g.Expect(s.Reload(context.Background()).Wait()).To(Succeed())
	g.Expect(labels(s.Table())).To(Equal([]string{"north web:2", "south store:2", "east web:1", "north store:1"}))

	// A second summary over the same keys reuses the column.
	again, err := NewCombinedSummary(view, []string{"region", "channel"}, DefaultOptions())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(again.Column()).To(BeIdenticalTo(s.Column()))
}

func TestColumnsAddedDuringReload(t *testing.T) {
	g := NewWithT(t)
	view := newOrders(t, meanAgg(t))
	gt := newGate(2)
	s, err := NewSummary(view, "region", DefaultOptions(), WithProgress(gt.progress))
	g.Expect(err).NotTo(HaveOccurred())

	task := s.Reload(context.Background())
	<-gt.reached

	combined, err := NewCombinedSummary(view, []string{"region", "channel"}, DefaultOptions())
	g.Expect(err).NotTo(HaveOccurred())
	bonus := columns.NewInt64Column(columns.NewColumnDef("bonus", "Bonus").WithAggregator(meanAgg(t)))
	for i := range 6 {
		bonus.Append(int64(i))
	}
	g.Expect(view.AddColumn(bonus)).To(Succeed())

	close(gt.release)
	g.Expect(task.Wait()).To(Succeed())
	g.Expect(combined.Reload(context.Background()).Wait()).To(Succeed())

	// The running reload aggregates the columns it started with.
	g.Expect(s.Table().Derived).To(HaveLen(1))
	g.Expect(s.Table().Derived[0].Name).To(Equal("mean_amount"))

	g.Expect(s.Reload(context.Background()).Wait()).To(Succeed())
	g.Expect(s.Table().Derived).To(HaveLen(2))
	g.Expect(s.Table().Derived[1].Name).To(Equal("mean_bonus"))
}
