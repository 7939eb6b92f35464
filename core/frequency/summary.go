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

// Package frequency keeps a frequency table of one column up to date with
// its source view, and maps bucket selections back onto source rows.
package frequency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/frequentia/core/aggregates"
	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/grouping"
	"github.com/google/frequentia/core/tables"
)

// ErrNoSuchColumn is returned when a summary names a column its source
// does not have.
var ErrNoSuchColumn = errors.New("no such column")

// Summary is the frequency table of one column of a source view.
type Summary struct {
	name       string
	source     *tables.TableView
	column     columns.IDataColumn
	opts       Options
	log        logr.Logger
	metrics    *Metrics
	onProgress ProgressFunc

	current atomic.Pointer[grouping.FrequencyTable]

	mu         sync.Mutex
	generation uint64
	active     *Task
}

// SummaryOption configures optional Summary collaborators.
type SummaryOption func(*Summary)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log logr.Logger) SummaryOption {
	return func(s *Summary) {
		s.log = log
	}
}

// WithMetrics records reloads on m.
func WithMetrics(m *Metrics) SummaryOption {
	return func(s *Summary) {
		s.metrics = m
	}
}

// WithProgress observes the progress of every reload.
func WithProgress(fn ProgressFunc) SummaryOption {
	return func(s *Summary) {
		s.onProgress = fn
	}
}

// Name returns the default summary name for a column of a view.
func Name(source, column string) string {
	return source + "_" + column + "_freq"
}

// NewSummary creates a summary of column over source. The summary holds an
// empty table until the first Reload completes.
func NewSummary(source *tables.TableView, column string, opts Options, options ...SummaryOption) (*Summary, error) {
	col := source.GetColumn(column)
	if col == nil {
		return nil, fmt.Errorf("%w: %q in %q", ErrNoSuchColumn, column, source.Name())
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Summary{
		name:   Name(source.Name(), column),
		source: source,
		column: col,
		opts:   opts,
		log:    logr.Discard(),
	}
	for _, o := range options {
		o(s)
	}
	s.log = s.log.WithValues("summary", s.name)
	s.current.Store(grouping.NewFrequencyTable(s.name, column))
	return s, nil
}

// NewCombinedSummary summarizes the combination of several key columns.
// The combined column is added to the source view unless it already exists.
func NewCombinedSummary(source *tables.TableView, keys []string, opts Options, options ...SummaryOption) (*Summary, error) {
	if len(keys) == 1 {
		return NewSummary(source, keys[0], opts, options...)
	}
	parts := make([]columns.IDataColumn, 0, len(keys))
	for _, k := range keys {
		col := source.GetColumn(k)
		if col == nil {
			return nil, fmt.Errorf("%w: %q in %q", ErrNoSuchColumn, k, source.Name())
		}
		parts = append(parts, col)
	}
	name := columns.CombinedName(parts...)
	if source.GetColumn(name) == nil {
		display := make([]string, len(parts))
		for i, p := range parts {
			display[i] = p.ColumnDef().DisplayName()
		}
		combined, err := columns.NewCombinedColumn(columns.NewColumnDef(name, strings.Join(display, " + ")), " ", parts...)
		if err != nil {
			return nil, err
		}
		if err := source.AddColumn(combined); err != nil {
			return nil, err
		}
	}
	return NewSummary(source, name, opts, options...)
}

// Name returns the summary name, "<source>_<column>_freq".
func (s *Summary) Name() string {
	return s.name
}

// Source returns the summarized view.
func (s *Summary) Source() *tables.TableView {
	return s.source
}

// Column returns the summarized column.
func (s *Summary) Column() columns.IDataColumn {
	return s.column
}

// Options returns the options the summary was created with.
func (s *Summary) Options() Options {
	return s.opts
}

// Table returns the last published table. It is never nil.
func (s *Summary) Table() *grouping.FrequencyTable {
	return s.current.Load()
}

// Reload rebuilds the table from a snapshot of the source rows and
// columns in the background. A reload already in flight is cancelled with
// ErrSuperseded.
func (s *Summary) Reload(ctx context.Context) *Task {
	rows := s.source.Rows()
	cols := s.source.Columns()
	t := newTask(ctx, len(rows), s.onProgress)

	s.mu.Lock()
	if s.active != nil {
		s.active.cancel(ErrSuperseded)
	}
	s.generation++
	gen := s.generation
	s.active = t
	s.mu.Unlock()

	go s.run(t, gen, rows, cols)
	return t
}

// Cancel stops the reload in flight, if any.
func (s *Summary) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.Cancel()
	}
}

func (s *Summary) run(t *Task, gen uint64, rows []uint32, cols []columns.IDataColumn) {
	defer close(t.done)
	start := time.Now()
	ft, err := s.rebuild(t, rows, cols)

	s.mu.Lock()
	if s.active == t {
		s.active = nil
	}
	if err == nil {
		switch {
		case s.generation != gen:
			err = ErrSuperseded
		case t.ctx.Err() != nil:
			err = context.Cause(t.ctx)
		default:
			s.current.Store(ft)
		}
	}
	s.mu.Unlock()
	t.err = err

	elapsed := time.Since(start)
	outcome := OutcomePublished
	switch {
	case err == nil:
		s.log.V(1).Info("published frequency table", "buckets", ft.Len(), "rows", len(rows), "elapsed", elapsed)
	case errors.Is(err, ErrSuperseded):
		outcome = OutcomeSuperseded
		s.log.V(1).Info("reload superseded", "elapsed", elapsed)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeCancelled
		s.log.V(1).Info("reload cancelled", "reason", err.Error())
	default:
		outcome = OutcomeFailed
		s.log.Error(err, "reload failed")
	}
	buckets := 0
	if ft != nil {
		buckets = ft.Len()
	}
	s.metrics.observe(outcome, elapsed, buckets)
}

// rebuild builds and aggregates a new table. A panic anywhere in the
// rebuild becomes the task error.
func (s *Summary) rebuild(t *Task, rows []uint32, cols []columns.IDataColumn) (ft *grouping.FrequencyTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			ft, err = nil, fmt.Errorf("rebuilding %s panicked: %v", s.name, r)
		}
	}()
	b := &grouping.Builder{
		Column:   s.column,
		Bins:     s.opts.Bins,
		Progress: t,
	}
	ft, err = b.Build(s.name, rows, len(rows))
	if err != nil {
		return nil, err
	}
	if err := aggregates.Compute(t.ctx, ft, cols); err != nil {
		if cause := context.Cause(t.ctx); cause != nil && errors.Is(err, context.Canceled) {
			return nil, cause
		}
		return nil, fmt.Errorf("aggregating %s: %w", s.name, err)
	}
	return ft, nil
}
