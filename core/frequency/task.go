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
	"fmt"
	"sync/atomic"
)

// ErrSuperseded is the cause of a reload cancelled because a newer reload of
// the same summary started. It matches context.Canceled.
var ErrSuperseded = fmt.Errorf("reload superseded: %w", context.Canceled)

// ProgressFunc observes reload progress. It is called from the reload
// goroutine after every unit of work.
type ProgressFunc func(done, total int)

// Task is one in-flight rebuild of a Summary. It reports progress and can be
// cancelled; the rebuilt table is published only when the task completes
// without being cancelled or superseded.
type Task struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}
	err    error

	processed  atomic.Int64
	total      atomic.Int64
	onProgress ProgressFunc
}

func newTask(parent context.Context, total int, onProgress ProgressFunc) *Task {
	ctx, cancel := context.WithCancelCause(parent)
	t := &Task{
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		onProgress: onProgress,
	}
	t.total.Store(int64(total))
	return t
}

// Cancel stops the task. The rebuild stops at its next unit of work and
// nothing is published.
func (t *Task) Cancel() {
	t.cancel(context.Canceled)
}

// Done is closed when the task has finished, whatever the outcome.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its error: nil when the
// table was published, ErrSuperseded or context.Canceled when cancelled.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Err returns the task error, or nil while the task is still running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Progress returns the units of work done and the current estimate of the
// total. The total grows once the bin pivots are known.
func (t *Task) Progress() (done, total int) {
	return int(t.processed.Load()), int(t.total.Load())
}

// Grow implements grouping.Progress.
func (t *Task) Grow(n int) {
	t.total.Add(int64(n))
}

// Step implements grouping.Progress. It fails once the task is cancelled.
func (t *Task) Step() error {
	done := t.processed.Add(1)
	if t.onProgress != nil {
		t.onProgress(int(done), int(t.total.Load()))
	}
	select {
	case <-t.ctx.Done():
		return context.Cause(t.ctx)
	default:
		return nil
	}
}
