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

// Package server serves frequency tables over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/google/frequentia/core/frequency"
	"github.com/google/frequentia/core/grouping"
	"github.com/google/frequentia/core/rendering"
	"github.com/google/frequentia/core/store"
	"github.com/google/frequentia/core/tables"
	"github.com/google/frequentia/core/views"
)

const basePath = "/freq"

// Server represents the application server with all its dependencies
type Server struct {
	renderer    *rendering.FrequencyRenderer
	log         logr.Logger
	opts        frequency.Options
	summaryOpts []frequency.SummaryOption
	store       *store.Store
	locale      language.Tag
	title       string

	mu        sync.RWMutex
	summaries map[string]*frequency.Summary
	order     []string
}

// NewServer creates a new server. Summaries created by drill-downs use
// opts and summaryOpts.
func NewServer(log logr.Logger, opts frequency.Options, summaryOpts ...frequency.SummaryOption) (*Server, error) {
	renderer, err := rendering.NewFrequencyRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &Server{
		renderer:    renderer,
		log:         log,
		opts:        opts,
		summaryOpts: summaryOpts,
		locale:      language.AmericanEnglish,
		title:       "Frequency tables",
		summaries:   make(map[string]*frequency.Summary),
	}, nil
}

// SetStore saves every published table to st.
func (s *Server) SetStore(st *store.Store) {
	s.store = st
}

// SetLocale sets the locale of ASCII output.
func (s *Server) SetLocale(tag language.Tag) {
	s.locale = tag
}

// AddSummary registers a summary under its name.
func (s *Server) AddSummary(sum *frequency.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.summaries[sum.Name()]; !ok {
		s.order = append(s.order, sum.Name())
	}
	s.summaries[sum.Name()] = sum
}

// Summary returns the summary registered under name, or nil.
func (s *Server) Summary(name string) *frequency.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries[name]
}

func (s *Server) list() []*frequency.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*frequency.Summary, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.summaries[name])
	}
	return out
}

// Reload rebuilds a summary and waits for the result, which is saved when
// a store is set.
func (s *Server) Reload(ctx context.Context, sum *frequency.Summary) error {
	if err := sum.Reload(ctx).Wait(); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, sum.Table()); err != nil {
		return fmt.Errorf("failed to save %s: %w", sum.Name(), err)
	}
	return nil
}

// Handler returns the HTTP handler. Metrics from gatherer are served on
// /metrics when it is not nil.
func (s *Server) Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleLanding)
	mux.HandleFunc(basePath, s.handleTable)
	mux.HandleFunc(basePath+"/select", s.bucketAction((*frequency.Summary).Select))
	mux.HandleFunc(basePath+"/unselect", s.bucketAction((*frequency.Summary).Unselect))
	mux.HandleFunc(basePath+"/toggle", s.bucketAction((*frequency.Summary).Toggle))
	mux.HandleFunc(basePath+"/selectall", s.summaryAction((*frequency.Summary).SelectAll))
	mux.HandleFunc(basePath+"/unselectall", s.summaryAction((*frequency.Summary).UnselectAll))
	mux.HandleFunc(basePath+"/drill", s.drillAction(func(sum *frequency.Summary, r *http.Request) (*tables.TableView, error) {
		i, err := bucketParam(r)
		if err != nil {
			return nil, err
		}
		return sum.DrillDown(i)
	}))
	mux.HandleFunc(basePath+"/drillselected", s.drillAction(func(sum *frequency.Summary, _ *http.Request) (*tables.TableView, error) {
		return sum.DrillSelected()
	}))
	mux.HandleFunc(basePath+"/reload", s.handleReload)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	vm := views.BuildLandingViewModel(s.title, basePath, s.list())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderLanding(w, vm); err != nil {
		s.log.Error(err, "template rendering error", "page", "landing")
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *frequency.Summary {
	name := r.URL.Query().Get("summary")
	if name == "" {
		http.Error(w, "summary parameter is required", http.StatusBadRequest)
		return nil
	}
	sum := s.Summary(name)
	if sum == nil {
		http.Error(w, fmt.Sprintf("summary '%s' not found", name), http.StatusNotFound)
	}
	return sum
}

func bucketParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("bucket")
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid bucket %q", v)
	}
	return i, nil
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sum := s.lookup(w, r)
	if sum == nil {
		return
	}
	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = s.renderer.Render(w, views.BuildViewModel(sum, basePath))
	case "ascii":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = rendering.RenderASCII(w, views.BuildViewModel(sum, basePath), s.locale)
	case "json", "text":
		marshal, contentType := rendering.MarshalJSON, "application/json"
		if format == "text" {
			marshal, contentType = rendering.MarshalText, "text/plain; charset=utf-8"
		}
		var data []byte
		if data, err = marshal(sum.Table(), sum.Source().Selection()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, err = w.Write(data)
	default:
		http.Error(w, fmt.Sprintf("unknown format '%s'", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error(err, "rendering error", "summary", sum.Name())
	}
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, summary string) {
	q := url.Values{}
	q.Set("summary", summary)
	http.Redirect(w, r, basePath+"?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) bucketAction(action func(*frequency.Summary, int) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum := s.lookup(w, r)
		if sum == nil {
			return
		}
		i, err := bucketParam(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n, err := action(sum, i)
		if errors.Is(err, grouping.ErrBucketOutOfRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.log.V(1).Info("bucket action", "path", r.URL.Path, "summary", sum.Name(), "bucket", i, "rows", n)
		s.redirect(w, r, sum.Name())
	}
}

func (s *Server) summaryAction(action func(*frequency.Summary) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum := s.lookup(w, r)
		if sum == nil {
			return
		}
		n := action(sum)
		s.log.V(1).Info("summary action", "path", r.URL.Path, "summary", sum.Name(), "rows", n)
		s.redirect(w, r, sum.Name())
	}
}

// drillAction opens the view returned by open as a new summary of the same
// column and redirects to it.
func (s *Server) drillAction(open func(*frequency.Summary, *http.Request) (*tables.TableView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum := s.lookup(w, r)
		if sum == nil {
			return
		}
		sub, err := open(sum, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts := append([]frequency.SummaryOption{frequency.WithLogger(s.log)}, s.summaryOpts...)
		drilled, err := frequency.NewSummary(sub, sum.Column().ColumnDef().Name(), s.opts, opts...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := s.Reload(r.Context(), drilled); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.AddSummary(drilled)
		s.redirect(w, r, drilled.Name())
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sum := s.lookup(w, r)
	if sum == nil {
		return
	}
	if r.URL.Query().Get("wait") == "" {
		go func() {
			if err := s.Reload(context.Background(), sum); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error(err, "reload failed", "summary", sum.Name())
			}
		}()
		s.redirect(w, r, sum.Name())
		return
	}
	if err := s.Reload(r.Context(), sum); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.redirect(w, r, sum.Name())
}
