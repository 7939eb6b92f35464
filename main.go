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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"github.com/google/frequentia/core/csvimport"
	"github.com/google/frequentia/core/frequency"
	"github.com/google/frequentia/core/grouping"
	"github.com/google/frequentia/core/rendering"
	"github.com/google/frequentia/core/server"
	"github.com/google/frequentia/core/store"
	"github.com/google/frequentia/core/tables"
	"github.com/google/frequentia/core/views"
	"github.com/google/frequentia/demo"
)

type config struct {
	csvPath     string
	sourcesPath string
	table       string
	demo        bool
	columns     string
	optionsPath string
	bins        int
	format      string
	locale      string
	dbPath      string
	list        bool
	load        string
	addr        string
	verbosity   int
}

func main() {
	var cfg config
	flag.StringVar(&cfg.csvPath, "csv", "", "CSV file to summarize")
	flag.StringVar(&cfg.sourcesPath, "sources", "", "YAML file describing CSV tables")
	flag.StringVar(&cfg.table, "table", "", "table to load from -sources (default: the first)")
	flag.BoolVar(&cfg.demo, "demo", false, "summarize the built-in orders table")
	flag.StringVar(&cfg.columns, "column", "", "column to summarize; comma-separated columns are combined")
	flag.StringVar(&cfg.optionsPath, "options", "", "YAML file with summary options")
	flag.IntVar(&cfg.bins, "bins", -1, "number of numeric bins, overriding the options file (0 = automatic)")
	flag.StringVar(&cfg.format, "format", "ascii", "output format: ascii, html, json or text")
	flag.StringVar(&cfg.locale, "locale", "en-US", "locale for counts and currency amounts")
	flag.StringVar(&cfg.dbPath, "db", "", "SQLite database to save frequency tables in")
	flag.BoolVar(&cfg.list, "list", false, "list the tables saved in -db and exit")
	flag.StringVar(&cfg.load, "load", "", "print the table saved in -db under this name instead of summarizing")
	flag.StringVar(&cfg.addr, "serve", "", "serve frequency tables over HTTP on this address instead of printing")
	flag.IntVar(&cfg.verbosity, "v", 0, "log verbosity")
	flag.Parse()

	zl, err := newZapLogger(cfg.verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = zl.Sync() }()
	log := zapr.NewLogger(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg, os.Stdout); err != nil {
		log.Error(err, "frequentia failed")
		os.Exit(1)
	}
}

func newZapLogger(verbosity int) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	// logr V(n) maps to zap level -n.
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zc.DisableStacktrace = true
	return zc.Build()
}

func run(ctx context.Context, log logr.Logger, cfg config, out io.Writer) error {
	tag, err := language.Parse(cfg.locale)
	if err != nil {
		return fmt.Errorf("bad locale %q: %w", cfg.locale, err)
	}
	opts := frequency.DefaultOptions()
	if cfg.optionsPath != "" {
		if opts, err = frequency.LoadOptions(cfg.optionsPath); err != nil {
			return err
		}
	}
	if cfg.bins >= 0 {
		opts.Bins = cfg.bins
	}
	if cfg.list || cfg.load != "" {
		return readSaved(ctx, cfg, opts, tag, out)
	}

	view, err := loadView(cfg, tag)
	if err != nil {
		return err
	}
	log.Info("loaded table", "table", view.Name(), "rows", view.Length(), "columns", len(view.GetColumnNames()))

	keys := []string{view.GetColumnNames()[0]}
	if cfg.columns != "" {
		keys = strings.Split(cfg.columns, ",")
	}

	reg := prometheus.NewRegistry()
	metrics, err := frequency.NewMetrics(reg)
	if err != nil {
		return err
	}
	summaryOpts := []frequency.SummaryOption{
		frequency.WithLogger(log),
		frequency.WithMetrics(metrics),
		frequency.WithProgress(progressLogger(log)),
	}
	summary, err := frequency.NewCombinedSummary(view, keys, opts, summaryOpts...)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.dbPath != "" {
		if st, err = store.Open(ctx, cfg.dbPath); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer st.Close()
	}

	if cfg.addr != "" {
		return serve(ctx, log, cfg.addr, summary, opts, summaryOpts, st, tag, reg)
	}

	if err := summary.Reload(ctx).Wait(); err != nil {
		return err
	}
	if st != nil {
		if err := st.Save(ctx, summary.Table()); err != nil {
			return err
		}
	}
	return write(out, cfg.format, tag, views.BuildViewModel(summary, "/freq"), summary.Table(), summary.Source().Selection())
}

// readSaved lists the saved tables, or prints the one named by -load.
func readSaved(ctx context.Context, cfg config, opts frequency.Options, tag language.Tag, out io.Writer) error {
	if cfg.dbPath == "" {
		return errors.New("-list and -load require -db")
	}
	st, err := store.Open(ctx, cfg.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()
	if cfg.list {
		names, err := st.List(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err := fmt.Fprintln(out, name); err != nil {
				return err
			}
		}
		return nil
	}
	ft, err := st.Load(ctx, cfg.load)
	if err != nil {
		return err
	}
	return write(out, cfg.format, tag, views.BuildSavedViewModel(ft, opts), ft, nil)
}

func loadView(cfg config, tag language.Tag) (*tables.TableView, error) {
	switch {
	case cfg.demo:
		orders, err := demo.Orders()
		if err != nil {
			return nil, err
		}
		return tables.NewTableView(orders, "orders"), nil
	case cfg.sourcesPath != "":
		sources, err := csvimport.LoadTableSources(cfg.sourcesPath)
		if err != nil {
			return nil, err
		}
		for _, source := range sources.Tables {
			if cfg.table != "" && source.Name != cfg.table {
				continue
			}
			dt, err := source.Load()
			if err != nil {
				return nil, err
			}
			return tables.NewTableView(dt, source.Name), nil
		}
		return nil, fmt.Errorf("table %q not found in %s", cfg.table, cfg.sourcesPath)
	case cfg.csvPath != "":
		options := csvimport.DefaultOptions()
		options.Locale = tag
		dt, err := csvimport.ImportFromFile(cfg.csvPath, options)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(cfg.csvPath), filepath.Ext(cfg.csvPath))
		return tables.NewTableView(dt, name), nil
	}
	return nil, errors.New("one of -csv, -sources or -demo is required")
}

func progressLogger(log logr.Logger) frequency.ProgressFunc {
	var last atomic.Int64
	return func(done, total int) {
		now := time.Now().UnixNano()
		if now-last.Load() < int64(time.Second) && done < total {
			return
		}
		last.Store(now)
		log.V(2).Info("reload progress", "done", done, "total", total)
	}
}

// write prints a table in format. sel is the selection of the source
// view, nil for saved tables.
func write(out io.Writer, format string, tag language.Tag, vm views.FrequencyViewModel, ft *grouping.FrequencyTable, sel *tables.Selection) error {
	switch format {
	case "ascii":
		return rendering.RenderASCII(out, vm, tag)
	case "html":
		r, err := rendering.NewFrequencyRenderer()
		if err != nil {
			return err
		}
		return r.Render(out, vm)
	case "json", "text":
		marshal := rendering.MarshalJSON
		if format == "text" {
			marshal = rendering.MarshalText
		}
		data, err := marshal(ft, sel)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func serve(ctx context.Context, log logr.Logger, addr string, summary *frequency.Summary, opts frequency.Options,
	summaryOpts []frequency.SummaryOption, st *store.Store, tag language.Tag, reg *prometheus.Registry) error {
	srv, err := server.NewServer(log, opts, summaryOpts...)
	if err != nil {
		return err
	}
	srv.SetLocale(tag)
	if st != nil {
		srv.SetStore(st)
	}
	srv.AddSummary(summary)
	if err := srv.Reload(ctx, summary); err != nil {
		return err
	}

	httpServer := &http.Server{Addr: addr, Handler: srv.Handler(reg)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	log.Info("server starting", "url", "http://"+addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
