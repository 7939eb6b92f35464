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

// Package store persists frequency tables in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/frequentia/core/columns"
	"github.com/google/frequentia/core/grouping"
)

// ErrNotFound is returned by Load for an unknown table name.
var ErrNotFound = errors.New("frequency table not found")

const schema = `
CREATE TABLE IF NOT EXISTS freq_tables (
	name        TEXT PRIMARY KEY,
	column_name TEXT NOT NULL,
	mode        INTEGER NOT NULL,
	label_kind  INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	largest     INTEGER NOT NULL,
	derived     TEXT NOT NULL,
	saved_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS freq_buckets (
	table_name TEXT NOT NULL REFERENCES freq_tables(name) ON DELETE CASCADE,
	idx        INTEGER NOT NULL,
	label      TEXT NOT NULL,
	key        TEXT NOT NULL,
	members    TEXT NOT NULL,
	aggregates TEXT NOT NULL,
	PRIMARY KEY (table_name, idx)
);`

// Store saves and loads frequency tables.
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn (a file path or ":memory:") and creates
// the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

type derivedRecord struct {
	Name string `json:"name"`
	Kind int    `json:"kind"`
}

// Save stores ft, replacing any table saved under the same name.
func (s *Store) Save(ctx context.Context, ft *grouping.FrequencyTable) error {
	derived := make([]derivedRecord, len(ft.Derived))
	for i, d := range ft.Derived {
		derived[i] = derivedRecord{Name: d.Name, Kind: int(d.Kind)}
	}
	derivedJSON, err := json.Marshal(derived)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM freq_buckets WHERE table_name = ?`, ft.Name); err != nil {
		return fmt.Errorf("delete buckets of %s: %w", ft.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO freq_tables (name, column_name, mode, label_kind, total, largest, derived, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ft.Name, ft.Column, int(ft.Mode), int(ft.LabelKind), ft.Total, ft.Largest, string(derivedJSON),
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert table %s: %w", ft.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO freq_buckets (table_name, idx, label, key, members, aggregates) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, b := range ft.Buckets {
		key, err := json.Marshal(encodeValue(b.Key))
		if err != nil {
			return fmt.Errorf("bucket %q key: %w", b.Label, err)
		}
		members, err := json.Marshal(b.Members)
		if err != nil {
			return err
		}
		aggs := make([]any, len(b.Aggregates))
		for j, v := range b.Aggregates {
			aggs[j] = encodeValue(v)
		}
		aggsJSON, err := json.Marshal(aggs)
		if err != nil {
			return fmt.Errorf("bucket %q aggregates: %w", b.Label, err)
		}
		if _, err := stmt.ExecContext(ctx, ft.Name, i, b.Label, string(key), string(members), string(aggsJSON)); err != nil {
			return fmt.Errorf("insert bucket %q: %w", b.Label, err)
		}
	}
	return tx.Commit()
}

// Load reads the table saved under name.
func (s *Store) Load(ctx context.Context, name string) (*grouping.FrequencyTable, error) {
	ft := grouping.NewFrequencyTable(name, "")
	var mode, labelKind int
	var derivedJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT column_name, mode, label_kind, total, largest, derived FROM freq_tables WHERE name = ?`, name).
		Scan(&ft.Column, &mode, &labelKind, &ft.Total, &ft.Largest, &derivedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	ft.Mode = grouping.Mode(mode)
	ft.LabelKind = columns.Kind(labelKind)

	var derived []derivedRecord
	if err := json.Unmarshal([]byte(derivedJSON), &derived); err != nil {
		return nil, fmt.Errorf("derived columns of %s: %w", name, err)
	}
	for _, d := range derived {
		ft.Derived = append(ft.Derived, grouping.DerivedColumn{Name: d.Name, Kind: columns.Kind(d.Kind)})
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, key, members, aggregates FROM freq_buckets WHERE table_name = ? ORDER BY idx`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key, members, aggs string
		b := &grouping.Bucket{}
		if err := rows.Scan(&b.Label, &key, &members, &aggs); err != nil {
			return nil, err
		}
		keyKind := ft.LabelKind
		if ft.Mode == grouping.Binned {
			keyKind = columns.KindString
		}
		if b.Key, err = decodeValue([]byte(key), keyKind); err != nil {
			return nil, fmt.Errorf("bucket %q key: %w", b.Label, err)
		}
		if err := json.Unmarshal([]byte(members), &b.Members); err != nil {
			return nil, fmt.Errorf("bucket %q members: %w", b.Label, err)
		}
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(aggs), &raw); err != nil {
			return nil, fmt.Errorf("bucket %q aggregates: %w", b.Label, err)
		}
		for j, r := range raw {
			kind := columns.KindUnset
			if j < len(ft.Derived) {
				kind = ft.Derived[j].Kind
			}
			v, err := decodeValue(r, kind)
			if err != nil {
				return nil, fmt.Errorf("bucket %q aggregates: %w", b.Label, err)
			}
			b.Aggregates = append(b.Aggregates, v)
		}
		ft.Buckets = append(ft.Buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ft, nil
}

// List returns the names of the saved tables in alphabetical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM freq_tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// encodeValue makes v JSON-safe; non-finite floats are stored as strings.
func encodeValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64:
		return v
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return columns.FormatFloat64(x)
		}
		return x
	default:
		return columns.FormatRaw(v)
	}
}

// decodeValue reverses encodeValue, restoring the Go type from kind.
func decodeValue(data []byte, kind columns.Kind) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case json.Number:
		if kind == columns.KindInteger {
			if i, err := x.Int64(); err == nil {
				return i, nil
			}
		}
		return x.Float64()
	case string:
		if kind == columns.KindFloat || kind == columns.KindCurrency {
			if f, err := columns.ParseFloat64(x); err == nil {
				return f, nil
			}
		}
		return x, nil
	default:
		return v, nil
	}
}
