/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package model defines the data structures and interfaces for database operations.
package model

import (
	"context"
	"database/sql"
)

// DBInterface is the connection pool used by the database client. Every call
// takes a context so that node timeouts and server shutdown abort running statements.
type DBInterface interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	PingContext(ctx context.Context) error
	Close() error
}

// NewDB returns the pool itself; *sql.DB satisfies DBInterface.
func NewDB(db *sql.DB) DBInterface {
	return db
}

// TxInterface defines the wrapper interface for transaction management.
type TxInterface interface {
	Commit() error
	Rollback() error
	// Exec runs a statement inside the transaction.
	Exec(query string, args ...any) (sql.Result, error)
}

// Tx binds a transaction to the context it was started with.
type Tx struct {
	ctx      context.Context
	internal *sql.Tx
}

// NewTx wraps tx. Statements run under ctx.
func NewTx(ctx context.Context, tx *sql.Tx) TxInterface {
	return &Tx{
		ctx:      ctx,
		internal: tx,
	}
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.internal.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	return t.internal.Rollback()
}

// Exec runs a statement inside the transaction.
func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.internal.ExecContext(t.ctx, query, args...)
}
