// internal/database/transaction.go
package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	tx            *gorm.DB
	afterCommit   []func()
	afterRollback []func()
}

// WithTransaction runs fn inside a transaction carried by the returned
// context. Nested calls open a savepoint on the enclosing transaction, so a
// failing inner step rolls back only its own writes unless the error is
// propagated. Callbacks registered with AfterCommit run once the outermost
// transaction commits and are dropped on rollback; AfterRollback callbacks run
// when the writes they belong to are rolled back.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if parent, ok := ctx.Value(txKey{}).(*txState); ok {
		child := &txState{}
		err := parent.tx.Transaction(func(tx *gorm.DB) error {
			child.tx = tx
			return fn(context.WithValue(ctx, txKey{}, child))
		})
		if err != nil {
			runAll(child.afterRollback)
			return err
		}
		parent.afterCommit = append(parent.afterCommit, child.afterCommit...)
		parent.afterRollback = append(parent.afterRollback, child.afterRollback...)
		return nil
	}

	state := &txState{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		runAll(state.afterRollback)
		return err
	}

	runAll(state.afterCommit)
	return nil
}

func runAll(callbacks []func()) {
	for _, cb := range callbacks {
		cb()
	}
}

// Conn returns the transaction bound to ctx, or db scoped to ctx when no
// transaction is active.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// AfterCommit defers fn until the transaction in ctx commits. Without a
// transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}

// AfterRollback registers fn to undo side effects made outside the database,
// such as uploaded objects, if the transaction in ctx rolls back. Without a
// transaction fn is never called.
func AfterRollback(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterRollback = append(state.afterRollback, fn)
	}
}
