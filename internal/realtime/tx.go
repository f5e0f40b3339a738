package realtime

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

type deferredKey struct{}

// deferred holds publishes made inside an outer transaction until it commits.
type deferred struct {
	mu  sync.Mutex
	fns []func()
}

func (d *deferred) add(fn func()) {
	d.mu.Lock()
	d.fns = append(d.fns, fn)
	d.mu.Unlock()
}

func (d *deferred) flush() {
	d.mu.Lock()
	fns := d.fns
	d.fns = nil
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Transaction runs fn inside a transaction on db. Changes it writes to
// watched tables are published once the transaction has committed, and
// dropped if it rolls back.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	d := &deferred{}
	if err := db.WithContext(context.WithValue(ctx, deferredKey{}, d)).Transaction(fn); err != nil {
		return err
	}
	d.flush()
	return nil
}

func deferredFrom(ctx context.Context) *deferred {
	d, _ := ctx.Value(deferredKey{}).(*deferred)
	return d
}

// inTransaction reports whether the statement still runs on an open
// transaction, which is the case for writes inside db.Transaction.
func inTransaction(db *gorm.DB) bool {
	_, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}
