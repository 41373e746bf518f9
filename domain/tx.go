package domain

import "context"

// Session is an open primary store transaction. It is passed explicitly to
// every repository call that must take part in the transaction and is owned
// by the single mutation that opened it.
//
// Repository methods accept a nil Session, in which case the call runs
// outside of any transaction.
type Session interface {
	// Context returns the context the transaction was opened with.
	Context() context.Context
}

// Transactor opens primary store transactions.
type Transactor interface {
	// WithTransaction runs fn inside one transaction. The transaction commits
	// when fn returns nil and rolls back otherwise; the error of fn (or of the
	// commit) is returned unchanged. There is no retry.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, s Session) error) error
}
