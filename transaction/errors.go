package transaction

import "errors"

// Sentinel errors for the taxonomy this package raises. Callers compare
// with errors.Is; every wrapped instance carries %w back to one of these.
var (
	// ErrLockTimeout is returned when an acquire exceeds the configured
	// lock_wait_timeout without being granted.
	ErrLockTimeout = errors.New("lock acquisition timed out")

	// ErrMissingBlocks is returned when a BlockResolver yields no
	// addresses for a command's table.
	ErrMissingBlocks = errors.New("no block addresses resolved for table")

	// ErrExecutorFailure wraps a failure reported by the Executor
	// collaborator.
	ErrExecutorFailure = errors.New("executor reported failure")

	// ErrPoolSaturated names the full-worker-pool error kind. Nothing in
	// this package returns it: Submit never rejects a batch because the
	// pool is full.
	ErrPoolSaturated = errors.New("transaction pool saturated")

	// ErrSystemClosed is returned by Submit on a stopped TransactionSystem
	// or TransactionManager, and reported by the Submission of a batch that
	// was still waiting for a pool slot when the manager closed.
	ErrSystemClosed = errors.New("transaction system is closed")

	// ErrEmptyBatch is returned by Submit for a zero-command batch.
	ErrEmptyBatch = errors.New("command batch is empty")
)
