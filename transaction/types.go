// Package transaction implements the lock table and bounded worker-pool
// transaction manager: hashed buckets of per-resource lock queues, strict
// two-phase locking with a shared/exclusive compatibility fast-path, and
// a TransactionManager that admits command batches onto a fixed pool of
// workers.
package transaction

import "time"

// BlockAddress identifies a storage block — the lock granularity. It is
// an opaque integer handed back by a BlockResolver; this package never
// interprets it beyond using it as a map/hash key.
type BlockAddress int64

// LockType is the mode a LockRequest holds or waits for.
type LockType int

const (
	SharedLock LockType = iota
	ExclusiveLock
)

// String returns the human-readable name of the lock mode.
func (t LockType) String() string {
	switch t {
	case SharedLock:
		return "SHARED"
	case ExclusiveLock:
		return "EXCLUSIVE"
	default:
		return "UNKNOWN"
	}
}

// CommandKind is the operation a Command performs; it determines the
// lock mode the worker acquires for every block address the command
// touches ({Insert,Update,Delete} -> Exclusive, {Select} -> Shared).
type CommandKind int

const (
	CmdSelect CommandKind = iota
	CmdInsert
	CmdUpdate
	CmdDelete
)

// String returns the human-readable name of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CmdSelect:
		return "SELECT"
	case CmdInsert:
		return "INSERT"
	case CmdUpdate:
		return "UPDATE"
	case CmdDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// LockMode returns the lock type a command of this kind requires.
func (k CommandKind) LockMode() LockType {
	if k == CmdSelect {
		return SharedLock
	}
	return ExclusiveLock
}

// Command is one operation within a submitted batch. Parameters is
// opaque to this package; it is handed verbatim to the Executor.
type Command struct {
	Table      string
	Kind       CommandKind
	Parameters interface{}
}

// TxnStatus is the lifecycle state of a worker's transaction.
type TxnStatus int

const (
	TxnNew TxnStatus = iota
	TxnRunning
	TxnCommitted
	TxnAborted
)

// String returns the human-readable name of the status.
func (s TxnStatus) String() string {
	switch s {
	case TxnNew:
		return "NEW"
	case TxnRunning:
		return "RUNNING"
	case TxnCommitted:
		return "COMMITTED"
	case TxnAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Submission is the handle a caller of Submit gets back; Wait blocks
// until the worker running this batch has committed or aborted.
type Submission struct {
	TxnID uint64
	done  chan struct{}
	status TxnStatus
	err    error
}

// Wait blocks until the submission's worker finishes and returns the
// final status and, on abort, the reason.
func (s *Submission) Wait() (TxnStatus, error) {
	<-s.done
	return s.status, s.err
}

func (s *Submission) finish(status TxnStatus, err error) {
	s.status = status
	s.err = err
	close(s.done)
}

// BlockResolver resolves the storage blocks a command's table touches.
// It is an external collaborator: this package never enumerates block
// addresses itself.
type BlockResolver interface {
	BlockAddresses(table string) ([]BlockAddress, error)
}

// Executor performs the actual mutation of a committed batch. It is an
// external collaborator invoked exactly once per batch, after every lock
// in the batch has been acquired.
type Executor interface {
	Execute(batch []Command) error
}

// txnWorkItem bundles one batch with its transaction id and Submission.
// Pool keeps no queue of these; nothing in this package constructs one.
type txnWorkItem struct {
	txnID      uint64
	batch      []Command
	submission *Submission
}

// clock lets tests substitute a deterministic time source where needed;
// production code just uses time.Now.
var clock = time.Now
