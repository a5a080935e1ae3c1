package transaction

import (
	"fmt"
	"sync/atomic"
	"time"

	"mantisDB/advanced/logging"
)

// TransactionManager admits command batches onto a bounded Pool and runs
// each through acquire-locks -> execute -> release-locks against a
// LockTable, publishing lifecycle events on an EventBus as it goes.
type TransactionManager struct {
	lockTable *LockTable
	pool      *Pool
	bus       *EventBus
	resolver  BlockResolver
	executor  Executor
	timeout   time.Duration
	logger    *logging.Logger

	nextTxnID uint64 // atomic
	closed    int32  // atomic
}

// NewTransactionManager wires a LockTable, BlockResolver, Executor and
// EventBus together behind a Pool admitting at most maxActive concurrent
// transactions. lockWaitTimeout <= 0 means acquire waits forever.
func NewTransactionManager(lockTable *LockTable, resolver BlockResolver, executor Executor, bus *EventBus, maxActive int, lockWaitTimeout time.Duration, logger *logging.Logger) *TransactionManager {
	if logger == nil {
		logger = logging.New("transaction.manager", logging.INFO)
	}
	return &TransactionManager{
		lockTable: lockTable,
		pool:      NewPool(maxActive),
		bus:       bus,
		resolver:  resolver,
		executor:  executor,
		timeout:   lockWaitTimeout,
		logger:    logger,
	}
}

// Submit admits batch for execution and returns immediately with a
// Submission handle; call Wait on it to block for the outcome.
func (m *TransactionManager) Submit(batch []Command) (*Submission, error) {
	if atomic.LoadInt32(&m.closed) != 0 {
		return nil, ErrSystemClosed
	}
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	txnID := atomic.AddUint64(&m.nextTxnID, 1)
	submission := &Submission{TxnID: txnID, done: make(chan struct{})}

	go m.dispatch(txnID, batch, submission)
	return submission, nil
}

func (m *TransactionManager) dispatch(txnID uint64, batch []Command, submission *Submission) {
	if !m.pool.Acquire() {
		submission.finish(TxnAborted, ErrSystemClosed)
		return
	}

	status, err := m.run(txnID, batch)
	submission.finish(status, err)

	m.bus.Publish(Event{Kind: TransactionFinished, TxnID: txnID, Status: status, Err: err})
	m.pool.Release()
	if m.pool.ActiveCount() == 0 {
		m.bus.Publish(Event{Kind: AllTransactionsFinished})
	}
}

// run executes one admitted batch. It accumulates the union of every
// block address acquired across the WHOLE batch — not just the last
// command — so that commit and abort both release everything the
// transaction actually holds.
func (m *TransactionManager) run(txnID uint64, batch []Command) (TxnStatus, error) {
	m.logger.Debug("transaction starting", map[string]interface{}{"txn_id": txnID, "commands": len(batch)})

	seen := make(map[BlockAddress]bool)
	var held []BlockAddress

	release := func() {
		if len(held) == 0 {
			return
		}
		m.lockTable.Release(txnID, held)
		m.bus.Publish(Event{Kind: LockReleased, TxnID: txnID, Addrs: held})
	}

	for _, cmd := range batch {
		addrs, err := m.resolver.BlockAddresses(cmd.Table)
		if err != nil {
			release()
			return TxnAborted, err
		}
		if len(addrs) == 0 {
			release()
			return TxnAborted, fmt.Errorf("%w: table %q", ErrMissingBlocks, cmd.Table)
		}

		mode := cmd.Kind.LockMode()
		for _, addr := range addrs {
			if err := m.lockTable.Acquire(addr, txnID, mode, m.timeout); err != nil {
				release()
				m.logger.Warn("transaction aborted on lock timeout", map[string]interface{}{"txn_id": txnID, "address": addr})
				return TxnAborted, err
			}
			if !seen[addr] {
				seen[addr] = true
				held = append(held, addr)
			}
		}
	}

	if err := m.executor.Execute(batch); err != nil {
		release()
		return TxnAborted, fmt.Errorf("%w: %v", ErrExecutorFailure, err)
	}

	release()
	m.logger.Debug("transaction committed", map[string]interface{}{"txn_id": txnID, "blocks_released": len(held)})
	return TxnCommitted, nil
}

// AwaitQuiescence blocks until every currently-admitted transaction has
// finished. It does not prevent new submissions from racing in.
func (m *TransactionManager) AwaitQuiescence() {
	m.pool.Wait()
}

// Close stops admitting new work and blocks until in-flight transactions
// drain. Submit returns ErrSystemClosed afterward.
func (m *TransactionManager) Close() {
	atomic.StoreInt32(&m.closed, 1)
	m.pool.Close()
	m.pool.Wait()
}

// ActiveCount returns the number of transactions currently admitted.
func (m *TransactionManager) ActiveCount() int {
	return m.pool.ActiveCount()
}
