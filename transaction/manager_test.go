package transaction

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, maxActive int) (*TransactionManager, *MapBlockResolver) {
	t.Helper()
	resolver := NewMapBlockResolver(map[string][]BlockAddress{
		"accounts": {1, 2},
		"ledger":   {10},
	})
	table := NewLockTable(32)
	bus := NewEventBus()
	return NewTransactionManager(table, resolver, NoopExecutor, bus, maxActive, time.Second, nil), resolver
}

func TestTransactionManager_CommitReleasesAllBlocks(t *testing.T) {
	tm, _ := newTestManager(t, 4)

	submission, err := tm.Submit([]Command{{Table: "accounts", Kind: CmdUpdate}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	status, err := submission.Wait()
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if status != TxnCommitted {
		t.Errorf("expected TxnCommitted, got %v", status)
	}

	if !tm.lockTable.Empty() {
		t.Error("expected lock table empty after commit")
	}
}

func TestTransactionManager_UnionAcrossBatchReleasedOnAbort(t *testing.T) {
	failing := FuncExecutor(func(batch []Command) error {
		return errors.New("boom")
	})
	resolver := NewMapBlockResolver(map[string][]BlockAddress{
		"accounts": {1, 2},
		"ledger":   {10},
	})
	table := NewLockTable(32)
	bus := NewEventBus()
	tm := NewTransactionManager(table, resolver, failing, bus, 4, time.Second, nil)

	submission, err := tm.Submit([]Command{
		{Table: "accounts", Kind: CmdUpdate},
		{Table: "ledger", Kind: CmdInsert},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	status, err := submission.Wait()
	if status != TxnAborted {
		t.Errorf("expected TxnAborted, got %v", status)
	}
	if !errors.Is(err, ErrExecutorFailure) {
		t.Errorf("expected ErrExecutorFailure, got %v", err)
	}

	if !table.Empty() {
		t.Error("expected every block address across the whole batch to be released, not just the last command's")
	}
}

func TestTransactionManager_PoolBoundsConcurrency(t *testing.T) {
	resolver := NewMapBlockResolver(map[string][]BlockAddress{"t": {1}})
	table := NewLockTable(8)
	bus := NewEventBus()

	release := make(chan struct{})
	blocking := FuncExecutor(func(batch []Command) error {
		<-release
		return nil
	})
	tm := NewTransactionManager(table, resolver, blocking, bus, 2, 0, nil)

	subs := make([]*Submission, 3)
	for i := range subs {
		s, err := tm.Submit([]Command{{Table: "t", Kind: CmdSelect}})
		if err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
		subs[i] = s
	}

	time.Sleep(50 * time.Millisecond)
	if active := tm.ActiveCount(); active != 2 {
		t.Errorf("expected at most 2 active transactions admitted, got %d", active)
	}

	close(release)
	for _, s := range subs {
		if _, err := s.Wait(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestTransactionManager_EmptyBatchRejected(t *testing.T) {
	tm, _ := newTestManager(t, 2)
	if _, err := tm.Submit(nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestTransactionManager_MissingBlocksAborts(t *testing.T) {
	tm, _ := newTestManager(t, 2)
	submission, err := tm.Submit([]Command{{Table: "unknown", Kind: CmdSelect}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	status, err := submission.Wait()
	if status != TxnAborted || !errors.Is(err, ErrMissingBlocks) {
		t.Errorf("expected abort with ErrMissingBlocks, got status=%v err=%v", status, err)
	}
}
