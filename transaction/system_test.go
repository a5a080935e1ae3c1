package transaction

import (
	"testing"
	"time"

	"mantisDB/config"
)

func TestTransactionSystem_StatsAfterQuiescence(t *testing.T) {
	cfg := config.DefaultLockConfig()
	cfg.NumberOfHashBuckets = 8
	cfg.MaxActiveTransactions = 2
	cfg.LockWaitTimeout = time.Second

	resolver := NewMapBlockResolver(map[string][]BlockAddress{"accounts": {1}})
	sys, err := NewTransactionSystem(cfg, resolver, NoopExecutor)
	if err != nil {
		t.Fatalf("failed to build transaction system: %v", err)
	}
	defer sys.Stop()

	submission, err := sys.Submit([]Command{{Table: "accounts", Kind: CmdSelect}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := submission.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sys.Manager.AwaitQuiescence()
	stats := sys.GetSystemStats()
	if !stats.LockTableEmpty {
		t.Error("expected lock table empty at quiescence")
	}
	if stats.ActiveTransactions != 0 {
		t.Errorf("expected zero active transactions, got %d", stats.ActiveTransactions)
	}
	if stats.AuditRecordCount == 0 {
		t.Error("expected the audit trail to have recorded at least one event")
	}
}
