package transaction

import (
	"mantisDB/advanced/compression"
	"mantisDB/advanced/logging"
	"mantisDB/config"
)

// TransactionSystem wires a LockTable, TransactionManager, EventBus and
// AuditTrail together behind the configuration in config.LockConfig. It
// holds no table-data methods of its own — mutation is always performed
// by the caller-supplied Executor, never by this package directly.
type TransactionSystem struct {
	Table   *LockTable
	Manager *TransactionManager
	Bus     *EventBus
	Audit   *AuditTrail
	logger  *logging.Logger
}

// NewTransactionSystem builds a TransactionSystem from cfg, a
// BlockResolver and an Executor. Both collaborators are supplied by the
// caller; this package never resolves block addresses or mutates tables
// itself.
func NewTransactionSystem(cfg *config.LockConfig, resolver BlockResolver, executor Executor) (*TransactionSystem, error) {
	if cfg == nil {
		cfg = config.DefaultLockConfig()
	}

	logger := logging.New("transaction.system", logging.INFO)
	bus := NewEventBus()
	table := NewLockTable(cfg.NumberOfHashBuckets)
	manager := NewTransactionManager(table, resolver, executor, bus, cfg.MaxActiveTransactions, cfg.LockWaitTimeout, logger)

	audit, err := NewAuditTrail(bus, &compression.Codec{}, cfg.AuditBufferSize, cfg.AuditCompression, logger)
	if err != nil {
		return nil, err
	}

	return &TransactionSystem{
		Table:   table,
		Manager: manager,
		Bus:     bus,
		Audit:   audit,
		logger:  logger,
	}, nil
}

// Submit admits a command batch; see TransactionManager.Submit.
func (s *TransactionSystem) Submit(batch []Command) (*Submission, error) {
	return s.Manager.Submit(batch)
}

// Stop drains in-flight transactions and stops admitting new work.
func (s *TransactionSystem) Stop() {
	s.Manager.Close()
}

// Stats is a point-in-time snapshot of system activity.
type Stats struct {
	ActiveTransactions int
	LockTableEmpty     bool
	AuditRecordCount   int
}

// GetSystemStats reports current activity for monitoring and tests.
func (s *TransactionSystem) GetSystemStats() Stats {
	return Stats{
		ActiveTransactions: s.Manager.ActiveCount(),
		LockTableEmpty:     s.Table.Empty(),
		AuditRecordCount:   len(s.Audit.Records()),
	}
}
