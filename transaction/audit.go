package transaction

import (
	"encoding/json"
	"sync"
	"time"

	"mantisDB/advanced/compression"
	"mantisDB/advanced/logging"
)

// auditRecord is the serialized shape of one Event, compressed before it
// is retained.
type auditRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind       string         `json:"kind"`
	TxnID      uint64         `json:"txn_id"`
	Addrs      []BlockAddress `json:"addrs,omitempty"`
	Status     string         `json:"status,omitempty"`
	Err        string         `json:"err,omitempty"`
}

// AuditTrail is a bounded, compressed ring buffer of every event an
// EventBus publishes. It exists purely for observability — unlike a
// write-ahead log it is never replayed and never drives recovery; the
// oldest records are silently dropped once capacity is reached.
type AuditTrail struct {
	mu        sync.Mutex
	algorithm compression.Algorithm
	capacity  int
	records   [][]byte
	logger    *logging.Logger
}

// NewAuditTrail resolves compressionName ("none", "snappy", "lz4", or
// "zstd") via codec, subscribes to bus, and returns the trail. capacity
// <= 0 retains everything.
func NewAuditTrail(bus *EventBus, codec *compression.Codec, capacity int, compressionName string, logger *logging.Logger) (*AuditTrail, error) {
	algorithm, err := codec.Get(compressionName)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.New("transaction.audit", logging.INFO)
	}

	trail := &AuditTrail{
		algorithm: algorithm,
		capacity:  capacity,
		logger:    logger,
	}
	bus.Subscribe(trail.handle)
	return trail, nil
}

func (t *AuditTrail) handle(evt Event) {
	record := auditRecord{
		Timestamp: clock(),
		Kind:      evt.Kind.String(),
		TxnID:     evt.TxnID,
		Addrs:     evt.Addrs,
		Status:    evt.Status.String(),
	}
	if evt.Err != nil {
		record.Err = evt.Err.Error()
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.logger.Error("failed to marshal audit record", map[string]interface{}{"error": err.Error()})
		return
	}

	compressed, err := t.algorithm.Compress(data)
	if err != nil {
		t.logger.Error("failed to compress audit record", map[string]interface{}{"error": err.Error()})
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, compressed)
	if t.capacity > 0 && len(t.records) > t.capacity {
		t.records = t.records[len(t.records)-t.capacity:]
	}
}

// Records returns a snapshot of the retained compressed records, oldest
// first.
func (t *AuditTrail) Records() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.records))
	copy(out, t.records)
	return out
}

// Decode decompresses and unmarshals one record produced by Records, for
// tests and CLI introspection.
func (t *AuditTrail) Decode(compressed []byte) (*auditRecordView, error) {
	data, err := t.algorithm.Decompress(compressed)
	if err != nil {
		return nil, err
	}
	var rec auditRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &auditRecordView{
		Timestamp: rec.Timestamp,
		Kind:      rec.Kind,
		TxnID:     rec.TxnID,
		Addrs:     rec.Addrs,
		Status:    rec.Status,
		Err:       rec.Err,
	}, nil
}

// auditRecordView is the decoded, read-only form of an audit record.
type auditRecordView struct {
	Timestamp time.Time
	Kind      string
	TxnID     uint64
	Addrs     []BlockAddress
	Status    string
	Err       string
}
