package runstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

type Options struct {
	// Path is the on-disk location. Empty with InMemory set runs fully
	// in memory (tests, ephemeral deployments).
	Path     string
	InMemory bool

	// Retention expires persisted records via badger TTL. Zero keeps
	// records until externally deleted.
	Retention time.Duration
}

// BadgerStore persists run summaries and per-node outputs. Key scheme:
//
//	run:<execution_id>                      -> RunRecord
//	run:<execution_id>:node:<seq>:<node_id> -> NodeRecord
//
// Seq is zero-padded so a prefix scan yields node records in execution
// order.
type BadgerStore struct {
	db        *badger.DB
	retention time.Duration
	logger    *slog.Logger
}

func Open(opts Options, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Path == "" && !opts.InMemory {
		return nil, domain.NewConfigError("run_store", fmt.Errorf("path is required for on-disk store"))
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, domain.NewConfigError("run_store", fmt.Errorf("failed to open badger store: %w", err))
	}

	return &BadgerStore{
		db:        db,
		retention: opts.Retention,
		logger:    logger.With("component", "run-store"),
	}, nil
}

func (bs *BadgerStore) SaveRun(ctx context.Context, record ports.RunRecord) error {
	if record.ExecutionID == "" {
		return domain.NewValidationError("execution_id", "run record requires an execution id")
	}

	data, err := xjson.Marshal(record)
	if err != nil {
		return domain.NewInternalError("failed to serialize run record", err)
	}

	key := runKey(record.ExecutionID)
	err = bs.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if bs.retention > 0 {
			entry = entry.WithTTL(bs.retention)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return domain.NewInternalError("failed to persist run record", err)
	}

	bs.logger.Debug("run record saved",
		"execution_id", record.ExecutionID,
		"status", record.Status,
	)
	return nil
}

func (bs *BadgerStore) AppendNodeOutput(ctx context.Context, record ports.NodeRecord) error {
	if record.ExecutionID == "" || record.NodeID == "" {
		return domain.NewValidationError("node_record", "node record requires execution id and node id")
	}

	data, err := xjson.Marshal(record)
	if err != nil {
		return domain.NewInternalError("failed to serialize node record", err)
	}

	key := nodeKey(record.ExecutionID, record.Seq, record.NodeID)
	err = bs.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if bs.retention > 0 {
			entry = entry.WithTTL(bs.retention)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return domain.NewInternalError("failed to persist node record", err)
	}
	return nil
}

func (bs *BadgerStore) GetRun(ctx context.Context, executionID string) (*ports.RunRecord, []ports.NodeRecord, error) {
	var run ports.RunRecord
	var nodes []ports.NodeRecord

	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKey(executionID)))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return domain.NewNotFoundError("run", executionID)
			}
			return err
		}
		if err := item.Value(func(val []byte) error {
			return xjson.Unmarshal(val, &run)
		}); err != nil {
			return err
		}

		prefix := []byte(fmt.Sprintf("run:%s:node:", executionID))
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var node ports.NodeRecord
			if err := it.Item().Value(func(val []byte) error {
				return xjson.Unmarshal(val, &node)
			}); err != nil {
				return err
			}
			nodes = append(nodes, node)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &run, nodes, nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func runKey(executionID string) string {
	return fmt.Sprintf("run:%s", executionID)
}

func nodeKey(executionID string, seq int, nodeID string) string {
	return fmt.Sprintf("run:%s:node:%06d:%s", executionID, seq, nodeID)
}
