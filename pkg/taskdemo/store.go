package taskdemo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gotaskgraph/taskgraph/pkg/core/blocks"
	"github.com/gotaskgraph/taskgraph/pkg/infrastructure/config"
)

// BlockStore is the minimal storage surface the anonymization task graph
// needs: put an anonymized block and fetch it back by address. It is
// trimmed to the two operations the demo graphs actually call — health
// checks, peer management, and a generic block-address metadata envelope
// are out of scope here.
type BlockStore interface {
	Put(ctx context.Context, block *blocks.Block) (string, error)
	Get(ctx context.Context, address string) (*blocks.Block, error)
}

// NewBlockStore constructs the BlockStore selected by cfg.Backend.
func NewBlockStore(cfg config.StorageConfig) (BlockStore, error) {
	switch cfg.Backend {
	case config.BackendMock, "":
		return newMockStore(), nil
	case config.BackendIPFS:
		return newIPFSStore(cfg.IPFSEndpoint), nil
	case config.BackendPostgres:
		return newPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("taskdemo: unknown storage backend %q", cfg.Backend)
	}
}

// mockStore is an in-memory BlockStore for tests and offline runs.
type mockStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (s *mockStore) Put(_ context.Context, block *blocks.Block) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[block.ID] = append([]byte(nil), block.Data...)
	return block.ID, nil
}

func (s *mockStore) Get(_ context.Context, address string) (*blocks.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[address]
	if !ok {
		return nil, fmt.Errorf("mock store: block %s not found", address)
	}
	return &blocks.Block{ID: address, Data: append([]byte(nil), data...)}, nil
}

// ipfsStore stores blocks through an IPFS daemon's HTTP API: Add to
// store, Cat to retrieve, Pin to keep the object alive.
type ipfsStore struct {
	shell *shell.Shell
}

func newIPFSStore(endpoint string) *ipfsStore {
	return &ipfsStore{shell: shell.NewShell(endpoint)}
}

func (s *ipfsStore) Put(_ context.Context, block *blocks.Block) (string, error) {
	cid, err := s.shell.Add(bytes.NewReader(block.Data))
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	if err := s.shell.Pin(cid); err != nil {
		return "", fmt.Errorf("ipfs pin: %w", err)
	}
	return cid, nil
}

func (s *ipfsStore) Get(_ context.Context, address string) (*blocks.Block, error) {
	reader, err := s.shell.Cat(address)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("ipfs read: %w", err)
	}
	return &blocks.Block{ID: address, Data: data}, nil
}

// postgresStore persists blocks as rows in a single table via pgxpool.
type postgresStore struct {
	pool *pgxpool.Pool
}

func newPostgresStore(dsn string) (*postgresStore, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: %w", err)
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Put(ctx context.Context, block *blocks.Block) (string, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO taskdemo_blocks (id, data) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		block.ID, block.Data)
	if err != nil {
		return "", fmt.Errorf("postgres put: %w", err)
	}
	return block.ID, nil
}

func (s *postgresStore) Get(ctx context.Context, address string) (*blocks.Block, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM taskdemo_blocks WHERE id = $1`, address).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("postgres get: %w", err)
	}
	return &blocks.Block{ID: address, Data: data}, nil
}
