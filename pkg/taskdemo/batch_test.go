package taskdemo

import (
	"context"
	"fmt"
	"testing"

	"github.com/gotaskgraph/taskgraph/pkg/core/blocks"
)

// failingPutStore wraps a mockStore and fails every Put made on behalf
// of a path named in fails, letting a test force one file's
// anonymization graph to error without touching the others.
type failingPutStore struct {
	fails map[string]bool
	inner *mockStore
}

func (s failingPutStore) Put(ctx context.Context, block *blocks.Block) (string, error) {
	if path, _ := ctx.Value(filePathKey{}).(string); s.fails[path] {
		return "", fmt.Errorf("simulated store failure for %s", path)
	}
	return s.inner.Put(ctx, block)
}

func (s failingPutStore) Get(ctx context.Context, address string) (*blocks.Block, error) {
	return s.inner.Get(ctx, address)
}

func TestAnonymizeFilesAggregatesPerFileResults(t *testing.T) {
	store := newMockStore()
	files := map[string][]byte{
		"a.bin": []byte("hello world"),
		"b.bin": []byte("goodbye world"),
	}

	results, err := AnonymizeFiles(context.Background(), store, files, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for path := range files {
		if len(results[path]) == 0 {
			t.Fatalf("no stored blocks for %s", path)
		}
	}
}

func TestAnonymizeFilesCollectsFailuresWithoutStoppingOthers(t *testing.T) {
	store := failingPutStore{fails: map[string]bool{"bad.bin": true}, inner: newMockStore()}
	files := map[string][]byte{
		"bad.bin":  []byte("this one fails to store"),
		"good.bin": []byte("this one succeeds"),
	}

	results, err := AnonymizeFiles(context.Background(), store, files, 4)
	if err == nil {
		t.Fatal("expected an aggregated error for bad.bin")
	}
	if _, ok := results["good.bin"]; !ok {
		t.Fatal("good.bin should still have succeeded despite bad.bin's failure")
	}
	if _, ok := results["bad.bin"]; ok {
		t.Fatal("bad.bin should not have a result")
	}
}
