package taskdemo

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/gotaskgraph/taskgraph/pkg/core/taskgraph"
)

// filePathKey tags the context passed to each file's task graph with the
// originating path, so a BlockStore (or a test double) can tell which
// file a given Put/Get belongs to without threading it through every
// task's return value.
type filePathKey struct{}

// AnonymizeFiles runs AnonymizeFile over every path concurrently and
// collects per-file outcomes. A failure in one file's task graph (a
// panic surfaced through Task.Result) does not stop the others; all
// failures are aggregated into a single *multierror.Error so a caller
// processing a batch sees every failure at once instead of just the
// first.
func AnonymizeFiles(ctx context.Context, store BlockStore, files map[string][]byte, blockSize int) (map[string][]StoredBlock, error) {
	tasks := make(map[string]*taskgraph.Task[[]StoredBlock], len(files))
	for path, data := range files {
		tasks[path] = AnonymizeFile(context.WithValue(ctx, filePathKey{}, path), store, data, blockSize)
	}

	results := make(map[string][]StoredBlock, len(files))
	var errs *multierror.Error
	for path, task := range tasks {
		stored, err := safeResult(task)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		results[path] = stored
	}
	return results, errs.ErrorOrNil()
}

// safeResult recovers a panic raised by task.Result() — the path a
// failing task body's error takes through pkg/core/taskgraph — and
// turns it back into a plain error.
func safeResult[R any](task *taskgraph.Task[R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	return task.Result(), nil
}
