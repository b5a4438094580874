package taskdemo

import (
	"context"
	"fmt"

	"github.com/gotaskgraph/taskgraph/pkg/core/blocks"
	"github.com/gotaskgraph/taskgraph/pkg/core/taskgraph"
	"github.com/gotaskgraph/taskgraph/pkg/infrastructure/logging"
)

// StoredBlock is a block's address in the configured BlockStore, plus the
// two randomizer addresses needed to reverse the anonymization.
type StoredBlock struct {
	Address       string
	Randomizer1ID string
	Randomizer2ID string
}

// AnonymizeFile splits data into fixed-size blocks, XOR-anonymizes each
// one against a pair of freshly generated randomizer blocks, stores all
// three, and fans the per-block results in with WhenAll — the same
// 3-tuple XOR scheme as pkg/core/blocks.Block.XOR, restructured as a
// taskgraph.Task tree instead of a sequential loop so every block's
// split/anonymize/store chain runs as its own task.
func AnonymizeFile(ctx context.Context, store BlockStore, data []byte, blockSize int) *taskgraph.Task[[]StoredBlock] {
	if blockSize <= 0 {
		blockSize = blocks.DefaultBlockSize
	}

	var blockTasks []*taskgraph.Task[StoredBlock]
	for offset := 0; offset < len(data); offset += blockSize {
		end := offset + blockSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		blockTasks = append(blockTasks, anonymizeBlock(ctx, store, chunk))
	}

	if len(blockTasks) == 0 {
		return taskgraph.MakeTask0(func() []StoredBlock { return nil })
	}

	return taskgraph.MakeTask1(taskgraph.WhenAll(blockTasks), func(stored []StoredBlock) []StoredBlock {
		return stored
	})
}

// anonymizeBlock builds the per-chunk task: construct the original
// block and two randomizers, XOR them together, then store all three.
// The store call is a separate continuation so a slow backend never
// blocks the worker that ran the XOR.
func anonymizeBlock(ctx context.Context, store BlockStore, chunk []byte) *taskgraph.Task[StoredBlock] {
	original := taskgraph.MakeTask0(func() *blocks.Block {
		block, err := blocks.NewBlock(append([]byte(nil), chunk...))
		if err != nil {
			panic(fmt.Errorf("taskdemo: build block: %w", err))
		}
		return block
	})
	rand1 := taskgraph.MakeTask0(func() *blocks.Block {
		return mustRandomBlock(len(chunk))
	})
	rand2 := taskgraph.MakeTask0(func() *blocks.Block {
		return mustRandomBlock(len(chunk))
	})

	anonymized := taskgraph.MakeTask3(original, rand1, rand2,
		func(orig, r1, r2 *blocks.Block) anonymizedTriple {
			result, err := orig.XOR(r1, r2)
			if err != nil {
				panic(fmt.Errorf("taskdemo: xor: %w", err))
			}
			return anonymizedTriple{result: result, r1: r1, r2: r2}
		})

	return taskgraph.MakeFlatTask1(anonymized, func(triple anonymizedTriple) *taskgraph.Task[StoredBlock] {
		return storeTriple(ctx, store, triple)
	})
}

type anonymizedTriple struct {
	result, r1, r2 *blocks.Block
}

// storeTriple puts all three blocks and returns their addresses. This is
// its own task (rather than inline in anonymizeBlock's body) so the
// continuation-transfer path is exercised: callers of anonymizeBlock
// hold a *Task[StoredBlock] whose body already returned, transparently
// waiting on this inner task instead.
func storeTriple(ctx context.Context, store BlockStore, triple anonymizedTriple) *taskgraph.Task[StoredBlock] {
	return taskgraph.MakeTask0(func() StoredBlock {
		log := logging.GetGlobalLogger().WithComponent("taskdemo")

		addr, err := store.Put(ctx, triple.result)
		if err != nil {
			panic(fmt.Errorf("taskdemo: store anonymized block: %w", err))
		}
		r1ID, err := store.Put(ctx, triple.r1)
		if err != nil {
			panic(fmt.Errorf("taskdemo: store randomizer1: %w", err))
		}
		r2ID, err := store.Put(ctx, triple.r2)
		if err != nil {
			panic(fmt.Errorf("taskdemo: store randomizer2: %w", err))
		}

		log.Debugf("stored anonymized block %s (randomizers %s, %s)", addr, r1ID, r2ID)
		return StoredBlock{Address: addr, Randomizer1ID: r1ID, Randomizer2ID: r2ID}
	})
}

func mustRandomBlock(size int) *blocks.Block {
	block, err := blocks.NewRandomBlock(size)
	if err != nil {
		panic(fmt.Errorf("taskdemo: generate randomizer: %w", err))
	}
	return block
}

// RecoverFile retrieves every stored triple and reconstructs the
// original bytes by XORing each anonymized block back against its own
// randomizer pair, fanned in with WhenAll in the same order they were
// produced.
func RecoverFile(ctx context.Context, store BlockStore, stored []StoredBlock) *taskgraph.Task[[]byte] {
	var recoverTasks []*taskgraph.Task[[]byte]
	for _, sb := range stored {
		sb := sb
		recoverTasks = append(recoverTasks, recoverBlock(ctx, store, sb))
	}

	if len(recoverTasks) == 0 {
		return taskgraph.MakeTask0(func() []byte { return nil })
	}

	return taskgraph.MakeTask1(taskgraph.WhenAll(recoverTasks), func(chunks [][]byte) []byte {
		var out []byte
		for _, c := range chunks {
			out = append(out, c...)
		}
		return out
	})
}

func recoverBlock(ctx context.Context, store BlockStore, sb StoredBlock) *taskgraph.Task[[]byte] {
	return taskgraph.MakeTask0(func() []byte {
		anonymized, err := store.Get(ctx, sb.Address)
		if err != nil {
			panic(fmt.Errorf("taskdemo: fetch anonymized block: %w", err))
		}
		r1, err := store.Get(ctx, sb.Randomizer1ID)
		if err != nil {
			panic(fmt.Errorf("taskdemo: fetch randomizer1: %w", err))
		}
		r2, err := store.Get(ctx, sb.Randomizer2ID)
		if err != nil {
			panic(fmt.Errorf("taskdemo: fetch randomizer2: %w", err))
		}

		original, err := anonymized.XOR(r1, r2)
		if err != nil {
			panic(fmt.Errorf("taskdemo: de-anonymize: %w", err))
		}
		return original.Data
	})
}
