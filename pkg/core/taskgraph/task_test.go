package taskgraph

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gotaskgraph/taskgraph/pkg/infrastructure/workers"
)

func TestMain(m *testing.M) {
	workers.Init(workers.Config{})
	code := m.Run()
	workers.Shutdown()
	os.Exit(code)
}

// S1 — simple binary op.
func TestSimpleBinaryOp(t *testing.T) {
	a := MakeTask0(func() int { return 10 })
	b := MakeTask0(func() int { return 10 })
	s := MakeTask2(a, b, func(x, y int) int { return x + y })

	if got := s.Result(); got != 20 {
		t.Fatalf("s.Result() = %d, want 20", got)
	}
}

// S2 — fan-in sum of squares.
func TestFanInSumOfSquares(t *testing.T) {
	tasks := make([]*Task[int], 5)
	for i := 0; i < 5; i++ {
		i := i
		tasks[i] = MakeTask0(func() int { return i * i })
	}
	root := MakeTask1(WhenAll(tasks), func(values []int) int {
		sum := 0
		for _, v := range values {
			sum += v
		}
		return sum
	})

	if got := root.Result(); got != 30 {
		t.Fatalf("root.Result() = %d, want 30", got)
	}
}

// S3 — dynamic expansion: a task builds new tasks from values only known
// at runtime, and fans them in via a continuation transfer.
func TestDynamicExpansion(t *testing.T) {
	a := MakeTask0(func() int { return 0 })
	b := MakeTask0(func() int { return 5 })

	middle := MakeFlatTask2(a, b, func(lo, hi int) *Task[[]int] {
		var subtasks []*Task[int]
		for i := lo; i < hi; i++ {
			i := i
			subtasks = append(subtasks, MakeTask0(func() int { return i * 2 }))
		}
		return WhenAll(subtasks)
	})

	sum := MakeTask1(middle, func(values []int) int {
		total := 0
		for _, v := range values {
			total += v
		}
		return total
	})

	if got := sum.Result(); got != 20 {
		t.Fatalf("sum.Result() = %d, want 20", got)
	}
}

// S4 — triple nesting exercises a chain of continuation transfers:
// task -> task -> task -> value.
func TestTripleNestingContinuationTransfer(t *testing.T) {
	chain := func(b int) *Task[int] {
		return MakeFlatTask0(func() *Task[int] {
			return MakeFlatTask0(func() *Task[int] {
				return MakeTask0(func() int { return b + 10 })
			})
		})
	}

	left := chain(1)
	right := chain(2)
	joined := MakeTask2(left, right, func(x, y int) int { return x + y })

	if got := joined.Result(); got != 23 {
		t.Fatalf("joined.Result() = %d, want 23", got)
	}
}

// S6 — idempotent, concurrency-safe result read.
func TestIdempotentResultRead(t *testing.T) {
	task := MakeTask0(func() int { return 42 })

	var wg sync.WaitGroup
	results := make([]int, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = task.Result()
		}()
	}
	wg.Wait()

	if results[0] != 42 || results[1] != 42 {
		t.Fatalf("concurrent Result() calls = %v, want [42 42]", results)
	}
	if task.Result() != 42 {
		t.Fatalf("subsequent Result() call diverged")
	}
}

// Invariant: body runs at most once, even under a wide WhenAll fan-in,
// and all M >> N independent tasks complete.
func TestBodyRunsAtMostOnceAndAllComplete(t *testing.T) {
	const n = 500
	var calls int64

	tasks := make([]*Task[int], n)
	for i := 0; i < n; i++ {
		i := i
		tasks[i] = MakeTask0(func() int {
			atomic.AddInt64(&calls, 1)
			return i
		})
	}

	sum := MakeTask1(WhenAll(tasks), func(values []int) int {
		total := 0
		for _, v := range values {
			total += v
		}
		return total
	})

	want := n * (n - 1) / 2
	if got := sum.Result(); got != want {
		t.Fatalf("sum.Result() = %d, want %d", got, want)
	}
	if atomic.LoadInt64(&calls) != n {
		t.Fatalf("body invocation count = %d, want %d", calls, n)
	}
}

// A panicking body is re-raised from Result(), rather than silently
// publishing a zero value, per the resolved Open Question in SPEC_FULL.md.
func TestBodyPanicPropagatesThroughResult(t *testing.T) {
	task := MakeTask0(func() int { panic("boom") })

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Result() to re-panic")
		}
		if r != "boom" {
			t.Fatalf("recovered %v, want boom", r)
		}
	}()
	task.Result()
}

// WhenAll of an empty slice is a structural precondition violation.
func TestWhenAllEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected WhenAll([]) to panic")
		}
	}()
	WhenAll([]*Task[int]{})
}

// Parallel quicksort (S5): a divide-and-conquer task tree with a
// sequential fallback below a threshold. After root.Result() returns,
// the slice is sorted. Each recursive step is a continuation transfer:
// the task returns the join of its two recursive sorts rather than
// blocking on them.
const quicksortThreshold = 64

func parallelSort(values []int) *Task[[]int] {
	if len(values) <= quicksortThreshold {
		return MakeTask0(func() []int {
			out := append([]int(nil), values...)
			sort.Ints(out)
			return out
		})
	}

	pivot := values[len(values)/2]
	var less, equal, greater []int
	for _, v := range values {
		switch {
		case v < pivot:
			less = append(less, v)
		case v > pivot:
			greater = append(greater, v)
		default:
			equal = append(equal, v)
		}
	}

	leftSorted := parallelSort(less)
	rightSorted := parallelSort(greater)

	return MakeFlatTask2(leftSorted, rightSorted, func(l, r []int) *Task[[]int] {
		return MakeTask0(func() []int {
			out := make([]int, 0, len(l)+len(equal)+len(r))
			out = append(out, l...)
			out = append(out, equal...)
			out = append(out, r...)
			return out
		})
	})
}

func TestParallelQuicksort(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := make([]int, 10000)
	for i := range values {
		values[i] = rng.Intn(1_000_000)
	}

	root := parallelSort(values)
	got := root.Result()

	if len(got) != len(values) {
		t.Fatalf("sorted length = %d, want %d", len(got), len(values))
	}
	if !sort.IntsAreSorted(got) {
		t.Fatal("result is not sorted")
	}

	want := append([]int(nil), values...)
	sort.Ints(want)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mismatch at index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

// A chain of transfers (outer -> middle -> inner) delivers every action
// attached anywhere along the chain exactly once, once the terminal
// holder fires, regardless of whether attach races the transfer.
func TestTransferChainDeliversToEveryAttachPoint(t *testing.T) {
	inner := MakeTask0(func() int {
		time.Sleep(time.Millisecond)
		return 7
	})
	middle := MakeFlatTask0(func() *Task[int] { return inner })
	outer := MakeFlatTask0(func() *Task[int] { return middle })

	var mu sync.Mutex
	var order []string
	done := make(chan struct{}, 3)
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			done <- struct{}{}
		}
	}

	outer.onScheduled(record("outer"))
	middle.onScheduled(record("middle"))
	inner.onScheduled(record("inner"))

	<-done
	<-done
	<-done

	if len(order) != 3 {
		t.Fatalf("expected 3 recorded actions, got %d: %v", len(order), order)
	}
	if outer.Result() != 7 || middle.Result() != 7 || inner.Result() != 7 {
		t.Fatal("all three handles in the transfer chain must resolve to the same value")
	}
}

func ExampleMakeTask2() {
	a := MakeTask0(func() int { return 3 })
	b := MakeTask0(func() int { return 4 })
	sum := MakeTask2(a, b, func(x, y int) int { return x + y })
	fmt.Println(sum.Result())
	// Output: 7
}
