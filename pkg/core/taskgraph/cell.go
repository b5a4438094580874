package taskgraph

// resultCell is the single-assignment result slot backing a Task's
// result(). It is written exactly once, either with a value produced by
// the task's own body, or — in the continuation-transfer case — as an
// alias to the inner task whose result the outer task's result actually
// is. wait() chases the alias chain, so callers never observe an
// intermediate "task of task" value.
type resultCell[R any] struct {
	done  chan struct{}
	value R
	alias *Task[R]
	err   any // non-nil if the producing body panicked; re-raised by wait()
}

func newResultCell[R any]() *resultCell[R] {
	return &resultCell[R]{done: make(chan struct{})}
}

// publish records v as this cell's final value and unblocks every current
// and future waiter. Must be called at most once, and not after alias.
func (c *resultCell[R]) publish(v R) {
	c.value = v
	close(c.done)
}

// publishPanic records a recovered body panic so every waiter re-raises
// it, instead of silently observing a zero value.
func (c *resultCell[R]) publishPanic(recovered any) {
	c.err = recovered
	close(c.done)
}

// aliasTo makes this cell delegate to inner's cell. Must be called at most
// once, and not after publish.
func (c *resultCell[R]) aliasTo(inner *Task[R]) {
	c.alias = inner
	close(c.done)
}

// wait blocks until the cell has been published or aliased, then returns
// the final value, chasing alias chains as needed. Safe for any number of
// concurrent callers.
func (c *resultCell[R]) wait() R {
	<-c.done
	if c.err != nil {
		panic(c.err)
	}
	if c.alias != nil {
		return c.alias.Result()
	}
	return c.value
}
