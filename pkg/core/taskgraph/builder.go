package taskgraph

// This file is the graph-building surface: the constructors used to wire
// task dependencies together.
//
// A C++ ancestor of this design carries dependency arity with variadic
// templates and detects the "task of task" return type at compile time
// via partial specialization. Go generics have no variadic type packs
// and no return-type-based overload resolution, so arity is carried by a
// small fixed family of generic constructors (arity 0..3, which covers
// every call shape exercised by this module and its tests) plus WhenAll
// for true N-ary fan-in, and flattening is carried by a parallel family
// of constructors whose body signature returns *Task[R] instead of R.

// MakeTask0 builds a task with no dependencies. It is submitted to the
// pool immediately.
func MakeTask0[R any](body func() R) *Task[R] {
	t := newTask[R](0)
	t.entry = func() {
		v := body()
		t.cell.publish(v)
		t.holder.fire()
	}
	t.submit()
	return t
}

// MakeTask1 builds a task depending on a single upstream task.
func MakeTask1[A, R any](dep *Task[A], body func(A) R) *Task[R] {
	t := newTask[R](1)
	t.entry = func() {
		v := body(dep.cell.wait())
		t.cell.publish(v)
		t.holder.fire()
	}
	attachDependency(dep, t)
	return t
}

// MakeTask2 builds a task depending on two upstream tasks.
func MakeTask2[A, B, R any](dep1 *Task[A], dep2 *Task[B], body func(A, B) R) *Task[R] {
	t := newTask[R](2)
	t.entry = func() {
		v := body(dep1.cell.wait(), dep2.cell.wait())
		t.cell.publish(v)
		t.holder.fire()
	}
	attachDependency(dep1, t)
	attachDependency(dep2, t)
	return t
}

// MakeTask3 builds a task depending on three upstream tasks.
func MakeTask3[A, B, C, R any](dep1 *Task[A], dep2 *Task[B], dep3 *Task[C], body func(A, B, C) R) *Task[R] {
	t := newTask[R](3)
	t.entry = func() {
		v := body(dep1.cell.wait(), dep2.cell.wait(), dep3.cell.wait())
		t.cell.publish(v)
		t.holder.fire()
	}
	attachDependency(dep1, t)
	attachDependency(dep2, t)
	attachDependency(dep3, t)
	return t
}

// MakeFlatTask0 builds a zero-dependency task whose body returns another
// task rather than a plain value. The outer task's continuation holder is
// transferred into the returned (inner) task's holder, so every
// successor registered on the outer task transparently ends up waiting on
// the inner one — the flattening rule applied to the dynamic-expansion
// case where even the first task in a chain is built from a constant.
func MakeFlatTask0[R any](body func() *Task[R]) *Task[R] {
	t := newTask[R](0)
	t.entry = func() {
		inner := body()
		t.cell.aliasTo(inner)
		t.holder.transfer(inner.holder)
	}
	t.submit()
	return t
}

// MakeFlatTask1 builds a single-dependency task whose body returns
// another task instead of a plain value. See MakeFlatTask0.
func MakeFlatTask1[A, R any](dep *Task[A], body func(A) *Task[R]) *Task[R] {
	t := newTask[R](1)
	t.entry = func() {
		inner := body(dep.cell.wait())
		t.cell.aliasTo(inner)
		t.holder.transfer(inner.holder)
	}
	attachDependency(dep, t)
	return t
}

// MakeFlatTask2 builds a two-dependency task whose body returns another
// task instead of a plain value. See MakeFlatTask0.
func MakeFlatTask2[A, B, R any](dep1 *Task[A], dep2 *Task[B], body func(A, B) *Task[R]) *Task[R] {
	t := newTask[R](2)
	t.entry = func() {
		inner := body(dep1.cell.wait(), dep2.cell.wait())
		t.cell.aliasTo(inner)
		t.holder.transfer(inner.holder)
	}
	attachDependency(dep1, t)
	attachDependency(dep2, t)
	return t
}

// MakeFlatTask3 builds a three-dependency task whose body returns another
// task instead of a plain value. See MakeFlatTask0.
func MakeFlatTask3[A, B, C, R any](dep1 *Task[A], dep2 *Task[B], dep3 *Task[C], body func(A, B, C) *Task[R]) *Task[R] {
	t := newTask[R](3)
	t.entry = func() {
		inner := body(dep1.cell.wait(), dep2.cell.wait(), dep3.cell.wait())
		t.cell.aliasTo(inner)
		t.holder.transfer(inner.holder)
	}
	attachDependency(dep1, t)
	attachDependency(dep2, t)
	attachDependency(dep3, t)
	return t
}

// WhenAll fans a non-empty slice of same-typed tasks in, returning a task
// whose result is the ordered slice of their results. Passing an empty
// slice is a structural precondition violation and panics rather than
// returning an already-completed empty task (see DESIGN.md).
func WhenAll[R any](deps []*Task[R]) *Task[[]R] {
	if len(deps) == 0 {
		panic("taskgraph: WhenAll requires a non-empty slice of tasks")
	}
	t := newTask[[]R](len(deps))
	t.entry = func() {
		results := make([]R, len(deps))
		for i, dep := range deps {
			results[i] = dep.cell.wait()
		}
		t.cell.publish(results)
		t.holder.fire()
	}
	for _, dep := range deps {
		attachDependency(dep, t)
	}
	return t
}
