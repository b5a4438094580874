// Package taskgraph implements NoiseFS's dynamic task-graph scheduler: a
// small continuation-passing runtime for building a DAG of typed tasks at
// construction time or while the graph is already running, and letting a
// fixed worker pool (pkg/infrastructure/workers) drive it to completion.
//
// A task is built with MakeTask0..MakeTask3 from a body and its
// dependencies' handles. The task runs on a worker exactly once, after
// every dependency has published its result, and publishes its own result
// through a single-assignment cell that Result() blocks on.
//
// A task body may also return another task instead of a plain value — the
// MakeFlatTask0..MakeFlatTask3 family supports this "task of task" case by
// transferring the outer task's continuation holder into the inner task's,
// so that anything waiting on the outer task transparently ends up waiting
// on the inner one. This is what lets a task body grow the graph at
// runtime (e.g. partition a slice, then recurse) without ever blocking a
// worker on another task's Result().
//
// WhenAll fans a slice of same-typed tasks in, producing one task whose
// result is the ordered slice of their results.
//
// None of this package schedules anything itself; every constructor hands
// the finished node to workers.Instance().Schedule once its dependency count reaches
// zero, either immediately (no dependencies) or via a dependency's
// continuation holder firing.
package taskgraph
