package scan

import (
	"context"
	"sync"
	"time"
)

// Task is one unit of scatter-gather work producing raw response text.
type Task func(ctx context.Context) (string, error)

// Outcome is the tagged terminal state of one Task: exactly one of Value or
// Err is meaningful.
type Outcome struct {
	Value string
	Err   error
}

// Gather runs all tasks concurrently, each under its own timeout, and returns
// their outcomes in input order. A failing or slow task never aborts the
// others; the call returns once every task has settled. Worst-case wall time
// is one timeout period, not len(tasks) of them.
func Gather(ctx context.Context, timeout time.Duration, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			value, err := task(taskCtx)
			outcomes[i] = Outcome{Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return outcomes
}
