package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestGatherPreservesInputOrder(t *testing.T) {
	t.Parallel()
	tasks := make([]Task, 10)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (string, error) {
			// Later tasks finish first; output order must not care.
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return fmt.Sprintf("task-%d", i), nil
		}
	}

	outcomes := Gather(context.Background(), time.Second, tasks)
	if len(outcomes) != len(tasks) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(tasks))
	}
	for i, out := range outcomes {
		if out.Err != nil {
			t.Fatalf("task %d: unexpected error %v", i, out.Err)
		}
		if want := fmt.Sprintf("task-%d", i); out.Value != want {
			t.Fatalf("outcome %d got %q, want %q", i, out.Value, want)
		}
	}
}

func TestGatherFailuresAreIsolated(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	tasks := []Task{
		func(ctx context.Context) (string, error) { return "ok-0", nil },
		func(ctx context.Context) (string, error) { return "", boom },
		func(ctx context.Context) (string, error) { return "ok-2", nil },
	}

	outcomes := Gather(context.Background(), time.Second, tasks)
	if outcomes[0].Err != nil || outcomes[0].Value != "ok-0" {
		t.Fatalf("outcome 0 affected by sibling failure: %+v", outcomes[0])
	}
	if !errors.Is(outcomes[1].Err, boom) {
		t.Fatalf("outcome 1 error got %v, want %v", outcomes[1].Err, boom)
	}
	if outcomes[2].Err != nil || outcomes[2].Value != "ok-2" {
		t.Fatalf("outcome 2 affected by sibling failure: %+v", outcomes[2])
	}
}

func TestGatherAppliesPerTaskTimeout(t *testing.T) {
	t.Parallel()
	tasks := []Task{
		func(ctx context.Context) (string, error) { return "fast", nil },
		func(ctx context.Context) (string, error) {
			select {
			case <-time.After(5 * time.Second):
				return "slow", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}

	start := time.Now()
	outcomes := Gather(context.Background(), 50*time.Millisecond, tasks)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("gather took %v, timeout did not apply", elapsed)
	}
	if outcomes[0].Err != nil {
		t.Fatalf("fast task should succeed: %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, context.DeadlineExceeded) {
		t.Fatalf("slow task error got %v, want deadline exceeded", outcomes[1].Err)
	}
}

func TestGatherEmptyTaskList(t *testing.T) {
	t.Parallel()
	outcomes := Gather(context.Background(), time.Second, nil)
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(outcomes))
	}
}
