package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
)

type countingEvaluator struct {
	mu   sync.Mutex
	jobs []models.EvaluationJob
	done chan struct{}
}

func (e *countingEvaluator) Evaluate(ctx context.Context, job models.EvaluationJob) (string, error) {
	e.mu.Lock()
	e.jobs = append(e.jobs, job)
	e.mu.Unlock()
	e.done <- struct{}{}
	return "{}", nil
}

func TestWorkerDispatchesEachJobOnce(t *testing.T) {
	evaluator := &countingEvaluator{done: make(chan struct{}, 10)}
	w := NewWorker(evaluator, 2, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	w.Enqueue(models.EvaluationJob{Email: "a@x.com"})
	w.Enqueue(models.EvaluationJob{Email: "b@x.com"})

	for i := 0; i < 2; i++ {
		select {
		case <-evaluator.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d", i+1)
		}
	}

	evaluator.mu.Lock()
	defer evaluator.mu.Unlock()
	if len(evaluator.jobs) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(evaluator.jobs))
	}
	seen := map[string]int{}
	for _, job := range evaluator.jobs {
		seen[job.Email]++
	}
	if seen["a@x.com"] != 1 || seen["b@x.com"] != 1 {
		t.Fatalf("expected each job exactly once, got %v", seen)
	}
}
