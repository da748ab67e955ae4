package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
)

// Worker is the one-way dispatch channel between the upload workflow and the
// evaluator: Enqueue never blocks the caller on the evaluation itself.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(job models.EvaluationJob)
}

type worker struct {
	evaluator   EvaluatorService
	jobQueue    chan models.EvaluationJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	log         *zap.Logger
}

func NewWorker(evaluator EvaluatorService, concurrency int, log *zap.Logger) Worker {
	return &worker{
		evaluator:   evaluator,
		jobQueue:    make(chan models.EvaluationJob, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		log:         log,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
	w.log.Info("evaluation worker started", zap.Int("concurrency", w.concurrency))
}

// Stop implements Worker.
func (w *worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
	w.log.Info("evaluation worker stopped")
}

// Enqueue implements Worker.
func (w *worker) Enqueue(job models.EvaluationJob) {
	select {
	case w.jobQueue <- job:
		w.log.Info("evaluation job enqueued", zap.String("email", job.Email))
	case <-w.stopChan:
		w.log.Warn("worker stopped, dropping evaluation job", zap.String("email", job.Email))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case job := <-w.jobQueue:
			if _, err := w.evaluator.Evaluate(ctx, job); err != nil {
				w.log.Error("evaluation job failed",
					zap.Int("worker", workerID),
					zap.String("email", job.Email),
					zap.Error(err))
			} else {
				w.log.Info("evaluation job completed",
					zap.Int("worker", workerID),
					zap.String("email", job.Email))
			}
		}
	}
}
