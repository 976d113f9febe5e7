package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// Worker wraps the Asynq server that drains the warmup queue. It has
// no HTTP-mounted health endpoint or cron scheduler: this module has
// no HTTP surface and nothing else to schedule.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// WorkerConfig collects the dependencies needed to run the warmup
// queue consumer.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Handler     *Handler
}

// NewWorker constructs a Worker bound to a single warmup Handler.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handler == nil {
		return nil, errors.New("jobs: NewWorker requires a Handler")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeWarmup, cfg.Handler.ProcessTask)
	return &Worker{server: srv, mux: mux}, nil
}

// Run processes warmup tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client enqueues warmup tasks onto the default queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client against redisOpts.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueWarmup submits a cache-warmup task for targets, scheduled to
// run after delay (zero runs it immediately).
func (c *Client) EnqueueWarmup(ctx context.Context, targets []WarmupTarget, delay time.Duration) (*asynq.TaskInfo, error) {
	task, err := NewWarmupTask(targets)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.Queue(QueueDefault)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	return c.client.EnqueueContext(ctx, task, opts...)
}

// Close releases the underlying Asynq client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
