package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/config"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
)

const (
	TaskTypeNotificationRegenerate = "notification:regenerate"

	regenerateTimeout     = 30 * time.Second
	regenerateDedupWindow = 5 * time.Second
)

// RegenerateTask asks for a user's notification set to be recomputed
type RegenerateTask struct {
	UserID uint   `json:"user_id"`
	Reason string `json:"reason,omitempty"` // dispatch, sweep
}

// RegenerateProcessor handles one regeneration task.
type RegenerateProcessor func(context.Context, *RegenerateTask) error

// TaskQueue defines the interface for background notification work
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *RegenerateTask) error
	// IsAsync returns true if queue processes tasks out of process
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// NewTaskQueue picks the Redis-backed queue when Redis is enabled and
// reachable, otherwise the in-process queue.
func NewTaskQueue(cfg *config.RedisConfig) TaskQueue {
	if !cfg.Enabled {
		logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
		return NewSyncQueue()
	}
	queue, err := NewAsyncQueue(cfg)
	if err != nil {
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
		return NewSyncQueue()
	}
	logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Addr)
	return queue
}

func redisClientOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := redisClientOpt(cfg)
	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds a regeneration task to the async queue. Identical tasks within
// the dedup window collapse into one.
func (q *AsyncQueue) Enqueue(task *RegenerateTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeNotificationRegenerate, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Timeout(regenerateTimeout),
		asynq.Unique(regenerateDedupWindow),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Debugf("[AsyncQueue] Task enqueued: id=%s, queue=%s, user=%d", info.ID, info.Queue, task.UserID)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process goroutines (no Redis)
type SyncQueue struct {
	processor RegenerateProcessor
	wg        sync.WaitGroup
}

// NewSyncQueue creates a new in-process queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that handles tasks
func (q *SyncQueue) SetProcessor(processor RegenerateProcessor) {
	q.processor = processor
}

// Enqueue processes the task in a new goroutine so the caller never blocks
func (q *SyncQueue) Enqueue(task *RegenerateTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] No processor set, task will be dropped")
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), regenerateTimeout)
		defer cancel()
		if err := q.processor(ctx, task); err != nil {
			logger.Warnf("[SyncQueue] Task processing failed for user %d: %v", task.UserID, err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for in-flight tasks
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
