// Package queue is a Redis-backed delayed job queue for background work
// such as recipe sharing and priority digests.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nadmax/planwise/internal/metrics"
)

const (
	jobsKey     = "planwise:jobs"
	scheduleKey = "planwise:job_queue"
)

var ErrJobNotFound = errors.New("job not found")

type Queue struct {
	client *redis.Client
}

func NewQueue(redisAddr string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Queue{client: client}, nil
}

// Enqueue stores the job and schedules it for job.RunAt.
func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	if err := q.schedule(ctx, job); err != nil {
		return err
	}

	metrics.RecordJobEnqueued(job.Type)
	return nil
}

// Retry reschedules a job after delay without counting it as a new enqueue.
func (q *Queue) Retry(ctx context.Context, job *Job, delay time.Duration) error {
	job.Status = StatusPending
	job.RunAt = time.Now().UTC().Add(delay)
	job.StartedAt = nil

	if err := q.schedule(ctx, job); err != nil {
		return err
	}

	metrics.RecordJobRetried(job.Type)
	return nil
}

func (q *Queue) schedule(ctx context.Context, job *Job) error {
	jobJSON, err := job.ToJSON()
	if err != nil {
		return err
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobsKey, job.ID, jobJSON)
		pipe.ZAdd(ctx, scheduleKey, redis.Z{
			Score:  float64(job.RunAt.UnixMilli()),
			Member: job.ID,
		})
		return nil
	})

	return err
}

// Dequeue claims the earliest job whose RunAt has passed. It returns nil
// when nothing is due.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	maxScore := strconv.FormatInt(time.Now().UnixMilli(), 10)

	for {
		ids, err := q.client.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   maxScore,
			Count: 1,
		}).Result()
		if err != nil || len(ids) == 0 {
			return nil, err
		}

		jobID := ids[0]
		removed, err := q.client.ZRem(ctx, scheduleKey, jobID).Result()
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			// another worker claimed it first
			continue
		}

		job, err := q.GetJob(ctx, jobID)
		if errors.Is(err, ErrJobNotFound) {
			continue
		}

		return job, err
	}
}

func (q *Queue) UpdateJob(ctx context.Context, job *Job) error {
	jobJSON, err := job.ToJSON()
	if err != nil {
		return err
	}
	return q.client.HSet(ctx, jobsKey, job.ID, jobJSON).Err()
}

func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	jobJSON, err := q.client.HGet(ctx, jobsKey, jobID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", jobID, ErrJobNotFound)
	}
	if err != nil {
		return nil, err
	}
	return JobFromJSON(jobJSON)
}

// Depth is the number of scheduled jobs, due or not.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, scheduleKey).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
