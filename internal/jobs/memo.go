// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// stepTTL bounds how long memoized step results live. Retries happen
// within minutes; a day leaves ample slack without growing the keyspace.
const stepTTL = 24 * time.Hour

// stepMemo is the memoization contract RunStep relies on. StepStore is
// the Valkey-backed production implementation.
type stepMemo interface {
	Get(ctx context.Context, jobID, step string) ([]byte, bool, error)
	Set(ctx context.Context, jobID, step string, data []byte) error
}

// StepStore persists completed step results in Valkey so a retried job
// run returns memoized results instead of re-executing side effects.
type StepStore struct {
	client *redis.Client
}

// NewStepStore creates a StepStore over the given Valkey client.
func NewStepStore(client *redis.Client) *StepStore {
	return &StepStore{client: client}
}

func stepKey(jobID, step string) string {
	return fmt.Sprintf("job:%s:step:%s", jobID, step)
}

// Get returns the memoized result for a step, with found=false when the
// step has not completed before.
func (s *StepStore) Get(ctx context.Context, jobID, step string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, stepKey(jobID, step)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("step memo get: %w", err)
	}
	return data, true, nil
}

// Set records a step's result.
func (s *StepStore) Set(ctx context.Context, jobID, step string, data []byte) error {
	if err := s.client.Set(ctx, stepKey(jobID, step), data, stepTTL).Err(); err != nil {
		return fmt.Errorf("step memo set: %w", err)
	}
	return nil
}

// RunStep executes a named step at most once per job. A result memoized by
// a previous (possibly partially failed) run is returned without invoking
// fn again. Step errors and memoization-store errors both propagate, which
// fails the whole handler run and triggers the runner's retry.
func RunStep[T any](ctx context.Context, job *Job, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	data, found, err := job.memo.Get(ctx, job.ID, name)
	if err != nil {
		return result, err
	}
	if found {
		if err := json.Unmarshal(data, &result); err != nil {
			return result, fmt.Errorf("step %q memo decode: %w", name, err)
		}
		return result, nil
	}

	result, err = fn(ctx)
	if err != nil {
		return result, fmt.Errorf("step %q: %w", name, err)
	}

	data, err = json.Marshal(result)
	if err != nil {
		return result, fmt.Errorf("step %q memo encode: %w", name, err)
	}
	if err := job.memo.Set(ctx, job.ID, name, data); err != nil {
		return result, err
	}
	return result, nil
}
