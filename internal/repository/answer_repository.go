package repository

import (
	"context"
	"encoding/json"
	"errors"
	"growth_assessment/internal/model"
	"growth_assessment/internal/questionnaire"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// AnswerRepository keeps one Answer Store per user.
type AnswerRepository interface {
	Get(ctx context.Context, userID string) (map[string]model.Answer, error)
	Patch(ctx context.Context, userID, questionID string, p model.AnswerPatch) (model.Answer, error)
	Reset(ctx context.Context, userID string) error
}

// MemoryAnswerRepository holds answers in process memory.
type MemoryAnswerRepository struct {
	mu     sync.Mutex
	stores map[string]*questionnaire.AnswerStore
}

func NewMemoryAnswerRepository() *MemoryAnswerRepository {
	return &MemoryAnswerRepository{stores: make(map[string]*questionnaire.AnswerStore)}
}

func (r *MemoryAnswerRepository) store(userID string) *questionnaire.AnswerStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[userID]
	if !ok {
		s = questionnaire.NewAnswerStore()
		r.stores[userID] = s
	}
	return s
}

func (r *MemoryAnswerRepository) Get(ctx context.Context, userID string) (map[string]model.Answer, error) {
	return r.store(userID).Snapshot(), nil
}

func (r *MemoryAnswerRepository) Patch(ctx context.Context, userID, questionID string, p model.AnswerPatch) (model.Answer, error) {
	return r.store(userID).Patch(questionID, p), nil
}

func (r *MemoryAnswerRepository) Reset(ctx context.Context, userID string) error {
	// in place, so a Patch holding the store is not lost
	r.store(userID).Reset()
	return nil
}

// RedisAnswerRepository stores each user's answers in one hash, field per question.
type RedisAnswerRepository struct {
	Redis     *redis.Client
	KeyPrefix string
	TTL       time.Duration
}

func NewRedisAnswerRepository(rdb *redis.Client, keyPrefix string, ttl time.Duration) *RedisAnswerRepository {
	return &RedisAnswerRepository{Redis: rdb, KeyPrefix: keyPrefix, TTL: ttl}
}

func (r *RedisAnswerRepository) key(userID string) string {
	return r.KeyPrefix + userID
}

func (r *RedisAnswerRepository) Get(ctx context.Context, userID string) (map[string]model.Answer, error) {
	fields, err := r.Redis.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	return decodeAnswers(fields)
}

func decodeAnswers(fields map[string]string) (map[string]model.Answer, error) {
	out := make(map[string]model.Answer, len(fields))
	for id, raw := range fields {
		var a model.Answer
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, err
		}
		out[id] = a
	}
	return out, nil
}

const maxPatchRetries = 5

// Patch is a read-modify-write of one hash field under WATCH, so concurrent
// updates of the other field of the same answer are not lost.
func (r *RedisAnswerRepository) Patch(ctx context.Context, userID, questionID string, p model.AnswerPatch) (model.Answer, error) {
	key := r.key(userID)
	var result model.Answer

	txf := func(tx *redis.Tx) error {
		current := model.Answer{}
		raw, err := tx.HGet(ctx, key, questionID).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(raw), &current); err != nil {
				return err
			}
		}

		result = p.Apply(current)
		encoded, err := json.Marshal(result)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, questionID, encoded)
			if r.TTL > 0 {
				pipe.Expire(ctx, key, r.TTL)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxPatchRetries; i++ {
		err := r.Redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return model.Answer{}, redis.TxFailedErr
}

func (r *RedisAnswerRepository) Reset(ctx context.Context, userID string) error {
	return r.Redis.Del(ctx, r.key(userID)).Err()
}
