package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	replayKeyPrefix = "idemp:borrow:"
	// a pending reservation expires on its own if the handler never finishes
	pendingTTL = 60 * time.Second
)

type replayState string

const (
	statePending replayState = "pending"
	stateDone    replayState = "done"
)

type replayRecord struct {
	State    replayState `json:"state"`
	BodyHash string      `json:"body_hash"`
	Status   int         `json:"status,omitempty"`
	Response []byte      `json:"response,omitempty"`
	SavedAt  time.Time   `json:"saved_at"`
}

// ReplayStore keeps one record per (method, path, actor, request id) in redis.
type ReplayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReplayStore(rdb *redis.Client, ttl time.Duration) *ReplayStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReplayStore{rdb: rdb, ttl: ttl}
}

func replayKey(method, path, actorID, requestID string) string {
	return replayKeyPrefix + strings.ToLower(method) + ":" + path + ":" + actorID + ":" + strings.ToLower(requestID)
}

func hashBody(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Reserve claims key. When the key is already taken it returns false and the stored record.
func (s *ReplayStore) Reserve(ctx context.Context, key, bodyHash string) (bool, replayRecord, error) {
	rec := replayRecord{State: statePending, BodyHash: bodyHash, SavedAt: time.Now().UTC()}
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, replayRecord{}, err
	}
	ok, err := s.rdb.SetNX(ctx, key, payload, pendingTTL).Result()
	if err != nil {
		return false, replayRecord{}, err
	}
	if ok {
		return true, rec, nil
	}

	cur, err := s.load(ctx, key)
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; report it as still running
		return false, replayRecord{State: statePending, BodyHash: bodyHash}, nil
	}
	return false, cur, err
}

// Complete stores the final response for replay.
func (s *ReplayStore) Complete(ctx context.Context, key, bodyHash string, status int, response []byte) error {
	payload, err := json.Marshal(replayRecord{
		State:    stateDone,
		BodyHash: bodyHash,
		Status:   status,
		Response: response,
		SavedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

// Release forgets key so the same request id can be retried.
func (s *ReplayStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *ReplayStore) load(ctx context.Context, key string) (replayRecord, error) {
	var rec replayRecord
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode replay record %s: %w", key, err)
	}
	return rec, nil
}
