package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "agentd"

// RedisStore is a Store backed by redis. Documents live in per-document
// JSON values with a per-namespace index set; similarity is scored client
// side, which keeps the backend dependency-free of search modules and is
// adequate for the corpus sizes the service targets.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds connection settings for a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore builds a RedisStore and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis store: ping %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client; used by tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func docKey(namespace, id string) string {
	return fmt.Sprintf("%s:doc:%s:%s", redisKeyPrefix, namespace, id)
}

func nsKey(namespace string) string {
	return fmt.Sprintf("%s:ns:%s", redisKeyPrefix, namespace)
}

// Add implements Store.
func (s *RedisStore) Add(ctx context.Context, docs []Document) error {
	pipe := s.client.TxPipeline()
	for _, doc := range docs {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("redis store: encode document %s: %w", doc.ID, err)
		}
		pipe.Set(ctx, docKey(doc.Namespace, doc.ID), payload, 0)
		pipe.SAdd(ctx, nsKey(doc.Namespace), doc.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store: add documents: %w", err)
	}
	return nil
}

// Search implements Store.
func (s *RedisStore) Search(ctx context.Context, namespace string, vector []float32, limit int) ([]Scored, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids, err := s.client.SMembers(ctx, nsKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list namespace %q: %w", namespace, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(namespace, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: fetch documents: %w", err)
	}

	scored := make([]Scored, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry without a document; skip
		}
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			continue
		}
		scored = append(scored, Scored{Document: doc, Score: CosineSimilarity(vector, doc.Vector)})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Document.ID < scored[j].Document.ID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Count implements Store.
func (s *RedisStore) Count(ctx context.Context, namespace string) (int, error) {
	n, err := s.client.SCard(ctx, nsKey(namespace)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis store: count namespace %q: %w", namespace, err)
	}
	return int(n), nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
