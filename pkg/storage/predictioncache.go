package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/cardiorisk/pkg/cardio"
	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
)

// PredictionCache keeps recent assessments in Redis, keyed by model version
// and encoded feature row. Encoding is pure, so a hit is always valid for the
// same model.
type PredictionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPredictionCache(client *redis.Client, prefix string, ttl time.Duration) *PredictionCache {
	if prefix == "" {
		prefix = "prediction"
	}
	return &PredictionCache{client: client, prefix: prefix, ttl: ttl}
}

// CacheKey is deterministic for a (prefix, version, row) triple.
func CacheKey(prefix, version string, row cardio.FeatureRow) string {
	digest := xxhash.New()
	var buf [8]byte
	for _, v := range row {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		digest.Write(buf[:])
	}
	return fmt.Sprintf("%s:%s:%d:%016x", prefix, version, len(row), digest.Sum64())
}

func (c *PredictionCache) Get(ctx context.Context, version string, row cardio.FeatureRow) (cardio.Assessment, bool, error) {
	key := CacheKey(c.prefix, version, row)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cardio.Assessment{}, false, nil
	}
	if err != nil {
		return cardio.Assessment{}, false, err
	}

	var assessment cardio.Assessment
	if err := json.Unmarshal(data, &assessment); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		c.client.Del(ctx, key)
		return cardio.Assessment{}, false, nil
	}
	return assessment, true, nil
}

func (c *PredictionCache) Set(ctx context.Context, version string, row cardio.FeatureRow, assessment cardio.Assessment) error {
	data, err := json.Marshal(assessment)
	if err != nil {
		return err
	}
	key := CacheKey(c.prefix, version, row)
	logger.Log.WithFields(map[string]interface{}{
		"key":  key,
		"size": len(data),
	}).Debug("Caching prediction")
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
