package store

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"

	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/utils"
)

const (
	bridgeProfileKey = "bridge_profile:"
	userProfileKey   = "user_profile:"
	groupProfileKey  = "group_profile:"
	confCacheKey     = "conf_bridge:"
)

func CreateRDB() *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     utils.ConfigWithDefault("REDIS_ADDR", "localhost:6379"),
		Password: utils.Config("REDIS_PASSWORD"),
		DB:       0, // use default DB
	})
	return rdb
}

// RedisStore reads profile records stored as JSON values.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	value := RedisStore{rdb: rdb}
	return &value
}

func (s *RedisStore) get(ctx context.Context, prefix string, name string, out interface{}) error {
	val, err := s.rdb.Get(ctx, prefix+name).Result()
	if err == redis.Nil && name != DefaultProfile {
		val, err = s.rdb.Get(ctx, prefix+DefaultProfile).Result()
	}
	if err != nil {
		return eris.Wrap(err, "profile lookup failed for "+prefix+name)
	}
	return json.Unmarshal([]byte(val), out)
}

func (s *RedisStore) GetBridgeProfile(ctx context.Context, bridgeType string) (*types.BridgeProfile, error) {
	var profile types.BridgeProfile
	err := s.get(ctx, bridgeProfileKey, bridgeType, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *RedisStore) GetUserProfile(ctx context.Context, userType string) (*types.UserProfile, error) {
	var profile types.UserProfile
	err := s.get(ctx, userProfileKey, userType, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *RedisStore) GetGroupProfile(ctx context.Context, groupType string) (*types.GroupProfile, error) {
	var profile types.GroupProfile
	err := s.get(ctx, groupProfileKey, groupType, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ConfCache mirrors the live room set into Redis so other services can find
// the bridge backing a room.
type ConfCache struct {
	Id       string `json:"id"`
	BridgeId string `json:"bridgeId"`
}

func (s *RedisStore) CacheConference(ctx context.Context, room string, bridgeId string) error {
	params := ConfCache{
		Id:       room,
		BridgeId: bridgeId}
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, confCacheKey+room, body, 0).Err()
}

func (s *RedisStore) DropConference(ctx context.Context, room string) error {
	return s.rdb.Del(ctx, confCacheKey+room).Err()
}

func (s *RedisStore) GetCachedConference(ctx context.Context, room string) (*ConfCache, error) {
	val, err := s.rdb.Get(ctx, confCacheKey+room).Result()
	if err != nil {
		return nil, err
	}
	var data ConfCache
	err = json.Unmarshal([]byte(val), &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// SeedProfile writes a profile record, refusing to overwrite an existing one.
func (s *RedisStore) SeedProfile(ctx context.Context, kind string, name string, record interface{}) (bool, error) {
	var prefix string
	switch kind {
	case "bridge":
		prefix = bridgeProfileKey
	case "user":
		prefix = userProfileKey
	case "group":
		prefix = groupProfileKey
	default:
		return false, eris.New("unknown profile kind: " + kind)
	}
	body, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, prefix+name, body, 0).Result()
}
