// Package redis provides a Redis/Valkey implementation of the store interface
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AmanKajla032004/Aurora-sub000/internal/config"
	"github.com/AmanKajla032004/Aurora-sub000/internal/models"
	"github.com/AmanKajla032004/Aurora-sub000/internal/store"
	"github.com/redis/go-redis/v9"
)

// Store implements the store interface with Redis storage.
// Rooms are JSON strings, presence records live in a per-room hash keyed by
// member ID, and change notification rides on a per-room pub/sub channel.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// NewStore creates a new Redis store
func NewStore(cfg config.RedisConfig) (*Store, error) {
	var client *redis.Client

	// Use URI if provided, otherwise build connection from individual parameters
	if cfg.URI != "" {
		opt, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URI: %w", err)
		}

		if opt.DB == 0 {
			opt.DB = cfg.DB
		}
		if opt.Password == "" && cfg.Password != "" {
			opt.Password = cfg.Password
		}

		client = redis.NewClient(opt)
	} else {
		address := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

		client = redis.NewClient(&redis.Options{
			Addr:     address,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// roomKey returns the Redis key for a room
func (s *Store) roomKey(id string) string {
	return fmt.Sprintf("%srooms:%s", s.keyPrefix, id)
}

// presenceKey returns the Redis key for a room's presence hash
func (s *Store) presenceKey(roomID string) string {
	return fmt.Sprintf("%srooms:%s:presence", s.keyPrefix, roomID)
}

// changeChannel returns the pub/sub channel carrying a room's change signals
func (s *Store) changeChannel(roomID string) string {
	return fmt.Sprintf("%srooms:%s:changes", s.keyPrefix, roomID)
}

// publishChange signals watchers that a room's presence collection changed.
// Failures are logged only; watchers self-heal on the next change.
func (s *Store) publishChange(ctx context.Context, roomID string) {
	if err := s.client.Publish(ctx, s.changeChannel(roomID), "changed").Err(); err != nil {
		log.Printf("Error publishing change for room %s: %v", roomID, err)
	}
}

// SaveRoom saves a room to the store
func (s *Store) SaveRoom(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := s.client.Set(ctx, s.roomKey(room.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// GetRoom retrieves a room by ID
func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	data, err := s.client.Get(ctx, s.roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// ListRooms returns all rooms
func (s *Store) ListRooms(ctx context.Context) ([]*models.Room, error) {
	// Get all room keys; the pattern also matches presence hashes and the
	// MGET below yields nil for those, so they are skipped
	pattern := s.roomKey("*")
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	if len(keys) == 0 {
		return []*models.Room{}, nil
	}

	// Use MGET to retrieve all room data in a single roundtrip
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room data: %w", err)
	}

	rooms := make([]*models.Room, 0, len(values))

	for _, v := range values {
		if v == nil {
			continue
		}

		strData, ok := v.(string)
		if !ok {
			continue
		}

		var room models.Room
		if err := json.Unmarshal([]byte(strData), &room); err != nil {
			continue
		}

		rooms = append(rooms, &room)
	}

	return rooms, nil
}

// DeleteRoom removes a room and all its presence records
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	key := s.roomKey(id)

	// Check if the room exists
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	// Use a pipeline to delete both keys in one operation
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, s.presenceKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.publishChange(ctx, id)
	return nil
}

// SavePresence inserts or replaces the presence record for (room, member)
func (s *Store) SavePresence(ctx context.Context, presence *models.Presence) error {
	// Check if the room exists
	exists, err := s.client.Exists(ctx, s.roomKey(presence.RoomID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}

	if err := s.client.HSet(ctx, s.presenceKey(presence.RoomID), presence.MemberID, data).Err(); err != nil {
		return fmt.Errorf("failed to save presence: %w", err)
	}

	s.publishChange(ctx, presence.RoomID)
	return nil
}

// GetPresence retrieves the presence record for (room, member)
func (s *Store) GetPresence(ctx context.Context, roomID, memberID string) (*models.Presence, error) {
	data, err := s.client.HGet(ctx, s.presenceKey(roomID), memberID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var presence models.Presence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence: %w", err)
	}

	return &presence, nil
}

// ListPresence returns all presence records in a room
func (s *Store) ListPresence(ctx context.Context, roomID string) ([]*models.Presence, error) {
	// Check if the room exists
	exists, err := s.client.Exists(ctx, s.roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return nil, store.ErrNotFound
	}

	values, err := s.client.HGetAll(ctx, s.presenceKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}

	presences := make([]*models.Presence, 0, len(values))
	for _, v := range values {
		var presence models.Presence
		if err := json.Unmarshal([]byte(v), &presence); err != nil {
			continue
		}
		presences = append(presences, &presence)
	}

	return presences, nil
}

// CountPresence counts the presence records in a room
func (s *Store) CountPresence(ctx context.Context, roomID string) (int, error) {
	// Check if the room exists
	exists, err := s.client.Exists(ctx, s.roomKey(roomID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return 0, store.ErrNotFound
	}

	count, err := s.client.HLen(ctx, s.presenceKey(roomID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count presence: %w", err)
	}

	return int(count), nil
}

// DeletePresence removes the presence record for (room, member).
// Removing an absent record, or a record of a vanished room, is a no-op.
func (s *Store) DeletePresence(ctx context.Context, roomID, memberID string) error {
	removed, err := s.client.HDel(ctx, s.presenceKey(roomID), memberID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete presence: %w", err)
	}

	if removed > 0 {
		s.publishChange(ctx, roomID)
	}
	return nil
}

// WatchPresence subscribes to a room's change channel and delivers the full
// presence collection to fn on every change. The current membership is
// delivered once up front.
func (s *Store) WatchPresence(ctx context.Context, roomID string, fn store.PresenceSnapshot) (func(), error) {
	sub := s.client.Subscribe(ctx, s.changeChannel(roomID))

	// Force the subscription to be established before returning so no
	// change signal is missed between the initial snapshot and the loop
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to room changes: %w", err)
	}

	go func() {
		fn(s.currentSnapshot(ctx, roomID))

		for range sub.Channel() {
			fn(s.currentSnapshot(ctx, roomID))
		}
	}()

	cancel := func() {
		// Closing the subscription ends the delivery goroutine
		_ = sub.Close()
	}
	return cancel, nil
}

// currentSnapshot fetches a room's full membership, treating a vanished room
// as an empty membership
func (s *Store) currentSnapshot(ctx context.Context, roomID string) []*models.Presence {
	presences, err := s.ListPresence(ctx, roomID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Error building presence snapshot for room %s: %v", roomID, err)
		}
		return []*models.Presence{}
	}
	return presences
}
