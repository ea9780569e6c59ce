package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// claimScript reserves a username and indexes its owner in one step.
// KEYS[1] profile key, KEYS[2] owner index key; ARGV[1] profile JSON, ARGV[2] username.
// Returns 0 on success, 1 if the username exists, 2 if the owner already has one.
var claimScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 1
end
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 2
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
return 0
`)

// createClipScript stores a clip only while its username is reserved.
// KEYS[1] profile key, KEYS[2] clip key, KEYS[3] clip index key;
// ARGV[1] clip JSON, ARGV[2] creation score, ARGV[3] title.
// Returns 0 on success, 1 if the username is not reserved, 2 if the title exists.
var createClipScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 1
end
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 2
end
redis.call("SET", KEYS[2], ARGV[1])
redis.call("ZADD", KEYS[3], ARGV[2], ARGV[3])
return 0
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, emailIndexKey(user.Email), string(user.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var user model.User
	if err := s.getJSON(ctx, userKey(id), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

// Profile operations

func (s *Storage) ClaimUsername(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	keys := []string{profileKey(profile.Username), ownerIndexKey(profile.OwnerID)}
	result, err := claimScript.Run(ctx, s.client, keys, data, profile.Username).Int()
	if err != nil {
		return err
	}

	switch result {
	case 0:
		return nil
	case 1:
		return model.ErrUsernameTaken
	case 2:
		return model.ErrAlreadyHasUsername
	default:
		return fmt.Errorf("unexpected claim result %d", result)
	}
}

func (s *Storage) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.getJSON(ctx, profileKey(username), &profile, model.ErrProfileNotFound); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) GetProfileByOwner(ctx context.Context, owner model.UserID) (*model.Profile, error) {
	username, err := s.client.Get(ctx, ownerIndexKey(owner)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, username)
}

func (s *Storage) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	existing, err := s.GetProfile(ctx, profile.Username)
	if err != nil {
		return err
	}
	if existing.OwnerID != profile.OwnerID {
		return model.ErrNotOwner
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.client.SetXX(ctx, profileKey(profile.Username), data, redis.KeepTTL).Err()
}

func (s *Storage) RenameUsername(ctx context.Context, owner model.UserID, oldName, newName string, at time.Time) (*model.Profile, error) {
	var renamed model.Profile

	txf := func(tx *redis.Tx) error {
		var existing model.Profile
		if err := getJSON(ctx, tx, profileKey(oldName), &existing, model.ErrProfileNotFound); err != nil {
			return err
		}
		if existing.OwnerID != owner {
			return model.ErrNotOwner
		}

		n, err := tx.Exists(ctx, profileKey(newName)).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.ErrUsernameTaken
		}

		entries, err := tx.ZRangeWithScores(ctx, clipsIndexKey(oldName), 0, -1).Result()
		if err != nil {
			return err
		}

		moved := make(map[string][]byte, len(entries))
		for _, z := range entries {
			title, _ := z.Member.(string)
			var clip model.Clip
			if err := getJSON(ctx, tx, clipKey(oldName, title), &clip, model.ErrClipNotFound); err != nil {
				return err
			}
			clip.OwnerUsername = newName
			data, err := json.Marshal(&clip)
			if err != nil {
				return err
			}
			moved[title] = data
		}

		renamed = existing
		renamed.Username = newName
		renamed.UpdatedAt = at
		profileData, err := json.Marshal(&renamed)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, profileKey(newName), profileData, 0)
			pipe.Set(ctx, ownerIndexKey(owner), newName, 0)
			pipe.Del(ctx, profileKey(oldName))
			for _, z := range entries {
				title, _ := z.Member.(string)
				pipe.Set(ctx, clipKey(newName, title), moved[title], 0)
				pipe.Del(ctx, clipKey(oldName, title))
				pipe.ZAdd(ctx, clipsIndexKey(newName), redis.Z{Score: z.Score, Member: title})
			}
			pipe.Del(ctx, clipsIndexKey(oldName))
			return nil
		})
		return err
	}

	watched := []string{profileKey(oldName), profileKey(newName), clipsIndexKey(oldName)}
	for attempt := 0; attempt < s.cfg.RenameRetries; attempt++ {
		err := s.client.Watch(ctx, txf, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &renamed, nil
	}
	return nil, fmt.Errorf("rename %s: too much contention", oldName)
}

// Clip operations

func (s *Storage) CreateClip(ctx context.Context, clip *model.Clip) error {
	data, err := json.Marshal(clip)
	if err != nil {
		return err
	}

	keys := []string{
		profileKey(clip.OwnerUsername),
		clipKey(clip.OwnerUsername, clip.Title),
		clipsIndexKey(clip.OwnerUsername),
	}
	score := clip.CreatedAt.UnixMilli()
	result, err := createClipScript.Run(ctx, s.client, keys, data, score, clip.Title).Int()
	if err != nil {
		return err
	}

	switch result {
	case 0:
		return nil
	case 1:
		return model.ErrProfileNotFound
	case 2:
		return model.ErrClipExists
	default:
		return fmt.Errorf("unexpected create clip result %d", result)
	}
}

func (s *Storage) GetClip(ctx context.Context, username, title string) (*model.Clip, error) {
	var clip model.Clip
	if err := s.getJSON(ctx, clipKey(username, title), &clip, model.ErrClipNotFound); err != nil {
		return nil, err
	}
	return &clip, nil
}

func (s *Storage) ListClips(ctx context.Context, username string) ([]*model.Clip, error) {
	titles, err := s.client.ZRevRange(ctx, clipsIndexKey(username), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return []*model.Clip{}, nil
	}

	keys := make([]string, len(titles))
	for i, title := range titles {
		keys[i] = clipKey(username, title)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	clips := make([]*model.Clip, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Index entry without a clip; skip it
			continue
		}
		var clip model.Clip
		if err := json.Unmarshal([]byte(str), &clip); err != nil {
			return nil, err
		}
		clips = append(clips, &clip)
	}
	model.SortClipsNewestFirst(clips)
	return clips, nil
}

func (s *Storage) DeleteClip(ctx context.Context, username, title string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, clipKey(username, title))
		pipe.ZRem(ctx, clipsIndexKey(username), title)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return model.ErrClipNotFound
	}
	return nil
}

// Helpers

func (s *Storage) getJSON(ctx context.Context, key string, dest any, notFound error) error {
	return getJSON(ctx, s.client, key, dest, notFound)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON(ctx context.Context, c getter, key string, dest any, notFound error) error {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
