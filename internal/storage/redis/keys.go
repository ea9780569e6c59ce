package redis

import (
	"fmt"

	"github.com/vzeefun/vzee/internal/model"
)

// Key prefix for all vzee data
const keyPrefix = "vzee"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// profileKey returns the Redis key for a Profile. Its existence is the
// username reservation itself.
func profileKey(username string) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, username)
}

// ownerIndexKey returns the Redis key for the owner -> username index
func ownerIndexKey(owner model.UserID) string {
	return fmt.Sprintf("%s:idx:owner:%s", keyPrefix, owner)
}

// clipKey returns the Redis key for a Clip
func clipKey(username, title string) string {
	return fmt.Sprintf("%s:clip:%s:%s", keyPrefix, username, title)
}

// clipsIndexKey returns the Redis key for the ZSET of a username's clip titles,
// scored by creation time
func clipsIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:clips:%s", keyPrefix, username)
}
