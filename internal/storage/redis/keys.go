package redis

import "fmt"

// Key prefix for all relay data
const keyPrefix = "locamoo"

// playerKey returns the Redis key for a player profile
func playerKey(username string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, username)
}

// hiddenWordsKey returns the Redis key for the hidden-word hash
// (field = word, value = JSON metadata)
func hiddenWordsKey() string {
	return fmt.Sprintf("%s:hidden_words", keyPrefix)
}

// globalChatKey returns the Redis key for the global chat sorted set
// (member = JSON message, score = unix-milli timestamp)
func globalChatKey() string {
	return fmt.Sprintf("%s:global_chat", keyPrefix)
}
