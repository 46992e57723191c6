package savegame

import "context"

// KeyValueStore is the persistence gateway the game saves through. A missing
// key is not an error: Get reports found=false and MultiGet leaves it out of
// the result.
type KeyValueStore interface {
	// Get returns the value stored under key
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key succeeds
	Delete(ctx context.Context, key string) error

	// GetAllKeys lists every stored key
	GetAllKeys(ctx context.Context) ([]string, error)

	// MultiGet returns the stored values for keys, omitting missing ones
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)

	// MultiSet stores every entry in one batch
	MultiSet(ctx context.Context, entries map[string]string) error

	// MultiRemove deletes every key in one batch
	MultiRemove(ctx context.Context, keys []string) error
}
