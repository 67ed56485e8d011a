package blob

import "context"

// CachedStore fronts a remote Store with a local one, matching the
// content-addressed cache policy: presence of a key locally is taken as
// authoritative and served without consulting the remote, and a local
// miss is fetched from remote and written through to the local copy
// before being returned. Integrity re-verification on a cache hit is
// deliberately not performed, since keys are themselves content hashes.
type CachedStore struct {
	Local  Store
	Remote Store
}

// NewCachedStore wraps local and remote into a single Store.
func NewCachedStore(local, remote Store) *CachedStore {
	return &CachedStore{Local: local, Remote: remote}
}

// Put writes to both the local cache and the remote store.
func (c *CachedStore) Put(ctx context.Context, key string, data []byte) error {
	if err := c.Remote.Put(ctx, key, data); err != nil {
		return err
	}
	return c.Local.Put(ctx, key, data)
}

// Get serves from the local cache when present; otherwise it fetches
// from remote and populates the local cache before returning.
func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if ok, err := c.Local.Head(ctx, key); err == nil && ok {
		return c.Local.Get(ctx, key)
	}

	data, err := c.Remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := c.Local.Put(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Head reports presence locally first, falling back to remote.
func (c *CachedStore) Head(ctx context.Context, key string) (bool, error) {
	if ok, err := c.Local.Head(ctx, key); err == nil && ok {
		return true, nil
	}
	return c.Remote.Head(ctx, key)
}
