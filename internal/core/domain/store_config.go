package domain

// StoreConfig holds the cache root location and permission policy.
type StoreConfig struct {
	// Root is the cache root directory.
	Root string
	// Shared widens permission bits so other users of the group can read and
	// write the same cache root.
	Shared bool
}
