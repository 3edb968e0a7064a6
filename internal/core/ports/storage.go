package ports

// Storage defines the lifecycle of the journal store.
type Storage interface {
	JournalRepository
	// Close closes the storage connection.
	Close() error
}
