package entity

// Snapshot is a checked out upstream tree the collector reads from.
type Snapshot struct {
	Dir      string // Checkout directory
	Root     string // Source root inside Dir
	Revision string
}
