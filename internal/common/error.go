package common

import "fmt"

var (
	ErrNotAcknowledged      = fmt.Errorf("acknowledgment flag is required")
	ErrEmptyManifest        = fmt.Errorf("manifest has no entries")
	ErrInvalidManifestEntry = fmt.Errorf("invalid manifest entry")
	ErrManifestEntryMissing = fmt.Errorf("manifest entry not found in source root")
	ErrTemplateSlotMissing  = fmt.Errorf("template does not reference every generated list")
	ErrSourceRootNotFound   = fmt.Errorf("source root not found")
)
