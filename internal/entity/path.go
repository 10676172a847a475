package entity

// Root is one of the two directory trees the classifier scans.
type Root int

const (
	RootPrimary Root = iota
	RootThirdParty
)

func (r Root) String() string {
	return [...]string{"primary", "third_party"}[r]
}

type Category int

const (
	CategoryOther Category = iota
	CategorySource
	CategoryHeader
)

func (c Category) String() string {
	return [...]string{"other", "source", "header"}[c]
}

// DiscoveredPath is a file found under a scanned root.
type DiscoveredPath struct {
	Path string // Relative to the destination root, forward slashes (e.g. "libmv/base/vector.h")
	Root Root
}

// ManifestEntry is one line of the manifest: a relative path to vendor.
type ManifestEntry string

// CopiedFile is reported by the collector for every manifest entry.
type CopiedFile struct {
	Path   string
	Size   int64
	SHA256 string
}
