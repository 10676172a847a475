package entity

// TestDescriptor describes one test executable of the generated descriptor.
type TestDescriptor struct {
	Name string // Identifier extracted from the file name, letters and underscores only
	Path string
}

// Classification is the ordered output of the tree classifier.
// Every list is sorted in descending collation order.
type Classification struct {
	Sources           []string
	Headers           []string
	ThirdPartySources []string
	ThirdPartyHeaders []string
	Tests             []TestDescriptor
}
