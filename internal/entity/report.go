package entity

// Report summarizes one bundling run.
type Report struct {
	Revision       string // Empty when a local source root was used
	SourceRoot     string
	Output         string
	Copied         []CopiedFile
	Classification *Classification
}
