package tag

// Tag is one error-corrected candidate marker sequence called from a cluster.
// It is an output-only record: built by the variant caller, handed to a
// TagSink, and not retained.
type Tag struct {
	// Seq is the allele sequence.
	Seq string
	// Qual is the per-position consensus quality, Phred+33 encoded, the same
	// length as Seq.
	Qual []byte
	// ReadCount is the number of reads supporting the allele.
	ReadCount int
	// FragmentCount is the number of distinct mate groups surviving fragment
	// deduplication, a proxy for independent template molecules.
	FragmentCount int
	// Mates lists the surviving mate sequences with their merged support
	// counts, ascending by sequence. Single-end data is represented by one
	// entry with an empty sequence.
	Mates []MateCount
}

// MateCount is a surviving mate sequence and its merged read support.
type MateCount struct {
	Seq   string
	Count int
}

// TagSink consumes tags grouped by cluster: the tags of one cluster are
// written in ascending sequence order, followed by one EndCluster call.
// EndCluster is called only for clusters that produced at least one tag.
type TagSink interface {
	Write(t *Tag) error
	EndCluster() error
}
