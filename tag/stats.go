package tag

// Stats represents high-level statistics of one clustering run.
type Stats struct {
	// Reads is the total number of input reads consumed.
	Reads int
	// Uniques is the number of distinct primary sequences aggregated,
	// including rejected ones.
	Uniques int
	// LowQualityUniques is the number of uniques discarded for having too few
	// high-quality positions.
	LowQualityUniques int
	// Clusters is the number of clusters closed.
	Clusters int
	// AmbiguousUniques is the number of uniques compatible with more than one
	// candidate allele, excluded from all allele tallies.
	AmbiguousUniques int
	// ThinAlleles is the number of alleles discarded for read support below
	// ReadThreshold.
	ThinAlleles int
	// UnconfirmedAlleles is the number of alleles discarded because no mate
	// group survived fragment deduplication.
	UnconfirmedAlleles int
	// Tags is the number of tags emitted.
	Tags int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Reads += o.Reads
	s.Uniques += o.Uniques
	s.LowQualityUniques += o.LowQualityUniques
	s.Clusters += o.Clusters
	s.AmbiguousUniques += o.AmbiguousUniques
	s.ThinAlleles += o.ThinAlleles
	s.UnconfirmedAlleles += o.UnconfirmedAlleles
	s.Tags += o.Tags
	return s
}
