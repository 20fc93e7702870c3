package tag

// Opts configures the per-sample clustering engine. The values are supplied
// by the caller (typically cmd/rad-tags flag parsing); the engine itself
// performs no option parsing.
type Opts struct {
	// ClusterDistance is the maximum quality-weighted distance between a
	// cluster's canonical unique and an incoming unique for the incoming
	// unique to join the cluster. A unique is accepted for clustering only if
	// it has more than 2*ClusterDistance high-quality positions.
	ClusterDistance int
	// QualityThreshold is the minimum per-position consensus quality for a
	// base call to count as confident during allele separation. Two uniques
	// are assigned to distinct alleles only where they disagree at a position
	// on which both calls are confident.
	QualityThreshold int
	// ReadThreshold is the minimum number of supporting reads for an allele
	// to be reported.
	ReadThreshold int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	ClusterDistance:  5,
	QualityThreshold: 20,
	ReadThreshold:    2,
}
