package tag

import "math"

// Cluster is an ordered collection of Uniques believed to originate from one
// genomic locus.
type Cluster struct {
	// Members holds the uniques in arrival order.
	Members []*Unique
	// Canonical is the member with the highest Count seen so far. Ties are
	// broken toward the lexicographically smaller sequence.
	Canonical *Unique
}

// Builder groups accepted Uniques into Clusters by quality-weighted distance
// to the running canonical representative. It is a two-state streaming
// machine: empty, or holding one open cluster. At most one cluster's uniques
// are buffered at a time.
type Builder struct {
	readLen int
	opts    Opts
	open    *Cluster
}

// NewBuilder returns a Builder for reads of the given length.
func NewBuilder(readLen int, opts Opts) *Builder {
	return &Builder{readLen: readLen, opts: opts}
}

// Add feeds the next unique to the builder. If u is within ClusterDistance
// of the open cluster's canonical it joins that cluster and Add returns nil;
// otherwise the open cluster is closed and returned, and a new cluster is
// opened around u.
func (b *Builder) Add(u *Unique) *Cluster {
	if b.open == nil {
		b.open = &Cluster{Members: []*Unique{u}, Canonical: u}
		return nil
	}
	if distance(b.open.Canonical, u, b.readLen) <= float64(b.opts.ClusterDistance) {
		b.open.Members = append(b.open.Members, u)
		c := b.open.Canonical
		if u.Count > c.Count || (u.Count == c.Count && u.Seq < c.Seq) {
			b.open.Canonical = u
		}
		return nil
	}
	closed := b.open
	b.open = &Cluster{Members: []*Unique{u}, Canonical: u}
	return closed
}

// Flush closes and returns the open cluster, or nil if the builder is empty.
func (b *Builder) Flush() *Cluster {
	closed := b.open
	b.open = nil
	return closed
}

// distance is the quality-weighted distance between two uniques. Per
// position, the product of the two call confidences is the weight of the
// comparison; positions with a positive weight count as confident
// comparisons, and disagreeing bases accumulate their weight into a mismatch
// sum. The sum, rounded half away from zero, is rescaled from a fraction
// over confident positions back to a read-length-scaled count so that it is
// directly comparable against the integer ClusterDistance threshold. If no
// position can be compared confidently the distance is maximal.
func distance(a, b *Unique, readLen int) float64 {
	n := readLen
	if len(a.Seq) < n {
		n = len(a.Seq)
	}
	if len(b.Seq) < n {
		n = len(b.Seq)
	}
	var (
		sum       float64
		confident int
	)
	for i := 0; i < n; i++ {
		p := a.Probs[i] * b.Probs[i]
		if p <= 0 {
			continue
		}
		confident++
		if a.Seq[i] != b.Seq[i] {
			sum += p
		}
	}
	if confident == 0 {
		return float64(readLen)
	}
	return math.Round(sum) / float64(confident) * float64(readLen)
}
