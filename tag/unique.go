package tag

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/radtags/encoding/reads"
	"github.com/pkg/errors"
)

// Unique is the aggregation of all consecutive raw reads sharing one
// identical primary sequence. It is created by the Aggregator and owned by
// exactly one Cluster thereafter.
type Unique struct {
	// Seq is the primary sequence shared by all contributing reads.
	Seq string
	// Count is the number of contributing reads, >= 1.
	Count int
	// Quals[i] is the per-position median phred score over all contributing
	// reads, computed when the unique is finalized.
	Quals []byte
	// Probs[i] is the probability that the base call at position i is
	// correct, derived from Quals[i].
	Probs []float64
	// Mates maps each distinct mate sequence to the ordered mate quality
	// strings observed for it. Single-end reads are recorded under the empty
	// key.
	Mates map[string][]string
}

// finalize reduces the collected per-read quality strings to the per-position
// median score and derives the call-confidence vector. Quality strings
// shorter than the primary sequence contribute no score to the missing
// positions.
func (u *Unique) finalize(quals []string) {
	n := len(u.Seq)
	u.Quals = make([]byte, n)
	u.Probs = make([]float64, n)
	scores := make([]byte, 0, len(quals))
	for p := 0; p < n; p++ {
		scores = scores[:0]
		for _, q := range quals {
			if p < len(q) {
				scores = append(scores, phredScore(q[p]))
			}
		}
		if len(scores) == 0 {
			continue
		}
		m := medianScore(scores)
		u.Quals[p] = m
		u.Probs[p] = callProb(m)
	}
}

// highQualPositions returns the number of positions whose median score is
// positive.
func (u *Unique) highQualPositions() int {
	n := 0
	for _, q := range u.Quals {
		if q > 0 {
			n++
		}
	}
	return n
}

// Aggregator merges consecutive identical-sequence reads from a sorted read
// stream into weighted Unique records. The stream must be sorted in
// ascending byte order of the primary sequence; a violated precondition
// silently corrupts clustering and is not detected here.
//
// The Scan method advances to the next accepted Unique, transparently
// skipping uniques whose number of high-quality positions does not exceed
// 2*ClusterDistance. Memory use is bounded by the longest run of
// identical-sequence reads, not by the stream size.
type Aggregator struct {
	sc   *reads.Scanner
	opts Opts

	pending     reads.Read
	havePending bool
	started     bool
	readLen     int

	cur   *Unique
	stats *Stats
	err   error
}

// NewAggregator returns an Aggregator consuming sc. stats may be nil.
func NewAggregator(sc *reads.Scanner, opts Opts, stats *Stats) *Aggregator {
	if stats == nil {
		stats = &Stats{}
	}
	return &Aggregator{sc: sc, opts: opts, stats: stats}
}

// ReadLen returns the read length derived from the first read of the stream.
// It is valid after the first successful Scan.
func (a *Aggregator) ReadLen() int { return a.readLen }

// Scan advances to the next accepted Unique, returning false when the stream
// is exhausted or an error occurred. Use Err to distinguish the two.
func (a *Aggregator) Scan() bool {
	if a.err != nil {
		return false
	}
	for {
		u, ok := a.scanRun()
		if !ok {
			return false
		}
		a.stats.Uniques++
		if u.highQualPositions() > 2*a.opts.ClusterDistance {
			a.cur = u
			return true
		}
		// The run had too few confident positions to cluster against.
		// Discard it and retry with the read that ended the run as the next
		// seed.
		a.stats.LowQualityUniques++
	}
}

// scanRun accumulates one maximal run of identical-sequence reads into an
// unfinalized Unique and finalizes it. Returns false at stream end or error.
func (a *Aggregator) scanRun() (*Unique, bool) {
	seed, ok := a.nextRead()
	if !ok {
		return nil, false
	}
	if !a.started {
		if err := a.checkFirst(&seed); err != nil {
			a.err = err
			return nil, false
		}
		a.started = true
		a.readLen = len(seed.Seq)
	}
	u := &Unique{Seq: seed.Seq, Mates: map[string][]string{}}
	quals := make([]string, 0, 4)
	add := func(r *reads.Read) {
		u.Count++
		quals = append(quals, r.Qual)
		u.Mates[r.MateSeq] = append(u.Mates[r.MateSeq], r.MateQual)
	}
	add(&seed)
	for {
		r, ok := a.nextRead()
		if !ok {
			break
		}
		if r.Seq != u.Seq {
			a.pending = r
			a.havePending = true
			break
		}
		add(&r)
	}
	u.finalize(quals)
	return u, true
}

func (a *Aggregator) nextRead() (reads.Read, bool) {
	if a.havePending {
		a.havePending = false
		return a.pending, true
	}
	var r reads.Read
	if !a.sc.Scan(&r) {
		a.err = a.sc.Err()
		return reads.Read{}, false
	}
	a.stats.Reads++
	if a.stats.Reads%(1024*1024) == 0 {
		log.Printf("%dMi reads", a.stats.Reads/(1024*1024))
	}
	return r, true
}

// checkFirst validates the structure of the very first read of the stream.
// A malformed first read aborts the sample.
func (a *Aggregator) checkFirst(r *reads.Read) error {
	if len(r.Seq) == 0 {
		return errors.New("first read has an empty sequence")
	}
	if len(r.Seq) != len(r.Qual) {
		return errors.Errorf("first read: sequence length %d != quality length %d",
			len(r.Seq), len(r.Qual))
	}
	if r.Paired() && len(r.MateSeq) != len(r.MateQual) {
		return errors.Errorf("first read: mate sequence length %d != mate quality length %d",
			len(r.MateSeq), len(r.MateQual))
	}
	return nil
}

// Unique returns the unique read by the last successful Scan.
func (a *Aggregator) Unique() *Unique { return a.cur }

// Err returns the first error encountered, if any.
func (a *Aggregator) Err() error { return a.err }
