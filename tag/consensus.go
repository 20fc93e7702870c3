package tag

import (
	"math"
	"sort"
)

// nBase is the size of the nucleotide alphabet plus the ambiguous call.
const nBase = 5

func baseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return 4 // N and anything else
	}
}

// CallTags resolves a closed cluster into distinct alleles and returns them
// as tags, ascending by sequence. The returned slice is empty when no allele
// survives the read-count and fragment-confirmation filters. stats may be
// nil.
func CallTags(c *Cluster, readLen int, opts Opts, stats *Stats) []*Tag {
	if stats == nil {
		stats = &Stats{}
	}
	members := make([]*Unique, len(c.Members))
	copy(members, c.Members)
	sort.Slice(members, func(i, j int) bool {
		if members[i].Count != members[j].Count {
			return members[i].Count > members[j].Count
		}
		return members[i].Seq < members[j].Seq
	})

	tagBases := consensusQuals(members, readLen)

	// Pairwise compatibility graph, mapping each member sequence to the
	// candidate allele sequences it is compatible with. A member compatible
	// with more than one candidate is ambiguous and contributes to no allele.
	compat := make(map[string][]string, len(members))
	for _, seed := range members {
		for _, m := range members {
			if compatible(seed, m, tagBases, opts.QualityThreshold) {
				compat[m.Seq] = append(compat[m.Seq], seed.Seq)
			}
		}
	}
	for _, m := range members {
		if len(compat[m.Seq]) > 1 {
			stats.AmbiguousUniques++
		}
	}

	seeds := make([]string, 0, len(members))
	for _, m := range members {
		seeds = append(seeds, m.Seq)
	}
	sort.Strings(seeds)

	var tags []*Tag
	for _, seedSeq := range seeds {
		al := newAllele(seedSeq)
		for _, m := range members {
			if cs := compat[m.Seq]; len(cs) == 1 && cs[0] == seedSeq {
				al.merge(m)
			}
		}
		if al.readCount == 0 {
			continue
		}
		if al.readCount < opts.ReadThreshold {
			stats.ThinAlleles++
			continue
		}
		mates := dedupFragments(al.mates, readLen)
		if len(mates) == 0 {
			stats.UnconfirmedAlleles++
			continue
		}
		tags = append(tags, al.tag(mates))
		stats.Tags++
	}
	return tags
}

// consensusQuals computes the positional consensus quality matrix of a
// cluster: tagBases[p][b] is the count-weighted mean phred score of base b at
// position p over the cluster's members, and zero when at most one member
// supports the call there (a single supporting unique is not enough to call
// a consensus quality, which suppresses singleton-driven high-confidence
// artifacts).
func consensusQuals(members []*Unique, readLen int) [][nBase]int {
	weighted := make([][nBase]int, readLen)
	support := make([][nBase]int, readLen)
	for _, u := range members {
		n := readLen
		if len(u.Seq) < n {
			n = len(u.Seq)
		}
		for p := 0; p < n; p++ {
			b := baseIndex(u.Seq[p])
			q := int(u.Quals[p])
			weighted[p][b] += u.Count * q
			if q > 0 {
				support[p][b] += u.Count
			}
		}
	}
	tagBases := make([][nBase]int, readLen)
	for p := range tagBases {
		for b := 0; b < nBase; b++ {
			if support[p][b] > 1 {
				tagBases[p][b] = weighted[p][b] / support[p][b]
			}
		}
	}
	return tagBases
}

// compatible reports whether two uniques can originate from the same allele:
// they are compatible unless they disagree at a position where both base
// calls have consensus quality at or above the threshold.
func compatible(a, b *Unique, tagBases [][nBase]int, qualityThreshold int) bool {
	n := len(tagBases)
	if len(a.Seq) < n {
		n = len(a.Seq)
	}
	if len(b.Seq) < n {
		n = len(b.Seq)
	}
	for p := 0; p < n; p++ {
		b1, b2 := a.Seq[p], b.Seq[p]
		if b1 == b2 {
			continue
		}
		if tagBases[p][baseIndex(b1)] >= qualityThreshold &&
			tagBases[p][baseIndex(b2)] >= qualityThreshold {
			return false
		}
	}
	return true
}

// allele accumulates the read, quality, and mate support of the members
// unambiguously assigned to one candidate allele.
type allele struct {
	seq       string
	readCount int
	// qualSum[p] is the sum of count-weighted median scores at position p.
	qualSum []int
	// mates maps mate sequence to the number of supporting reads.
	mates map[string]int
}

func newAllele(seq string) *allele {
	return &allele{seq: seq, qualSum: make([]int, len(seq)), mates: map[string]int{}}
}

func (a *allele) merge(u *Unique) {
	a.readCount += u.Count
	n := len(a.qualSum)
	if len(u.Seq) < n {
		n = len(u.Seq)
	}
	for p := 0; p < n; p++ {
		a.qualSum[p] += u.Count * int(u.Quals[p])
	}
	for mate, quals := range u.Mates {
		a.mates[mate] += len(quals)
	}
}

// tag builds the output record: the consensus quality is the read-count
// weighted mean of the merged median scores, rounded to the nearest phred
// character.
func (a *allele) tag(mates []MateCount) *Tag {
	qual := make([]byte, len(a.qualSum))
	for p, sum := range a.qualSum {
		qual[p] = phredChar(int(math.Round(float64(sum) / float64(a.readCount))))
	}
	return &Tag{
		Seq:           a.seq,
		Qual:          qual,
		ReadCount:     a.readCount,
		FragmentCount: len(mates),
		Mates:         mates,
	}
}
