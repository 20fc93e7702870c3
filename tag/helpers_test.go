package tag

// testUnique builds a finalized single-end Unique with a uniform median
// score, as the Aggregator would produce from count identical reads.
func testUnique(seq string, count int, qual byte) *Unique {
	u := &Unique{Seq: seq, Count: count, Mates: map[string][]string{}}
	u.Quals = make([]byte, len(seq))
	u.Probs = make([]float64, len(seq))
	for i := range u.Quals {
		u.Quals[i] = qual
		u.Probs[i] = callProb(qual)
	}
	quals := make([]string, count)
	u.Mates[""] = quals
	return u
}
