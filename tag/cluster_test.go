package tag

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSymmetry(t *testing.T) {
	a := testUnique("ACGTACGTACGT", 3, 30)
	b := testUnique("ACGTTCGAACGT", 1, 25)
	// A couple of uncertain positions on one side.
	b.Quals[0] = 0
	b.Probs[0] = 0
	assert.Equal(t, distance(a, b, 12), distance(b, a, 12))
}

func TestDistanceSelf(t *testing.T) {
	a := testUnique("ACGTACGTACGT", 3, 30)
	b := testUnique("ACGTACGTACGT", 1, 12)
	expect.EQ(t, distance(a, a, 12), 0.0)
	// An identical copy is at distance zero even with different qualities.
	expect.EQ(t, distance(a, b, 12), 0.0)
}

func TestDistanceNoConfidentPositions(t *testing.T) {
	a := testUnique("ACGTACGTACGT", 1, 30)
	b := testUnique("ACGTACGTACGT", 1, 0)
	// Nothing can be compared reliably: distance is maximal.
	expect.EQ(t, distance(a, b, 12), 12.0)
}

func TestDistanceSingleMismatch(t *testing.T) {
	a := testUnique("AAAAAAAAAAAA", 2, 30)
	b := testUnique("AAAAAAAAAAAT", 1, 30)
	d := distance(a, b, 12)
	// One confident mismatch rounds to 1 and rescales to ~1 over 12
	// confident positions.
	assert.InDelta(t, 1.0, d, 1e-9)
}

func TestBuilderSplitsAtThreshold(t *testing.T) {
	// With ClusterDistance 0 any confidently-differing unique starts a new
	// cluster.
	b := NewBuilder(12, Opts{ClusterDistance: 0})
	u1 := testUnique("AAAAAAAAAAAA", 2, 30)
	u2 := testUnique("AAAAAAAAAAAT", 1, 30)
	require.Nil(t, b.Add(u1))
	closed := b.Add(u2)
	require.NotNil(t, closed)
	assert.Equal(t, []*Unique{u1}, closed.Members)
	assert.Equal(t, u1, closed.Canonical)
	closed = b.Flush()
	require.NotNil(t, closed)
	assert.Equal(t, []*Unique{u2}, closed.Members)
	assert.Nil(t, b.Flush())
}

func TestBuilderCanonical(t *testing.T) {
	b := NewBuilder(12, Opts{ClusterDistance: 5})
	u1 := testUnique("AAAAAAAAAAAC", 2, 30)
	u2 := testUnique("AAAAAAAAAAAG", 1, 30)
	u3 := testUnique("AAAAAAAAAAAT", 3, 30)
	require.Nil(t, b.Add(u1))
	require.Nil(t, b.Add(u2))
	// u2 is lighter: the canonical stays.
	assert.Equal(t, u1, b.open.Canonical)
	require.Nil(t, b.Add(u3))
	// u3 is heavier: greedy heaviest-representative update.
	assert.Equal(t, u3, b.open.Canonical)
	closed := b.Flush()
	require.NotNil(t, closed)
	assert.Equal(t, []*Unique{u1, u2, u3}, closed.Members)
}

func TestBuilderCanonicalTieBreak(t *testing.T) {
	b := NewBuilder(12, Opts{ClusterDistance: 5})
	u1 := testUnique("AAAAAAAAAAAC", 2, 30)
	u2 := testUnique("AAAAAAAAAAAA", 2, 30)
	u3 := testUnique("AAAAAAAAAAAG", 2, 30)
	require.Nil(t, b.Add(u1))
	// Equal counts: the lexicographically smaller sequence wins.
	require.Nil(t, b.Add(u2))
	assert.Equal(t, u2, b.open.Canonical)
	require.Nil(t, b.Add(u3))
	assert.Equal(t, u2, b.open.Canonical)
}
