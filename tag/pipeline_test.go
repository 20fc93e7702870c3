package tag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(t *testing.T, input string, opts Opts) (string, Stats) {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	stats, err := Process(strings.NewReader(input), w, opts)
	require.NoError(t, err)
	require.NoError(t, w.Err())
	return buf.String(), stats
}

func TestProcessEndToEnd(t *testing.T) {
	const (
		seq  = "TGCAGGCACCAATGATGGATTTCGCTTGCATTACGTTCGTGGCAAA"
		mate = "ATCAGGTGTCCGATACCCATATCACAGGCTCTTACTAGCTTGGGGTCGGAT"
	)
	qual := strings.Repeat("H", len(seq))
	mateQual := strings.Repeat("I", len(mate))
	// A sequencing-error copy of the mate, one substitution away, sorting
	// after the true fragment.
	mateErr := "C" + mate[1:]

	input := strings.Join([]string{
		seq + " " + qual + " " + mate + " " + mateQual,
		seq + " " + qual + " " + mate + " " + mateQual,
		seq + " " + qual + " " + mateErr + " " + mateQual,
	}, "\n") + "\n"

	out, stats := runPipeline(t, input, DefaultOpts)
	want := seq + " " + qual + " 3 1\n" +
		"\t" + mate + " 3\n" +
		"\n"
	assert.Equal(t, want, out)

	expect.EQ(t, stats.Reads, 3)
	expect.EQ(t, stats.Uniques, 1)
	expect.EQ(t, stats.Clusters, 1)
	expect.EQ(t, stats.Tags, 1)
}

func TestProcessClusterSeparation(t *testing.T) {
	input := "" +
		"AAAAAAAAAAAA HHHHHHHHHHHH\n" +
		"AAAAAAAAAAAA HHHHHHHHHHHH\n" +
		"AAAAAAAAAAAA HHHHHHHHHHHH\n" +
		"CCCCCCCCCCCC HHHHHHHHHHHH\n" +
		"CCCCCCCCCCCC HHHHHHHHHHHH\n"
	opts := Opts{ClusterDistance: 1, QualityThreshold: 20, ReadThreshold: 2}
	out, stats := runPipeline(t, input, opts)
	want := "AAAAAAAAAAAA HHHHHHHHHHHH 3 1\n\n" +
		"CCCCCCCCCCCC HHHHHHHHHHHH 2 1\n\n"
	assert.Equal(t, want, out)
	expect.EQ(t, stats.Clusters, 2)
	expect.EQ(t, stats.Tags, 2)
}

func TestProcessAlleleSeparation(t *testing.T) {
	// Both uniques land in one cluster (distance 1 <= 5) but confidently
	// disagree at the last position: two alleles, one cluster separator.
	input := "" +
		"AAAAAAAAAAAA HHHHHHHHHHHH\n" +
		"AAAAAAAAAAAA HHHHHHHHHHHH\n" +
		"AAAAAAAAAAAA HHHHHHHHHHHH\n" +
		"AAAAAAAAAAAT HHHHHHHHHHHH\n" +
		"AAAAAAAAAAAT HHHHHHHHHHHH\n"
	out, stats := runPipeline(t, input, Opts{ClusterDistance: 5, QualityThreshold: 20, ReadThreshold: 2})
	want := "AAAAAAAAAAAA HHHHHHHHHHHH 3 1\n" +
		"AAAAAAAAAAAT HHHHHHHHHHHH 2 1\n" +
		"\n"
	assert.Equal(t, want, out)
	expect.EQ(t, stats.Clusters, 1)
	expect.EQ(t, stats.Tags, 2)
}

func TestProcessEmptyInput(t *testing.T) {
	out, stats := runPipeline(t, "", DefaultOpts)
	expect.EQ(t, out, "")
	expect.EQ(t, stats.Reads, 0)
	expect.EQ(t, stats.Clusters, 0)
}

func TestProcessMalformedStream(t *testing.T) {
	// A malformed line mid-stream is an I/O-level failure, fatal to the
	// sample.
	input := "AAAAAAAAAAAA HHHHHHHHHHHH\nbogus\n"
	var buf bytes.Buffer
	_, err := Process(strings.NewReader(input), NewWriter(&buf), DefaultOpts)
	require.Error(t, err)
}

func TestProcessFirstReadMismatch(t *testing.T) {
	var buf bytes.Buffer
	_, err := Process(strings.NewReader("AAAA HHH\n"), NewWriter(&buf), DefaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first read")
}

func TestWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(&Tag{
		Seq:           "ACGT",
		Qual:          []byte("HHHH"),
		ReadCount:     5,
		FragmentCount: 2,
		Mates:         []MateCount{{"CCCC", 3}, {"GGGG", 2}},
	}))
	require.NoError(t, w.EndCluster())
	assert.Equal(t, "ACGT HHHH 5 2\n\tCCCC 3\n\tGGGG 2\n\n", buf.String())
}

func TestWriterSingleEndMateHidden(t *testing.T) {
	// The single-end pseudo-group counts as a fragment but prints no line.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(&Tag{
		Seq:           "ACGT",
		Qual:          []byte("HHHH"),
		ReadCount:     4,
		FragmentCount: 1,
		Mates:         []MateCount{{"", 4}},
	}))
	assert.Equal(t, "ACGT HHHH 4 1\n", buf.String())
}
