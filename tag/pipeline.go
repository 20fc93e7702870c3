package tag

import (
	"io"

	"github.com/grailbio/radtags/encoding/reads"
	"github.com/pkg/errors"
)

// Process runs the full clustering pipeline for one sample: it aggregates
// the sorted read stream into uniques, groups them into clusters, calls
// alleles per cluster, and writes the resulting tags to sink in cluster
// order. Execution is single-threaded and streaming; memory use is bounded
// by the local sequence diversity of the input, not its size.
//
// The input must be sorted ascending by primary sequence. Given the same
// input and options the output is fully deterministic.
func Process(in io.Reader, sink TagSink, opts Opts) (Stats, error) {
	var stats Stats
	agg := NewAggregator(reads.NewScanner(in), opts, &stats)
	var builder *Builder

	emit := func(c *Cluster) error {
		stats.Clusters++
		tags := CallTags(c, agg.ReadLen(), opts, &stats)
		for _, t := range tags {
			if err := sink.Write(t); err != nil {
				return errors.Wrap(err, "write tag")
			}
		}
		if len(tags) > 0 {
			if err := sink.EndCluster(); err != nil {
				return errors.Wrap(err, "write cluster separator")
			}
		}
		return nil
	}

	for agg.Scan() {
		if builder == nil {
			builder = NewBuilder(agg.ReadLen(), opts)
		}
		if closed := builder.Add(agg.Unique()); closed != nil {
			if err := emit(closed); err != nil {
				return stats, err
			}
		}
	}
	if err := agg.Err(); err != nil {
		return stats, errors.Wrap(err, "read stream")
	}
	if builder != nil {
		if closed := builder.Flush(); closed != nil {
			if err := emit(closed); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}
