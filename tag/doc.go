/*Package tag implements the per-sample tag-clustering engine of the RAD
  marker discovery pipeline.

  The engine consumes a lexicographically pre-sorted stream of demultiplexed
  reads for one sample and produces error-corrected candidate marker
  sequences (tags), each annotated with a consensus quality string, the
  number of supporting reads, and the number of deduplicated paired-end
  fragments.

  Stages, in data-flow order:

    1) Aggregator merges consecutive identical-sequence reads into weighted
       Unique records, reducing the collected quality strings to per-position
       median scores and call-confidence probabilities. Uniques with too few
       confident positions are discarded without disturbing the stream.

    2) Builder groups uniques into clusters by quality-weighted distance to
       the cluster's canonical (heaviest) member. A unique out of range
       closes the open cluster and seeds the next one, so at most one
       cluster is buffered at a time.

    3) CallTags resolves each closed cluster into alleles: it computes a
       positional consensus quality matrix, partitions members through a
       pairwise compatibility relation (members compatible with more than
       one candidate allele are ambiguous and dropped), applies the read
       support filter, and collapses presumed PCR-duplicate mate sequences
       with a greedy distance scan.

    4) Writer serializes surviving tags, grouping them by cluster with blank
       separator lines.

  Process wires the stages together for one sample. Samples are fully
  independent; see cmd/rad-tags for the multi-sample worker pool.
*/
package tag
