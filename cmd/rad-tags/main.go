package main

/*
rad-tags clusters demultiplexed, pre-sorted RAD-seq reads into candidate
marker tags, one output file per sample.

Each input file holds the sorted read stream of one sample, one read per
line ("r1seq r1qual [r2seq r2qual]", Phred+33, sorted ascending by r1seq).
Samples are processed by an isolated worker pool: one sample's failure never
aborts its siblings.

Example:

   rad-tags -dir demux/ -out-dir tags/ -cluster-distance 5 -read-threshold 2
*/

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/radtags/tag"
	"github.com/klauspost/compress/gzip"
)

var (
	dir              = flag.String("dir", "", "Directory to scan (recursively) for sample read files; positional paths are used when empty")
	inSuffix         = flag.String("in-suffix", ".reads", "Sample input files end with this suffix; an additional .gz extension is honored")
	outSuffix        = flag.String("out-suffix", ".tags", "Per-sample output file suffix")
	outDir           = flag.String("out-dir", "", "Directory for output files; defaults to each input's directory")
	gzipOutput       = flag.Bool("gzip-output", false, "Compress output files with gzip")
	rioOutput        = flag.Bool("rio-output", false, "Also dump tags to a <sample><out-suffix>.rio recordio file for downstream assembly")
	statsPath        = flag.String("stats", "", "If set, write a per-sample statistics TSV to this path")
	parallelism      = flag.Int("parallelism", 0, "Maximum number of samples processed concurrently; 0 = runtime.NumCPU()")
	clusterDistance  = flag.Int("cluster-distance", tag.DefaultOpts.ClusterDistance, "Maximum quality-weighted distance for a unique to join a cluster")
	qualityThreshold = flag.Int("quality-threshold", tag.DefaultOpts.QualityThreshold, "Minimum consensus quality for a confident base call during allele separation")
	readThreshold    = flag.Int("read-threshold", tag.DefaultOpts.ReadThreshold, "Minimum read support for a reported allele")
)

func radTagsUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [samplefile...]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

// sample is one per-sample input file discovered for processing.
type sample struct {
	path string
	name string
	size int64
}

type sampleResult struct {
	stats tag.Stats
	err   error
}

func sampleName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, *inSuffix)
}

// outputPath derives the output file path for a sample: the input suffix is
// replaced by the output suffix, and the file is placed in -out-dir when
// set.
func outputPath(s sample) string {
	d := filepath.Dir(s.path)
	if *outDir != "" {
		d = *outDir
	}
	p := filepath.Join(d, s.name+*outSuffix)
	if *gzipOutput {
		p += ".gz"
	}
	return p
}

func discoverSamples(ctx context.Context) ([]sample, error) {
	var paths []string
	if *dir != "" {
		lister := file.List(ctx, *dir, true)
		for lister.Scan() {
			p := lister.Path()
			if strings.HasSuffix(p, *inSuffix) || strings.HasSuffix(p, *inSuffix+".gz") {
				paths = append(paths, p)
			}
		}
		if err := lister.Err(); err != nil {
			return nil, errors.E(err, "list "+*dir)
		}
	}
	paths = append(paths, flag.Args()...)
	samples := make([]sample, 0, len(paths))
	for _, p := range paths {
		info, err := file.Stat(ctx, p)
		if err != nil {
			return nil, errors.E(err, "stat "+p)
		}
		samples = append(samples, sample{path: p, name: sampleName(p), size: info.Size()})
	}
	return samples, nil
}

// processSample runs the clustering pipeline for one sample. On failure the
// partially written outputs are removed so they cannot be mistaken for
// complete results.
func processSample(ctx context.Context, s sample, opts tag.Opts) (stats tag.Stats, err error) {
	in, err := file.Open(ctx, s.path)
	if err != nil {
		return stats, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	uncompressed, isCompressed := compress.NewReaderPath(r, in.Name())
	if isCompressed {
		r = uncompressed
	}

	outPath := outputPath(s)
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return stats, err
	}
	w := out.Writer(ctx)
	var gz *gzip.Writer
	if fileio.DetermineType(outPath) == fileio.Gzip {
		gz = gzip.NewWriter(w)
		w = gz
	}
	buf := bufio.NewWriterSize(w, 1<<20)

	sink := tag.TagSink(tag.NewWriter(buf))
	var rio *tagRioWriter
	rioPath := ""
	if *rioOutput {
		rioPath = strings.TrimSuffix(outPath, ".gz") + ".rio"
		if rio, err = newTagRioWriter(ctx, rioPath, opts); err != nil {
			if isCompressed {
				_ = uncompressed.Close()
			}
			discardOutput(ctx, out, outPath)
			return stats, err
		}
		sink = teeSink{[]tag.TagSink{sink, rio}}
	}

	stats, perr := tag.Process(r, sink, opts)

	closer := errors.Once{}
	closer.Set(perr)
	if isCompressed {
		// Decompression corruption is reported at Close.
		closer.Set(uncompressed.Close())
	}
	closer.Set(buf.Flush())
	if gz != nil {
		closer.Set(gz.Close())
	}
	closer.Set(out.Close(ctx))
	if rio != nil {
		closer.Set(rio.Close(ctx))
	}
	if err := closer.Err(); err != nil {
		removeQuietly(ctx, outPath)
		if rioPath != "" {
			removeQuietly(ctx, rioPath)
		}
		return stats, err
	}
	log.Printf("%s: %+v", s.name, stats)
	return stats, nil
}

func discardOutput(ctx context.Context, out file.File, path string) {
	if err := out.Close(ctx); err != nil {
		log.Error.Printf("close %s: %v", path, err)
	}
	removeQuietly(ctx, path)
}

func removeQuietly(ctx context.Context, path string) {
	if err := file.Remove(ctx, path); err != nil {
		log.Error.Printf("remove %s: %v", path, err)
	}
}

func writeStatsTSV(ctx context.Context, path string, samples []sample, results []sampleResult) (err error) {
	dst, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	w := tsv.NewWriter(dst.Writer(ctx))
	for _, col := range []string{
		"sample", "reads", "uniques", "low_quality_uniques", "clusters",
		"ambiguous_uniques", "thin_alleles", "unconfirmed_alleles", "tags", "status",
	} {
		w.WriteString(col)
	}
	if err = w.EndLine(); err != nil {
		return err
	}
	for i, s := range samples {
		r := results[i]
		w.WriteString(s.name)
		for _, v := range []int{
			r.stats.Reads, r.stats.Uniques, r.stats.LowQualityUniques,
			r.stats.Clusters, r.stats.AmbiguousUniques, r.stats.ThinAlleles,
			r.stats.UnconfirmedAlleles, r.stats.Tags,
		} {
			w.WriteUint32(uint32(v))
		}
		status := "ok"
		if r.err != nil {
			status = "failed"
		}
		w.WriteString(status)
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

func main() {
	flag.Usage = radTagsUsage
	shutdown := grail.Init()
	defer shutdown()
	ctx := vcontext.Background()

	if *clusterDistance <= 0 {
		log.Fatalf("-cluster-distance must be a positive integer, got %d", *clusterDistance)
	}
	opts := tag.Opts{
		ClusterDistance:  *clusterDistance,
		QualityThreshold: *qualityThreshold,
		ReadThreshold:    *readThreshold,
	}

	samples, err := discoverSamples(ctx)
	if err != nil {
		log.Fatalf("discover samples: %v", err)
	}
	if len(samples) == 0 {
		log.Fatalf("no sample files found; pass file paths or -dir")
	}
	// Larger samples first, to balance pool completion times. This is a
	// scheduling heuristic only; outputs do not depend on it.
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].size != samples[j].size {
			return samples[i].size > samples[j].size
		}
		return samples[i].path < samples[j].path
	})

	p := *parallelism
	if p <= 0 {
		p = runtime.NumCPU()
	}
	log.Printf("Processing %d samples (%d workers)", len(samples), p)
	results := make([]sampleResult, len(samples))
	err = traverse.Limit(p).Each(len(samples), func(i int) error {
		stats, err := processSample(ctx, samples[i], opts)
		results[i] = sampleResult{stats: stats, err: err}
		if err != nil {
			// Record the failure; sibling samples keep running.
			log.Error.Printf("%s: %v", samples[i].path, err)
		}
		return nil
	})
	if err != nil {
		log.Panicf("worker pool: %v", err)
	}

	if *statsPath != "" {
		if err := writeStatsTSV(ctx, *statsPath, samples, results); err != nil {
			log.Fatalf("write stats %s: %v", *statsPath, err)
		}
	}

	total := tag.Stats{}
	nFailed := 0
	for _, r := range results {
		if r.err != nil {
			nFailed++
			continue
		}
		total = total.Merge(r.stats)
	}
	log.Printf("Stats: %+v", total)
	if nFailed > 0 {
		log.Fatalf("%d of %d samples failed", nFailed, len(samples))
	}
	log.Printf("All done")
}
