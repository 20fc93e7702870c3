package main

// This file defines tagRioWriter and tagRioReader. Type tagRioWriter dumps
// Tag records into a recordio file so that downstream cross-sample assembly
// tooling can consume tags without reparsing the text output; tagRioReader
// reads them back.

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/radtags/tag"
)

const (
	// <fileVersionHeader, fileVersion> is stored in a recordio header.
	fileVersionHeader = "radtagsversion"
	fileVersion       = "RADTAGS_V1"
)

// tagFileHeader is stored in the trailer section of the recordio file.
type tagFileHeader struct {
	// Opts is the options used to produce the tags.
	Opts tag.Opts
}

// TagRecord is one gob-encoded recordio record. Cluster is a sequential
// cluster index within the sample, letting consumers regroup tags by locus.
type TagRecord struct {
	Cluster int
	Tag     tag.Tag
}

type tagRioWriter struct {
	out     file.File
	w       recordio.Writer
	opts    tag.Opts
	cluster int
	err     errors.Once
}

func newTagRioWriter(ctx context.Context, path string, opts tag.Opts) (*tagRioWriter, error) {
	recordiozstd.Init()
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(fileVersionHeader, fileVersion)
	w.AddHeader(recordio.KeyTrailer, true)
	return &tagRioWriter{out: out, w: w, opts: opts}, nil
}

// Write appends one tag record.
func (w *tagRioWriter) Write(t *tag.Tag) error {
	b := bytes.NewBuffer(nil)
	w.err.Set(gob.NewEncoder(b).Encode(TagRecord{Cluster: w.cluster, Tag: *t}))
	if w.err.Err() == nil {
		w.w.Append(b.Bytes())
	}
	return w.err.Err()
}

// EndCluster advances the cluster index.
func (w *tagRioWriter) EndCluster() error {
	w.cluster++
	return w.err.Err()
}

// Close finishes the recordio stream, storing the options in the trailer. It
// must be called exactly once, after writing all the tags.
func (w *tagRioWriter) Close(ctx context.Context) error {
	b := bytes.NewBuffer(nil)
	w.err.Set(gob.NewEncoder(b).Encode(tagFileHeader{Opts: w.opts}))
	if w.err.Err() == nil {
		w.w.SetTrailer(b.Bytes())
	}
	w.err.Set(w.w.Finish())
	w.err.Set(w.out.Close(ctx))
	return w.err.Err()
}

// tagRioReader reads records from a recordio file created by tagRioWriter.
type tagRioReader struct {
	in   file.File
	r    recordio.Scanner
	opts tag.Opts
	rec  TagRecord
	err  errors.Once
}

func newTagRioReader(ctx context.Context, path string) (*tagRioReader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	recordiozstd.Init()
	r := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	versionFound := false
	for _, kv := range r.Header() {
		if kv.Key == fileVersionHeader {
			if kv.Value.(string) != fileVersion {
				return nil, errors.E("tag file version mismatch: got", kv.Value.(string), "want", fileVersion)
			}
			versionFound = true
			break
		}
	}
	if !versionFound {
		return nil, errors.E(fileVersionHeader + " not found in " + path)
	}
	h := tagFileHeader{}
	if err := gob.NewDecoder(bytes.NewReader(r.Trailer())).Decode(&h); err != nil {
		return nil, err
	}
	return &tagRioReader{in: in, r: r, opts: h.Opts}, nil
}

// Opts returns the options stored in the file trailer.
func (r *tagRioReader) Opts() tag.Opts { return r.opts }

// Scan reads the next tag record.
func (r *tagRioReader) Scan() bool {
	if r.err.Err() != nil || !r.r.Scan() {
		return false
	}
	r.rec = TagRecord{}
	r.err.Set(gob.NewDecoder(bytes.NewReader(r.r.Get().([]byte))).Decode(&r.rec))
	return r.err.Err() == nil
}

// Get yields the record read by the last successful Scan.
func (r *tagRioReader) Get() TagRecord { return r.rec }

// Close closes the reader. It must be called exactly once.
func (r *tagRioReader) Close(ctx context.Context) error {
	r.err.Set(r.r.Err())
	r.err.Set(r.in.Close(ctx))
	return r.err.Err()
}

// teeSink fans tags out to multiple sinks.
type teeSink struct{ sinks []tag.TagSink }

func (t teeSink) Write(tg *tag.Tag) error {
	for _, s := range t.sinks {
		if err := s.Write(tg); err != nil {
			return err
		}
	}
	return nil
}

func (t teeSink) EndCluster() error {
	for _, s := range t.sinks {
		if err := s.EndCluster(); err != nil {
			return err
		}
	}
	return nil
}
