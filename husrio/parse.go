/*Package husrio is the ambient I/O boundary: parsing the sequence-database
  text format into a seqdb.SequenceDB, opening input files (local or
  remote, transparently gzip-decompressing), and writing accepted rules to
  an output file as a rule.Sink. None of this is part of the mining core;
  it exists so the core only ever sees a SequenceDB and a rule.Sink.
*/
package husrio

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"

	"github.com/fieldkit-data/husrmine/seqdb"
)

// lineGrammar: a sequence is one line, itemsets separated by "-1", the
// sequence terminated by "-2", and each item written "<item>[:<utility>]"
// (a missing utility defaults to defaultItemUtil), with an optional
// trailing "SUtility:<real>" token fixing the sequence's exact utility
// instead of it being computed as the sum of item utilities.
// e.g. "1:5 2:3 -1 4:1 -2" is a sequence of two itemsets.
const (
	itemsetSep      = "-1"
	sequenceTerm    = "-2"
	sUtilityPrefix  = "SUtility:"
	defaultItemUtil = 1
)

// Open returns a reader for path, transparently gzip-decompressing when the
// extension indicates it. It wraps github.com/grailbio/base/file so local
// paths and remote (e.g. s3://) paths are handled uniformly.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "opening input", path)
	}
	var r io.Reader = f.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			f.Close(ctx)
			return nil, errors.E(err, "reading gzip header", path)
		}
		return &gzipReadCloser{gz: gz, f: f, ctx: ctx}, nil
	}
	return &fileReadCloser{r: r, f: f, ctx: ctx}, nil
}

type fileReadCloser struct {
	r   io.Reader
	f   file.File
	ctx context.Context
}

func (c *fileReadCloser) Read(p []byte) (int, error) { return c.r.Read(p) }
func (c *fileReadCloser) Close() error                { return c.f.Close(c.ctx) }

type gzipReadCloser struct {
	gz  *gzip.Reader
	f   file.File
	ctx context.Context
}

func (c *gzipReadCloser) Read(p []byte) (int, error) { return c.gz.Read(p) }
func (c *gzipReadCloser) Close() error {
	if err := c.gz.Close(); err != nil {
		c.f.Close(c.ctx)
		return err
	}
	return c.f.Close(c.ctx)
}

// Parse reads the sequence-database text format from r into a new
// SequenceDB, one sequence per line. maxSequences caps how many sequences
// are read (0 means unlimited); skipped lines beyond the cap are counted
// and returned so the driver can report them under --stats.
func Parse(r io.Reader, maxSequences int) (db *seqdb.SequenceDB, skipped int, err error) {
	db = seqdb.New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytesTrim(line)) == 0 {
			continue
		}
		if maxSequences > 0 && db.Len() >= maxSequences {
			skipped++
			continue
		}
		seq, perr := parseLine(line)
		if perr != nil {
			return nil, skipped, errors.E(perr, "line", lineNo)
		}
		db.Add(seq)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, errors.E(err, "scanning input")
	}
	return db, skipped, nil
}

func bytesTrim(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && b[start] <= ' ' {
		start++
	}
	for end > start && b[end-1] <= ' ' {
		end--
	}
	return b[start:end]
}

// parseLine tokenizes one line by whitespace (mirroring the manual
// byte-scan token splitting idiom used elsewhere for line-oriented formats,
// rather than strings.Fields) and builds the sequence it describes.
func parseLine(line []byte) (*seqdb.Sequence, error) {
	seq := &seqdb.Sequence{}
	var cur seqdb.Itemset
	sawSUtility := false
	var sUtility float64

	tokens := splitTokens(line)
	for _, tok := range tokens {
		switch string(tok) {
		case itemsetSep:
			if len(cur.Items) > 0 {
				seq.Itemsets = append(seq.Itemsets, cur)
				cur = seqdb.Itemset{}
			}
			continue
		case sequenceTerm:
			continue
		}
		if rest, ok := cutPrefix(tok, sUtilityPrefix); ok {
			u, err := strconv.ParseFloat(string(rest), 64)
			if err != nil {
				return nil, errors.E(err, "parsing SUtility", string(tok))
			}
			sawSUtility = true
			sUtility = u
			continue
		}
		item, util, err := parseItemToken(tok)
		if err != nil {
			return nil, err
		}
		cur.Items = append(cur.Items, item)
		cur.Utilities = append(cur.Utilities, util)
		seq.ExactUtility += util
	}
	if len(cur.Items) > 0 {
		seq.Itemsets = append(seq.Itemsets, cur)
	}
	if len(seq.Itemsets) == 0 {
		return nil, errors.E("empty sequence")
	}
	if sawSUtility {
		seq.ExactUtility = sUtility
	}
	return seq, nil
}

// cutPrefix reports whether tok starts with prefix, returning the remainder.
func cutPrefix(tok []byte, prefix string) ([]byte, bool) {
	if !bytes.HasPrefix(tok, []byte(prefix)) {
		return nil, false
	}
	return tok[len(prefix):], true
}

// parseItemToken parses an "<item>[:<utility>]" token; a missing utility
// defaults to defaultItemUtil.
func parseItemToken(tok []byte) (seqdb.Item, float64, error) {
	colon := -1
	for i, c := range tok {
		if c == ':' {
			colon = i
			break
		}
	}
	idTok := tok
	if colon >= 0 {
		idTok = tok[:colon]
	}
	itemVal, err := strconv.ParseInt(string(idTok), 10, 64)
	if err != nil {
		return 0, 0, errors.E(err, "parsing item id", string(tok))
	}
	if itemVal <= 0 {
		return 0, 0, errors.E("item id must be a positive integer", string(tok))
	}
	if colon < 0 {
		return seqdb.Item(itemVal), defaultItemUtil, nil
	}
	util, err := strconv.ParseFloat(string(tok[colon+1:]), 64)
	if err != nil {
		return 0, 0, errors.E(err, "parsing item utility", string(tok))
	}
	if util <= 0 {
		return 0, 0, errors.E("item utility must be positive", string(tok))
	}
	return seqdb.Item(itemVal), util, nil
}

// splitTokens splits line on runs of bytes <= ' ', mirroring the
// grailbio-bio BED-parser's getTokens (any control character or space is a
// delimiter) rather than using strings.Fields, so the scan stays a single
// byte-level pass with no intermediate string allocation per token.
func splitTokens(line []byte) [][]byte {
	var out [][]byte
	pos := 0
	n := len(line)
	for pos < n {
		for pos < n && line[pos] <= ' ' {
			pos++
		}
		start := pos
		for pos < n && line[pos] > ' ' {
			pos++
		}
		if pos > start {
			out = append(out, line[start:pos])
		}
	}
	return out
}
