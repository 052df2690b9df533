// Package encoder decides, per page, whether DEFLATE pays off and produces
// the bytes the archive will hold.
//
// Each file is compressed in memory; the compressed payload is kept only
// when it is strictly smaller than the original. Compressed payloads are raw
// DEFLATE streams (no zlib or gzip framing) so the assembler can copy them
// into a ZIP entry as-is.
package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/errgroup"

	"comicpack/internal/faults"
)

// ErrEmptyFile reports a zero-length source page.
var ErrEmptyFile = errors.New("empty file")

// Job describes one page to encode.
type Job struct {
	// Index is the page's position in canonical order.
	Index int
	// Path is the file to read.
	Path string
	// Name is the member name inside the archive.
	Name string
	Mode Mode
}

// Member is an encoded page ready for assembly. It is not modified after
// Encode returns it.
type Member struct {
	Index         int
	Name          string
	Source        string
	Payload       []byte
	Precompressed bool
	CRC32         uint32
	// Size is the uncompressed length.
	Size     int64
	Modified time.Time
	Mode     Mode
}

// StoredSize is the number of payload bytes the archive will hold.
func (m Member) StoredSize() int64 {
	return int64(len(m.Payload))
}

var writerPools sync.Map // level -> *sync.Pool of *flate.Writer

func compress(data []byte, level int) ([]byte, error) {
	poolAny, _ := writerPools.LoadOrStore(level, &sync.Pool{})
	pool := poolAny.(*sync.Pool)

	var buf bytes.Buffer
	buf.Grow(len(data) / 2)

	w, _ := pool.Get().(*flate.Writer)
	if w == nil {
		var err error
		if w, err = flate.NewWriter(&buf, level); err != nil {
			return nil, err
		}
	} else {
		w.Reset(&buf)
	}
	defer pool.Put(w)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode reads job.Path and returns its member. Sources are only read.
func Encode(ctx context.Context, job Job) (Member, error) {
	dir := filepath.Dir(job.Path)
	if err := ctx.Err(); err != nil {
		return Member{}, err
	}

	info, err := os.Stat(job.Path)
	if err != nil {
		return Member{}, faults.Wrap(faults.ErrEncode, dir, faults.StageEncode, "stat "+job.Name, err)
	}
	data, err := os.ReadFile(job.Path)
	if err != nil {
		return Member{}, faults.Wrap(faults.ErrEncode, dir, faults.StageEncode, "read "+job.Name, err)
	}
	if len(data) == 0 {
		return Member{}, faults.Wrap(faults.ErrEncode, dir, faults.StageEncode, job.Name, ErrEmptyFile)
	}

	member := Member{
		Index:    job.Index,
		Name:     job.Name,
		Source:   job.Path,
		Payload:  data,
		CRC32:    crc32.ChecksumIEEE(data),
		Size:     int64(len(data)),
		Modified: info.ModTime(),
		Mode:     job.Mode,
	}
	if job.Mode == ModeStore || job.Mode == "" {
		return member, nil
	}

	deflated, err := compress(data, job.Mode.Level())
	if err != nil {
		return Member{}, faults.Wrap(faults.ErrEncode, dir, faults.StageEncode, "deflate "+job.Name, err)
	}
	if len(deflated) < len(data) {
		member.Payload = deflated
		member.Precompressed = true
	}
	return member, nil
}

// EncodeAll encodes jobs on at most workers goroutines. Each result lands at
// its job's Index, so the returned slice is in canonical order whatever the
// completion order. The first failure cancels the remaining jobs. onDone, if
// set, is called from worker goroutines and must be safe for concurrent use.
func EncodeAll(ctx context.Context, jobs []Job, workers int, onDone func(Member)) ([]Member, error) {
	seen := make([]bool, len(jobs))
	for _, job := range jobs {
		if job.Index < 0 || job.Index >= len(jobs) {
			return nil, fmt.Errorf("job %s: index %d out of range [0,%d)", job.Name, job.Index, len(jobs))
		}
		if seen[job.Index] {
			return nil, fmt.Errorf("job %s: duplicate index %d", job.Name, job.Index)
		}
		seen[job.Index] = true
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]Member, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, job := range jobs {
		g.Go(func() error {
			member, err := Encode(gctx, job)
			if err != nil {
				return err
			}
			results[job.Index] = member
			if onDone != nil {
				onDone(member)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
