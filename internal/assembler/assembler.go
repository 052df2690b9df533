// Package assembler writes encoded members into a ZIP container.
//
// Members arrive already encoded. A precompressed payload is a raw DEFLATE
// stream and is copied into the archive byte for byte behind a local header
// carrying the member's CRC-32 and sizes; nothing is compressed twice. Other
// members are stored. The archive is built in a temporary file beside its
// destination and only renamed into place once complete, so a failed run
// leaves no archive behind.
package assembler

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"comicpack/internal/encoder"
	"comicpack/internal/faults"
	"comicpack/internal/fileutil"
)

const writeBufferSize = 1 << 20

// Stats summarizes an assembled archive.
type Stats struct {
	Members      int
	Compressed   int
	Stored       int
	SourceBytes  int64
	PayloadBytes int64
	ArchiveBytes int64
}

// Write assembles members, in slice order, into a new archive at path. The
// slice must be in canonical order: members[i].Index == i. An existing file
// at path is never replaced.
func Write(ctx context.Context, path string, members []encoder.Member) (Stats, error) {
	dir := filepath.Dir(path)
	fail := func(msg string, err error) (Stats, error) {
		return Stats{}, faults.Wrap(faults.ErrAssembly, dir, faults.StageAssemble, msg, err)
	}
	if len(members) == 0 {
		return fail("no members", nil)
	}

	tmp, err := fileutil.CreateTemp(path)
	if err != nil {
		return fail("create temporary archive", err)
	}
	defer tmp.Discard()

	buf := bufio.NewWriterSize(tmp, writeBufferSize)
	zw := zip.NewWriter(buf)

	var stats Stats
	for i, m := range members {
		if err := ctx.Err(); err != nil {
			return fail("cancelled", err)
		}
		if m.Index != i {
			return fail(fmt.Sprintf("member %s has index %d at position %d", m.Name, m.Index, i), nil)
		}
		if err := addMember(zw, m); err != nil {
			return fail("add "+m.Name, err)
		}
		stats.Members++
		stats.SourceBytes += m.Size
		stats.PayloadBytes += m.StoredSize()
		if m.Precompressed {
			stats.Compressed++
		} else {
			stats.Stored++
		}
	}

	if err := zw.Close(); err != nil {
		return fail("finalize central directory", err)
	}
	if err := buf.Flush(); err != nil {
		return fail("flush archive", err)
	}
	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return fail("size archive", err)
	}
	stats.ArchiveBytes = size

	if err := tmp.Publish(); err != nil {
		return fail("publish archive", err)
	}
	return stats, nil
}

func addMember(zw *zip.Writer, m encoder.Member) error {
	header := &zip.FileHeader{
		Name:     m.Name,
		Modified: m.Modified,
	}
	header.SetMode(0o644)

	if m.Precompressed {
		header.Method = zip.Deflate
		header.CRC32 = m.CRC32
		header.CompressedSize64 = uint64(len(m.Payload))
		header.UncompressedSize64 = uint64(m.Size)
		w, err := zw.CreateRaw(header)
		if err != nil {
			return err
		}
		_, err = w.Write(m.Payload)
		return err
	}

	header.Method = zip.Store
	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = w.Write(m.Payload)
	return err
}
