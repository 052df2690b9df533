package assembler

import (
	"archive/zip"
	"fmt"
	"hash/crc32"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"comicpack/internal/faults"
)

// Entry describes one member read back from an archive.
type Entry struct {
	Name           string
	Method         uint16
	Size           int64
	CompressedSize int64
	CRC32          uint32
}

// Read lists the members of the archive at path in stored order.
func Read(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrAssembly, filepath.Dir(path), faults.StageVerify, "open archive", err)
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, Entry{
			Name:           f.Name,
			Method:         f.Method,
			Size:           int64(f.UncompressedSize64),
			CompressedSize: int64(f.CompressedSize64),
			CRC32:          f.CRC32,
		})
	}
	return entries, nil
}

// Verify opens the archive at path, checks that its member names equal want
// in order (when want is non-nil), and decompresses every member to confirm
// its CRC-32 and size.
func Verify(path string, want []string) error {
	dir := filepath.Dir(path)
	fail := func(msg string, err error) error {
		return faults.Wrap(faults.ErrAssembly, dir, faults.StageVerify, msg, err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return fail("open archive", err)
	}
	defer r.Close()
	r.RegisterDecompressor(zip.Deflate, flate.NewReader)

	if want != nil {
		if len(r.File) != len(want) {
			return fail(fmt.Sprintf("archive holds %d members, want %d", len(r.File), len(want)), nil)
		}
		for i, f := range r.File {
			if f.Name != want[i] {
				return fail(fmt.Sprintf("member %d is %q, want %q", i, f.Name, want[i]), nil)
			}
		}
	}

	for _, f := range r.File {
		if err := checkMember(f); err != nil {
			return fail("member "+f.Name, err)
		}
	}
	return nil
}

func checkMember(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	h := crc32.NewIEEE()
	n, err := io.Copy(h, rc)
	if err != nil {
		return err
	}
	if uint64(n) != f.UncompressedSize64 {
		return fmt.Errorf("size %d, header says %d", n, f.UncompressedSize64)
	}
	if sum := h.Sum32(); sum != f.CRC32 {
		return fmt.Errorf("crc32 %08x, header says %08x", sum, f.CRC32)
	}
	return nil
}
