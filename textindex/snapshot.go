package textindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Snapshot format: an uncompressed magic+version header followed by a
// zstd-compressed document stream. The inverted index is rebuilt on load.
const (
	snapshotMagic   uint32 = 0x4C585449 // "LXTI"
	snapshotVersion uint32 = 1
)

// Save writes a snapshot of the index to w.
func (ix *Index) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, snapshotMagic); err != nil {
		return fmt.Errorf("textindex: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, snapshotVersion); err != nil {
		return fmt.Errorf("textindex: write header: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("textindex: create compressor: %w", err)
	}
	bw := bufio.NewWriter(enc)

	ix.mu.RLock()
	err = ix.writeDocsLocked(bw)
	ix.mu.RUnlock()
	if err != nil {
		_ = enc.Close()
		return err
	}

	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return fmt.Errorf("textindex: flush snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("textindex: close compressor: %w", err)
	}
	return nil
}

func (ix *Index) writeDocsLocked(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ix.docs))); err != nil {
		return fmt.Errorf("textindex: write doc count: %w", err)
	}
	for id, terms := range ix.docs {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return fmt.Errorf("textindex: write doc id: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(terms))); err != nil {
			return fmt.Errorf("textindex: write term count: %w", err)
		}
		for _, t := range terms {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(t))); err != nil {
				return fmt.Errorf("textindex: write term length: %w", err)
			}
			if _, err := io.WriteString(w, t); err != nil {
				return fmt.Errorf("textindex: write term: %w", err)
			}
		}
	}
	return nil
}

// Load reads a snapshot written by Save and returns the rebuilt index.
func Load(r io.Reader) (*Index, error) {
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("textindex: read header: %w", err)
	}
	if magic != snapshotMagic {
		return nil, fmt.Errorf("textindex: bad magic %#x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("textindex: read header: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("textindex: unsupported snapshot version %d", version)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("textindex: create decompressor: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReader(dec)

	var docCount uint32
	if err := binary.Read(br, binary.LittleEndian, &docCount); err != nil {
		return nil, fmt.Errorf("textindex: read doc count: %w", err)
	}

	ix := New()
	for i := uint32(0); i < docCount; i++ {
		var id, termCount uint32
		if err := binary.Read(br, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("textindex: read doc id: %w", err)
		}
		if err := binary.Read(br, binary.LittleEndian, &termCount); err != nil {
			return nil, fmt.Errorf("textindex: read term count: %w", err)
		}
		terms := make([]string, 0, termCount)
		for j := uint32(0); j < termCount; j++ {
			var n uint32
			if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
				return nil, fmt.Errorf("textindex: read term length: %w", err)
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(br, buf); err != nil {
				return nil, fmt.Errorf("textindex: read term: %w", err)
			}
			terms = append(terms, string(buf))
		}
		// Terms never contain whitespace, so rejoining round-trips exactly.
		ix.Add(id, strings.Join(terms, " "))
	}
	return ix, nil
}
