// The backup package implements temporary snapshots of a file, taken before
// the file is overwritten so that it can be restored if the write fails.
//
// A snapshot is stored in a record with the following layout, with numbers
// in little-endian order:
//
//	magic      [8]byte   "LDMLBAK\x00"
//	mode       uint32    permission bits of the file
//	size       uint32    length of the content
//	compressed uint32    length of the lz4 payload, or 0 if stored as-is
//	checksum   [32]byte  BLAKE2b-256 of the content
//	payload
package backup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/anaminus/parse"
	"github.com/bkaradzic/go-lz4"
	"golang.org/x/crypto/blake2b"
)

const magic = "LDMLBAK\x00"

// ErrCorrupt indicates a record that does not contain a valid snapshot.
var ErrCorrupt = errors.New("backup record is corrupt")

// Record is a snapshot of a file.
type Record struct {
	path   string
	target string
}

// Create takes a snapshot of target, stored in a temporary file with the same
// extension. Returns nil if target does not exist.
func Create(target string) (*Record, error) {
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	content, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	if uint64(len(content)) > math.MaxUint32 {
		return nil, fmt.Errorf("%s is too large to back up", target)
	}
	f, err := os.CreateTemp("", "ldml-backup-*"+filepath.Ext(target))
	if err != nil {
		return nil, err
	}
	r := &Record{path: f.Name(), target: target}
	if _, err := encode(f, uint32(info.Mode().Perm()), content); err != nil {
		f.Close()
		os.Remove(r.path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(r.path)
		return nil, err
	}
	return r, nil
}

// Path returns the location of the record.
func (r *Record) Path() string {
	return r.path
}

// Target returns the location of the file that was backed up.
func (r *Record) Target() string {
	return r.target
}

// Restore overwrites the target with the content of the snapshot. The record
// is kept.
func (r *Record) Restore() error {
	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()
	mode, content, err := decode(f)
	if err != nil {
		return err
	}
	return os.WriteFile(r.target, content, os.FileMode(mode))
}

// Remove deletes the record.
func (r *Record) Remove() error {
	return os.Remove(r.path)
}

func encode(w io.Writer, mode uint32, content []byte) (n int64, err error) {
	fw := parse.NewBinaryWriter(w)
	sum := blake2b.Sum256(content)

	payload := content
	var compressed uint32
	if len(content) > 0 {
		data, err := lz4.Encode(nil, content)
		if fw.Add(0, err) {
			return fw.End()
		}
		// lz4 prepends the length of the uncompressed content, which is
		// already part of the header.
		if len(data)-4 < len(content) {
			payload = data[4:]
			compressed = uint32(len(payload))
		}
	}

	if fw.Bytes([]byte(magic)) {
		return fw.End()
	}
	if fw.Number(mode) {
		return fw.End()
	}
	if fw.Number(uint32(len(content))) {
		return fw.End()
	}
	if fw.Number(compressed) {
		return fw.End()
	}
	if fw.Bytes(sum[:]) {
		return fw.End()
	}
	if fw.Bytes(payload) {
		return fw.End()
	}
	return fw.End()
}

func decode(r io.Reader) (mode uint32, content []byte, err error) {
	fr := parse.NewBinaryReader(r)

	sig := make([]byte, len(magic))
	if fr.Bytes(sig) {
		return 0, nil, corrupt(fr)
	}
	if string(sig) != magic {
		return 0, nil, ErrCorrupt
	}
	var size, compressed uint32
	if fr.Number(&mode) || fr.Number(&size) || fr.Number(&compressed) {
		return 0, nil, corrupt(fr)
	}
	var sum [blake2b.Size256]byte
	if fr.Bytes(sum[:]) {
		return 0, nil, corrupt(fr)
	}

	if compressed == 0 {
		content = make([]byte, size)
		if fr.Bytes(content) {
			return 0, nil, corrupt(fr)
		}
	} else {
		// Prepare compressed data for reading by lz4, which requires the
		// uncompressed length before the compressed data.
		data := make([]byte, compressed+4)
		binary.LittleEndian.PutUint32(data, size)
		if fr.Bytes(data[4:]) {
			return 0, nil, corrupt(fr)
		}
		if content, err = lz4.Decode(make([]byte, size), data); err != nil {
			return 0, nil, fmt.Errorf("%w: lz4: %s", ErrCorrupt, err)
		}
	}
	if uint32(len(content)) != size || blake2b.Sum256(content) != sum {
		return 0, nil, ErrCorrupt
	}
	return mode, content, nil
}

func corrupt(fr *parse.BinaryReader) error {
	return fmt.Errorf("%w: read failed at byte %d: %v", ErrCorrupt, fr.N(), fr.Err())
}
