// Package cas persists per-program build snapshots.
package cas

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SnapshotStore = (*Store)(nil)

// Snapshot file layout:
//
//	[8 bytes: magic "KILNSNAP"]
//	[2 bytes: schema version, big-endian]
//	[8 bytes: xxhash of the uncompressed payload, big-endian]
//	[zstd-compressed JSON payload]
const (
	magic      = "KILNSNAP"
	headerSize = len(magic) + 2 + 8
)

// Store keeps one snapshot file per program in a cache directory.
type Store struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStore creates a Store. Cache directories are created lazily on the first Save.
func NewStore() (*Store, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	return &Store{encoder: encoder, decoder: decoder}, nil
}

// Load reads the program's snapshot. A missing file yields (nil, nil).
func (s *Store) Load(dir, program string) (*domain.Snapshot, error) {
	filename := s.filename(dir, program)
	//nolint:gosec // Path is constructed from the cache directory and the program name
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	snapshot, err := s.decode(data)
	if err != nil {
		return nil, zerr.With(err, "path", filename)
	}
	if err := snapshot.Validate(program); err != nil {
		return nil, zerr.With(err, "path", filename)
	}
	return snapshot, nil
}

// Save encodes the snapshot and atomically replaces the program's snapshot file.
func (s *Store) Save(dir string, snapshot *domain.Snapshot) error {
	data, err := s.encode(snapshot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	filename := s.filename(dir, snapshot.Program)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Remove deletes the program's snapshot. Removing a missing snapshot is not an error.
func (s *Store) Remove(dir, program string) error {
	if err := os.Remove(s.filename(dir, program)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (s *Store) encode(snapshot *domain.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload)/2)
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.BigEndian, uint16(snapshot.Version)) //nolint:gosec // schema versions are small
	_ = binary.Write(&buf, binary.BigEndian, xxhash.Sum64(payload))
	return s.encoder.EncodeAll(payload, buf.Bytes()), nil
}

func (s *Store) decode(data []byte) (*domain.Snapshot, error) {
	if len(data) < headerSize || string(data[:len(magic)]) != magic {
		return nil, zerr.With(domain.ErrSnapshotCorrupt, "reason", "bad header")
	}

	version := int(binary.BigEndian.Uint16(data[len(magic):]))
	if version != domain.SnapshotVersion {
		return nil, zerr.With(zerr.With(domain.ErrSnapshotVersion, "want", domain.SnapshotVersion), "got", version)
	}
	checksum := binary.BigEndian.Uint64(data[len(magic)+2:])

	payload, err := s.decoder.DecodeAll(data[headerSize:], nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotCorrupt.Error()), "reason", "decompress")
	}
	if xxhash.Sum64(payload) != checksum {
		return nil, zerr.With(domain.ErrSnapshotCorrupt, "reason", "checksum mismatch")
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotCorrupt.Error()), "reason", "decode")
	}
	return &snapshot, nil
}

func (s *Store) filename(dir, program string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(program)
	return filepath.Join(dir, name+domain.SnapshotExt)
}
