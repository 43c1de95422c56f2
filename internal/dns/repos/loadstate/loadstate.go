// Package loadstate fingerprints zone source files so the reload controller
// can skip rebuilding a ZoneStore when nothing on disk actually changed.
// This is a pure performance path: a missing or corrupt database degrades
// to "always reload", never to incorrect answers.
package loadstate

import (
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
)

var bucketFingerprints = []byte("fingerprints")

// Fingerprint captures the observable identity of a zone source file.
type Fingerprint struct {
	Size    int64
	ModTime time.Time
}

// Store persists per-file fingerprints between server runs.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the load-state database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFingerprints)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// FingerprintDir walks dir and fingerprints every master-file (.zone, .db,
// .txt) it finds, for passing to Unchanged/Record.
func FingerprintDir(dir string) (map[string]Fingerprint, error) {
	out := make(map[string]Fingerprint)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".zone", ".db", ".txt":
		default:
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out[path] = Fingerprint{Size: info.Size(), ModTime: info.ModTime()}
		return nil
	})
	return out, err
}

// FingerprintFile fingerprints a single file.
func FingerprintFile(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Unchanged reports whether every path in current matches the fingerprint
// recorded from the last successful load. Any path missing from the
// recorded set, or differing in size/mtime, means a reload is needed.
func (s *Store) Unchanged(current map[string]Fingerprint) (bool, error) {
	unchanged := true
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFingerprints)
		if b == nil || b.Stats().KeyN != len(current) {
			unchanged = false
			return nil
		}
		for path, fp := range current {
			v := b.Get([]byte(path))
			if v == nil {
				unchanged = false
				return nil
			}
			stored, err := decodeFingerprint(v)
			if err != nil {
				return err
			}
			if stored != fp {
				unchanged = false
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return unchanged, nil
}

// Record overwrites the stored fingerprint set with current, replacing
// whatever was recorded from a prior load.
func (s *Store) Record(current map[string]Fingerprint) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketFingerprints); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(bucketFingerprints)
		if err != nil {
			return err
		}
		for path, fp := range current {
			if err := b.Put([]byte(path), encodeFingerprint(fp)); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeFingerprint(fp Fingerprint) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], uint64(fp.Size))
	binary.BigEndian.PutUint64(buf[8:16], uint64(fp.ModTime.UnixNano()))
	return buf
}

func decodeFingerprint(v []byte) (Fingerprint, error) {
	if len(v) != 16 {
		return Fingerprint{}, errInvalidFingerprint
	}
	size := int64(binary.BigEndian.Uint64(v[0:8]))
	nanos := int64(binary.BigEndian.Uint64(v[8:16]))
	return Fingerprint{Size: size, ModTime: time.Unix(0, nanos)}, nil
}

var errInvalidFingerprint = fingerprintError("corrupt fingerprint record")

type fingerprintError string

func (e fingerprintError) Error() string { return string(e) }
