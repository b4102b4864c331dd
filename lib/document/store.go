package document

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var log = logger.GetGoI2PLogger()

// newFileMode is the mode given to a document saved to a new path.
const newFileMode os.FileMode = 0o644

// Store reads and writes documents on a filesystem.
type Store struct {
	fs afero.Fs
}

// NewStore returns a Store backed by fs.
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewOsStore returns a Store backed by the operating system's filesystem.
func NewOsStore() *Store {
	return NewStore(afero.NewOsFs())
}

// Load reads the document at path. It never fails: any read or parse problem
// is logged and an empty document carrying a ParseWarning is returned.
func (s *Store) Load(path string) *Document {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return degraded(path, oops.In("document").With("path", path).Wrapf(err, "read"))
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return degraded(path, oops.In("document").With("path", path).Wrapf(err, "parse"))
	}

	// An empty file decodes to a zero node; a bare `null` to a null scalar.
	if root.Kind == 0 || len(root.Content) == 0 || isNull(root.Content[0]) {
		log.WithField("path", path).Debug("document_empty")
		return New()
	}
	if root.Kind != yaml.DocumentNode || root.Content[0].Kind != yaml.MappingNode {
		return degraded(path, oops.In("document").With("path", path).Errorf("root is not a mapping"))
	}

	log.WithFields(logger.Fields{
		"at":   "document.Store.Load",
		"path": path,
	}).Debug("document_loaded")
	return &Document{root: &root}
}

func degraded(path string, err error) *Document {
	w := &ParseWarning{Path: path, Err: err}
	log.WithFields(logger.Fields{
		"at":     "document.Store.Load",
		"path":   path,
		"reason": err.Error(),
	}).Warn("document_load_failed_using_empty")
	doc := New()
	doc.warning = w
	return doc
}

// Save writes doc to path and reports success. Failures are logged.
func (s *Store) Save(path string, doc *Document) bool {
	if err := s.SaveErr(path, doc); err != nil {
		log.WithFields(logger.Fields{
			"at":   "document.Store.Save",
			"path": path,
		}).WithError(err).Error("document_save_failed")
		return false
	}
	return true
}

// SaveErr writes doc to path, replacing the previous contents. The document
// is encoded and written to a temporary file in the same directory, which
// is then renamed over path. On failure path is untouched and an *IOError
// is returned. An existing file keeps its permission bits; a new one gets
// 0644.
func (s *Store) SaveErr(path string, doc *Document) error {
	if doc == nil {
		return &IOError{Path: path, Op: "encode", Err: ErrNilDocument}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc.root); err != nil {
		return &IOError{Path: path, Op: "encode", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &IOError{Path: path, Op: "encode", Err: err}
	}

	mode := newFileMode
	if info, err := s.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Path: path, Op: "create temp file", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Op: "write", Err: oops.With("temp", tmpName).Wrap(err)}
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Op: "close", Err: oops.With("temp", tmpName).Wrap(err)}
	}
	if err := s.fs.Chmod(tmpName, mode); err != nil {
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Op: "chmod", Err: oops.With("temp", tmpName).Wrap(err)}
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return &IOError{Path: path, Op: "rename", Err: oops.With("temp", tmpName).Wrap(err)}
	}

	log.WithFields(logger.Fields{
		"at":    "document.Store.SaveErr",
		"path":  path,
		"bytes": buf.Len(),
	}).Debug("document_saved")
	return nil
}
