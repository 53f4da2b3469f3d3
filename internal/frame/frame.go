// Package frame defines the frame acquisition boundary. The camera itself
// is an external collaborator; this package only fixes the contract and
// ships a directory-backed source used for bench runs and testing.
package frame

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/aquasense/shrimpscale/internal/errors"
)

// ErrNoFrame is returned when the source currently has no frame to offer.
// Callers skip the sampling tick; it is not a fatal condition.
var ErrNoFrame = errors.Newf("no frame available").
	Component("frame").
	Category(errors.CategoryNotFound).
	Build()

// Source supplies raw frames on demand.
type Source interface {
	// Frame returns the next frame, or ErrNoFrame when none is available.
	Frame() (image.Image, error)
	// Release frees any resources held by the source.
	Release() error
}

// DirectorySource serves image files from a directory in name order. With
// loop enabled it wraps around, emulating a continuous feed.
type DirectorySource struct {
	mu    sync.Mutex
	files []string
	next  int
	loop  bool
}

// NewDirectorySource scans the directory for image files.
func NewDirectorySource(dir string, loop bool) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(err).
			Component("frame").
			Category(errors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".bmp":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, errors.Newf("no image files in %s", dir).
			Component("frame").
			Category(errors.CategoryNotFound).
			Context("dir", dir).
			Build()
	}
	return &DirectorySource{files: files, loop: loop}, nil
}

// Frame decodes and returns the next image file.
func (s *DirectorySource) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.files) {
		if !s.loop {
			return nil, ErrNoFrame
		}
		s.next = 0
	}

	path := s.files[s.next]
	s.next++

	img, err := imaging.Open(path)
	if err != nil {
		// A single unreadable file degrades to a skipped tick.
		return nil, ErrNoFrame
	}
	return img, nil
}

// Release implements Source. Nothing is held open between frames.
func (s *DirectorySource) Release() error {
	return nil
}
