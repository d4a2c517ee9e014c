// Package upload validates locally selected profile photos and stores them
// somewhere the backend can reference by URL.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/filex"
	"github.com/gabriel-vasile/mimetype"
)

// MaxPhotoSize is the largest accepted photo, 5 MiB.
const MaxPhotoSize = 5 * 1024 * 1024

var (
	ErrNotImage = errors.New("please select an image file")
	ErrTooLarge = errors.New("file size should be less than 5MB")
	ErrReleased = errors.New("pending upload already released")
)

// PendingUpload is a validated local file waiting to be uploaded. It keeps
// the file open until Release is called.
type PendingUpload struct {
	FileName string
	MimeType string
	ByteSize int64

	mu   sync.Mutex
	file *os.File
}

// Open validates the file at path and returns it as a PendingUpload. The
// content type is sniffed from the bytes, not from the extension.
func Open(path string) (*PendingUpload, error) {
	size, err := filex.FileSize(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("detect content type of %s: %w", path, err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		f.Close()
		return nil, fmt.Errorf("%w (got %s)", ErrNotImage, mt.String())
	}
	if size > MaxPhotoSize {
		f.Close()
		return nil, ErrTooLarge
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	return &PendingUpload{
		FileName: filepath.Base(path),
		MimeType: mt.String(),
		ByteSize: size,
		file:     f,
	}, nil
}

// Reader returns the file content from the beginning.
func (p *PendingUpload) Reader() (io.Reader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil, ErrReleased
	}
	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return p.file, nil
}

// Release closes the underlying file. It is safe to call more than once.
func (p *PendingUpload) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

func (p *PendingUpload) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file == nil
}

// SizeKB is the size rounded to whole kilobytes, for display.
func (p *PendingUpload) SizeKB() int64 {
	return (p.ByteSize + 512) / 1024
}
