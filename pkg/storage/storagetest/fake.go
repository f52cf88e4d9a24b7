// Package storagetest provides an in-memory MediaStorage for service tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var ErrUploadFailed = errors.New("upload failed")

type Fake struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Deleted []string
	// FailOn makes the n-th upload (1-based) fail. Zero never fails.
	FailOn  int
	uploads int
}

func NewFake() *Fake {
	return &Fake{Files: map[string][]byte{}}
}

func (f *Fake) Upload(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads++
	if f.FailOn > 0 && f.uploads == f.FailOn {
		return "", ErrUploadFailed
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/%s/%d-%s", folder, f.uploads, fileName)
	f.Files[url] = data
	return url, nil
}

func (f *Fake) Delete(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.Files, fileURL)
	f.Deleted = append(f.Deleted, fileURL)
	return nil
}

// Stored returns how many files are currently held.
func (f *Fake) Stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Files)
}
