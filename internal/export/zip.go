package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// ZipSaver writes documents as entries of a single zip archive. It is safe for
// concurrent use. Close must be called to finish the archive.
type ZipSaver struct {
	mu    sync.Mutex
	zw    *zip.Writer
	names map[string]bool
}

func NewZipSaver(w io.Writer) *ZipSaver {
	return &ZipSaver{zw: zip.NewWriter(w), names: map[string]bool{}}
}

func (s *ZipSaver) Save(_ context.Context, doc *render.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.unique(doc.FileName)

	if err := s.write(name, doc.Data); err != nil {
		return "", err
	}

	return name, nil
}

// AddFile stores a non-document entry such as the export summary.
func (s *ZipSaver) AddFile(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(s.unique(name), data)
}

func (s *ZipSaver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.zw.Close()
}

func (s *ZipSaver) write(name string, data []byte) error {
	f, err := s.zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating zip entry %s: %w", name, err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing zip entry %s: %w", name, err)
	}

	return nil
}

// unique suffixes repeated names: Invoice_1.pdf, Invoice_1_2.pdf, ...
// The returned name is never one already in the archive.
func (s *ZipSaver) unique(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 2; s.names[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
	}

	s.names[candidate] = true

	return candidate
}
