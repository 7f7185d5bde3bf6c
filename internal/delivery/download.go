package delivery

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// Saver stores a rendered document and returns where it ended up.
type Saver interface {
	Save(ctx context.Context, doc *render.Document) (string, error)
}

// FileSaver writes documents into a directory. Saving the same transaction
// twice overwrites the earlier file.
type FileSaver struct {
	fs  afero.Fs
	dir string
}

func NewFileSaver(fs afero.Fs, dir string) *FileSaver {
	return &FileSaver{fs: fs, dir: dir}
}

func (s *FileSaver) Save(_ context.Context, doc *render.Document) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	path := filepath.Join(s.dir, doc.FileName)

	if err := afero.WriteFile(s.fs, path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}

type downloadChannel struct {
	saver Saver
}

func (c *downloadChannel) ready(context.Context, *job) error {
	return nil
}

func (c *downloadChannel) deliver(ctx context.Context, j *job) (string, error) {
	loc, err := j.saver(c.saver).Save(ctx, j.doc)
	if err != nil {
		return "", newError(KindTransportFailed, ChannelDownload, "The invoice could not be saved.", err)
	}

	j.attempt.Location = loc

	return fmt.Sprintf("Saved %s", loc), nil
}
