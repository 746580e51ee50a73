package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// FileFetcher reads documents from the local filesystem. Relative paths are
// resolved against Root when it is set.
type FileFetcher struct {
	Root string
}

// Download implements Fetcher.
func (f *FileFetcher) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "fetcher: open file")
	}
	path := strings.TrimPrefix(location, "file://")
	if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open file %s", path)
	}
	return file, nil
}
