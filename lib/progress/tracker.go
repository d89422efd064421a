package progress

// Progress tracking for wordlist downloads, adapted from hashicorp/go-getter's
// cmd/go-getter/progress_tracking.go for cheggaaa/pb v3.

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cheggaaa/pb/v3"
	getter "github.com/hashicorp/go-getter"
)

// DefaultProgressBar is the default download progress tracker.
var DefaultProgressBar getter.ProgressTracker = &progressBar{} //nolint:gochecknoglobals // Shared tracker

// progressBar renders one cheggaaa/pb bar per tracked stream on stderr.
type progressBar struct {
	lock   sync.Mutex
	active int
}

// TrackProgress instantiates a new progress bar that will
// display the progress of stream until closed.
// total can be 0.
func (cpb *progressBar) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	cpb.lock.Lock()
	defer cpb.lock.Unlock()

	bar := pb.New64(totalSize)
	bar.SetCurrent(currentSize)
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", filepath.Base(src)+" ")
	bar.SetWriter(os.Stderr)
	bar.Start()

	cpb.active++

	return &readCloser{
		Reader: bar.NewProxyReader(stream),
		close: func() error {
			cpb.lock.Lock()
			defer cpb.lock.Unlock()

			bar.Finish()
			cpb.active--

			return stream.Close()
		},
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (c *readCloser) Close() error { return c.close() }
