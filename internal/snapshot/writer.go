// Package snapshot encodes rendered frames to disk on a worker pool.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"

	"portal-renderer/internal/logging"
)

// Output formats.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// Config holds the output settings shared by every worker.
type Config struct {
	OutputDir string
	Format    string // FormatWebP or FormatTGA
	Workers   int
	// Width and Height are the output size. Larger frames are downsampled.
	Width, Height int
}

// Frame is one rendered image plus the state it was rendered from.
type Frame struct {
	Index   int
	Image   *image.NRGBA
	Player  [3]float64
	Yaw     float64
	Portals []string
}

// Result holds the outcome of encoding one frame.
type Result struct {
	Index   int
	Image   string // path relative to the output directory
	Player  [3]float64
	Yaw     float64
	Portals []string
	Success bool
	Error   string
}

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("snapshot: writer closed")

// Writer encodes submitted frames concurrently. Submit and Close must be
// called from one goroutine.
type Writer struct {
	cfg     Config
	frames  chan Frame
	wg      sync.WaitGroup
	mu      sync.Mutex
	results []Result
	closed  bool

	submitted atomic.Int64
	processed atomic.Int64
	start     time.Time
	done      chan struct{}
}

// NewWriter creates the output directory and starts the workers.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Format != FormatTGA {
		cfg.Format = FormatWebP
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create %s: %w", cfg.OutputDir, err)
	}

	w := &Writer{
		cfg:    cfg,
		frames: make(chan Frame, cfg.Workers*2),
		start:  time.Now(),
		done:   make(chan struct{}),
	}

	// Progress reporter
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				p := w.processed.Load()
				if p > 0 {
					elapsed := time.Since(w.start).Seconds()
					logging.Logger().Info("snapshot: progress",
						"done", p, "submitted", w.submitted.Load(),
						"fps", float64(p)/elapsed)
				}
			}
		}
	}()

	for i := 0; i < cfg.Workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for f := range w.frames {
				r := w.process(f)
				w.mu.Lock()
				w.results = append(w.results, r)
				w.mu.Unlock()
				w.processed.Add(1)
			}
		}()
	}
	return w, nil
}

// Submit queues a frame. The writer takes ownership of f.Image; it blocks
// while every worker is busy.
func (w *Writer) Submit(f Frame) error {
	if w.closed {
		return ErrClosed
	}
	w.submitted.Add(1)
	w.frames <- f
	return nil
}

// Close waits for queued frames and returns the results ordered by index.
func (w *Writer) Close() []Result {
	if !w.closed {
		w.closed = true
		close(w.frames)
		w.wg.Wait()
		close(w.done)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	sort.Slice(w.results, func(i, j int) bool { return w.results[i].Index < w.results[j].Index })
	return w.results
}

func (w *Writer) process(f Frame) Result {
	res := Result{
		Index:   f.Index,
		Image:   fmt.Sprintf("%05d.%s", f.Index, w.cfg.Format),
		Player:  f.Player,
		Yaw:     f.Yaw,
		Portals: f.Portals,
	}
	if f.Image == nil {
		res.Error = "no image"
		return res
	}

	img := Downsample(f.Image, w.cfg.Width, w.cfg.Height)

	out, err := os.Create(filepath.Join(w.cfg.OutputDir, res.Image))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer out.Close()

	switch w.cfg.Format {
	case FormatTGA:
		err = tga.Encode(out, img)
	default:
		err = nativewebp.Encode(out, img, nil)
	}
	if err != nil {
		res.Error = fmt.Sprintf("%s encode: %v", w.cfg.Format, err)
		logging.Logger().Warn("snapshot: encode failed", "frame", f.Index, "err", err)
		return res
	}

	res.Success = true
	return res
}
