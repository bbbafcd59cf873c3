package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

// ─────────────────────────────────────────────────────────────
// Image loading — decode must never stall reconciliation of
// other element families, so decoding runs off the UI
// goroutine and completions are drained back onto it.
// ─────────────────────────────────────────────────────────────

// ImageLoader decodes an image source and reports back on the UI goroutine.
type ImageLoader interface {
	Load(source string, onDone func(img image.Image, err error))
}

// AsyncImageLoader decodes on worker goroutines and parks completions in a
// queue the frame loop drains, keeping all scene mutation single-threaded.
type AsyncImageLoader struct {
	completions chan func()
}

// NewAsyncImageLoader creates a loader with a buffered completion queue.
func NewAsyncImageLoader() *AsyncImageLoader {
	return &AsyncImageLoader{completions: make(chan func(), 64)}
}

// Load decodes source in the background. onDone runs later, during Drain.
func (l *AsyncImageLoader) Load(source string, onDone func(img image.Image, err error)) {
	go func() {
		img, err := decodeSource(source)
		l.completions <- func() { onDone(img, err) }
	}()
}

// Drain runs pending completions. Called once per frame tick by the app.
func (l *AsyncImageLoader) Drain() {
	for {
		select {
		case fn := <-l.completions:
			fn()
		default:
			return
		}
	}
}

// SyncImageLoader decodes inline. Tests use it so passes stay deterministic.
type SyncImageLoader struct{}

func (SyncImageLoader) Load(source string, onDone func(img image.Image, err error)) {
	img, err := decodeSource(source)
	onDone(img, err)
}

func decodeSource(source string) (image.Image, error) {
	const dataPrefix = "data:"
	if strings.HasPrefix(source, dataPrefix) {
		idx := strings.Index(source, "base64,")
		if idx < 0 {
			return nil, fmt.Errorf("decode image: unsupported data url")
		}
		raw, err := base64.StdEncoding.DecodeString(source[idx+len("base64,"):])
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return img, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
