package capture

import (
	"context"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Facing selects which camera to acquire, using the constraint vocabulary of
// the backend's web origin.
type Facing string

const (
	FacingRear  Facing = "environment"
	FacingFront Facing = "user"
)

// Stream is an acquired camera track. Exactly one Close per acquired stream;
// the pipeline owns that call.
type Stream interface {
	// Frame grabs the current frame.
	Frame() (image.Image, error)
	// Close releases the underlying track. Idempotent.
	Close() error
}

// Device acquires camera streams. Implementations report acquisition failure
// (no hardware, permission denied, busy) through the returned error; the
// pipeline wraps it as a device error and stays idle.
type Device interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// FileDevice is a Device backed by a still image on disk. It stands in for
// real camera hardware on headless machines: every Frame returns the same
// decoded picture.
type FileDevice struct {
	Path string
}

func (d *FileDevice) Open(ctx context.Context, facing Facing) (Stream, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", d.Path, err)
	}
	return &fileStream{frame: img}, nil
}

type fileStream struct {
	frame  image.Image
	closed bool
}

func (s *fileStream) Frame() (image.Image, error) {
	if s.closed {
		return nil, fmt.Errorf("stream is closed")
	}
	return s.frame, nil
}

func (s *fileStream) Close() error {
	s.closed = true
	return nil
}
