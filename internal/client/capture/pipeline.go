// Package capture implements the image-based search workflow: pick an image
// file or photograph one with a camera, preview it, and upload it for product
// detection. The pipeline is a small state machine; its one hard rule is that
// an acquired camera stream is released on every path out of the camera-open
// state, success or not.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/common"
	"github.com/pricescout/pricescout/internal/logging"
)

// Capture frame dimensions, matching the backend's expected photo size.
const (
	frameWidth  = 640
	frameHeight = 480
)

const jpegQuality = 90

type State int

const (
	StateIdle State = iota
	StateFilePicked
	StateCameraOpen
	StateCaptured
	StateUploading
	StateUploadSucceeded
	StateUploadFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilePicked:
		return "file picked"
	case StateCameraOpen:
		return "camera open"
	case StateCaptured:
		return "captured"
	case StateUploading:
		return "uploading"
	case StateUploadSucceeded:
		return "upload succeeded"
	case StateUploadFailed:
		return "upload failed"
	default:
		return "unknown"
	}
}

// Pipeline drives the scan workflow. One pipeline per app; all methods are
// safe for concurrent use.
type Pipeline struct {
	client api.Client
	device Device
	log    logging.Logger

	mu       sync.Mutex
	state    State
	stream   Stream
	artifact *models.CaptureArtifact
	preview  image.Image
	detected string
	errMsg   string
	gen      uint64
}

func NewPipeline(client api.Client, device Device, log logging.Logger) *Pipeline {
	return &Pipeline{client: client, device: device, log: log}
}

// State returns the current workflow state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Artifact returns the pending upload payload, or nil when there is none.
func (p *Pipeline) Artifact() *models.CaptureArtifact {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.artifact
}

// Preview returns the decoded image of the pending artifact, or nil.
func (p *Pipeline) Preview() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preview
}

// DetectedProduct returns the product name from the last successful upload.
func (p *Pipeline) DetectedProduct() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detected
}

// LastError returns the user-facing message of the last failed upload.
func (p *Pipeline) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// PickFile stages a file-picker image for upload. The data must be a decodable
// image; anything else fails with common.ErrValidation and leaves the state
// unchanged. Allowed from idle and, to let the user swap the image, from the
// file-picked and upload-failed states.
func (p *Pipeline) PickFile(name string, data []byte) error {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return fmt.Errorf("%w: %s is not an image (%s)", common.ErrValidation, name, mime)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: cannot decode %s: %v", common.ErrValidation, name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateIdle, StateFilePicked, StateUploadFailed:
	default:
		return fmt.Errorf("cannot pick a file while %s", p.state)
	}

	p.artifact = &models.CaptureArtifact{
		Name:   name,
		MIME:   mime,
		Source: models.SourceFilePicker,
		Bytes:  bytes.Clone(data),
	}
	p.preview = img
	p.detected = ""
	p.errMsg = ""
	p.state = StateFilePicked
	return nil
}

// OpenCamera acquires the rear camera. When acquisition fails the error wraps
// common.ErrDevice and the pipeline stays idle; there is nothing to release.
func (p *Pipeline) OpenCamera(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateIdle, StateUploadFailed:
	default:
		p.mu.Unlock()
		return fmt.Errorf("cannot open the camera while %s", p.state)
	}
	p.mu.Unlock()

	stream, err := p.device.Open(ctx, FacingRear)
	if err != nil {
		p.log.Warn(ctx, "camera acquisition failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrDevice, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle && p.state != StateUploadFailed {
		// Lost the race against another transition; give the stream back.
		_ = stream.Close()
		return fmt.Errorf("cannot open the camera while %s", p.state)
	}
	p.stream = stream
	p.state = StateCameraOpen
	return nil
}

// Capture photographs the current camera frame into a JPEG artifact. The
// camera stream is released before Capture returns, whether the grab worked
// or not; a failed grab puts the pipeline back to idle.
func (p *Pipeline) Capture(ctx context.Context) (*models.CaptureArtifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateCameraOpen {
		return nil, fmt.Errorf("cannot capture while %s", p.state)
	}
	defer p.releaseCameraLocked(ctx)

	frame, err := p.stream.Frame()
	if err != nil {
		p.state = StateIdle
		return nil, fmt.Errorf("%w: %v", common.ErrDevice, err)
	}

	data, err := encodeFrame(frame)
	if err != nil {
		p.state = StateIdle
		return nil, err
	}

	p.artifact = &models.CaptureArtifact{
		Name:   "camera-capture-" + uuid.NewString() + ".jpg",
		MIME:   "image/jpeg",
		Source: models.SourceCamera,
		Bytes:  data,
	}
	p.preview = frame
	p.detected = ""
	p.errMsg = ""
	p.state = StateCaptured
	return p.artifact, nil
}

// CancelCamera releases the camera without capturing and returns to idle.
func (p *Pipeline) CancelCamera(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateCameraOpen {
		return fmt.Errorf("cannot cancel the camera while %s", p.state)
	}
	p.releaseCameraLocked(ctx)
	p.state = StateIdle
	return nil
}

// ChangeImage discards the pending artifact so the user can pick or shoot a
// different one. Allowed whenever an artifact is staged but not in flight.
func (p *Pipeline) ChangeImage() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateFilePicked, StateCaptured, StateUploadFailed:
	default:
		return fmt.Errorf("cannot change the image while %s", p.state)
	}
	p.artifact = nil
	p.preview = nil
	p.errMsg = ""
	p.state = StateIdle
	return nil
}

// Upload sends the staged artifact for product detection. On success the
// artifact is consumed and the detected product name is retained; on failure
// the artifact stays staged so the user can retry or swap it.
func (p *Pipeline) Upload(ctx context.Context) (string, error) {
	p.mu.Lock()
	switch p.state {
	case StateFilePicked, StateCaptured, StateUploadFailed:
	default:
		p.mu.Unlock()
		return "", fmt.Errorf("cannot upload while %s", p.state)
	}
	artifact := p.artifact
	p.state = StateUploading
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	detected, err := p.client.UploadImage(ctx, artifact)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.state != StateUploading {
		// Reset raced the upload; whatever came back no longer matters.
		return "", nil
	}
	if err != nil {
		p.errMsg = uploadMessage(err)
		p.state = StateUploadFailed
		return "", err
	}

	p.artifact = nil
	p.preview = nil
	p.detected = detected
	p.errMsg = ""
	p.state = StateUploadSucceeded
	return detected, nil
}

// Reset returns the pipeline to idle from any state, releasing the camera if
// it is open and discarding any staged artifact.
func (p *Pipeline) Reset(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateCameraOpen {
		p.releaseCameraLocked(ctx)
	}
	p.artifact = nil
	p.preview = nil
	p.detected = ""
	p.errMsg = ""
	p.gen++
	p.state = StateIdle
}

// Close tears the pipeline down. Safe to call in any state.
func (p *Pipeline) Close(ctx context.Context) error {
	p.Reset(ctx)
	return nil
}

func (p *Pipeline) releaseCameraLocked(ctx context.Context) {
	if p.stream == nil {
		return
	}
	if err := p.stream.Close(); err != nil {
		p.log.Warn(ctx, "camera release failed", "error", err)
	}
	p.stream = nil
}

// encodeFrame letterboxes the frame into the upload dimensions and encodes it
// as JPEG.
func encodeFrame(frame image.Image) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	fb := frame.Bounds()
	offset := image.Pt(
		(frameWidth-fb.Dx())/2,
		(frameHeight-fb.Dy())/2,
	)
	draw.Draw(dst, fb.Sub(fb.Min).Add(offset), frame, fb.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding capture: %w", err)
	}
	return buf.Bytes(), nil
}

// uploadMessage converts a gateway error into a message fit for display.
func uploadMessage(err error) string {
	var se *api.ServerError
	var ne *api.NetworkError
	switch {
	case errors.As(err, &se):
		return se.Message
	case errors.As(err, &ne):
		return "cannot reach the server"
	default:
		return err.Error()
	}
}
