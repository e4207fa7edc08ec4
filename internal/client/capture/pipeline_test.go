package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/common"
	"github.com/pricescout/pricescout/internal/logging"
)

// fakeDevice counts acquired and released streams so tests can assert the
// zero-leak property.
type fakeDevice struct {
	mu       sync.Mutex
	openErr  error
	frameErr error
	opened   int
	closed   int
}

func (d *fakeDevice) Open(ctx context.Context, facing Facing) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened++
	return &fakeStream{device: d, frameErr: d.frameErr}, nil
}

func (d *fakeDevice) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened - d.closed
}

type fakeStream struct {
	device   *fakeDevice
	frameErr error
	once     sync.Once
}

func (s *fakeStream) Frame() (image.Image, error) {
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img, nil
}

func (s *fakeStream) Close() error {
	s.once.Do(func() {
		s.device.mu.Lock()
		s.device.closed++
		s.device.mu.Unlock()
	})
	return nil
}

// fakeUploader implements api.Client; only UploadImage matters here.
type fakeUploader struct {
	api.Client

	detected     string
	err          error
	lastArtifact *models.CaptureArtifact
}

func (f *fakeUploader) UploadImage(ctx context.Context, artifact *models.CaptureArtifact) (string, error) {
	f.lastArtifact = artifact
	return f.detected, f.err
}

func testLogger() logging.Logger {
	return logging.NewDefault(io.Discard, slog.LevelDebug)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPickFile(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, &fakeDevice{}, testLogger())

	require.NoError(t, p.PickFile("shoe.png", pngBytes(t)))
	require.Equal(t, StateFilePicked, p.State())

	a := p.Artifact()
	require.NotNil(t, a)
	require.Equal(t, "shoe.png", a.Name)
	require.Equal(t, "image/png", a.MIME)
	require.Equal(t, models.SourceFilePicker, a.Source)
	require.NotNil(t, p.Preview())
}

func TestPickFileRejectsNonImage(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, &fakeDevice{}, testLogger())

	err := p.PickFile("notes.txt", []byte("just some text, definitely not pixels"))
	require.ErrorIs(t, err, common.ErrValidation)
	require.Equal(t, StateIdle, p.State())
	require.Nil(t, p.Artifact())
}

func TestPickFileReplacesPreviousPick(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, &fakeDevice{}, testLogger())

	require.NoError(t, p.PickFile("first.png", pngBytes(t)))
	require.NoError(t, p.PickFile("second.png", pngBytes(t)))
	require.Equal(t, "second.png", p.Artifact().Name)
}

func TestCameraCaptureReleasesStream(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	p := NewPipeline(&fakeUploader{}, dev, testLogger())

	require.NoError(t, p.OpenCamera(ctx))
	require.Equal(t, StateCameraOpen, p.State())
	require.Equal(t, 1, dev.live())

	a, err := p.Capture(ctx)
	require.NoError(t, err)
	require.Equal(t, StateCaptured, p.State())
	require.Equal(t, 0, dev.live(), "capture must release the camera")

	require.Equal(t, models.SourceCamera, a.Source)
	require.Equal(t, "image/jpeg", a.MIME)
	require.True(t, strings.HasPrefix(a.Name, "camera-capture-"))
	require.True(t, strings.HasSuffix(a.Name, ".jpg"))

	img, err := jpeg.Decode(bytes.NewReader(a.Bytes))
	require.NoError(t, err)
	require.Equal(t, 640, img.Bounds().Dx())
	require.Equal(t, 480, img.Bounds().Dy())
}

func TestCameraOpenFailureStaysIdle(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{openErr: errors.New("permission denied")}
	p := NewPipeline(&fakeUploader{}, dev, testLogger())

	err := p.OpenCamera(ctx)
	require.ErrorIs(t, err, common.ErrDevice)
	require.Equal(t, StateIdle, p.State())
	require.Equal(t, 0, dev.live())
}

func TestCameraFrameFailureReleasesAndReturnsIdle(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{frameErr: errors.New("track ended")}
	p := NewPipeline(&fakeUploader{}, dev, testLogger())

	require.NoError(t, p.OpenCamera(ctx))
	_, err := p.Capture(ctx)
	require.ErrorIs(t, err, common.ErrDevice)
	require.Equal(t, StateIdle, p.State())
	require.Equal(t, 0, dev.live(), "a failed grab must still release the camera")
}

func TestCancelCameraReleasesStream(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	p := NewPipeline(&fakeUploader{}, dev, testLogger())

	require.NoError(t, p.OpenCamera(ctx))
	require.NoError(t, p.CancelCamera(ctx))
	require.Equal(t, StateIdle, p.State())
	require.Equal(t, 0, dev.live())
}

func TestCaptureRequiresOpenCamera(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(&fakeUploader{}, &fakeDevice{}, testLogger())

	_, err := p.Capture(ctx)
	require.Error(t, err)
	require.Equal(t, StateIdle, p.State())
}

func TestChangeImage(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, &fakeDevice{}, testLogger())

	require.NoError(t, p.PickFile("shoe.png", pngBytes(t)))
	require.NoError(t, p.ChangeImage())
	require.Equal(t, StateIdle, p.State())
	require.Nil(t, p.Artifact())
	require.Nil(t, p.Preview())
}

func TestUploadSucceeds(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{detected: "Nike Air Max"}
	p := NewPipeline(up, &fakeDevice{}, testLogger())

	require.NoError(t, p.PickFile("shoe.png", pngBytes(t)))

	detected, err := p.Upload(ctx)
	require.NoError(t, err)
	require.Equal(t, "Nike Air Max", detected)
	require.Equal(t, StateUploadSucceeded, p.State())
	require.Equal(t, "Nike Air Max", p.DetectedProduct())
	require.Nil(t, p.Artifact(), "a consumed artifact must not linger")
	require.Equal(t, "shoe.png", up.lastArtifact.Name)
}

func TestUploadFailureKeepsArtifactEditable(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{err: &api.ServerError{Status: 500, Message: "detector offline"}}
	p := NewPipeline(up, &fakeDevice{}, testLogger())

	require.NoError(t, p.PickFile("shoe.png", pngBytes(t)))

	_, err := p.Upload(ctx)
	require.Error(t, err)
	require.Equal(t, StateUploadFailed, p.State())
	require.Equal(t, "detector offline", p.LastError())
	require.NotNil(t, p.Artifact(), "a failed upload keeps the artifact for retry")

	// The failed state remains fully editable.
	require.NoError(t, p.PickFile("other.png", pngBytes(t)))
	require.Equal(t, StateFilePicked, p.State())

	up.err = nil
	up.detected = "Adidas Samba"
	detected, err := p.Upload(ctx)
	require.NoError(t, err)
	require.Equal(t, "Adidas Samba", detected)
}

func TestUploadRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{err: &api.NetworkError{Err: errors.New("timeout")}}
	p := NewPipeline(up, &fakeDevice{}, testLogger())

	require.NoError(t, p.PickFile("shoe.png", pngBytes(t)))

	_, err := p.Upload(ctx)
	require.Error(t, err)
	require.Equal(t, "cannot reach the server", p.LastError())

	up.err = nil
	up.detected = "Puma RS-X"
	detected, err := p.Upload(ctx)
	require.NoError(t, err)
	require.Equal(t, "Puma RS-X", detected)
	require.Equal(t, StateUploadSucceeded, p.State())
}

func TestResetReleasesCamera(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	p := NewPipeline(&fakeUploader{}, dev, testLogger())

	require.NoError(t, p.OpenCamera(ctx))
	p.Reset(ctx)
	require.Equal(t, StateIdle, p.State())
	require.Equal(t, 0, dev.live())
	require.Nil(t, p.Artifact())
}

func TestFileDevice(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := dir + "/frame.png"

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	dev := &FileDevice{Path: path}
	stream, err := dev.Open(ctx, FacingRear)
	require.NoError(t, err)

	frame, err := stream.Frame()
	require.NoError(t, err)
	require.Equal(t, 8, frame.Bounds().Dx())

	require.NoError(t, stream.Close())
	_, err = stream.Frame()
	require.Error(t, err)
}
