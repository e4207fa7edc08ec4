package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pricescout/pricescout/internal/common"
)

// Scan photographs a product with the camera and uploads it for detection.
// The camera is released before the upload starts, and also when the user
// cancels or the capture fails.
func (a *App) Scan(ctx context.Context) error {
	if err := a.scan.OpenCamera(ctx); err != nil {
		if errors.Is(err, common.ErrDevice) {
			fmt.Fprintf(a.out, "Camera unavailable: %v\n", err)
			return err
		}
		fmt.Fprintf(a.out, "Cannot start the camera: %v\n", err)
		return err
	}

	answer, err := getSimpleText(a.reader, "Camera ready. Press Enter to capture, or type 'cancel'", a.out)
	if err != nil || answer == "cancel" {
		cancelErr := a.scan.CancelCamera(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Camera closed.")
		return cancelErr
	}

	artifact, err := a.scan.Capture(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Capture failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Captured %s (%d bytes).\n", artifact.Name, len(artifact.Bytes))

	return a.uploadStaged(ctx)
}

// ScanFile uploads an image file for product detection.
func (a *App) ScanFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot read %s: %v\n", path, err)
		return err
	}

	if err := a.scan.PickFile(filepath.Base(path), data); err != nil {
		fmt.Fprintf(a.out, "Cannot use %s: %v\n", path, err)
		return err
	}

	return a.uploadStaged(ctx)
}

func (a *App) uploadStaged(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "Upload for product detection?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		if err := a.scan.ChangeImage(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Discarded.")
		return nil
	}

	detected, err := a.scan.Upload(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Upload failed: %s\n", a.scan.LastError())
		fmt.Fprintln(a.out, "The image is still staged; run the command again to retry.")
		return err
	}

	if detected == "" {
		fmt.Fprintln(a.out, "No product detected in the image.")
		return nil
	}
	fmt.Fprintf(a.out, "Detected product: %s\n", detected)

	if a.isLoggedIn() {
		ok, err := getConfirmation(a.reader, fmt.Sprintf("Search prices for %q?", detected), a.out)
		if err == nil && ok {
			return a.Search(ctx, detected)
		}
	}
	return nil
}
