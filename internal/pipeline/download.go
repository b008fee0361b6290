package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/storage"
)

// ExtensionFor returns the file extension for an image mime type. Unknown
// types fall back to png.
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

// FileName is the artifact name for image index of a job
func FileName(jobID string, index int, mimeType string) string {
	return fmt.Sprintf("%s_%d.%s", jobID, index, ExtensionFor(mimeType))
}

// Download writes every image of j that still holds inline data into
// outputDir, records the file path on the image and drops the inline
// payload. Images that already have a path are left alone, so calling it
// twice writes nothing new. A failing image does not stop the others; all
// failures are joined into the returned error. The job status never
// changes. It returns every persisted path of the job in index order.
func (p *Pipeline) Download(ctx context.Context, j *job.Job, outputDir string) ([]string, error) {
	dir, err := storage.OpenImageDir(outputDir)
	if err != nil {
		return j.Paths(), fmt.Errorf("failed to prepare output directory: %w", err)
	}

	var errs []error
	written := 0
	for i, img := range j.Images {
		if img.Downloaded() || img.Data == "" {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			errs = append(errs, &DownloadError{JobID: j.ID, Index: img.Index, Cause: fmt.Errorf("decode image data: %w", err)})
			continue
		}

		path, err := dir.Save(ctx, FileName(j.ID, img.Index, img.MIMEType), data)
		if err != nil {
			errs = append(errs, &DownloadError{JobID: j.ID, Index: img.Index, Cause: err})
			continue
		}

		j.SetImagePath(i, path)
		written++
		p.logger.Debug().Str("job_id", j.ID).Int("index", img.Index).Str("path", path).Msg("pipeline: image saved")
	}

	if written > 0 {
		if err := p.store.Update(ctx, j); err != nil {
			errs = append(errs, &StoreError{Op: "update", JobID: j.ID, Cause: err})
		}
		p.emit(j, StageDownloaded, fmt.Sprintf("saved %d image(s) to %s", written, dir.Root()))
	}

	return j.Paths(), errors.Join(errs...)
}
