package helper

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"event_hub/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const EventImageFolder = "events"

// CloudinaryUploader stores event images on Cloudinary.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(s config.CloudinarySettings) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(s.CloudName, s.APIKey, s.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: EventImageFolder}, nil
}

// Upload sends the image to Cloudinary and returns its secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	result, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     PublicIDFor(filename, time.Now()),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// PublicIDFor builds a Cloudinary public id from an uploaded file name.
func PublicIDFor(filename string, at time.Time) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = strings.ToLower(strings.Join(strings.Fields(name), "_"))
	if name == "" || name == "." {
		name = "image"
	}
	return fmt.Sprintf("event_%s_%d", name, at.Unix())
}
