package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MediaStorage defines contract for the object storage provider (Cloudinary implementation).
type MediaStorage interface {
	// Upload stores the file under folder (e.g. "places/<id>") and returns its public URL.
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Delete removes a file using the URL returned by Upload.
	Delete(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

// NewCloudinaryStorage creates Cloudinary-backed implementation of MediaStorage.
// An empty cloudinaryURL falls back to the CLOUDINARY_URL environment variable.
func NewCloudinaryStorage(cloudinaryURL, rootFolder string) (MediaStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cloudinaryURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld, rootFolder: rootFolder}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	params := uploader.UploadParams{
		Folder:         path.Join(s.rootFolder, folder),
		PublicID:       fmt.Sprintf("%d-%s", time.Now().UnixNano(), base),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		ResourceType:   "auto",
	}

	// Apply WebP conversion and compression only for images
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif", ".webp":
		params.Format = "webp"
		params.Transformation = "q_auto"
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID, resourceType := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate: true helps to clear CDN cache
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// extractPublicID returns the public ID and resource type of a Cloudinary URL.
// https://res.cloudinary.com/demo/image/upload/v123/places/sample.webp -> places/sample, image
func extractPublicID(fileURL string) (string, string) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex < 1 || uploadIndex+1 >= len(parts) {
		return "", ""
	}
	resourceType := parts[uploadIndex-1]

	relevant := parts[uploadIndex+1:]
	if len(relevant) > 1 && isVersion(relevant[0]) {
		relevant = relevant[1:]
	}
	if len(relevant) == 0 {
		return "", ""
	}

	publicIDWithExt := strings.Join(relevant, "/")
	return strings.TrimSuffix(publicIDWithExt, filepath.Ext(publicIDWithExt)), resourceType
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
