package services

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/config"
)

// BunnyCDNService uploads and deletes images on a BunnyCDN storage zone.
type BunnyCDNService struct {
	accessKey   string
	storageZone string
	storageURL  string
	cdnURL      string
	httpClient  *http.Client
}

func NewBunnyCDNService(cfg *config.Config) *BunnyCDNService {
	return &BunnyCDNService{
		accessKey:   cfg.BunnyAccessKey,
		storageZone: cfg.BunnyStorageZone,
		storageURL:  fmt.Sprintf("%s/%s", cfg.BunnyBaseURL, cfg.BunnyStorageZone),
		cdnURL:      fmt.Sprintf("https://%s", cfg.BunnyCDNHostname),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// UploadImage pushes the file under a uuid-prefixed path and returns the
// public CDN URL.
func (b *BunnyCDNService) UploadImage(data []byte, fileName, folder string) (string, error) {
	if b.accessKey == "" || b.storageZone == "" {
		return "", apperrors.New(apperrors.Provider, "image CDN not configured")
	}

	path := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), filepath.Ext(fileName))
	req, err := http.NewRequest(http.MethodPut, b.storageURL+"/"+path, bytes.NewReader(data))
	if err != nil {
		return "", apperrors.Wrap(apperrors.Provider, "image upload failed", err)
	}
	req.Header.Set("AccessKey", b.accessKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Provider, "image upload failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", apperrors.Newf(apperrors.Provider, "image CDN returned status %d", resp.StatusCode)
	}
	return b.cdnURL + "/" + path, nil
}

// DeleteImage removes an image given its public CDN URL.
func (b *BunnyCDNService) DeleteImage(imageURL string) error {
	if b.accessKey == "" || b.storageZone == "" {
		return apperrors.New(apperrors.Provider, "image CDN not configured")
	}

	path := strings.TrimPrefix(imageURL, b.cdnURL+"/")
	req, err := http.NewRequest(http.MethodDelete, b.storageURL+"/"+path, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.Provider, "image delete failed", err)
	}
	req.Header.Set("AccessKey", b.accessKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.Provider, "image delete failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperrors.Newf(apperrors.Provider, "image CDN returned status %d", resp.StatusCode)
	}
	return nil
}
