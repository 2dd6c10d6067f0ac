// Package catalog defines the monitored URL domain model and its persistence layer.
// URLs are maintained externally and read-only for the collection pipeline.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceDesktop Device = "desktop"
)

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrInvalidDevice = errors.New("invalid device")
	ErrRepository    = errors.New("catalog repository error")
	ErrNotFound      = errors.New("url not found")
)

// URL is a single entry of the measurement catalog. The descriptive fields
// (brand, category, country, page type) are carried for later aggregation
// and never consulted by the collector itself.
type URL struct {
	ID        int64      `json:"url_id"`
	URL       string     `json:"url"`
	Device    Device     `json:"device"`
	PageType  string     `json:"page_type"`
	Brand     string     `json:"brand"`
	Category  string     `json:"category"`
	CountryID string     `json:"country_id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (u URL) Validate() error {
	if strings.TrimSpace(u.URL) == "" {
		return fmt.Errorf("%w: url cannot be empty", ErrInvalidURL)
	}
	if !strings.HasPrefix(u.URL, "http://") && !strings.HasPrefix(u.URL, "https://") {
		return fmt.Errorf("%w: url must start with http:// or https://, got %q", ErrInvalidURL, u.URL)
	}
	if u.Device != DeviceMobile && u.Device != DeviceDesktop {
		return fmt.Errorf("%w: device must be mobile or desktop, got %q", ErrInvalidDevice, u.Device)
	}
	return nil
}

// Repository is the read/maintenance contract for the URL catalog.
type Repository interface {
	GetAll(ctx context.Context) ([]URL, error)
	GetByID(ctx context.Context, urlID int64) (URL, error)
	Add(ctx context.Context, u URL) (int64, error)
}
