package domain

import (
	"net/url"
	"strings"
	"time"
)

// PriceTimeLayout is the layout of Product.PriceUpdatedAt on the wire.
const PriceTimeLayout = "2006-01-02 15:04:05"

// RecencyWindow is how long after a price change the old price stays visible.
const RecencyWindow = 3 * 24 * time.Hour

type (
	// A Product is a catalog card. ID 0 means the product is not persisted yet.
	Product struct {
		ID             int
		Name           string
		Price          string
		OldPrice       string
		Description    string
		PriceUpdatedAt string
		Photo          string
		Category       string
	}

	// A ServerResponse is the {success, message} reply of the catalog backend.
	ServerResponse struct {
		Success bool
		Message string
	}

	PriceChange struct {
		ProductID int
		Name      string
		Category  string
		OldPrice  string
		NewPrice  string
		ChangedAt time.Time
	}
)

// PriceUpdateTime parses PriceUpdatedAt in the local time zone.
func (p Product) PriceUpdateTime() (time.Time, bool) {
	t, err := time.ParseInLocation(
		PriceTimeLayout, strings.TrimSpace(p.PriceUpdatedAt), time.Local,
	)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (p Product) RecentlyChanged(now time.Time) bool {
	t, ok := p.PriceUpdateTime()
	if !ok {
		return false
	}
	return now.Sub(t) <= RecencyWindow
}

// ShowsOldPrice reports whether the card renders OldPrice struck through.
func (p Product) ShowsOldPrice(now time.Time) bool {
	old := strings.TrimSpace(p.OldPrice)
	return p.RecentlyChanged(now) && old != "" && old != p.Price
}

func (p Product) PhotoReady() bool {
	return IsRemotePhoto(p.Photo)
}

// IsRemotePhoto reports whether ref is a URL the backend can serve.
func IsRemotePhoto(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func FormatPriceTime(t time.Time) string {
	return t.In(time.Local).Format(PriceTimeLayout)
}
