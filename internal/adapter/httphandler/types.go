package httphandler

import (
	"time"

	"github.com/strogholod/catalog/internal/core/domain"
)

type (
	Product struct {
		ID              int    `json:"id"`
		Name            string `json:"name"`
		Price           string `json:"price"`
		OldPrice        string `json:"old_price"`
		Description     string `json:"description"`
		PriceUpdatedAt  string `json:"price_updated_at"`
		Photo           string `json:"photo"`
		Category        string `json:"category"`
		CategoryLabel   string `json:"category_label"`
		RecentlyChanged bool   `json:"recently_changed"`
		ShowsOldPrice   bool   `json:"shows_old_price"`
		CardState       string `json:"card_state"`
	}

	Draft struct {
		Name        string `json:"name"`
		Price       string `json:"price"`
		Description string `json:"description"`
		Category    string `json:"category"`
		LocalPhoto  string `json:"local_photo"`
	}

	SubmissionState struct {
		Status  string `json:"status"`
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	ServerResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	Categories struct {
		Labels  []string `json:"labels"`
		Filters []string `json:"filters"`
	}

	PriceChange struct {
		ProductID int    `json:"product_id"`
		Name      string `json:"name"`
		Category  string `json:"category"`
		OldPrice  string `json:"old_price"`
		NewPrice  string `json:"new_price"`
		ChangedAt string `json:"changed_at"`
	}
)

func toProduct(p domain.Product, card domain.CardState, now time.Time) Product {
	return Product{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		OldPrice:        p.OldPrice,
		Description:     p.Description,
		PriceUpdatedAt:  p.PriceUpdatedAt,
		Photo:           p.Photo,
		Category:        p.Category,
		CategoryLabel:   domain.LabelFor(p.Category),
		RecentlyChanged: p.RecentlyChanged(now),
		ShowsOldPrice:   p.ShowsOldPrice(now),
		CardState:       card.String(),
	}
}

func (d Draft) toDomain() domain.Draft {
	return domain.Draft{
		Name:          d.Name,
		Price:         d.Price,
		Description:   d.Description,
		CategoryLabel: d.Category,
		LocalPhoto:    d.LocalPhoto,
	}
}

func toSubmissionState(s domain.SubmissionState) SubmissionState {
	return SubmissionState{
		Status:  s.Status.String(),
		Success: s.Success,
		Message: s.Message,
	}
}

func toServerResponse(r domain.ServerResponse) ServerResponse {
	return ServerResponse{Success: r.Success, Message: r.Message}
}

func toPriceChanges(vs []domain.PriceChange) []PriceChange {
	out := make([]PriceChange, len(vs))
	for i, v := range vs {
		out[i] = PriceChange{
			ProductID: v.ProductID,
			Name:      v.Name,
			Category:  v.Category,
			OldPrice:  v.OldPrice,
			NewPrice:  v.NewPrice,
			ChangedAt: domain.FormatPriceTime(v.ChangedAt),
		}
	}
	return out
}
