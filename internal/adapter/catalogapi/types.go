package catalogapi

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
	"github.com/strogholod/catalog/internal/core/domain"
)

// The backend is PHP: numbers may arrive quoted, strings may arrive as
// numbers and optional fields as null. The flex types accept all of them.
type (
	flexInt    int
	flexString string
	flexBool   bool
)

func (v *flexInt) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*v = 0
		return nil
	}
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return err
	}
	*v = flexInt(n)
	return nil
}

func (v *flexString) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return err
	}
	*v = flexString(s)
	return nil
}

func (v *flexBool) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ok, err := cast.ToBoolE(raw)
	if err != nil {
		return err
	}
	*v = flexBool(ok)
	return nil
}

type (
	productResponse struct {
		ID             flexInt    `json:"id"`
		Name           flexString `json:"name"`
		Price          flexString `json:"price"`
		OldPrice       flexString `json:"old_price"`
		Description    flexString `json:"description"`
		PriceUpdatedAt flexString `json:"price_updated_at"`
		Photo          flexString `json:"photo"`
		Category       flexString `json:"category"`
	}

	productRequest struct {
		ID             int     `json:"id"`
		Name           string  `json:"name"`
		Price          string  `json:"price"`
		OldPrice       *string `json:"old_price"`
		Description    string  `json:"description"`
		PriceUpdatedAt string  `json:"price_updated_at"`
		Photo          string  `json:"photo"`
		Category       string  `json:"category"`
	}

	deleteRequest struct {
		ID    int    `json:"id"`
		Photo string `json:"photo"`
	}

	serverResponse struct {
		Success flexBool   `json:"success"`
		Message flexString `json:"message"`
	}
)

func (r productResponse) toDomain() domain.Product {
	return domain.Product{
		ID:             int(r.ID),
		Name:           string(r.Name),
		Price:          string(r.Price),
		OldPrice:       string(r.OldPrice),
		Description:    string(r.Description),
		PriceUpdatedAt: string(r.PriceUpdatedAt),
		Photo:          string(r.Photo),
		Category:       string(r.Category),
	}
}

func toProductRequest(p domain.Product) productRequest {
	r := productRequest{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Description:    p.Description,
		PriceUpdatedAt: p.PriceUpdatedAt,
		Photo:          p.Photo,
		Category:       p.Category,
	}
	if p.OldPrice != "" {
		oldPrice := p.OldPrice
		r.OldPrice = &oldPrice
	}
	return r
}

func (r serverResponse) toDomain() domain.ServerResponse {
	return domain.ServerResponse{
		Success: bool(r.Success),
		Message: string(r.Message),
	}
}
