package port

import (
	"context"

	"github.com/strogholod/catalog/internal/core/domain"
)

type ProductsLister interface {
	ListProducts(context.Context) ([]domain.Product, error)
}

type ProductWriter interface {
	CreateProduct(context.Context, domain.Product) (domain.ServerResponse, error)
	UpdateProduct(context.Context, domain.Product) (domain.ServerResponse, error)
}

type ProductDeleter interface {
	DeleteProduct(ctx context.Context, id int, photo string) (domain.ServerResponse, error)
}

type PhotoUploader interface {
	UploadPhoto(ctx context.Context, path, category string) (domain.ServerResponse, error)
}

// CatalogBackend is the remote catalog service.
type CatalogBackend interface {
	ProductsLister
	ProductWriter
	ProductDeleter
	PhotoUploader
}

// PhotoResolver turns a local photo handle into a readable file path.
type PhotoResolver interface {
	Resolve(handle string) (path string, err error)
}

type PriceChangeRecorder interface {
	RecordPriceChange(context.Context, domain.PriceChange) error
}

type PriceChangesReader interface {
	ReadPriceChanges(ctx context.Context, productID int) ([]domain.PriceChange, error)
}

// ProductSubmitter is the inbound port of the submission workflow.
type ProductSubmitter interface {
	Submit(
		ctx context.Context, draft domain.Draft, existing *domain.Product,
	) domain.SubmissionState
	State() domain.SubmissionState
	ResetSuccess()
}

// CatalogView is the inbound port of the catalog view state.
type CatalogView interface {
	Activate(context.Context) error
	Refresh(context.Context) error
	Filter(label string) []domain.Product
	Get(id int) (domain.Product, bool)
	Delete(ctx context.Context, id int) (domain.ServerResponse, error)
	ClearPriceHistory(ctx context.Context, id int) (domain.ServerResponse, error)
	CardState(id int) domain.CardState
}
