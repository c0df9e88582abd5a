package catalogapi

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
)

var _ port.CatalogBackend = (*Client)(nil)

var ErrStatus = errors.New("unexpected response status")

const (
	listPath   = "get_products.php"
	createPath = "add_product.php"
	updatePath = "update_product.php"
	deletePath = "delete_product.php"

	DefaultUploadPath = "upload_photo.php"
	LegacyUploadPath  = "upload_image.php"

	defaultTimeout  = 30 * time.Second
	requestIDHeader = "X-Request-Id"
)

type Opt func(*clientOpts) error

type clientOpts struct {
	baseURL    *url.URL
	uploadPath string
	timeout    time.Duration
	tlsConfig  *tls.Config
}

// BaseURLOpt sets the directory of the PHP endpoints,
// e.g. https://formanagers.strogholod.ru/api/.
func BaseURLOpt(raw string) Opt {
	return func(opts *clientOpts) error {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid base url scheme: %q", u.Scheme)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		opts.baseURL = u
		return nil
	}
}

func UploadPathOpt(path string) Opt {
	return func(opts *clientOpts) error {
		path = strings.TrimLeft(strings.TrimSpace(path), "/")
		if path == "" {
			return errors.New("upload path is empty")
		}
		opts.uploadPath = path
		return nil
	}
}

func TimeoutOpt(d time.Duration) Opt {
	return func(opts *clientOpts) error {
		if d <= 0 {
			return fmt.Errorf("invalid timeout: %s", d)
		}
		opts.timeout = d
		return nil
	}
}

func TLSConfigOpt(cfg *tls.Config) Opt {
	return func(opts *clientOpts) error {
		opts.tlsConfig = cfg
		return nil
	}
}

// A Client talks to the remote catalog backend.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	uploadPath string
}

func New(opts ...Opt) (*Client, error) {
	const op = "catalogapi.New"

	options := clientOpts{
		uploadPath: DefaultUploadPath,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.baseURL == nil {
		return nil, fmt.Errorf("%s: base url is required", op)
	}

	httpClient := &http.Client{Timeout: options.timeout}
	if options.tlsConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = options.tlsConfig
		httpClient.Transport = transport
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    options.baseURL,
		uploadPath: options.uploadPath,
	}, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.ListProducts"

	var (
		body []productResponse
		code int
	)
	err := gout.New(c.httpClient).
		GET(c.endpoint(listPath)).
		WithContext(ctx).
		SetHeader(c.header()).
		BindJSON(&body).
		Code(&code).
		Do()
	if err := checkResponse(err, code); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := make([]domain.Product, len(body))
	for i := range body {
		products[i] = body[i].toDomain()
	}
	return products, nil
}

func (c *Client) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.ServerResponse, error) {
	const op = "Client.CreateProduct"
	resp, err := c.postJSON(ctx, createPath, toProductRequest(p))
	if err != nil {
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func (c *Client) UpdateProduct(
	ctx context.Context, p domain.Product,
) (domain.ServerResponse, error) {
	const op = "Client.UpdateProduct"
	resp, err := c.postJSON(ctx, updatePath, toProductRequest(p))
	if err != nil {
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func (c *Client) DeleteProduct(
	ctx context.Context, id int, photo string,
) (domain.ServerResponse, error) {
	const op = "Client.DeleteProduct"
	resp, err := c.postJSON(ctx, deletePath, deleteRequest{ID: id, Photo: photo})
	if err != nil {
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

// UploadPhoto sends the file at path as multipart part "photo" together
// with the category code. On success the message holds the photo URL.
func (c *Client) UploadPhoto(
	ctx context.Context, path, category string,
) (domain.ServerResponse, error) {
	const op = "Client.UploadPhoto"
	log := slog.With("op", op)

	var (
		body serverResponse
		code int
	)
	err := gout.New(c.httpClient).
		POST(c.endpoint(c.uploadPath)).
		WithContext(ctx).
		SetHeader(c.header()).
		SetForm(gout.H{
			"photo":    gout.FormFile(path),
			"category": category,
		}).
		BindJSON(&body).
		Code(&code).
		Do()
	if err := checkResponse(err, code); err != nil {
		return domain.ServerResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("photo sent", "path", path, "category", category)
	return body.toDomain(), nil
}

func (c *Client) postJSON(
	ctx context.Context, path string, payload any,
) (domain.ServerResponse, error) {
	var (
		body serverResponse
		code int
	)
	err := gout.New(c.httpClient).
		POST(c.endpoint(path)).
		WithContext(ctx).
		SetHeader(c.header()).
		SetJSON(payload).
		BindJSON(&body).
		Code(&code).
		Do()
	if err := checkResponse(err, code); err != nil {
		return domain.ServerResponse{}, err
	}
	return body.toDomain(), nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func (c *Client) header() gout.H {
	return gout.H{requestIDHeader: uuid.NewString()}
}

func checkResponse(err error, code int) error {
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrStatus, code)
	}
	return nil
}
