package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
)

// Client talks to the stockroom REST API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ProductForm carries the editable product fields sent on create and update.
type ProductForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	CategoryID  *int64
}

// Upload is one image file attached to a product form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// OpenUpload opens a local image. The content type is derived from the
// extension. Callers close the returned file.
func OpenUpload(path string) (*Upload, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Upload{Filename: filepath.Base(path), ContentType: ct, Body: f}, f, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

func (c *Client) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	p := "/products"
	if f.CategoryID != nil {
		p += "?" + url.Values{"category_id": {strconv.FormatInt(*f.CategoryID, 10)}}.Encode()
	}
	var out []domain.Product
	if err := c.do(ctx, http.MethodGet, p, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, "", &out)
	return out, err
}

// CreateProduct posts form with img; the API rejects a nil image.
func (c *Client) CreateProduct(ctx context.Context, form ProductForm, img *Upload) (domain.Product, error) {
	return c.sendProduct(ctx, http.MethodPost, "/products", form, img)
}

// UpdateProduct replaces the product fields. A nil img keeps the stored image.
func (c *Client) UpdateProduct(ctx context.Context, id int64, form ProductForm, img *Upload) (domain.Product, error) {
	return c.sendProduct(ctx, http.MethodPut, "/products/"+strconv.FormatInt(id, 10), form, img)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/products/"+strconv.FormatInt(id, 10), nil, "", nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory returns the existing category when name is already taken.
func (c *Client) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	return c.sendCategory(ctx, http.MethodPost, "/categories", name)
}

func (c *Client) RenameCategory(ctx context.Context, id int64, name string) (domain.Category, error) {
	return c.sendCategory(ctx, http.MethodPut, "/categories/"+strconv.FormatInt(id, 10), name)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+strconv.FormatInt(id, 10), nil, "", nil)
}

func (c *Client) sendCategory(ctx context.Context, method, p, name string) (domain.Category, error) {
	b, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return domain.Category{}, err
	}
	var out domain.Category
	err = c.do(ctx, method, p, bytes.NewReader(b), "application/json", &out)
	return out, err
}

func (c *Client) sendProduct(ctx context.Context, method, p string, form ProductForm, img *Upload) (domain.Product, error) {
	body, ct, err := encodeProduct(form, img)
	if err != nil {
		return domain.Product{}, err
	}
	var out domain.Product
	err = c.do(ctx, method, p, body, ct, &out)
	return out, err
}

func encodeProduct(form ProductForm, img *Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", form.Name},
		{"description", form.Description},
		{"price", form.Price.String()},
		{"quantity", strconv.Itoa(form.Quantity)},
	}
	if form.CategoryID != nil {
		fields = append(fields, [2]string{"category_id", strconv.FormatInt(*form.CategoryID, 10)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if img != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.Filename))
		h.Set("Content-Type", img.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, img.Body); err != nil {
			return nil, "", fmt.Errorf("read %s: %w", img.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, method, p string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+p, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); json.Unmarshal(b, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, p, err)
	}
	return nil
}
