package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-roomviz-be/internal/dto"
)

// Client talks to the commerce platform's admin API for a given shop.
// Every call is scoped to a shop domain; the access token comes from the
// shop record captured at install time.
type Client struct {
	httpClient *http.Client
	apiVersion string
}

type productImage struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

type productPayload struct {
	Product struct {
		Id     json.Number    `json:"id"`
		Images []productImage `json:"images"`
		Tags   string         `json:"tags"`
	} `json:"product"`
}

func NewClient(apiVersion string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiVersion: apiVersion,
	}
}

func (c *Client) do(ctx context.Context, method, shopDomain, accessToken, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	url := fmt.Sprintf("https://%s/admin/api/%s%s", shopDomain, c.apiVersion, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &dto.ProviderError{Op: "catalog." + method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &dto.ProviderError{Op: "catalog.read", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &dto.ProviderError{
			Op:  "catalog." + method,
			Err: fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path),
		}
	}

	return data, nil
}

// FeaturedImage returns the URL of the product's primary image, or an empty
// string when the product has no images.
func (c *Client) FeaturedImage(ctx context.Context, shopDomain, accessToken string, productId string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, shopDomain, accessToken,
		fmt.Sprintf("/products/%s.json", productId), nil)
	if err != nil {
		return "", err
	}

	var payload productPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", &dto.ProviderError{Op: "catalog.decode", Err: err}
	}

	for _, img := range payload.Product.Images {
		if img.Position == 1 {
			return img.Src, nil
		}
	}
	if len(payload.Product.Images) > 0 {
		return payload.Product.Images[0].Src, nil
	}
	return "", nil
}

// SyncVisibilityTag adds or removes the storefront tag that tells the theme
// widget the product has a live render asset.
func (c *Client) SyncVisibilityTag(ctx context.Context, shopDomain, accessToken string, productId string, visible bool) error {
	data, err := c.do(ctx, http.MethodGet, shopDomain, accessToken,
		fmt.Sprintf("/products/%s.json", productId), nil)
	if err != nil {
		return err
	}

	var payload productPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &dto.ProviderError{Op: "catalog.decode", Err: err}
	}

	tags := rewriteTags(payload.Product.Tags, "roomviz-enabled", visible)
	if tags == payload.Product.Tags {
		return nil
	}

	update := map[string]any{
		"product": map[string]any{
			"id":   productId,
			"tags": tags,
		},
	}
	_, err = c.do(ctx, http.MethodPut, shopDomain, accessToken,
		fmt.Sprintf("/products/%s.json", productId), update)
	return err
}
