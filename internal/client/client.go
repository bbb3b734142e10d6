// Package client is the Go API client for the collection service. It
// implements mirror.Backend over HTTP, translating the service's error
// envelope back into the domain taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stash/internal/domain"
)

type Client struct {
	base string
	sid  string
	http *http.Client
}

// New builds a client for base (e.g. "http://localhost:8080") acting as
// the session identified by sid.
func New(base, sid string) *Client {
	return &Client{
		base: base,
		sid:  sid,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Cart(ctx context.Context) ([]domain.EnrichedItem, error) {
	return c.getItems(ctx, "/api/v1/cart")
}

func (c *Client) Wishlist(ctx context.Context) ([]domain.EnrichedItem, error) {
	return c.getItems(ctx, "/api/v1/wishlist")
}

func (c *Client) AddToCart(ctx context.Context, productID string) error {
	return c.send(ctx, http.MethodPost, "/api/v1/cart", map[string]any{"productId": productID})
}

func (c *Client) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return c.send(ctx, http.MethodPut, "/api/v1/cart", map[string]any{"productId": productID, "quantity": quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.send(ctx, http.MethodDelete, "/api/v1/cart?productId="+url.QueryEscape(productID), nil)
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	return c.send(ctx, http.MethodPost, "/api/v1/wishlist", map[string]any{"productId": productID})
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.send(ctx, http.MethodDelete, "/api/v1/wishlist?productId="+url.QueryEscape(productID), nil)
}

func (c *Client) BulkAddToCart(ctx context.Context, productIDs []string) error {
	return c.send(ctx, http.MethodPost, "/api/v1/cart/bulk", map[string]any{"productIds": productIDs})
}

func (c *Client) getItems(ctx context.Context, path string) ([]domain.EnrichedItem, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var items []domain.EnrichedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) send(ctx context.Context, method, path string, body map[string]any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: c.sid})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnavailable)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	msg := envelope.Error
	if msg == "" {
		msg = resp.Status
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = domain.ErrInvalidArgument
	case http.StatusUnauthorized:
		kind = domain.ErrUnauthorized
	case http.StatusNotFound:
		kind = domain.ErrNotFound
	case http.StatusConflict:
		// 409 covers both a duplicate and a lost version race; the
		// envelope text tells them apart.
		if strings.Contains(msg, "version conflict") {
			kind = domain.ErrConflict
		} else {
			kind = domain.ErrAlreadyExists
		}
	case http.StatusServiceUnavailable:
		kind = domain.ErrUnavailable
	default:
		return fmt.Errorf("api: %s (%d)", msg, resp.StatusCode)
	}
	return fmt.Errorf("api: %s: %w", msg, kind)
}
