package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const pathSales = "/sales"

func salePath(id string) string {
	return pathSales + "/" + url.PathEscape(id)
}

func (c *Client) ListSales(ctx context.Context) (json.RawMessage, error) {
	const op = "api.ListSales"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathSales, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) GetSale(ctx context.Context, id string) (json.RawMessage, error) {
	const op = "api.GetSale"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, salePath(id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) CreateSale(ctx context.Context, in json.RawMessage) (json.RawMessage, error) {
	const op = "api.CreateSale"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodPost, pathSales, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateSale — частичное обновление (PATCH).
func (c *Client) UpdateSale(ctx context.Context, id string, in json.RawMessage) (json.RawMessage, error) {
	const op = "api.UpdateSale"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodPatch, salePath(id), in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) DeleteSale(ctx context.Context, id string) error {
	const op = "api.DeleteSale"

	if err := c.rest.JSON(ctx, http.MethodDelete, salePath(id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
