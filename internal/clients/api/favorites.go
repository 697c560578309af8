package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

const pathFavorites = "/inventory/car-favorites/"

// ListFavorites — избранные объявления владельца bearer-токена.
func (c *Client) ListFavorites(ctx context.Context) (json.RawMessage, error) {
	const op = "api.ListFavorites"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathFavorites, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) AddFavorite(ctx context.Context, carID int64) (json.RawMessage, error) {
	const op = "api.AddFavorite"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodPost, pathFavorites, models.AddFavoriteRequest{Car: carID}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// RemoveFavorite удаляет запись избранного по её id (не id объявления).
func (c *Client) RemoveFavorite(ctx context.Context, id int64) error {
	const op = "api.RemoveFavorite"

	if err := c.rest.JSON(ctx, http.MethodDelete, pathFavorites+strconv.FormatInt(id, 10)+"/", nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
