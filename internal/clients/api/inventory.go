package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

const (
	pathMakes  = "/inventory/makes/"
	pathModels = "/inventory/models/"
)

func (c *Client) ListMakes(ctx context.Context) ([]models.Make, error) {
	const op = "api.ListMakes"

	var out []models.Make
	if err := c.rest.JSON(ctx, http.MethodGet, pathMakes, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) CreateMake(ctx context.Context, name string) (models.Make, error) {
	const op = "api.CreateMake"

	var out models.Make
	if err := c.rest.JSON(ctx, http.MethodPost, pathMakes, models.CreateMakeRequest{Name: name}, &out); err != nil {
		return models.Make{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) UpdateMake(ctx context.Context, id int64, name string) (models.Make, error) {
	const op = "api.UpdateMake"

	var out models.Make
	path := pathMakes + strconv.FormatInt(id, 10) + "/"
	if err := c.rest.JSON(ctx, http.MethodPatch, path, models.CreateMakeRequest{Name: name}, &out); err != nil {
		return models.Make{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) DeleteMake(ctx context.Context, id int64) error {
	const op = "api.DeleteMake"

	path := pathMakes + strconv.FormatInt(id, 10) + "/"
	if err := c.rest.JSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListModels возвращает модели; makeID == 0 — все марки.
func (c *Client) ListModels(ctx context.Context, makeID int64) ([]models.Model, error) {
	const op = "api.ListModels"

	path := pathModels
	if makeID != 0 {
		path += "?" + url.Values{"make": {strconv.FormatInt(makeID, 10)}}.Encode()
	}

	var out []models.Model
	if err := c.rest.JSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) CreateModel(ctx context.Context, in models.CreateModelRequest) (models.Model, error) {
	const op = "api.CreateModel"

	var out models.Model
	if err := c.rest.JSON(ctx, http.MethodPost, pathModels, in, &out); err != nil {
		return models.Model{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) UpdateModel(ctx context.Context, id int64, in models.UpdateModelRequest) (models.Model, error) {
	const op = "api.UpdateModel"

	var out models.Model
	if err := c.rest.JSON(ctx, http.MethodPatch, modelPath(id), in, &out); err != nil {
		return models.Model{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) DeleteModel(ctx context.Context, id int64) error {
	const op = "api.DeleteModel"

	if err := c.rest.JSON(ctx, http.MethodDelete, modelPath(id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func modelPath(id int64) string {
	return pathModels + strconv.FormatInt(id, 10) + "/"
}
