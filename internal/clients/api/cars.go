package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/ecar-admin/admin-gateway/internal/models"
)

const (
	pathCars        = "/inventory/cars/"
	pathCarViews    = "/inventory/car-views/"
	pathPopularCars = "/inventory/popular-cars/"
)

// Статусы модерации объявления.
const (
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// ListCars возвращает объявления как есть.
func (c *Client) ListCars(ctx context.Context) (json.RawMessage, error) {
	const op = "api.ListCars"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathCars, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) GetCar(ctx context.Context, id int64) (json.RawMessage, error) {
	const op = "api.GetCar"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, carPath(id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CreateCar пересылает тело объявления без разбора: upstream принимает
// как JSON, так и multipart/form-data с фотографиями.
func (c *Client) CreateCar(ctx context.Context, body io.Reader, contentType string) (json.RawMessage, error) {
	const op = "api.CreateCar"

	var out json.RawMessage
	if err := c.rest.Raw(ctx, http.MethodPost, pathCars, body, contentType, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) DeleteCar(ctx context.Context, id int64) error {
	const op = "api.DeleteCar"

	if err := c.rest.JSON(ctx, http.MethodDelete, carPath(id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// VerifyCar меняет статус модерации объявления. reason учитывается только
// при отклонении.
func (c *Client) VerifyCar(ctx context.Context, id int64, status, reason string) (json.RawMessage, error) {
	const op = "api.VerifyCar"

	if status != VerificationVerified && status != VerificationRejected {
		return nil, fmt.Errorf("%s: unknown verification status %q", op, status)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("verification_status", status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status == VerificationRejected {
		if err := mw.WriteField("reason", reason); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out json.RawMessage
	if err := c.rest.Raw(ctx, http.MethodPatch, carPath(id)+"verify/", &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// RecordCarView учитывает просмотр объявления с адреса ip.
func (c *Client) RecordCarView(ctx context.Context, id int64, ip string) (json.RawMessage, error) {
	const op = "api.RecordCarView"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodPost, pathCarViews, models.CarView{CarID: id, IPAddress: ip}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// PopularCars — публичная подборка по числу просмотров.
func (c *Client) PopularCars(ctx context.Context) (json.RawMessage, error) {
	const op = "api.PopularCars"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathPopularCars, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func carPath(id int64) string {
	return pathCars + strconv.FormatInt(id, 10) + "/"
}
