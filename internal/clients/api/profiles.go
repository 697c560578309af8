package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	pathProfiles = "/users/profiles"
	pathUpgrades = "/buyers/upgrades/"
)

// Целевые роли повышения профиля покупателя.
const (
	UpgradeDealer = "dealer"
	UpgradeBroker = "broker"
)

func (c *Client) ListProfiles(ctx context.Context) (json.RawMessage, error) {
	const op = "api.ListProfiles"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathProfiles, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (json.RawMessage, error) {
	const op = "api.GetProfile"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathProfiles+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// MyProfile — профиль владельца bearer-токена.
func (c *Client) MyProfile(ctx context.Context) (json.RawMessage, error) {
	const op = "api.MyProfile"

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodGet, pathProfiles+"/me", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateProfile пересылает тело как есть: upstream принимает multipart
// с аватаром или JSON.
func (c *Client) UpdateProfile(ctx context.Context, id string, body io.Reader, contentType string) (json.RawMessage, error) {
	const op = "api.UpdateProfile"

	var out json.RawMessage
	if err := c.rest.Raw(ctx, http.MethodPatch, pathProfiles+"/"+url.PathEscape(id), body, contentType, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpgradeProfile повышает профиль до дилера или брокера; in — анкета, схема у upstream.
func (c *Client) UpgradeProfile(ctx context.Context, to string, in json.RawMessage) (json.RawMessage, error) {
	const op = "api.UpgradeProfile"

	if to != UpgradeDealer && to != UpgradeBroker {
		return nil, fmt.Errorf("%s: unknown upgrade target %q", op, to)
	}

	var out json.RawMessage
	if err := c.rest.JSON(ctx, http.MethodPost, pathUpgrades+"upgrade_to_"+to+"/", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
