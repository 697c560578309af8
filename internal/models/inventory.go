package models

// Make — марка автомобиля.
type Make struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Model — модель автомобиля в рамках марки.
type Model struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	MakeID int64  `json:"make_id,omitempty"`
	Make   any    `json:"make,omitempty"`
}

// CreateMakeRequest — тело POST /api/makes.
type CreateMakeRequest struct {
	Name string `json:"name"`
}

// CreateModelRequest — тело POST /api/models.
type CreateModelRequest struct {
	Name   string `json:"name"`
	MakeID int64  `json:"make_id"`
}

// UpdateModelRequest — тело PATCH /api/models/{id}; nil-поля не меняются.
type UpdateModelRequest struct {
	Name   *string `json:"name,omitempty"`
	MakeID *int64  `json:"make_id,omitempty"`
}

// AddFavoriteRequest — тело POST /api/favorites и upstream car-favorites.
type AddFavoriteRequest struct {
	Car int64 `json:"car"`
}

// CarView — просмотр объявления для счётчика популярности.
type CarView struct {
	CarID     int64  `json:"car_id"`
	IPAddress string `json:"ip_address"`
}
