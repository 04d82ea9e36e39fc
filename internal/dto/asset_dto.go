package dto

import (
	"time"
)

type PrepareAssetRequest struct {
	ProductId string `json:"product_id" validate:"required"`
}

type PrepareAssetResponse struct {
	ProductId string `json:"product_id"`
	Status    string `json:"status"`
}

type BatchPrepareRequest struct {
	ProductIds []string `json:"product_ids" validate:"required,min=1,dive,required"`
}

type BatchPrepareItemError struct {
	ProductId string `json:"product_id"`
	Error     string `json:"error"`
}

type BatchPrepareResponse struct {
	Queued int                     `json:"queued"`
	Errors []BatchPrepareItemError `json:"errors"`
}

type AssetStatusResponse struct {
	ProductId        string     `json:"product_id"`
	Status           string     `json:"status"`
	Enabled          bool       `json:"enabled"`
	PreparedImageRef string     `json:"prepared_image_ref,omitempty"`
	PreparedImageURL string     `json:"prepared_image_url,omitempty"`
	ImageVersion     int        `json:"image_version"`
	Error            string     `json:"error,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

type ToggleAssetRequest struct {
	ProductId string `json:"-"`
	Enabled   *bool  `json:"enabled" validate:"required"`
}

type ToggleAssetResponse struct {
	ProductId string `json:"product_id"`
	Status    string `json:"status"`
	Enabled   bool   `json:"enabled"`
}

// PublishPrepareAssetMessage is the in-process queue payload nudging the
// preparer to pick a pending asset up without waiting for the poller.
type PublishPrepareAssetMessage struct {
	ShopId    string `json:"shop_id"`
	ProductId string `json:"product_id"`
}
