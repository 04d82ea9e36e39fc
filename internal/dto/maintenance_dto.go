package dto

type PruneResponse struct {
	EventsDeleted    int64 `json:"events_deleted"`
	ArtifactsDeleted int64 `json:"artifacts_deleted"`
}

type InstallWebhookRequest struct {
	ShopDomain  string `json:"shop_domain" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
}

type UninstallWebhookRequest struct {
	ShopDomain string `json:"shop_domain" validate:"required"`
}

type RedactWebhookRequest struct {
	ShopDomain string `json:"shop_domain" validate:"required"`
}
