package server

import "github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"

// SettingWire is the Setting record's wire shape (§4.8, §6).
type SettingWire struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description"`
	UpdatedAt   string  `json:"updatedAt"`
	UpdatedBy   *string `json:"updatedBy"`
}

// GetSettingsResponse is `GET /admin/uploads/settings`'s body.
type GetSettingsResponse struct {
	Settings []SettingWire `json:"settings"`
}

// PutSettingsRequest is `PUT /admin/uploads/settings`'s body.
type PutSettingsRequest struct {
	Settings []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"settings"`
}

// PutSettingsResponse is `PUT /admin/uploads/settings`'s response.
type PutSettingsResponse struct {
	Success bool     `json:"success"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}

// ResetPromptsResponse is `POST .../reset-prompts`'s response.
type ResetPromptsResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Prompts map[string]string `json:"prompts"`
}

// TestConnectionResponse is `POST .../test`'s response.
type TestConnectionResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is the standard error body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toWire(s settings.Setting) SettingWire {
	return SettingWire{
		ID:          s.ID,
		Key:         s.Key,
		Value:       settings.MaskForDisplay(s.Key, s.Value),
		Description: s.Description,
		UpdatedAt:   s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedBy:   s.UpdatedBy,
	}
}
