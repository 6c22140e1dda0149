package profile

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// DeviceToken mirrors users/{uid}/deviceTokens/{token}.
type DeviceToken struct {
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	UpdatedAt int64  `json:"updatedAt"`
}

type ProfileResponse struct {
	UID string `json:"uid"`
	Profile
	Plan Status `json:"plan"`
}
