package request

// DevLoginRequest is the request body for dev sign-in
type DevLoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

// TokenLoginRequest is the request body for signing in with an identity token
type TokenLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// ClaimUsernameRequest is the request body for claiming a username
type ClaimUsernameRequest struct {
	Username string `json:"username" validate:"required,username"`
}

// RenameUsernameRequest is the request body for renaming the caller's username
type RenameUsernameRequest struct {
	Username string `json:"username" validate:"required,username"`
}

// UploadClipForm holds the non-file fields of a multipart clip upload
type UploadClipForm struct {
	Title string `validate:"required,cliptitle"`
}
