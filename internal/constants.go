package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "fb_access_token"
	COOKIE_REDIRECT_NAME     = "fb_redirect_to"
)
