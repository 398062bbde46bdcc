package api

import (
	"context"

	"github.com/bidii/sacco-admin/internal/model"
)

// SignInRequest is the credentials payload for POST /signin.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse carries the bearer token issued on successful sign-in.
type SignInResponse struct {
	Token string `json:"token"`
}

// SignUpRequest is the account-creation payload for POST /signup.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

// SignIn exchanges credentials for a bearer token. The call is sent
// unauthenticated; the token source is not consulted (it is empty anyway
// before the first sign-in).
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (SignInResponse, error) {
	var res SignInResponse
	if err := c.Post(ctx, "/signin", req, &res); err != nil {
		return SignInResponse{}, err
	}
	return res, nil
}

// SignUp creates a new account. The caller signs in separately afterwards.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	return c.Post(ctx, "/signup", req, nil)
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/logout", nil, nil)
}

// UserInfo fetches the signed-in account's profile.
func (c *Client) UserInfo(ctx context.Context) (model.UserInfo, error) {
	var info model.UserInfo
	if err := c.Get(ctx, "/user_info", nil, &info); err != nil {
		return model.UserInfo{}, err
	}
	return info, nil
}

// UpdateUserInfo saves profile edits and returns the profile as stored.
func (c *Client) UpdateUserInfo(ctx context.Context, info model.UserInfo) (model.UserInfo, error) {
	var updated model.UserInfo
	if err := c.Put(ctx, "/user_info", info, &updated); err != nil {
		return model.UserInfo{}, err
	}
	return updated, nil
}
