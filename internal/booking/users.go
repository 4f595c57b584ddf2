package booking

import (
	"context"
)

func (c *Client) Login(ctx context.Context, request LoginRequest) (*TokenResponse, error) {
	result := &TokenResponse{}

	_, err := handleError(c.req(ctx, result).
		SetBody(request).
		Post("users/login"))
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) Register(ctx context.Context, request RegisterRequest) (*TokenResponse, error) {
	result := &TokenResponse{}

	_, err := handleError(c.req(ctx, result).
		SetBody(request).
		Post("users/register"))
	if err != nil {
		return nil, err
	}

	return result, nil
}

// RegisterInitiate asks the backend to email a verification link instead of
// creating the account right away.
func (c *Client) RegisterInitiate(ctx context.Context, request RegisterRequest) error {
	_, err := handleError(c.req(ctx, nil).
		SetBody(request).
		Post("users/register-initiate"))
	return err
}

func (c *Client) VerifyRegistration(ctx context.Context, token string) error {
	_, err := handleError(c.req(ctx, nil).
		SetQueryParam("token", token).
		Get("users/verify-registration"))
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := handleError(c.req(ctx, nil).
		SetBody(map[string]string{"email": email}).
		Post("users/forgot-password"))
	return err
}

func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	_, err := handleError(c.req(ctx, nil).
		SetBody(map[string]string{"email": email, "code": code}).
		Post("users/verify-code"))
	return err
}

func (c *Client) ResetPassword(ctx context.Context, request ResetPasswordRequest) error {
	_, err := handleError(c.req(ctx, nil).
		SetBody(request).
		Post("users/reset-password"))
	return err
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	result := &User{}

	req, err := c.authReq(ctx, result)
	if err != nil {
		return nil, err
	}
	if _, err := handleError(req.Get("users/me")); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) UpdateProfile(ctx context.Context, request UserUpdateRequest) (*User, error) {
	result := &User{}

	req, err := c.authReq(ctx, result)
	if err != nil {
		return nil, err
	}
	if _, err := handleError(req.SetBody(request).Put("users/me")); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) ChangePassword(ctx context.Context, request PasswordChangeRequest) error {
	req, err := c.authReq(ctx, nil)
	if err != nil {
		return err
	}
	_, err = handleError(req.SetBody(request).Put("users/me/password"))
	return err
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	req, err := c.authReq(ctx, nil)
	if err != nil {
		return err
	}
	_, err = handleError(req.Delete("users/me"))
	return err
}
