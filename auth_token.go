package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/levigross/grequests"
)

// TokenResponse models the osu! OAuth token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

func (t *TokenResponse) Authorization() string {
	return t.TokenType + " " + t.AccessToken
}

// fetchToken runs the client-credentials grant against the osu! API.
func fetchToken(ctx context.Context, api APIConfig) (*TokenResponse, error) {
	if api.ClientID == 0 || api.ClientSecret == "" {
		return nil, fmt.Errorf("osu oauth: client_id and client_secret must be configured")
	}
	resp, err := grequests.Post(api.BaseURL+"/oauth/token", &grequests.RequestOptions{
		Data: map[string]string{
			"client_id":     strconv.Itoa(api.ClientID),
			"client_secret": api.ClientSecret,
			"grant_type":    "client_credentials",
			"scope":         "public",
		},
		Headers:        map[string]string{"Accept": "application/json"},
		RequestTimeout: 15 * time.Second,
		Context:        ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Close()

	if !resp.Ok {
		return nil, fmt.Errorf("osu oauth error: status %d, body: %s", resp.StatusCode, resp.String())
	}

	var tok TokenResponse
	if err := resp.JSON(&tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}
