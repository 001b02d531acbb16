package boxapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

// Me returns the authenticated user. Useful as a cheap credential
// check before starting a batch.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("boxapi: decoding user response: %w", err)
	}

	return &User{ID: ur.ID, Name: ur.Name, Login: ur.Login}, nil
}
