package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type profile struct {
	Sub        string `json:"sub"`
	ID         string `json:"id"`
	Email      string `json:"email"`
	Verified   *bool  `json:"verified_email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// subject is the stable Google account id. The v2 endpoint calls it "id".
func (p profile) subject() string {
	if p.Sub != "" {
		return p.Sub
	}
	return p.ID
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return profile{}, err
	}
	resp, err := s.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&p); err != nil {
		return profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	return p, nil
}
