// Package platform is the REST client for the sports-league platform API.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
)

var _ adapter.PlatformAPI = (*Client)(nil)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("platform base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid platform base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) UserTeams(ctx context.Context, userID int64) ([]model.Team, error) {
	var out []model.Team
	err := c.get(ctx, fmt.Sprintf("/users/%d/teams", userID), nil, &out)
	return out, err
}

func (c *Client) UserChampionships(ctx context.Context, userID int64) ([]model.Championship, error) {
	var out []model.Championship
	err := c.get(ctx, fmt.Sprintf("/users/%d/championships", userID), nil, &out)
	return out, err
}

func (c *Client) UserMatches(ctx context.Context, userID int64, status string) ([]model.Match, error) {
	if status == "" {
		status = "upcoming"
	}
	var out []model.Match
	err := c.get(ctx, fmt.Sprintf("/users/%d/matches", userID), url.Values{"status": {status}}, &out)
	return out, err
}

func (c *Client) UserInvitations(ctx context.Context, userID int64) ([]model.Invitation, error) {
	var out []model.Invitation
	err := c.get(ctx, fmt.Sprintf("/users/%d/invitations", userID), url.Values{"type": {"all"}}, &out)
	return out, err
}

func (c *Client) RecommendedChampionships(ctx context.Context, userID int64) ([]model.ChampionshipDetails, error) {
	var out []model.ChampionshipDetails
	err := c.get(ctx, fmt.Sprintf("/users/%d/championships/recommended", userID), nil, &out)
	return out, err
}

func (c *Client) ChampionshipDetails(ctx context.Context, championshipID int64) (*model.ChampionshipDetails, error) {
	var out model.ChampionshipDetails
	if err := c.get(ctx, fmt.Sprintf("/championships/%d", championshipID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TeamDetails(ctx context.Context, teamID int64) (*model.TeamDetails, error) {
	var out model.TeamDetails
	if err := c.get(ctx, fmt.Sprintf("/teams/%d", teamID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpcomingMatches(ctx context.Context, days int) ([]model.Match, error) {
	var out []model.Match
	err := c.get(ctx, "/matches/upcoming", url.Values{"days": {strconv.Itoa(days)}}, &out)
	return out, err
}

func (c *Client) TeamRoster(ctx context.Context, teamID int64) (*model.Roster, error) {
	var out model.Roster
	if err := c.get(ctx, fmt.Sprintf("/teams/%d/roster", teamID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AcceptInvitation(ctx context.Context, kind model.InvitationKind, invitationID int64) error {
	return c.post(ctx, fmt.Sprintf("/invitations/%s/%d/accept", kind, invitationID), nil)
}

func (c *Client) DeclineInvitation(ctx context.Context, kind model.InvitationKind, invitationID int64) error {
	return c.post(ctx, fmt.Sprintf("/invitations/%s/%d/decline", kind, invitationID), nil)
}

func (c *Client) DeclineMatch(ctx context.Context, matchID, teamID int64, reason string) error {
	body := map[string]interface{}{
		"team_id": teamID,
		"reason":  reason,
	}
	return c.post(ctx, fmt.Sprintf("/matches/%d/decline", matchID), body)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// apiError is the platform's uniform error envelope.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("platform %s: %s (status %d)", req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("platform %s: status %d", req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode platform response %s: %w", req.URL.Path, err)
	}
	return nil
}
