package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mandisim/internal/game"
)

// Client talks to a running mandisim API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Commodities(ctx context.Context) ([]game.Commodity, error) {
	var out struct {
		Commodities []game.Commodity `json:"commodities"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market/commodities", nil, &out)
	return out.Commodities, err
}

func (c *Client) Commodity(ctx context.Context, name string) (game.Commodity, error) {
	var out game.Commodity
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market/commodities/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (c *Client) Tick(ctx context.Context) ([]game.Commodity, error) {
	var out struct {
		Commodities []game.Commodity `json:"commodities"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/market/tick", nil, &out)
	return out.Commodities, err
}

func (c *Client) Player(ctx context.Context) (game.Player, error) {
	var out game.Player
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/player", nil, &out)
	return out, err
}

func (c *Client) CreatePlayer(ctx context.Context, name string) (game.Player, error) {
	var out game.Player
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/player", map[string]any{"name": name}, &out)
	return out, err
}

func (c *Client) Achievements(ctx context.Context) ([]game.Achievement, []string, error) {
	var out struct {
		Achievements []game.Achievement `json:"achievements"`
		Unlocked     []string           `json:"unlocked"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/player/achievements", nil, &out)
	return out.Achievements, out.Unlocked, err
}

func (c *Client) Levels(ctx context.Context) ([]game.Level, error) {
	var out struct {
		Levels []game.Level `json:"levels"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/levels", nil, &out)
	return out.Levels, err
}

func (c *Client) Contracts(ctx context.Context, role string) ([]game.Contract, error) {
	path := "/v1/contracts"
	if role != "" {
		path += "?role=" + url.QueryEscape(role)
	}
	var out struct {
		Contracts []game.Contract `json:"contracts"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Contracts, err
}

type OfferResult struct {
	Contract   game.Contract   `json:"contract"`
	Evaluation game.Evaluation `json:"evaluation"`
}

func (c *Client) SubmitOffer(ctx context.Context, commodity string, quantity, price int64, role string) (OfferResult, error) {
	var out OfferResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/contracts/offer", map[string]any{
		"commodity":      commodity,
		"quantity":       quantity,
		"contract_price": price,
		"role":           role,
	}, &out)
	return out, err
}

func (c *Client) Evaluate(ctx context.Context, contractID string) (OfferResult, error) {
	var out OfferResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/contracts/"+url.PathEscape(contractID)+"/evaluate", nil, &out)
	return out, err
}

func (c *Client) Accept(ctx context.Context, contractID string, useCounterPrice bool) (game.Contract, error) {
	var out game.Contract
	var body map[string]any
	if useCounterPrice {
		body = map[string]any{"use_counter_price": true}
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/contracts/"+url.PathEscape(contractID)+"/accept", body, &out)
	return out, err
}

func (c *Client) Reject(ctx context.Context, contractID string) (game.Contract, error) {
	var out game.Contract
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/contracts/"+url.PathEscape(contractID)+"/reject", nil, &out)
	return out, err
}

func (c *Client) Complete(ctx context.Context, contractID string) (game.TradeResult, error) {
	var out game.TradeResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/contracts/"+url.PathEscape(contractID)+"/complete", nil, &out)
	return out, err
}

func (c *Client) PendingAIContracts(ctx context.Context) ([]game.Contract, error) {
	var out struct {
		Contracts []game.Contract `json:"contracts"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/ai/contracts", nil, &out)
	return out.Contracts, err
}

func (c *Client) GenerateAIContracts(ctx context.Context, count int) ([]game.Contract, error) {
	var out struct {
		Contracts []game.Contract `json:"contracts"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ai/contracts/generate", map[string]any{"count": count}, &out)
	return out.Contracts, err
}

func (c *Client) Reset(ctx context.Context) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/reset", nil, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
