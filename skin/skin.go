package skin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/oerror"
)

const (
	// DefaultProfileURL looks up the profile id of a player name. %s is replaced with the name.
	DefaultProfileURL = "https://api.mojang.com/users/profiles/minecraft/%s"
	// DefaultSessionURL looks up the signed textures of a profile id. %s is replaced with the id.
	DefaultSessionURL = "https://sessionserver.mojang.com/session/minecraft/profile/%s?unsigned=false"
	// DefaultTimeout bounds each of the two requests of a lookup.
	DefaultTimeout = 5 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fetcher looks up signed skins of player names from the identity service.
type Fetcher struct {
	ProfileURL string
	SessionURL string
	Client     *http.Client
}

// NewFetcher returns a Fetcher using the default URLs and a client with the timeout passed.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		ProfileURL: DefaultProfileURL,
		SessionURL: DefaultSessionURL,
		Client:     &http.Client{Timeout: timeout},
	}
}

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type texturedProfile struct {
	ID         string `json:"id"`
	Properties []struct {
		Name      string `json:"name"`
		Value     string `json:"value"`
		Signature string `json:"signature"`
	} `json:"properties"`
}

// Fetch returns the signed skin of the player with the name passed. oerror.ErrNotFound is returned if the
// player does not exist or has no textures.
func (f *Fetcher) Fetch(ctx context.Context, name string) (*entity.Skin, error) {
	var p profile
	if err := f.get(ctx, fmt.Sprintf(f.ProfileURL, url.PathEscape(name)), &p); err != nil {
		return nil, fmt.Errorf("profile of %s: %w", name, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("profile of %s: %w", name, oerror.ErrNotFound)
	}

	var tp texturedProfile
	if err := f.get(ctx, fmt.Sprintf(f.SessionURL, url.PathEscape(p.ID)), &tp); err != nil {
		return nil, fmt.Errorf("textures of %s: %w", name, err)
	}
	for _, prop := range tp.Properties {
		if prop.Name == "textures" {
			return &entity.Skin{Textures: prop.Value, Signature: prop.Signature}, nil
		}
	}
	return nil, fmt.Errorf("textures of %s: %w", name, oerror.ErrNotFound)
}

func (f *Fetcher) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return oerror.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return oerror.ErrNotFound
	}
	return json.Unmarshal(data, v)
}
