package api

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fjod/yofoo_cart/internal/storage"
)

type storedCookie struct {
	Value   string  `json:"value"`
	Expires *string `json:"expires"`
}

// cookieHeader rebuilds the Cookie header from the auth library's blob:
// {"name": {"value": "...", "expires": "..."}}. Expired cookies are dropped.
func cookieHeader(blob []byte, now time.Time) string {
	if len(blob) == 0 {
		return ""
	}
	var parsed map[string]storedCookie
	if err := json.Unmarshal(blob, &parsed); err != nil {
		return ""
	}

	names := make([]string, 0, len(parsed))
	for name := range parsed {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		c := parsed[name]
		if c.Expires != nil && *c.Expires != "" {
			if exp, err := time.Parse(time.RFC3339, *c.Expires); err == nil && exp.Before(now) {
				continue
			}
		}
		parts = append(parts, name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func (c *Client) sessionCookie(ctx context.Context) string {
	if c.session == nil {
		return ""
	}
	blob, err := c.session.Get(ctx, storage.SessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.WarnContext(ctx, "failed to read session cookie", "error", err)
		}
		return ""
	}
	return cookieHeader(blob, c.now())
}
