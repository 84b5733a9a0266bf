package ams360

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// loginFunc performs a fresh authentication and returns the session ticket.
type loginFunc func(ctx context.Context) (string, error)

// ticketCache holds the current session ticket with an expiry. Concurrent
// refreshes are coalesced so a burst of expired callers triggers a single
// login.
type ticketCache struct {
	mu        sync.Mutex
	ticket    string
	expiresAt time.Time

	ttl   time.Duration
	login loginFunc
	group singleflight.Group
}

func newTicketCache(ttl time.Duration, login loginFunc) *ticketCache {
	return &ticketCache{ttl: ttl, login: login}
}

// Get returns a valid ticket, logging in when the cached one is missing or
// expired.
func (c *ticketCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.ticket != "" && time.Now().Before(c.expiresAt) {
		t := c.ticket
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("login", func() (any, error) {
		c.mu.Lock()
		if c.ticket != "" && time.Now().Before(c.expiresAt) {
			t := c.ticket
			c.mu.Unlock()
			return t, nil
		}
		c.mu.Unlock()

		ticket, err := c.login(ctx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.ticket = ticket
		c.expiresAt = time.Now().Add(c.ttl)
		c.mu.Unlock()
		return ticket, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached ticket so the next Get logs in again. Called
// when the API rejects a request as unauthenticated.
func (c *ticketCache) Invalidate() {
	c.mu.Lock()
	c.ticket = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
