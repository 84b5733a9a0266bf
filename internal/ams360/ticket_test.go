package ams360

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTicketCacheCoalescesLogins(t *testing.T) {
	var logins int32
	cache := newTicketCache(time.Minute, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&logins, 1)
		time.Sleep(10 * time.Millisecond)
		return "TICKET-1", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := cache.Get(context.Background())
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			if ticket != "TICKET-1" {
				t.Errorf("ticket = %q", ticket)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&logins); n != 1 {
		t.Errorf("login calls = %d, want 1", n)
	}

	// A later Get within the TTL reuses the cached ticket.
	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&logins); n != 1 {
		t.Errorf("login calls after cached Get = %d, want 1", n)
	}
}

func TestTicketCacheInvalidateForcesRelogin(t *testing.T) {
	var logins int32
	cache := newTicketCache(time.Minute, func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&logins, 1)
		if n == 1 {
			return "TICKET-1", nil
		}
		return "TICKET-2", nil
	})

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate()

	ticket, err := cache.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ticket != "TICKET-2" {
		t.Errorf("ticket after invalidate = %q, want TICKET-2", ticket)
	}
	if n := atomic.LoadInt32(&logins); n != 2 {
		t.Errorf("login calls = %d, want 2", n)
	}
}

func TestTicketCacheExpiry(t *testing.T) {
	var logins int32
	cache := newTicketCache(20*time.Millisecond, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&logins, 1)
		return "T", nil
	})

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&logins); n != 2 {
		t.Errorf("login calls = %d, want 2 after expiry", n)
	}
}

func TestTicketCacheLoginFailureIsNotCached(t *testing.T) {
	var logins int32
	cache := newTicketCache(time.Minute, func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&logins, 1) == 1 {
			return "", errors.New("bad credentials")
		}
		return "T", nil
	})

	if _, err := cache.Get(context.Background()); err == nil {
		t.Fatal("first Get should surface the login error")
	}
	ticket, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if ticket != "T" {
		t.Errorf("ticket = %q", ticket)
	}
}
