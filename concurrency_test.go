package graw

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/jamesprial/go-reddit-session/test_generators"
)

// TestClient_ConcurrentUse shares one client between goroutines mixing
// anonymous reads and authenticated writes.
func TestClient_ConcurrentUse(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.login(t, "firefox")
	f.server.SetJSON("/r/golang/new.json", http.StatusOK, test_generators.NewThreadGenerator(3).Listing("golang", 20))
	f.server.SetJSON("/api/vote", http.StatusOK, `{}`)

	const workers = 16
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				listing, err := f.client.ReadListing(ctx, "golang", 5, i, "new")
				if err == nil && len(listing.Posts) != min(5, max(0, 20-i)) {
					err = fmt.Errorf("worker %d: got %d posts", i, len(listing.Posts))
				}
				errs <- err
				return
			}
			_, err := f.client.Vote(ctx, fmt.Sprintf("t3_p%d", i), 1)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
	if got := f.server.CallCount("/r/golang/new.json"); got != workers/2 {
		t.Errorf("expected %d listing requests, got %d", workers/2, got)
	}
	if got := f.server.CallCount("/api/vote"); got != workers/2 {
		t.Errorf("expected %d votes, got %d", workers/2, got)
	}
	// Writers queue behind one login instead of racing to log in.
	if got := f.server.CallCount("/"); got != 1 {
		t.Errorf("expected a single login, got %d", got)
	}
}
