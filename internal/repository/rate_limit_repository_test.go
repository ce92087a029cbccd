package repository

import (
	"sync"
	"testing"
	"time"
)

func TestRateLimitRepository_HitCountsWithinWindow(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")

	repo := NewRateLimitRepository(db)

	for i := 1; i <= 3; i++ {
		count, _, err := repo.Hit(alice.ID, "messages.send", time.Minute)
		if err != nil {
			t.Fatalf("Hit failed: %v", err)
		}
		if count != i {
			t.Errorf("expected count %d, got %d", i, count)
		}
	}

	// 不同端点独立计数
	count, _, err := repo.Hit(alice.ID, "files.upload", time.Minute)
	if err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	if count != 1 {
		t.Errorf("other endpoint must start a fresh window, got %d", count)
	}
}

func TestRateLimitRepository_ExpiredWindowResets(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")

	repo := NewRateLimitRepository(db)

	// 用极短窗口制造过期
	if _, _, err := repo.Hit(alice.ID, "messages.send", time.Millisecond); err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	count, expiresAt, err := repo.Hit(alice.ID, "messages.send", time.Minute)
	if err != nil {
		t.Fatalf("Hit after expiry failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expired window must reset to 1, got %d", count)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("new window expiry must be in the future")
	}
}

func TestRateLimitRepository_ConcurrentHitsLoseNoCounts(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")

	repo := NewRateLimitRepository(db)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	counts := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, _, err := repo.Hit(alice.ID, "messages.send", time.Minute)
			if err != nil {
				errs <- err
				return
			}
			counts <- count
		}()
	}
	wg.Wait()
	close(errs)
	close(counts)
	for err := range errs {
		t.Fatalf("concurrent Hit failed: %v", err)
	}

	// 每个调用方看到的计数必须互不相同，否则首建竞争的落败方
	// 会拿到过期的 1，多放过一次请求
	seen := make(map[int]bool)
	for count := range counts {
		if seen[count] {
			t.Errorf("two callers observed the same count %d", count)
		}
		seen[count] = true
	}

	w, err := repo.Get(alice.ID, "messages.send")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if w.RequestCount != workers {
		t.Errorf("expected %d counted requests, got %d", workers, w.RequestCount)
	}
}

func TestRateLimitRepository_CleanupExpired(t *testing.T) {
	db := getTestDB(t)
	alice := seedUser(t, db, "alice")

	repo := NewRateLimitRepository(db)

	if _, _, err := repo.Hit(alice.ID, "messages.send", time.Millisecond); err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	deleted, err := repo.CleanupExpired()
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 expired window deleted, got %d", deleted)
	}
}
