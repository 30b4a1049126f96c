package store

import (
	"testing"
	"time"
)

func TestGetMissing(t *testing.T) {
	s := New()
	if _, ok := s.Get("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestSetThenGet(t *testing.T) {
	s := New()
	_, _, applied := s.Set("k", []byte("v"), SetAlways, nil, false, false)
	if !applied {
		t.Fatal("expected applied")
	}
	v, ok := s.Get("k")
	if !ok || string(v) != "v" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestSetNXRejectsExisting(t *testing.T) {
	s := New()
	s.Set("k", []byte("v1"), SetAlways, nil, false, false)
	_, _, applied := s.Set("k", []byte("v2"), SetIfNotExists, nil, false, false)
	if applied {
		t.Fatal("expected NX to reject")
	}
	v, _ := s.Get("k")
	if string(v) != "v1" {
		t.Fatalf("value mutated: %q", v)
	}
}

func TestSetXXRejectsMissing(t *testing.T) {
	s := New()
	_, _, applied := s.Set("k", []byte("v"), SetIfExists, nil, false, false)
	if applied {
		t.Fatal("expected XX to reject on missing key")
	}
}

func TestSetGetOldReturnsPriorValue(t *testing.T) {
	s := New()
	s.Set("k", []byte("old"), SetAlways, nil, false, false)
	old, had, applied := s.Set("k", []byte("new"), SetAlways, nil, false, true)
	if !applied || !had || string(old) != "old" {
		t.Fatalf("old=%q had=%v applied=%v", old, had, applied)
	}
}

func TestSetWithTTLExpires(t *testing.T) {
	s := New()
	ttl := -time.Second // already in the past
	s.Set("k", []byte("v"), SetAlways, &ttl, false, false)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected key to have lazily expired")
	}
}

func TestSetKeepTTLPreservesExpiry(t *testing.T) {
	s := New()
	ttl := time.Minute
	s.Set("k", []byte("v1"), SetAlways, &ttl, false, false)
	s.Set("k", []byte("v2"), SetAlways, nil, true, false)
	d, status := s.TTL("k")
	if status != TTLHasExpire || d <= 0 {
		t.Fatalf("status=%v d=%v", status, d)
	}
}

func TestSetWithoutKeepTTLClearsExpiry(t *testing.T) {
	s := New()
	ttl := time.Minute
	s.Set("k", []byte("v1"), SetAlways, &ttl, false, false)
	s.Set("k", []byte("v2"), SetAlways, nil, false, false)
	_, status := s.TTL("k")
	if status != TTLNoExpire {
		t.Fatalf("status=%v, want TTLNoExpire", status)
	}
}

func TestDelCountsOnlyLiveKeys(t *testing.T) {
	s := New()
	s.Set("a", []byte("1"), SetAlways, nil, false, false)
	ttl := -time.Second
	s.Set("b", []byte("2"), SetAlways, &ttl, false, false)
	n := s.Del("a", "b", "c")
	if n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
}

func TestExistsCountsDuplicates(t *testing.T) {
	s := New()
	s.Set("a", []byte("1"), SetAlways, nil, false, false)
	n := s.ExistsCount("a", "a", "missing")
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestAppendCreatesAndConcatenates(t *testing.T) {
	s := New()
	n := s.Append("k", []byte("Hello "))
	if n != 6 {
		t.Fatalf("got %d", n)
	}
	n = s.Append("k", []byte("World"))
	if n != 11 {
		t.Fatalf("got %d", n)
	}
	v, _ := s.Get("k")
	if string(v) != "Hello World" {
		t.Fatalf("got %q", v)
	}
}

func TestAppendPreservesExpiry(t *testing.T) {
	s := New()
	ttl := time.Minute
	s.Set("k", []byte("a"), SetAlways, &ttl, false, false)
	s.Append("k", []byte("b"))
	_, status := s.TTL("k")
	if status != TTLHasExpire {
		t.Fatalf("status=%v, want TTLHasExpire", status)
	}
}

func TestPersistRemovesExpiry(t *testing.T) {
	s := New()
	ttl := time.Minute
	s.Set("k", []byte("v"), SetAlways, &ttl, false, false)
	if !s.Persist("k") {
		t.Fatal("expected persist to apply")
	}
	if s.Persist("k") {
		t.Fatal("expected second persist to be a no-op")
	}
	_, status := s.TTL("k")
	if status != TTLNoExpire {
		t.Fatalf("status=%v", status)
	}
}

func TestTTLStatuses(t *testing.T) {
	s := New()
	if _, status := s.TTL("missing"); status != TTLNoKey {
		t.Fatalf("got %v, want TTLNoKey", status)
	}
	s.Set("k", []byte("v"), SetAlways, nil, false, false)
	if _, status := s.TTL("k"); status != TTLNoExpire {
		t.Fatalf("got %v, want TTLNoExpire", status)
	}
	ttl := time.Minute
	s.Set("k2", []byte("v"), SetAlways, &ttl, false, false)
	if d, status := s.TTL("k2"); status != TTLHasExpire || d > ttl || d <= 0 {
		t.Fatalf("d=%v status=%v", d, status)
	}
}

func TestExpireConditions(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetAlways, nil, false, false)

	if exists, applied := s.Expire("missing", time.Now().Add(time.Minute), ExpireAlways); exists || applied {
		t.Fatalf("exists=%v applied=%v", exists, applied)
	}

	if exists, applied := s.Expire("k", time.Now().Add(time.Minute), ExpireIfHasTTL); !exists || applied {
		t.Fatalf("XX on no-TTL key: exists=%v applied=%v", exists, applied)
	}
	if exists, applied := s.Expire("k", time.Now().Add(time.Minute), ExpireIfNoTTL); !exists || !applied {
		t.Fatalf("NX on no-TTL key: exists=%v applied=%v", exists, applied)
	}
	if exists, applied := s.Expire("k", time.Now().Add(time.Hour), ExpireIfGreater); !exists || !applied {
		t.Fatalf("GT extending: exists=%v applied=%v", exists, applied)
	}
	if exists, applied := s.Expire("k", time.Now().Add(time.Second), ExpireIfGreater); !exists || applied {
		t.Fatalf("GT shrinking should reject: exists=%v applied=%v", exists, applied)
	}
	if exists, applied := s.Expire("k", time.Now().Add(time.Second), ExpireIfLess); !exists || !applied {
		t.Fatalf("LT shrinking: exists=%v applied=%v", exists, applied)
	}
}

func TestExpireGTWithNoTTLNeverApplies(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetAlways, nil, false, false)
	if exists, applied := s.Expire("k", time.Now().Add(time.Hour), ExpireIfGreater); !exists || applied {
		t.Fatalf("GT with no current TTL should reject, got exists=%v applied=%v", exists, applied)
	}
}

func TestExpireLTWithNoTTLAlwaysApplies(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetAlways, nil, false, false)
	if exists, applied := s.Expire("k", time.Now().Add(time.Hour), ExpireIfLess); !exists || !applied {
		t.Fatalf("LT with no current TTL should apply, got exists=%v applied=%v", exists, applied)
	}
}

func TestGetExNoOptionsLeavesTTLUntouched(t *testing.T) {
	s := New()
	ttl := time.Minute
	s.Set("k", []byte("v"), SetAlways, &ttl, false, false)
	v, ok := s.GetEx("k", GetExOptions{})
	if !ok || string(v) != "v" {
		t.Fatalf("v=%q ok=%v", v, ok)
	}
	_, status := s.TTL("k")
	if status != TTLHasExpire {
		t.Fatalf("status=%v, want TTLHasExpire unchanged", status)
	}
}

func TestGetExPersistClearsTTL(t *testing.T) {
	s := New()
	ttl := time.Minute
	s.Set("k", []byte("v"), SetAlways, &ttl, false, false)
	s.GetEx("k", GetExOptions{Persist: true})
	_, status := s.TTL("k")
	if status != TTLNoExpire {
		t.Fatalf("status=%v", status)
	}
}

func TestGetExSetsNewExpiry(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), SetAlways, nil, false, false)
	at := time.Now().Add(time.Minute)
	s.GetEx("k", GetExOptions{SetExpireAt: &at})
	_, status := s.TTL("k")
	if status != TTLHasExpire {
		t.Fatalf("status=%v", status)
	}
}

func TestExpireDueRemovesPastDeadlinesOnly(t *testing.T) {
	s := New()
	past := -time.Second
	s.Set("expired", []byte("v"), SetAlways, &past, false, false)
	future := time.Hour
	s.Set("fresh", []byte("v"), SetAlways, &future, false, false)

	n := s.ExpireDue(time.Now())
	if n != 1 {
		t.Fatalf("got %d removed, want 1", n)
	}
	if s.Len() != 1 {
		t.Fatalf("got %d live keys, want 1", s.Len())
	}
}

func TestExpireDueToleratesStaleIndexEntries(t *testing.T) {
	s := New()
	ttl := time.Millisecond
	s.Set("k", []byte("v1"), SetAlways, &ttl, false, false)
	// Overwrite before the first TTL fires: the original heap entry
	// becomes stale and must be skipped without deleting the new value.
	s.Set("k", []byte("v2"), SetAlways, nil, false, false)

	time.Sleep(5 * time.Millisecond)
	s.ExpireDue(time.Now())

	v, ok := s.Get("k")
	if !ok || string(v) != "v2" {
		t.Fatalf("v=%q ok=%v, stale index entry wrongly evicted the live key", v, ok)
	}
}

func TestOnExpireCallbackFires(t *testing.T) {
	s := New()
	var removed int
	s.OnExpire(func(n int) { removed += n })
	past := -time.Second
	s.Set("k", []byte("v"), SetAlways, &past, false, false)
	s.ExpireDue(time.Now())
	if removed != 1 {
		t.Fatalf("got %d, want 1", removed)
	}
}

func TestNextDeadline(t *testing.T) {
	s := New()
	if _, ok := s.NextDeadline(); ok {
		t.Fatal("expected no deadline on empty store")
	}
	ttl := time.Minute
	s.Set("k", []byte("v"), SetAlways, &ttl, false, false)
	d, ok := s.NextDeadline()
	if !ok || d.Before(time.Now()) {
		t.Fatalf("d=%v ok=%v", d, ok)
	}
}
