package snowflake

import (
	"testing"
	"time"
)

func TestNewRejectsWorkerOverflow(t *testing.T) {
	_, err := New(maxWorkerValue + 1)
	if err == nil {
		t.Error("expected error for worker ID above maximum")
	}
}

func TestGenerateExtract(t *testing.T) {
	g, err := New(7)
	if err != nil {
		t.Fatal(err)
	}

	before := time.Now().UnixMilli()
	id := g.Generate()
	s := Extract(id)

	if s.WorkerID != 7 {
		t.Errorf("WorkerID = %d, want 7", s.WorkerID)
	}
	if s.Timestamp < before {
		t.Errorf("Timestamp %d is before %d", s.Timestamp, before)
	}
	if ExtractTimestamp(id) != s.Timestamp {
		t.Error("ExtractTimestamp disagrees with Extract")
	}
}

func TestGenerateUniqueAcrossIncrementOverflow(t *testing.T) {
	g, err := New(0)
	if err != nil {
		t.Fatal(err)
	}

	// frozen clock forces increment overflow, then moves forward
	frozen := time.Now()
	calls := 0
	g.now = func() time.Time {
		calls++
		if calls > int(maxIncrementValue)+2 {
			return frozen.Add(time.Millisecond)
		}
		return frozen
	}

	seen := make(map[int64]bool)
	var last int64
	for range int(maxIncrementValue) + 10 {
		id := g.Generate()
		if seen[id] {
			t.Fatalf("duplicate ID %d", id)
		}
		if id <= last {
			t.Fatalf("ID %d not greater than previous %d", id, last)
		}
		seen[id] = true
		last = id
	}
}
