package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivanmatek/ember/internal/domain/model"
)

type fakeMatchStore struct {
	matches       []*model.Match
	deactivateErr map[string]error
}

func (f *fakeMatchStore) ListExpired(_ context.Context, now time.Time) ([]model.Match, error) {
	out := make([]model.Match, 0)
	for _, m := range f.matches {
		if m.Active && m.ExpiresAt.Before(now) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMatchStore) Deactivate(_ context.Context, id string) (bool, error) {
	if err := f.deactivateErr[id]; err != nil {
		return false, err
	}
	for _, m := range f.matches {
		if m.ID == id && m.Active {
			m.Active = false
			return true, nil
		}
	}
	return false, nil
}

type fakeProfileStore struct {
	matched map[string]bool
	failFor map[string]error
}

func (f *fakeProfileStore) SetMatched(_ context.Context, id string, matched bool) error {
	if err := f.failFor[id]; err != nil {
		return err
	}
	if f.matched == nil {
		f.matched = make(map[string]bool)
	}
	f.matched[id] = matched
	return nil
}

func fixedClock(j *Job, at time.Time) {
	j.now = func() time.Time { return at }
}

func TestSweepReleasesExpiredMatches(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 1, time.UTC)
	matches := &fakeMatchStore{matches: []*model.Match{
		{ID: "m1", UserAID: "a", UserBID: "b", Active: true, ExpiresAt: now.Add(-time.Second)},
		{ID: "m2", UserAID: "c", UserBID: "d", Active: true, ExpiresAt: now.Add(time.Hour)},
	}}
	profiles := &fakeProfileStore{matched: map[string]bool{"a": true, "b": true, "c": true, "d": true}}

	job := New(matches, profiles, time.Minute, nil)
	fixedClock(job, now)

	released, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("unexpected release count: got %d want 1", released)
	}
	if matches.matches[0].Active {
		t.Fatal("expired match must be deactivated")
	}
	if !matches.matches[1].Active {
		t.Fatal("unexpired match must stay active")
	}
	if profiles.matched["a"] || profiles.matched["b"] {
		t.Fatal("expected both participants released")
	}
	if !profiles.matched["c"] || !profiles.matched["d"] {
		t.Fatal("participants of the live match must stay flagged")
	}
}

func TestSweepAtExactBoundary(t *testing.T) {
	createdAt := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	expiresAt := createdAt.Add(48 * time.Hour)
	matches := &fakeMatchStore{matches: []*model.Match{
		{ID: "m1", UserAID: "a", UserBID: "b", Active: true, CreatedAt: createdAt, ExpiresAt: expiresAt},
	}}
	profiles := &fakeProfileStore{matched: map[string]bool{"a": true, "b": true}}

	job := New(matches, profiles, time.Minute, nil)
	fixedClock(job, expiresAt.Add(time.Second))

	released, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected match released one second past expiry, got %d", released)
	}
	if profiles.matched["a"] || profiles.matched["b"] {
		t.Fatal("expected both participants eligible again")
	}
}

func TestSweepContinuesPastPerRecordFailures(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	matches := &fakeMatchStore{
		matches: []*model.Match{
			{ID: "bad", UserAID: "a", UserBID: "b", Active: true, ExpiresAt: now.Add(-time.Minute)},
			{ID: "good", UserAID: "c", UserBID: "d", Active: true, ExpiresAt: now.Add(-time.Minute)},
		},
		deactivateErr: map[string]error{"bad": errors.New("write failed")},
	}
	profiles := &fakeProfileStore{matched: map[string]bool{"a": true, "b": true, "c": true, "d": true}}

	job := New(matches, profiles, time.Minute, nil)
	fixedClock(job, now)

	released, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep must not abort on a per-record failure: %v", err)
	}
	if released != 1 {
		t.Fatalf("unexpected release count: got %d want 1", released)
	}
	if matches.matches[1].Active {
		t.Fatal("second record must be processed despite first failing")
	}
}

func TestSweepPartialProfileFailureStillCountsOthers(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	matches := &fakeMatchStore{matches: []*model.Match{
		{ID: "m1", UserAID: "a", UserBID: "b", Active: true, ExpiresAt: now.Add(-time.Minute)},
	}}
	profiles := &fakeProfileStore{
		matched: map[string]bool{"a": true, "b": true},
		failFor: map[string]error{"b": errors.New("write failed")},
	}

	job := New(matches, profiles, time.Minute, nil)
	fixedClock(job, now)

	released, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("partially released match must not count, got %d", released)
	}
	if profiles.matched["a"] {
		t.Fatal("first participant should still have been released")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	matches := &fakeMatchStore{matches: []*model.Match{
		{ID: "m1", UserAID: "a", UserBID: "b", Active: true, ExpiresAt: now.Add(-time.Minute)},
	}}
	profiles := &fakeProfileStore{matched: map[string]bool{"a": true, "b": true}}

	job := New(matches, profiles, time.Minute, nil)
	fixedClock(job, now)

	if _, err := job.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	released, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("re-sweeping deactivated records must be a no-op, got %d", released)
	}
}
