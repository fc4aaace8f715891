// In file: internal/chat/orchestrator_test.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dileep-u-k/genai-chatbot/internal/fingerprint"
	"github.com/dileep-u-k/genai-chatbot/internal/keyspace"
	"github.com/dileep-u-k/genai-chatbot/internal/llm"
	"github.com/dileep-u-k/genai-chatbot/internal/store"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestService wires the orchestrator to the in-memory store and the
// scripted gateway, all driven by one fake clock.
func newTestService() (*Service, *llm.MockGateway, *store.Memory, *fakeClock) {
	clk := newFakeClock()
	mem := store.NewMemoryWithClock(clk.Now)
	gw := &llm.MockGateway{}
	svc := NewService(mem, mem, gw)
	svc.now = clk.Now
	return svc, gw, mem, clk
}

func questionKeys(user, question string) (summaryKey, seenKey string) {
	fp := fingerprint.Key(question)
	return keyspace.ForQuestion(user, keyspace.PurposeSummary, fp),
		keyspace.ForQuestion(user, keyspace.PurposeSeen, fp)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc, gw, _, _ := newTestService()

	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Ask(context.Background(), "alice", q); !errors.Is(err, ErrEmptyQuestion) {
			t.Errorf("Ask(%q) error = %v, want ErrEmptyQuestion", q, err)
		}
	}
	if gw.FullCalls != 0 {
		t.Error("an empty question must never reach the gateway")
	}
	if records := svc.History(context.Background(), "alice", store.RecentLimit); len(records) != 0 {
		t.Error("an empty question must not be logged")
	}
}

func TestFirstAskIsAlwaysACacheMiss(t *testing.T) {
	svc, gw, _, _ := newTestService()

	result, err := svc.Ask(context.Background(), "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheStatus != StatusMiss {
		t.Errorf("first ask status = %s, want MISS", result.CacheStatus)
	}
	if result.Label != LabelFull {
		t.Errorf("first ask label = %q, want %q", result.Label, LabelFull)
	}
	if result.Text != "full answer to: What is TCP?" {
		t.Errorf("first ask must show the full answer, got %q", result.Text)
	}
	if gw.FullCalls != 1 || gw.SummaryCalls != 1 {
		t.Errorf("gateway calls = (%d full, %d summary), want (1, 1)", gw.FullCalls, gw.SummaryCalls)
	}

	records := svc.History(context.Background(), "alice", store.RecentLimit)
	if len(records) != 1 {
		t.Fatalf("history has %d records, want 1", len(records))
	}
	if records[0].Label != LabelFull || records[0].Answer != result.Text {
		t.Errorf("history must log the shown full answer, got label=%q answer=%q", records[0].Label, records[0].Answer)
	}
}

func TestRepeatAskWithinTTLIsACacheHit(t *testing.T) {
	svc, gw, _, clk := newTestService()
	ctx := context.Background()

	first, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	clk.Advance(5 * time.Minute)

	second, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheStatus != StatusHit {
		t.Fatalf("repeat status = %s, want HIT", second.CacheStatus)
	}
	if second.Label != LabelSummaryRepeat {
		t.Errorf("repeat label = %q, want %q", second.Label, LabelSummaryRepeat)
	}
	if want := "summary of: " + first.Text; second.Text != want {
		t.Errorf("repeat must show the cached summary: got %q, want %q", second.Text, want)
	}
	if gw.FullCalls != 1 || gw.SummaryCalls != 1 {
		t.Errorf("a cache hit must not call the gateway again: (%d, %d)", gw.FullCalls, gw.SummaryCalls)
	}

	// Whitespace variants of the same question share the hit.
	third, err := svc.Ask(ctx, "alice", "  What is TCP?  ")
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheStatus != StatusHit {
		t.Errorf("whitespace variant status = %s, want HIT", third.CacheStatus)
	}
}

func TestSummaryExpiryForcesRegeneration(t *testing.T) {
	svc, gw, mem, clk := newTestService()
	ctx := context.Background()

	if _, err := svc.Ask(ctx, "alice", "What is TCP?"); err != nil {
		t.Fatal(err)
	}

	// Past the summary TTL, inside the seen window: the marker alone must
	// not produce a hit.
	clk.Advance(31 * time.Minute)

	_, seenKey := questionKeys("alice", "What is TCP?")
	if seen, _ := mem.Exists(ctx, seenKey); !seen {
		t.Fatal("seen marker should still be live after 31 minutes")
	}

	result, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheStatus != StatusMiss {
		t.Errorf("status after summary expiry = %s, want MISS", result.CacheStatus)
	}
	if result.Label != LabelFull {
		t.Errorf("label after summary expiry = %q, want %q", result.Label, LabelFull)
	}
	if gw.FullCalls != 2 || gw.SummaryCalls != 2 {
		t.Errorf("expired summary must regenerate both answers: (%d, %d)", gw.FullCalls, gw.SummaryCalls)
	}
}

func TestQuestionsAreIndependentAcrossUsers(t *testing.T) {
	svc, gw, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Ask(ctx, "alice", "What is TCP?"); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Ask(ctx, "bob", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheStatus != StatusMiss {
		t.Error("alice's cache entry must not serve bob")
	}
	if gw.FullCalls != 2 {
		t.Errorf("bob's first ask must generate, FullCalls = %d", gw.FullCalls)
	}
}

func TestFullGenerationFailureLeavesNoTrace(t *testing.T) {
	svc, gw, mem, _ := newTestService()
	gw.FullErr = errors.New("rate limited")
	ctx := context.Background()

	_, err := svc.Ask(ctx, "alice", "What is TCP?")
	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Ask error = %v, want *llm.GenerationError", err)
	}
	if genErr.Stage != llm.StageFull {
		t.Errorf("failed stage = %q, want %q", genErr.Stage, llm.StageFull)
	}

	summaryKey, seenKey := questionKeys("alice", "What is TCP?")
	if _, ok, _ := mem.Get(ctx, summaryKey); ok {
		t.Error("nothing must be cached after a failed generation")
	}
	if seen, _ := mem.Exists(ctx, seenKey); seen {
		t.Error("no seen marker must be written after a failed generation")
	}
	if records := svc.History(ctx, "alice", store.RecentLimit); len(records) != 0 {
		t.Error("nothing must be logged after a failed generation")
	}
}

func TestPartialSummaryFailureStillDeliversFullAnswer(t *testing.T) {
	svc, gw, mem, _ := newTestService()
	gw.SummaryErr = errors.New("timeout")
	ctx := context.Background()

	result, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatalf("partial failure must not fail the turn: %v", err)
	}
	if result.Label != LabelFull || result.CacheStatus != StatusMiss {
		t.Errorf("partial failure result = (%q, %s), want (full, MISS)", result.Label, result.CacheStatus)
	}

	summaryKey, seenKey := questionKeys("alice", "What is TCP?")
	if _, ok, _ := mem.Get(ctx, summaryKey); ok {
		t.Error("the summary-cache write must be skipped when summarization fails")
	}
	if seen, _ := mem.Exists(ctx, seenKey); !seen {
		t.Error("the question was fully answered, so the seen marker is written")
	}
	if records := svc.History(ctx, "alice", store.RecentLimit); len(records) != 1 {
		t.Errorf("the delivered full answer must be logged, got %d records", len(records))
	}

	// With no cached summary, the repeat regenerates.
	gw.SummaryErr = nil
	repeat, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if repeat.CacheStatus != StatusMiss {
		t.Errorf("repeat after partial failure = %s, want MISS", repeat.CacheStatus)
	}
	if gw.FullCalls != 2 {
		t.Errorf("repeat must regenerate, FullCalls = %d", gw.FullCalls)
	}
}

// unavailableCache simulates an unreachable store for every operation.
type unavailableCache struct{}

func (unavailableCache) Get(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func (unavailableCache) SetWithTTL(context.Context, string, string, time.Duration) error {
	return fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func (unavailableCache) Exists(context.Context, string) (bool, error) {
	return false, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func TestUnavailableCacheDegradesToGeneration(t *testing.T) {
	clk := newFakeClock()
	mem := store.NewMemoryWithClock(clk.Now)
	gw := &llm.MockGateway{}
	svc := NewService(unavailableCache{}, mem, gw)
	svc.now = clk.Now
	ctx := context.Background()

	// Both asks generate; neither crashes nor loses the produced answer.
	for i := 0; i < 2; i++ {
		result, err := svc.Ask(ctx, "alice", "What is TCP?")
		if err != nil {
			t.Fatalf("ask %d failed: %v", i+1, err)
		}
		if result.CacheStatus != StatusMiss || result.Label != LabelFull {
			t.Errorf("ask %d = (%q, %s), want (full, MISS)", i+1, result.Label, result.CacheStatus)
		}
	}
	if gw.FullCalls != 2 {
		t.Errorf("every ask must generate while the cache is down, FullCalls = %d", gw.FullCalls)
	}
	if records := svc.History(ctx, "alice", store.RecentLimit); len(records) != 2 {
		t.Errorf("history still records delivered answers, got %d", len(records))
	}
}

func TestHistoryAndClear(t *testing.T) {
	svc, _, _, clk := newTestService()
	ctx := context.Background()

	questions := []string{"What is TCP?", "What is UDP?", "What is QUIC?"}
	for _, q := range questions {
		if _, err := svc.Ask(ctx, "alice", q); err != nil {
			t.Fatal(err)
		}
		clk.Advance(time.Minute)
	}

	records := svc.History(ctx, "alice", 2)
	if len(records) != 2 {
		t.Fatalf("History(2) returned %d records", len(records))
	}
	if records[0].Question != "What is QUIC?" || records[1].Question != "What is UDP?" {
		t.Errorf("History order = [%q, %q], want newest first", records[0].Question, records[1].Question)
	}

	if err := svc.ClearHistory(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if records := svc.History(ctx, "alice", store.RecentLimit); len(records) != 0 {
		t.Errorf("History after clear returned %d records, want 0", len(records))
	}
	if err := svc.ClearHistory(ctx, "alice"); err != nil {
		t.Errorf("clearing empty history errored: %v", err)
	}
}

func TestAliceRepeatScenario(t *testing.T) {
	svc, _, _, clk := newTestService()
	ctx := context.Background()

	first, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheStatus != StatusMiss || first.Label != LabelFull {
		t.Fatalf("first submission = (%q, %s), want (full, MISS)", first.Label, first.CacheStatus)
	}

	clk.Advance(10 * time.Minute)

	second, err := svc.Ask(ctx, "alice", "What is TCP?")
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheStatus != StatusHit || second.Label != LabelSummaryRepeat {
		t.Fatalf("second submission = (%q, %s), want (summary (repeat), HIT)", second.Label, second.CacheStatus)
	}
	if second.Text != "summary of: "+first.Text {
		t.Errorf("second submission must display the cached summary, got %q", second.Text)
	}

	records := svc.History(ctx, "alice", store.RecentLimit)
	if len(records) != 2 {
		t.Fatalf("history has %d records, want 2", len(records))
	}
	if !records[0].Timestamp.After(records[1].Timestamp) {
		t.Error("history must be newest first with alice's two distinct timestamps")
	}
	if records[0].Answer != second.Text || records[1].Answer != first.Text {
		t.Error("history must log the text actually shown on each turn")
	}
}
