// In file: internal/chat/orchestrator.go

// Package chat implements the query orchestrator: the per-question decision
// between serving a cached condensed answer and generating a fresh full one,
// plus the durable conversation history behind it.
//
// Each submitted question resolves to exactly one of three terminal states:
//
//  1. Rejected: empty after trimming; nothing is called or stored.
//  2. CacheHit: a live summary cache entry AND a live seen marker both
//     exist; the cached summary is displayed, no generation happens.
//  3. CacheMiss: anything else; the full answer is generated, summarized,
//     cached, and displayed.
//
// Requiring the conjunction of entry and marker for a hit is intentional:
// the first ever encounter with a question always shows the full answer, and
// so does any rediscovery after the summary cache aged out, even while the
// 24h seen window is still open.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dileep-u-k/genai-chatbot/internal/fingerprint"
	"github.com/dileep-u-k/genai-chatbot/internal/keyspace"
	"github.com/dileep-u-k/genai-chatbot/internal/llm"
	"github.com/dileep-u-k/genai-chatbot/internal/store"
)

// TTLs for the two per-question facts. The seen marker deliberately outlives
// the summary cache; see the package comment for why a marker without a live
// entry still counts as a miss.
const (
	SummaryTTL = 30 * time.Minute
	SeenTTL    = 24 * time.Hour
)

// Display labels for the text shown on a turn.
const (
	LabelFull          = "full"
	LabelSummary       = "summary"
	LabelSummaryRepeat = "summary (repeat)"
)

// ErrEmptyQuestion is returned when the question is empty after trimming.
// The caller re-prompts; nothing was generated or stored.
var ErrEmptyQuestion = errors.New("question is empty")

// CacheStatus reports which terminal state a submission reached.
type CacheStatus string

const (
	StatusHit  CacheStatus = "HIT"
	StatusMiss CacheStatus = "MISS"
)

// DisplayResult is what the presentation shell renders for one turn.
type DisplayResult struct {
	Role        string      `json:"role"`
	Text        string      `json:"text"`
	Label       string      `json:"label"`
	Timestamp   time.Time   `json:"timestamp"`
	CacheStatus CacheStatus `json:"cache_status"`
}

// Service is the orchestrator. All collaborators are injected; it holds no
// connection state of its own and is safe for concurrent use across users.
type Service struct {
	cache   store.CacheStore
	history store.HistoryStore
	gateway llm.Gateway
	now     func() time.Time
}

func NewService(cache store.CacheStore, history store.HistoryStore, gateway llm.Gateway) *Service {
	return &Service{
		cache:   cache,
		history: history,
		gateway: gateway,
		now:     time.Now,
	}
}

// Ask runs one question through the state machine and returns what to
// display. Store failures never abort the turn: cache reads degrade to a
// miss and writes are logged and dropped. A *llm.GenerationError is returned
// only when the full answer itself could not be produced; in that case
// nothing was cached and nothing was appended to history.
func (s *Service) Ask(ctx context.Context, user, question string) (DisplayResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return DisplayResult{}, ErrEmptyQuestion
	}

	fp := fingerprint.Key(question)
	summaryKey := keyspace.ForQuestion(user, keyspace.PurposeSummary, fp)
	seenKey := keyspace.ForQuestion(user, keyspace.PurposeSeen, fp)

	if summary, ok := s.lookupSummary(ctx, summaryKey, seenKey); ok {
		log.Printf("✅ Cache HIT (user=%s fp=%s)", user, fp)
		ts := s.now()
		s.appendHistory(ctx, user, store.Record{
			ID:        uuid.NewString(),
			Timestamp: ts,
			Question:  question,
			Answer:    summary,
			Label:     LabelSummary,
		})
		return DisplayResult{
			Role:        "assistant",
			Text:        summary,
			Label:       LabelSummaryRepeat,
			Timestamp:   ts,
			CacheStatus: StatusHit,
		}, nil
	}
	log.Printf("⚠️ Cache MISS (user=%s fp=%s)", user, fp)

	// State reads are done; nothing store-side is held open across the
	// network calls below.
	full, err := s.gateway.GenerateFull(ctx, question)
	if err != nil {
		return DisplayResult{}, err
	}

	summary, err := s.gateway.GenerateSummary(ctx, full)
	if err != nil {
		// Partial failure: the full answer still goes out. With no summary
		// cached, a future repeat simply regenerates.
		log.Printf("WARNING: Summary generation failed, serving full answer uncached: %v", err)
	} else if werr := s.cache.SetWithTTL(ctx, summaryKey, summary, SummaryTTL); werr != nil {
		log.Printf("WARNING: Failed to write summary cache: %v", werr)
	}

	if werr := s.cache.SetWithTTL(ctx, seenKey, "1", SeenTTL); werr != nil {
		log.Printf("WARNING: Failed to write seen marker: %v", werr)
	}

	ts := s.now()
	s.appendHistory(ctx, user, store.Record{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Question:  question,
		Answer:    full,
		Label:     LabelFull,
	})
	return DisplayResult{
		Role:        "assistant",
		Text:        full,
		Label:       LabelFull,
		Timestamp:   ts,
		CacheStatus: StatusMiss,
	}, nil
}

// lookupSummary applies the conjunction rule. Any store error on either read
// degrades the whole lookup to a miss.
func (s *Service) lookupSummary(ctx context.Context, summaryKey, seenKey string) (string, bool) {
	summary, ok, err := s.cache.Get(ctx, summaryKey)
	if err != nil {
		log.Printf("WARNING: Cache read failed, treating as miss: %v", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	seen, err := s.cache.Exists(ctx, seenKey)
	if err != nil {
		log.Printf("WARNING: Seen-marker read failed, treating as miss: %v", err)
		return "", false
	}
	if !seen {
		return "", false
	}
	return summary, true
}

func (s *Service) appendHistory(ctx context.Context, user string, rec store.Record) {
	if err := s.history.Append(ctx, user, rec); err != nil {
		log.Printf("WARNING: Failed to append history for %s: %v", user, err)
	}
}

// History returns the user's most recent turns, newest first. An unreachable
// store yields an empty slice, matching "no history yet" from the shell's
// point of view.
func (s *Service) History(ctx context.Context, user string, limit int) []store.Record {
	records, err := s.history.Recent(ctx, user, limit)
	if err != nil {
		log.Printf("WARNING: History retrieval failed for %s: %v", user, err)
		return []store.Record{}
	}
	return records
}

// ClearHistory deletes the user's entire log. It is idempotent; the only
// error it can surface is an unreachable store.
func (s *Service) ClearHistory(ctx context.Context, user string) error {
	return s.history.Clear(ctx, user)
}
