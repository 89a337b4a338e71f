package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mimir-ai/mimir/internal/vectorstore"
)

// Metadata keys carried by conversation-history chunks. The raw input
// and output ride along verbatim so a turn can be replayed without
// re-parsing the formatted pair.
const (
	metaUserID     = "user_id"
	metaTimestamp  = "timestamp"
	metaUserInput  = "user_input"
	metaAIResponse = "ai_response"
)

const (
	historyQueueDepth   = 64
	historyWriteTimeout = 30 * time.Second
)

// turn is one (query, answer) exchange awaiting persistence.
type turn struct {
	userID     string
	userInput  string
	aiResponse string
}

// historyWriter persists conversation turns in the background.
//
// Persistence is fire-and-forget relative to the response path, but
// writes for a given user are serialized through a per-user queue so
// append order matches exchange order. Failures are logged and
// swallowed: the caller already has their answer.
type historyWriter struct {
	resolver CollectionResolver
	logger   *slog.Logger

	mu     sync.Mutex
	queues map[string]chan turn
	closed bool
	wg     sync.WaitGroup
}

func newHistoryWriter(resolver CollectionResolver, logger *slog.Logger) *historyWriter {
	return &historyWriter{
		resolver: resolver,
		logger:   logger,
		queues:   make(map[string]chan turn),
	}
}

// record enqueues a turn for the user's sequential writer, starting one
// lazily on first use. record never blocks: turns recorded after close,
// or while the user's queue is full, are dropped with a warning. One
// user's backlog can therefore never stall another user's response path.
func (w *historyWriter) record(t turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Warn("history writer closed, dropping conversation turn", "user_id", t.userID)
		return
	}

	ch, ok := w.queues[t.userID]
	if !ok {
		ch = make(chan turn, historyQueueDepth)
		w.queues[t.userID] = ch
		w.wg.Add(1)
		go w.run(ch)
	}

	// Non-blocking send keeps the enqueue ordered with close without ever
	// holding the lock across a stalled queue.
	select {
	case ch <- t:
	default:
		w.logger.Warn("history queue full, dropping conversation turn",
			"user_id", t.userID, "depth", historyQueueDepth)
	}
}

// run drains one user's queue until close.
func (w *historyWriter) run(ch chan turn) {
	defer w.wg.Done()
	for t := range ch {
		if err := w.persist(t); err != nil {
			w.logger.Warn("persisting conversation turn failed",
				"user_id", t.userID, "error", err)
		}
	}
}

// persist writes one turn as a single chunk into the user's
// conversation-history partition. The formatted pair is the searchable
// content; the raw input and output go into metadata verbatim.
func (w *historyWriter) persist(t turn) error {
	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	name := SourceConversationHistory.CollectionName(t.userID)
	col, err := w.resolver.GetOrCreate(ctx, name)
	if err != nil {
		return fmt.Errorf("resolving history collection: %w", err)
	}

	now := time.Now().UTC()
	chunk := vectorstore.Chunk{
		ID:      uuid.NewString(),
		Content: fmt.Sprintf("User: %s\nAssistant: %s", t.userInput, t.aiResponse),
		Metadata: map[string]string{
			"source_type":  string(SourceConversationHistory),
			metaUserID:     t.userID,
			metaTimestamp:  now.Format(time.RFC3339),
			metaUserInput:  t.userInput,
			metaAIResponse: t.aiResponse,
		},
		CreatedAt: now,
	}

	if err := col.Add(ctx, []vectorstore.Chunk{chunk}); err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}

	w.logger.Debug("stored conversation turn", "user_id", t.userID)
	return nil
}

// close stops accepting turns and waits for queued writes to drain.
func (w *historyWriter) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for _, ch := range w.queues {
		close(ch)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
