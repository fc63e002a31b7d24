// Package audit decouples scan auditing from the request path. The verifier
// pushes events onto a buffered channel and returns immediately; a single
// consumer goroutine persists them. A full buffer drops the event rather
// than slow the gate; audit failures must never surface as scan failures.
package audit

import (
	"context"
	"log/slog"
	"sync"

	"nightgate/internal/infra/repository"
	"nightgate/internal/monitoring"
)

const defaultBufferSize = 1024

type AuditStore interface {
	Insert(ctx context.Context, rec repository.ScanAuditRecord) error
}

type Writer struct {
	store  AuditStore
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewWriter(store AuditStore) *Writer {
	return &Writer{
		store:  store,
		events: make(chan Event, defaultBufferSize),
		done:   make(chan struct{}),
	}
}

// Emit never blocks. When the buffer is full the event is counted as dropped
// and the scan proceeds.
func (w *Writer) Emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		monitoring.RecordAuditDropped()
		slog.Warn("audit buffer full, dropping event", "device_id", ev.DeviceID, "reason", ev.Reason)
	}
}

func (w *Writer) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop drains buffered events before returning.
func (w *Writer) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
}

func (w *Writer) run() {
	defer w.wg.Done()
	for {
		select {
		case ev := <-w.events:
			w.persist(ev)
		case <-w.done:
			for {
				select {
				case ev := <-w.events:
					w.persist(ev)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) persist(ev Event) {
	rec := repository.ScanAuditRecord{
		EventID:     ev.EventID,
		DeviceID:    ev.DeviceID,
		Method:      ev.Method,
		InputDigest: ev.InputDigest,
		Accepted:    ev.Accepted,
		Reason:      ev.Reason,
		ReEntry:     ev.ReEntry,
		ScannedAt:   ev.ScannedAt,
	}
	if err := w.store.Insert(context.Background(), rec); err != nil {
		// Swallowed: the scan that produced this event already answered.
		slog.Error("failed to persist audit record", "error", err.Error())
	}
}
