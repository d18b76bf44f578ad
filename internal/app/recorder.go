package app

import (
	"log"

	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/transmit"
)

// HistoryRecorder writes every delivery to the command history.
type HistoryRecorder struct {
	commands  *store.CommandRepository
	transport string
}

// NewHistoryRecorder returns a recorder that tags records with the transport name.
func NewHistoryRecorder(s *store.Store, transport string) *HistoryRecorder {
	return &HistoryRecorder{commands: s.Commands(), transport: transport}
}

// Record implements transmit.Recorder.
func (r *HistoryRecorder) Record(d transmit.Delivery) {
	rec := &store.CommandRecord{
		Command:   d.Classification.Command.String(),
		LeftHand:  d.Classification.Left.String(),
		RightHand: d.Classification.Right.String(),
		Transport: r.transport,
		SentAt:    d.EmittedAt,
	}
	if d.Err != nil {
		rec.Error = d.Err.Error()
	}
	if err := r.commands.Create(rec); err != nil {
		log.Printf("Failed to record command %s: %v", rec.Command, err)
	}
}
