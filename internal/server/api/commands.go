package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// DefaultListLimit caps GET /api/commands when no limit is given.
const DefaultListLimit = 100

// CommandsHandler serves the emitted command history.
type CommandsHandler struct {
	store *store.Store
}

// NewCommandsHandler creates a new CommandsHandler with the given store.
func NewCommandsHandler(s *store.Store) *CommandsHandler {
	return &CommandsHandler{store: s}
}

type commandResponse struct {
	ID        string `json:"id"`
	Command   string `json:"command"`
	LeftHand  string `json:"left_hand"`
	RightHand string `json:"right_hand"`
	Transport string `json:"transport,omitempty"`
	Error     string `json:"error,omitempty"`
	Delivered bool   `json:"delivered"`
	SentAt    string `json:"sent_at"`
}

type listCommandsResponse struct {
	Commands []commandResponse `json:"commands"`
	Total    int               `json:"total"`
}

type pruneResponse struct {
	Removed int64 `json:"removed"`
}

func toResponse(c *store.CommandRecord) commandResponse {
	return commandResponse{
		ID:        c.ID,
		Command:   c.Command,
		LeftHand:  c.LeftHand,
		RightHand: c.RightHand,
		Transport: c.Transport,
		Error:     c.Error,
		Delivered: c.Delivered(),
		SentAt:    c.SentAt.Format(time.RFC3339Nano),
	}
}

// ServeHTTP handles GET (list, ?limit=N) and DELETE (prune, ?before=RFC3339).
func (h *CommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.prune(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CommandsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.store.Commands().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list commands")
		return
	}
	total, err := h.store.Commands().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count commands")
		return
	}

	resp := listCommandsResponse{Commands: make([]commandResponse, 0, len(records)), Total: total}
	for _, c := range records {
		resp.Commands = append(resp.Commands, toResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CommandsHandler) prune(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("before")
	if v == "" {
		writeError(w, http.StatusBadRequest, "before is required")
		return
	}
	before, err := time.Parse(time.RFC3339, v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
		return
	}

	removed, err := h.store.Commands().DeleteBefore(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete commands")
		return
	}
	writeJSON(w, http.StatusOK, pruneResponse{Removed: removed})
}
