package web

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

//go:embed static
var staticFS embed.FS

const maxBodyBytes = 1 << 20

// Server exposes one conversation over HTTP. The store is owned by the caller
// and shared by every client of the server; exchanges are serialized.
type Server struct {
	store     *conversation.Store
	completer conversation.Completer
	streamer  conversation.StreamingCompleter

	mu sync.Mutex
}

type ServerOption func(*Server)

// WithStreamer enables token streaming on /api/messages/stream. Without it the
// stream endpoint writes the whole reply at once.
func WithStreamer(streamer conversation.StreamingCompleter) ServerOption {
	return func(s *Server) {
		s.streamer = streamer
	}
}

func NewServer(store *conversation.Store, completer conversation.Completer, options ...ServerOption) *Server {
	ret := &Server{
		store:     store,
		completer: completer,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// Handler returns the routes wrapped in logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/messages", s.handleMessages)
	mux.HandleFunc("/api/messages/stream", s.handleStream)

	return chainMiddlewares(mux, withCORS, withLogging)
}

type turnResponse struct {
	Role    conversation.Role `json:"role"`
	Content string            `json:"content"`
}

type messagesResponse struct {
	Messages []turnResponse `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string                   `json:"error"`
	Kind  conversation.FailureKind `json:"kind,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListMessages(w, r)
	case http.MethodPost:
		s.handleSendMessage(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handleListMessages returns the visible transcript; the system turn is hidden.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	turns := s.store.Export().WithoutSystem()
	s.mu.Unlock()

	resp := messagesResponse{Messages: make([]turnResponse, 0, len(turns))}
	for _, t := range turns {
		resp.Messages = append(resp.Messages, turnResponse{Role: t.Role, Content: t.Content})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSendMessage(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	s.mu.Lock()
	reply, err := s.store.Exchange(r.Context(), s.completer, req.Text)
	s.mu.Unlock()
	if err != nil {
		writeCompletionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{Reply: reply})
}

// handleStream writes reply fragments as plain text while they arrive. Errors
// before the first fragment are reported as JSON with a status code; later
// errors can only be appended to the body.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, err := decodeSendMessage(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	sink := func(fragment string) {
		if !started {
			started = true
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.WriteHeader(http.StatusOK)
		}
		_, _ = io.WriteString(w, fragment)
		if flusher != nil {
			flusher.Flush()
		}
	}

	s.mu.Lock()
	if s.streamer != nil {
		_, err = s.store.ExchangeStream(r.Context(), s.streamer, req.Text, sink)
	} else {
		var reply string
		reply, err = s.store.Exchange(r.Context(), s.completer, req.Text)
		if err == nil {
			sink(reply)
		}
	}
	s.mu.Unlock()

	if err == nil {
		return
	}
	if !started {
		writeCompletionError(w, err)
		return
	}

	log.Warn().Err(err).Msg("stream interrupted")
	_, _ = io.WriteString(w, "\n\n[error: "+string(conversation.KindOf(err))+"] "+err.Error()+"\n")
}

func decodeSendMessage(r *http.Request) (*sendMessageRequest, error) {
	var req sendMessageRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, errors.Wrap(err, "invalid JSON body")
	}
	return &req, nil
}

func statusForKind(kind conversation.FailureKind) int {
	switch kind {
	case conversation.FailureValidation, conversation.FailureInvalidRequest:
		return http.StatusBadRequest
	case conversation.FailureCredential:
		return http.StatusUnauthorized
	case conversation.FailureQuota:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func writeCompletionError(w http.ResponseWriter, err error) {
	kind := conversation.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("kind", string(kind)).Msg("exchange failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
