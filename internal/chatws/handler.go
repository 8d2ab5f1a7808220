// ABOUTME: WebSocket chat endpoint: duplex stream between the client and the agent system.
// ABOUTME: Plain-text frames with role tags; an interrupt flips the next inbound frame into a reply.

package chatws

import (
	"context"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/coder/websocket"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/system"
)

// MaxMessageLength caps one inbound frame. Longer frames get an inline error
// and do not start a turn.
const MaxMessageLength = 40000

// Frame prefixes. Clients dispatch on these, so they are wire surface.
const (
	prefixUser      = "User: "
	prefixAgent     = "Agent: "
	prefixInterrupt = "Agent [INTERRUPT]: "
	prefixUpdate    = "Agent [UPDATE]: "
	prefixError     = "Error: "
)

const tooLongError = prefixError + "Message exceeds maximum length of 40000 characters."

// SessionFactory builds a session manager for one conversation thread.
type SessionFactory func(threadID string) *system.Manager

// Handler upgrades chat connections and runs the frame loop.
type Handler struct {
	verifier auth.TokenVerifier
	sessions SessionFactory
	logger   *slog.Logger
}

func NewHandler(verifier auth.TokenVerifier, sessions SessionFactory, logger *slog.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		sessions: sessions,
		logger:   logger.With("component", "chatws"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	// The library's default read limit is below our message ceiling; raise
	// it well past 40k characters at four bytes each so oversized frames
	// reach the inline length check instead of killing the connection.
	ws.SetReadLimit(1 << 20)

	user, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		h.logger.Warn("rejected unauthenticated connection", "error", err, "remote", r.RemoteAddr)
		ws.Close(websocket.StatusPolicyViolation, "invalid token")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ctx = auth.WithUser(ctx, user)

	logger := h.logger.With("user_id", user.UserID)
	logger.Info("chat session connected")

	mgr := h.sessions(user.UserID)
	if err := mgr.Build(ctx); err != nil {
		logger.Error("session build failed", "error", err)
		h.write(ctx, ws, prefixError+"Unable to start the assistant. Please try again later.")
		ws.Close(websocket.StatusInternalError, "session build failed")
		return
	}
	for name, info := range mgr.BuildInfo() {
		if !info.Built {
			logger.Warn("agent unavailable for session", "agent", name, "reason", info.Err)
		}
	}

	h.frameLoop(ctx, ws, mgr, logger)
	logger.Info("chat session ended")
}

// frameLoop reads one frame, runs one turn, and writes the turn's events.
// Turns are strictly sequential per connection.
func (h *Handler) frameLoop(ctx context.Context, ws *websocket.Conn, mgr *system.Manager, logger *slog.Logger) {
	interruptMode := false

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logger.Info("client disconnected")
			} else {
				logger.Warn("websocket read error", "error", err)
			}
			ws.Close(websocket.StatusNormalClosure, "session ended")
			return
		}

		message := string(data)
		// The cap is in characters, not bytes.
		if utf8.RuneCountInString(message) > MaxMessageLength {
			logger.Warn("oversized frame rejected", "length", utf8.RuneCountInString(message))
			if !h.write(ctx, ws, tooLongError) {
				return
			}
			continue
		}

		if !h.write(ctx, ws, prefixUser+message) {
			return
		}

		var (
			events <-chan system.Event
			errs   <-chan error
		)
		if interruptMode {
			events, errs = mgr.Resume(ctx, message)
		} else {
			events, errs = mgr.Stream(ctx, message)
		}
		interruptMode = false

		for ev := range events {
			var frame string
			switch ev.Type {
			case system.EventInterrupt:
				frame = prefixInterrupt + ev.Content
				interruptMode = true
			case system.EventComplete:
				frame = prefixAgent + ev.Content
			default:
				frame = prefixUpdate + ev.Content
			}
			if !h.write(ctx, ws, frame) {
				return
			}
		}

		if err := <-errs; err != nil {
			logger.Error("turn failed", "error", err)
			h.write(ctx, ws, prefixError+err.Error())
			ws.Close(websocket.StatusInternalError, "agent error")
			return
		}
	}
}

// write sends one text frame, reporting whether the connection is still
// usable.
func (h *Handler) write(ctx context.Context, ws *websocket.Conn, frame string) bool {
	if err := ws.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}
