package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/service"
	ws "github.com/stemsi/exstem-paper/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// PreviewHandler streams the numbering outline of a draft over a WebSocket.
type PreviewHandler struct {
	paperService *service.PaperService
	drafts       *repository.DraftRepository
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewPreviewHandler creates a new PreviewHandler.
func NewPreviewHandler(paperService *service.PaperService, drafts *repository.DraftRepository, log zerolog.Logger, allowedOrigins []string) *PreviewHandler {
	return &PreviewHandler{
		paperService: paperService,
		drafts:       drafts,
		log:          logger.Component(log, "preview_handler"),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// Preview godoc
// GET /ws/v1/papers/:id/preview?token=
// Sends the outline on connect and again after every draft save. Clients
// may send {"action":"ping"} or {"action":"refresh"}.
func (h *PreviewHandler) Preview(c *gin.Context) {
	paperID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before reading the outline so no save between the two is lost.
	sub := h.drafts.Subscribe(ctx, paperID)
	defer sub.Close()
	if _, err := sub.Receive(c.Request.Context()); err != nil {
		fail(c, h.log, fmt.Errorf("subscribe to draft changes: %w", err))
		return
	}
	changes := sub.Channel()

	// The draft must exist before upgrading so the error is plain JSON.
	outline, err := h.paperService.Outline(c.Request.Context(), paperID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	ws.KeepAlive(conn)

	log := h.log.With().
		Str("conn_id", uuid.NewString()).
		Str("paper_id", paperID.String()).
		Logger()
	log.Info().Msg("Preview client connected")

	if err := ws.WriteTyped(conn, ws.OutlineResponse{Event: ws.EventOutline, PaperID: paperID.String(), Outline: outline}); err != nil {
		return
	}

	requests := make(chan ws.RequestEnvelope)
	go h.readLoop(ctx, conn, requests, cancel, log)

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Preview client disconnected")
			return

		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}

		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := h.pushOutline(ctx, conn, paperID); err != nil {
				return
			}

		case req := <-requests:
			var err error
			switch req.Action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				err = h.pushOutline(ctx, conn, paperID)
			default:
				err = ws.WriteError(conn, "unknown action")
			}
			if err != nil {
				return
			}
		}
	}
}

// readLoop forwards client messages until the connection closes. All writes
// stay on the Preview goroutine.
func (h *PreviewHandler) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- ws.RequestEnvelope, cancel context.CancelFunc, log zerolog.Logger) {
	defer cancel()
	for {
		var req ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Preview read error")
			}
			return
		}
		select {
		case out <- req:
		case <-ctx.Done():
			return
		}
	}
}

func (h *PreviewHandler) pushOutline(ctx context.Context, conn *websocket.Conn, paperID model.ID) error {
	outline, err := h.paperService.Outline(ctx, paperID)
	if err != nil {
		return ws.WriteError(conn, err.Error())
	}
	return ws.WriteTyped(conn, ws.OutlineResponse{Event: ws.EventOutline, PaperID: paperID.String(), Outline: outline})
}
