package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"pawgram/internal/middleware"
	"pawgram/internal/models"
)

const wsTicketTTL = 30 * time.Second

// IssueWSTicket issues a short-lived single-use ticket the browser can put
// in the websocket URL instead of a long-lived JWT.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondError(c,
			models.NewInternalError(fmt.Errorf("ticket store unavailable")))
	}

	userID := currentUserID(c)
	ticket := uuid.NewString()
	key := fmt.Sprintf("ws_ticket:%s", ticket)

	if err := s.redis.Set(c.Context(), key,
		fmt.Sprintf("%d", userID), wsTicketTTL).Err(); err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler upgrades the connection and joins the caller's personal
// channel. AuthRequired has already validated the ticket or token; an
// unauthenticated connection is refused.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused",
				"user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", "user_id", userID)

		go client.WritePump()
		client.ReadPump()
	})
}
