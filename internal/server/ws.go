package server

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// handleWebSocket upgrades the push channel for a user. The caller must
// present a token whose subject matches the requested user ID; mismatches
// close the channel with a policy violation instead of connecting it.
func (s *Server) handleWebSocket(c *gin.Context) {
	userID := c.Param("userID")
	token := c.Query("token")

	conn, err := s.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed for user %s: %v", userID, err)
		return
	}

	if token == "" {
		log.Printf("No token provided for WebSocket connection, user %s", userID)
		closePolicyViolation(conn)
		return
	}

	identity, err := s.verifier.Verify(token)
	if err != nil {
		log.Printf("Token verification failed for user %s: %v", userID, err)
		closePolicyViolation(conn)
		return
	}
	if identity.AuthUID != userID {
		log.Printf("Token subject %s does not match requested user %s", identity.AuthUID, userID)
		closePolicyViolation(conn)
		return
	}

	s.registry.Connect(conn, userID)
	defer s.registry.Disconnect(conn, userID)

	if err := conn.WriteJSON(gin.H{"type": "connection_status", "status": "connected"}); err != nil {
		log.Printf("Failed to send connection status to user %s: %v", userID, err)
		conn.Close()
		return
	}

	// Inbound messages are not part of the push protocol; drain until the
	// client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("WebSocket closed for user %s: %v", userID, err)
			break
		}
	}
	conn.Close()
}

func closePolicyViolation(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Printf("Failed to write close message: %v", err)
	}
	conn.Close()
}
