package handler

import (
	"go-warehouse-inventory/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// upgradeOnly rejects plain HTTP requests on the websocket path.
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// StockFeed keeps a client registered until it disconnects. Clients only receive.
func StockFeed(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		hub.Register(c)
		defer hub.Unregister(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
