package service

import (
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/ws"
)

// Notifier receives events after the change they describe has committed.
type Notifier interface {
	Publish(ev ws.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(ws.Event) {}

// NopNotifier discards every event.
var NopNotifier Notifier = nopNotifier{}

func eventUser(actor model.Actor) *ws.EventUser {
	return &ws.EventUser{ID: actor.ID, Name: actor.Name}
}

// StockChange is the payload of a stock_update event.
type StockChange struct {
	ProductID   string `json:"product_id"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	Reference   string `json:"reference,omitempty"`
}
