package service

import "go-inventory-tracker/internal/ws"

// Notifier receives domain events; *ws.Hub is the production implementation.
type Notifier interface {
	Publish(event ws.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(ws.Event) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
