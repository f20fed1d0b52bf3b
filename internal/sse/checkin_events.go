package sse

import (
	"context"
	"sync"

	"github.com/engdahman/conference-app/internal/models"
)

// CheckinEventEmitter manages SSE connections and event broadcasting for the
// live check-in feed on the admin dashboard. There is a single feed: every
// subscriber sees every check-in.
type CheckinEventEmitter struct {
	clients     []chan models.AttendeeCheckedInEvent
	clientMutex sync.RWMutex
}

func NewCheckinEventEmitter() *CheckinEventEmitter {
	return &CheckinEventEmitter{}
}

// Subscribe adds a client to the check-in feed. The returned channel is
// closed and removed when ctx is done.
func (e *CheckinEventEmitter) Subscribe(ctx context.Context) chan models.AttendeeCheckedInEvent {
	clientChan := make(chan models.AttendeeCheckedInEvent, 10)

	e.clientMutex.Lock()
	e.clients = append(e.clients, clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(clientChan)
	}()

	return clientChan
}

// EmitCheckin broadcasts a check-in event to all subscribed clients.
func (e *CheckinEventEmitter) EmitCheckin(evt models.AttendeeCheckedInEvent) {
	e.clientMutex.RLock()
	clients := make([]chan models.AttendeeCheckedInEvent, len(e.clients))
	copy(clients, e.clients)
	e.clientMutex.RUnlock()

	for _, clientChan := range clients {
		// Non-blocking send so a slow client never stalls check-ins
		select {
		case clientChan <- evt:
		default:
		}
	}
}

func (e *CheckinEventEmitter) removeClient(clientChan chan models.AttendeeCheckedInEvent) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	for i, ch := range e.clients {
		if ch == clientChan {
			e.clients = append(e.clients[:i], e.clients[i+1:]...)
			close(clientChan)
			break
		}
	}
}

// GetClientCount returns the number of currently connected feed clients.
func (e *CheckinEventEmitter) GetClientCount() int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients)
}
