package state

import (
	"time"

	"github.com/google/uuid"

	contractx "pieline/agent/contract"
	"pieline/fulfillment"
)

// Session owns everything mutable for one conversation: the active agent, the
// shared order aggregate, and the facade with its private caches. Sessions
// are never shared between conversations; a process serving many
// conversations keys them through a Store.
type Session struct {
	ID          string
	ActiveAgent contractx.AgentName
	Order       *Order
	Facade      *fulfillment.Facade

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession starts a conversation at the store-finder agent with an empty
// order and fresh caches.
func NewSession(gateway fulfillment.Gateway) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          uuid.NewString(),
		ActiveAgent: contractx.AgentStoreFinder,
		Order:       NewOrder(),
		Facade:      fulfillment.NewFacade(gateway),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Transfer switches the active agent. It has no other side effects; the order
// state carries forward unchanged.
func (s *Session) Transfer(target contractx.AgentName) contractx.TransferResult {
	from := s.ActiveAgent
	s.ActiveAgent = target
	return contractx.TransferResult{From: from, To: target}
}
