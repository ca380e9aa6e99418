// Package service holds the seat allocation logic: range reconciliation
// and roll lookup.  It depends on a Store rather than on a concrete
// database so handlers and tests can substitute their own.
package service

import (
	"context"

	"github.com/iliyamo/exam-seat-allocation/internal/model"
	"github.com/iliyamo/exam-seat-allocation/internal/queue"
	"github.com/iliyamo/exam-seat-allocation/internal/repository"
)

// Store is the record store the service reads and writes.
// repository.SeatRepo is the production implementation.
type Store interface {
	FindOne(ctx context.Context, q repository.Query) (model.SeatAssignment, error)
	FindByKeys(ctx context.Context, keys []model.SeatKey) ([]model.SeatAssignment, error)
	InsertIfAbsent(ctx context.Context, seats []model.SeatAssignment) (repository.BulkResult, error)
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Mode() model.IdentityMode
}

// EventPublisher receives an event after every change to stored
// assignments.  queue.Publisher is the RabbitMQ implementation.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.AssignmentEvent) error
}
