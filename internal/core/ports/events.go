package ports

import "go.trai.ch/kiln/internal/core/domain"

// EventSink receives build diagnostics.
//
//go:generate go run go.uber.org/mock/mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks
type EventSink interface {
	Emit(event domain.Event)
}
