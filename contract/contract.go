//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"peer-chat/domain"
	"peer-chat/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision, the Worker interface stays name-free.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Plugin is the calling convention of the external peer-to-peer transport:
// named commands going out, named event channels coming in.
type Plugin interface {
	Invoke(ctx context.Context, command string, payload []byte) error
	Listen(channel string, listener func(payload []byte)) (unlisten func(), err error)
	LocalPeerID() string
}

// RemoteHandler receives one inbound message.
// An empty peerID means the transport didn't say who sent it.
type RemoteHandler func(peerID string, text string)

type Subscription interface {
	Cancel()
}

// Bridge is the typed view of a Plugin used by the transcript controller.
type Bridge interface {
	Broadcast(ctx context.Context, text string)
	Subscribe(handler RemoteHandler) (Subscription, error)
	LocalPeerID() string
}

type TranscriptSink interface {
	Consume(ctx context.Context, e event.MessageAppended) error
}

type TranscriptViewer interface {
	View() []domain.Message
}
