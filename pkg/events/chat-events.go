package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart to EventTypeFinal bracket one streamed completion.
	EventTypeStart             EventType = "start"
	EventTypePartialCompletion EventType = "partial"
	EventTypeFinal             EventType = "final"
	EventTypeError             EventType = "error"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventMetadata struct {
	ID             uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Engine         string    `json:"engine,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	e.Str("conversation_id", em.ConversationID.String())
	if em.Engine != "" {
		e.Str("engine", em.Engine)
	}
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta"`

	// set when the event was decoded by NewEventFromJson
	payload []byte
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

var _ Event = &EventImpl{}

type EventPartialCompletionStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventPartialCompletionStart {
	return &EventPartialCompletionStart{
		EventImpl: EventImpl{
			Type_:     EventTypeStart,
			Metadata_: metadata,
		},
	}
}

var _ Event = &EventPartialCompletionStart{}

type EventPartialCompletion struct {
	EventImpl
	Delta string `json:"delta"`
	// Completion is the text received so far, including Delta.
	Completion string `json:"completion"`
}

func NewPartialCompletionEvent(metadata EventMetadata, delta string, completion string) *EventPartialCompletion {
	return &EventPartialCompletion{
		EventImpl: EventImpl{
			Type_:     EventTypePartialCompletion,
			Metadata_: metadata,
		},
		Delta:      delta,
		Completion: completion,
	}
}

var _ Event = &EventPartialCompletion{}

type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{
			Type_:     EventTypeFinal,
			Metadata_: metadata,
		},
		Text: text,
	}
}

var _ Event = &EventFinal{}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
	Kind        string `json:"kind,omitempty"`
}

func NewErrorEvent(metadata EventMetadata, err error, kind string) *EventError {
	return &EventError{
		EventImpl: EventImpl{
			Type_:     EventTypeError,
			Metadata_: metadata,
		},
		ErrorString: err.Error(),
		Kind:        kind,
	}
}

var _ Event = &EventError{}

func NewEventFromJson(b []byte) (Event, error) {
	var e EventImpl
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, errors.Wrap(err, "could not decode event")
	}

	var ret Event
	switch e.Type_ {
	case EventTypeStart:
		ret = &EventPartialCompletionStart{}
	case EventTypePartialCompletion:
		ret = &EventPartialCompletion{}
	case EventTypeFinal:
		ret = &EventFinal{}
	case EventTypeError:
		ret = &EventError{}
	default:
		return nil, errors.Errorf("unknown event type: %q", e.Type_)
	}

	if err := json.Unmarshal(b, ret); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s event", e.Type_)
	}
	ret.(interface{ setPayload([]byte) }).setPayload(b)

	return ret, nil
}

func (e *EventImpl) setPayload(b []byte) {
	e.payload = b
}
