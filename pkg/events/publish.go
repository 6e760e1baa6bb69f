package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Publisher serializes events to JSON and publishes them as watermill messages.
// Every outgoing message carries a sequence number in the order PublishEvent
// was called.
type Publisher struct {
	publisher      message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisher(publisher message.Publisher) *Publisher {
	return &Publisher{publisher: publisher}
}

func (p *Publisher) PublishEvent(topic string, event Event) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	b, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "could not encode event")
	}

	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", p.sequenceNumber))
	p.sequenceNumber++

	return p.publisher.Publish(topic, msg)
}

// StreamPublisher turns the fragments of one streamed completion into a
// start / partial* / final (or error) event sequence on a single topic.
type StreamPublisher struct {
	publisher *Publisher
	topic     string
	metadata  EventMetadata
	sb        strings.Builder
}

func NewStreamPublisher(publisher *Publisher, topic string, conversationID uuid.UUID, engine string) *StreamPublisher {
	return &StreamPublisher{
		publisher: publisher,
		topic:     topic,
		metadata: EventMetadata{
			ID:             uuid.New(),
			ConversationID: conversationID,
			Engine:         engine,
		},
	}
}

func (s *StreamPublisher) Start() {
	s.publishBlind(NewStartEvent(s.metadata))
}

// Partial is meant to be passed as the fragment sink of a streamed exchange.
func (s *StreamPublisher) Partial(delta string) {
	s.sb.WriteString(delta)
	s.publishBlind(NewPartialCompletionEvent(s.metadata, delta, s.sb.String()))
}

func (s *StreamPublisher) Final(text string) {
	s.publishBlind(NewFinalEvent(s.metadata, text))
}

func (s *StreamPublisher) Error(err error, kind string) {
	s.publishBlind(NewErrorEvent(s.metadata, err, kind))
}

func (s *StreamPublisher) publishBlind(event Event) {
	if err := s.publisher.PublishEvent(s.topic, event); err != nil {
		log.Warn().Err(err).Str("type", string(event.Type())).Msg("failed to publish")
	}
}
