package events

import (
	"fmt"
	"io"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// StepPrinterFunc returns a router handler that prints streamed deltas to w as
// they arrive. When name is set, it is printed as a header before the first delta.
func StepPrinterFunc(name string, w io.Writer) func(msg *message.Message) error {
	isFirst := true

	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("skipping undecodable event")
			return nil
		}

		switch p_ := e.(type) {
		case *EventPartialCompletionStart:
			isFirst = true

		case *EventPartialCompletion:
			if isFirst && name != "" {
				_, err = fmt.Fprintf(w, "%s: ", name)
				if err != nil {
					return err
				}
			}
			isFirst = false
			_, err = fmt.Fprintf(w, "%s", p_.Delta)
			if err != nil {
				return err
			}

		case *EventFinal:
			if !strings.HasSuffix(p_.Text, "\n") {
				_, err = fmt.Fprintf(w, "\n")
				if err != nil {
					return err
				}
			}

		case *EventError:
			if !isFirst {
				_, err = fmt.Fprintf(w, "\n")
				if err != nil {
					return err
				}
			}
		}

		return nil
	}
}
