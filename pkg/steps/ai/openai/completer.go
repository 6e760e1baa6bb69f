package openai

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

// Completer sends the whole conversation to the chat completions endpoint.
type Completer struct {
	Settings *settings.StepSettings
	client   *go_openai.Client
}

var _ conversation.Completer = (*Completer)(nil)
var _ conversation.StreamingCompleter = (*Completer)(nil)

func NewCompleter(settings *settings.StepSettings) (*Completer, error) {
	if err := settings.Validate(); err != nil {
		return nil, conversation.NewCompletionError(conversation.FailureValidation, err)
	}
	client, err := MakeClient(settings.Client)
	if err != nil {
		return nil, err
	}

	return &Completer{
		Settings: settings,
		client:   client,
	}, nil
}

func (c *Completer) Complete(ctx context.Context, turns conversation.Conversation) (string, error) {
	req, err := MakeCompletionRequest(c.Settings, turns, false)
	if err != nil {
		return "", conversation.NewCompletionError(conversation.FailureValidation, err)
	}

	log.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("Sending chat completion request")

	resp, err := c.client.CreateChatCompletion(ctx, *req)
	if err != nil {
		err = classifyError(err)
		log.Debug().Err(err).Msg("Chat completion failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", conversation.NewCompletionError(conversation.FailureRemote, conversation.ErrEmptyCompletion)
	}

	log.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("Chat completion received")

	return resp.Choices[0].Message.Content, nil
}

func (c *Completer) CompleteStream(ctx context.Context, turns conversation.Conversation) (conversation.FragmentStream, error) {
	req, err := MakeCompletionRequest(c.Settings, turns, true)
	if err != nil {
		return nil, conversation.NewCompletionError(conversation.FailureValidation, err)
	}

	log.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("Opening chat completion stream")

	stream, err := c.client.CreateChatCompletionStream(ctx, *req)
	if err != nil {
		err = classifyError(err)
		log.Debug().Err(err).Msg("Chat completion stream failed")
		return nil, err
	}

	return &fragmentStream{stream: stream}, nil
}

type fragmentStream struct {
	stream *go_openai.ChatCompletionStream
}

func (s *fragmentStream) Recv() (string, error) {
	response, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	if err != nil {
		return "", classifyError(err)
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Delta.Content, nil
}

func (s *fragmentStream) Close() error {
	s.stream.Close()
	return nil
}
