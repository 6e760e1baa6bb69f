package openai

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
	go_openai "github.com/sashabaranov/go-openai"
)

func IsOpenAiEngine(engine string) bool {
	if strings.HasPrefix(engine, "gpt") {
		return true
	}
	if strings.HasPrefix(engine, "text-") {
		return true
	}

	return isReasoningModel(engine)
}

// reasoning models reject sampling parameters such as temperature.
func isReasoningModel(engine string) bool {
	m := strings.ToLower(strings.TrimSpace(engine))
	return strings.HasPrefix(m, "o1") ||
		strings.HasPrefix(m, "o3") ||
		strings.HasPrefix(m, "o4") ||
		strings.HasPrefix(m, "gpt-5")
}

func roleToOpenAI(role conversation.Role) string {
	switch role {
	case conversation.RoleSystem:
		return go_openai.ChatMessageRoleSystem
	case conversation.RoleAssistant:
		return go_openai.ChatMessageRoleAssistant
	case conversation.RoleUser:
		return go_openai.ChatMessageRoleUser
	}
	return string(role)
}

// MakeCompletionRequest builds a chat completion request carrying every turn in order.
func MakeCompletionRequest(
	settings *settings.StepSettings,
	turns conversation.Conversation,
	stream bool,
) (*go_openai.ChatCompletionRequest, error) {
	if settings.Client == nil {
		return nil, steps.ErrMissingClientSettings
	}
	if settings.Chat == nil || settings.Chat.Engine == "" {
		return nil, errors.New("no engine specified")
	}
	if len(turns) == 0 {
		return nil, errors.New("no messages to send")
	}

	msgs := make([]go_openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		if !t.Role.IsValid() {
			return nil, errors.Errorf("invalid role %q", t.Role)
		}
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    roleToOpenAI(t.Role),
			Content: t.Content,
		})
	}

	chatSettings := settings.Chat
	req := &go_openai.ChatCompletionRequest{
		Model:    chatSettings.Engine,
		Messages: msgs,
		Stream:   stream,
	}
	if chatSettings.MaxResponseTokens != nil {
		req.MaxTokens = *chatSettings.MaxResponseTokens
	}
	if chatSettings.Temperature != nil && !isReasoningModel(chatSettings.Engine) {
		req.Temperature = float32(*chatSettings.Temperature)
	}

	return req, nil
}

func MakeClient(clientSettings *settings.ClientSettings) (*go_openai.Client, error) {
	if clientSettings == nil {
		return nil, steps.ErrMissingClientSettings
	}
	if clientSettings.APIKey == "" {
		return nil, conversation.NewCompletionError(conversation.FailureCredential, steps.ErrMissingClientAPIKey)
	}

	config := go_openai.DefaultConfig(clientSettings.APIKey)
	if clientSettings.BaseURL != "" {
		config.BaseURL = strings.TrimRight(clientSettings.BaseURL, "/")
	}
	if clientSettings.Organization != "" {
		config.OrgID = clientSettings.Organization
	}
	// The timeout only bounds the wait for response headers; a streamed body
	// may take as long as the model keeps sending.
	if clientSettings.Timeout != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = *clientSettings.Timeout
		config.HTTPClient = &http.Client{Transport: transport}
	}

	return go_openai.NewClientWithConfig(config), nil
}

// classifyError tags errors returned by the API client with a failure kind.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var ce *conversation.CompletionError
	if errors.As(err, &ce) {
		return err
	}

	var apiErr *go_openai.APIError
	if errors.As(err, &apiErr) {
		return conversation.NewCompletionError(kindForStatus(apiErr.HTTPStatusCode), err)
	}
	var reqErr *go_openai.RequestError
	if errors.As(err, &reqErr) {
		return conversation.NewCompletionError(kindForStatus(reqErr.HTTPStatusCode), err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return conversation.NewCompletionError(conversation.FailureNetwork, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return conversation.NewCompletionError(conversation.FailureNetwork, err)
	}

	return conversation.NewCompletionError(conversation.FailureRemote, err)
}

func kindForStatus(status int) conversation.FailureKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return conversation.FailureCredential
	case http.StatusTooManyRequests:
		return conversation.FailureQuota
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return conversation.FailureInvalidRequest
	}
	return conversation.FailureRemote
}
