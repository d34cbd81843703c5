package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/receiptwise/backend/domain"
	"github.com/receiptwise/backend/internal/utils"
)

const requestTimeout = 180 * time.Second

type (
	// Client performs one outbound call to the vision completion endpoint
	// and returns the raw text completion.
	Client interface {
		Configured() bool
		ExtractReceipt(ctx context.Context, imageData []byte, variant PromptVariant) (string, error)
	}

	openAIClient struct {
		apiKey  string
		model   string
		timeout time.Duration
		log     zerolog.Logger
	}
)

func NewOpenAIClient(log zerolog.Logger) Client {
	return &openAIClient{
		apiKey:  utils.GetConfig("OPENAI_API_KEY"),
		model:   utils.GetConfig("OPENAI_MODEL"),
		timeout: requestTimeout,
		log:     log.With().Str("component", "extraction_client").Logger(),
	}
}

func (c *openAIClient) Configured() bool {
	return c.apiKey != ""
}

func (c *openAIClient) ExtractReceipt(ctx context.Context, imageData []byte, variant PromptVariant) (string, error) {
	// The credential check must happen before any network work.
	if !c.Configured() {
		return "", domain.ErrAPIKeyMissing
	}

	client := openai.NewClient(c.apiKey)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	base64Image := base64.StdEncoding.EncodeToString(imageData)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   2000,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: variant.Text(),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + base64Image,
						},
					},
				},
			},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.log.Error().Int("status", apiErr.HTTPStatusCode).Str("message", apiErr.Message).
				Msg("vision completion request rejected")
			return "", &domain.UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		c.log.Error().Err(err).Msg("vision completion request failed")
		return "", &domain.UpstreamError{StatusCode: 0, Body: err.Error()}
	}

	if len(resp.Choices) == 0 {
		return "", &domain.UpstreamError{StatusCode: http.StatusOK, Body: domain.ErrEmptyCompletion.Error()}
	}

	return resp.Choices[0].Message.Content, nil
}
