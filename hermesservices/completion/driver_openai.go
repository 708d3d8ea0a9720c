package completion

import (
	"context"
	"errors"

	servertiming "github.com/mitchellh/go-server-timing"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrNoChoices = errors.New("completion returned no choices")

type DriverOpenAIConfig struct {
	APIKey string
	// BaseURL targets OpenAI compatible gateways. Empty uses api.openai.com.
	BaseURL string
}

func NewDriverOpenAI(config DriverOpenAIConfig) Driver {
	requestOptions := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(config.BaseURL))
	}

	return &driverOpenAI{
		client: openai.NewClient(requestOptions...),
		tracer: otel.Tracer("github.com/lunagic/hermes/hermesservices/completion"),
	}
}

type driverOpenAI struct {
	client openai.Client
	tracer trace.Tracer
}

func (driver *driverOpenAI) Complete(ctx context.Context, prompt string, options Options) (_ Completion, err error) {
	ctx, span := driver.tracer.Start(
		ctx,
		"completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("gen_ai.request.model", options.Model)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if timing := servertiming.FromContext(ctx); timing != nil {
		timingMetric := timing.NewMetric("completion").WithDesc(options.Model).Start()
		defer timingMetric.Stop()
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if options.SystemRole != "" {
		messages = append(messages, openai.SystemMessage(options.SystemRole))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(options.Model),
		Messages: messages,
	}

	for _, tool := range options.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  openai.FunctionParameters(tool.Parameters),
		}))
	}

	response, err := driver.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, err
	}

	span.SetAttributes(attribute.Int64("gen_ai.usage.total_tokens", response.Usage.TotalTokens))

	if len(response.Choices) == 0 {
		return Completion{}, ErrNoChoices
	}

	message := response.Choices[0].Message

	completion := Completion{
		Content:   message.Content,
		ToolCalls: []ToolCall{},
	}

	for _, call := range message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return completion, nil
}
