package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"policygen/pkg/llm"
	"policygen/pkg/wizard"
)

const DefaultTimeout = 90 * time.Second

// Generator turns answers into reconciled documents through an LLM.
type Generator struct {
	provider llm.LLMProvider
	builder  *Builder
	timeout  time.Duration
	options  []llm.Option
	tracer   trace.Tracer
}

// NewGenerator builds a Generator. opts are passed to every model call,
// ahead of the JSON response switch.
func NewGenerator(provider llm.LLMProvider, builder *Builder, timeout time.Duration, opts ...llm.Option) *Generator {
	if builder == nil {
		builder = NewBuilder(nil)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		provider: provider,
		builder:  builder,
		timeout:  timeout,
		options:  opts,
		tracer:   otel.Tracer("policygen/generation"),
	}
}

// Generate builds a request from answers, calls the model and reconciles
// its answer. An empty selection returns the all-empty set without a call.
func (g *Generator) Generate(ctx context.Context, answers wizard.Answers) (*Result, error) {
	req := g.builder.Build(answers, answers.DocumentTypes)
	return g.Complete(ctx, req)
}

// Complete runs an already built request.
func (g *Generator) Complete(ctx context.Context, req *Request) (*Result, error) {
	if req.Empty() {
		return EmptyResult(), nil
	}
	if g.provider == nil {
		return nil, fmt.Errorf("%w: no model provider configured", ErrUpstreamUnavailable)
	}

	ctx, span := g.tracer.Start(ctx, "generation.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("policygen.language", string(req.Answers.Language)),
		attribute.Int("policygen.kinds", len(req.Answers.DocumentKinds)),
	)

	prompt, err := RenderPrompt(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	callOpts := append(append([]llm.Option{}, g.options...), llm.WithJSONResponse())
	text, err := g.provider.Generate(callCtx, prompt, callOpts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrGenerationTimeout, g.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	result, err := Reconcile([]byte(StripFences(text)), req.Answers.DocumentKinds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("policygen.tabs", len(result.Tabs)))
	return result, nil
}

// StripFences removes a Markdown code fence wrapped around the whole body.
// Fences inside document text are left alone.
func StripFences(text string) string {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		// Single line reply: drop the fence and an optional language tag.
		body = strings.TrimPrefix(body, "```")
		if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
			body = body[4:]
		}
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
