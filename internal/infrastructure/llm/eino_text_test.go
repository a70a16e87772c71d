package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"novel-studio-api/internal/application/generation"
)

type fakeChatModel struct {
	calls []*model.Options
	msgs  [][]*schema.Message
	reply func(call int) (*schema.Message, error)
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls = append(m.calls, model.GetCommonOptions(&model.Options{}, opts...))
	m.msgs = append(m.msgs, input)
	return m.reply(len(m.calls))
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeFactory struct{ m model.BaseChatModel }

func (f fakeFactory) Get(context.Context, string) (model.BaseChatModel, error) { return f.m, nil }

func TestEinoTextProviderGenerate(t *testing.T) {
	cm := &fakeChatModel{reply: func(int) (*schema.Message, error) {
		msg := schema.AssistantMessage("Once upon a time.", nil)
		msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
		return msg, nil
	}}
	p := NewEinoTextProvider("openai", "gpt-4-turbo-preview", 0, fakeFactory{cm})

	resp, err := p.Generate(context.Background(), generation.TextRequest{
		Prompt: "Tell a story", SystemPrompt: "You are a bard", MaxTokens: 800, Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "Once upon a time." || resp.TokensUsed != 15 || resp.Model != "gpt-4-turbo-preview" {
		t.Errorf("resp = %+v", resp)
	}

	opts := cm.calls[0]
	if *opts.Temperature != 0.3 || *opts.MaxTokens != 800 || *opts.Model != "gpt-4-turbo-preview" {
		t.Errorf("options = temp %v tokens %v model %v", *opts.Temperature, *opts.MaxTokens, *opts.Model)
	}
	if len(cm.msgs[0]) != 2 || cm.msgs[0][0].Role != schema.System || cm.msgs[0][1].Content != "Tell a story" {
		t.Errorf("messages = %v", cm.msgs[0])
	}
}

func TestEinoTextProviderSchemaFallback(t *testing.T) {
	cm := &fakeChatModel{reply: func(call int) (*schema.Message, error) {
		if call == 1 {
			return nil, errors.New("400: Invalid parameter: 'response_format' of type 'json_schema' is not supported")
		}
		return schema.AssistantMessage(`{"premises":[]}`, nil), nil
	}}
	p := NewEinoTextProvider("openai", "gpt-4", 0, fakeFactory{cm})
	s, _ := generation.ResultSchema(generation.PhasePremise)

	resp, err := p.Generate(context.Background(), generation.TextRequest{Prompt: "p", SchemaName: "premise", Schema: s})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(cm.calls) != 2 {
		t.Fatalf("calls = %d, want retry without response_format", len(cm.calls))
	}
	if resp.TokensUsed != EstimateTokens(`{"premises":[]}`) {
		t.Errorf("tokens = %d, want estimate when usage missing", resp.TokensUsed)
	}
}

func TestEinoTextProviderError(t *testing.T) {
	boom := errors.New("rate limited")
	cm := &fakeChatModel{reply: func(int) (*schema.Message, error) { return nil, boom }}
	p := NewEinoTextProvider("openai", "gpt-4", 0, fakeFactory{cm})

	_, err := p.Generate(context.Background(), generation.TextRequest{Prompt: "p", Model: "gpt-4o"})
	var pe *generation.ProviderError
	if !errors.As(err, &pe) || pe.ModelID != "gpt-4o" || !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}
	if len(cm.calls) != 1 {
		t.Errorf("calls = %d, adapters must not retry", len(cm.calls))
	}
}

func TestIsResponseFormatUnsupported(t *testing.T) {
	cases := map[string]bool{
		"unknown parameter: response_format":               true,
		"json_schema is not supported":                     true,
		"Invalid parameter: 'response_format' of type ...": true,
		"invalid api key in response":                      false,
		"invalid value for response":                       false,
		"context deadline exceeded":                        false,
	}
	for msg, want := range cases {
		if got := isResponseFormatUnsupported(errors.New(msg)); got != want {
			t.Errorf("%q = %v, want %v", msg, got, want)
		}
	}
	if isResponseFormatUnsupported(nil) {
		t.Error("nil error should be false")
	}
}
