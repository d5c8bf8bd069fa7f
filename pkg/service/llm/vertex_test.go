package llm_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/llm"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return s.generateContentFn(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	session *mockLLMSession
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return c.session, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func TestVertex(t *testing.T) {
	ctx := context.Background()

	t.Run("joins response texts", func(t *testing.T) {
		client := &mockLLMClient{session: &mockLLMSession{
			generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
				return &gollem.Response{Texts: []string{"<?php\n", "echo 'hi';\n"}}, nil
			},
		}}

		p, err := llm.NewVertex(client, "gemini-2.5-flash")
		gt.NoError(t, err).Required()
		gt.Value(t, p.Info().ID).Equal(types.ProviderVertexGemini)
		gt.Bool(t, p.Info().RequiresAPIKey).False()

		result, err := p.Generate(ctx, "prompt", "")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Text).Equal("<?php\necho 'hi';")
		gt.Value(t, result.Model).Equal("gemini-2.5-flash")
	})

	t.Run("empty response is malformed", func(t *testing.T) {
		client := &mockLLMClient{session: &mockLLMSession{
			generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
				return &gollem.Response{}, nil
			},
		}}

		p, err := llm.NewVertex(client, "gemini")
		gt.NoError(t, err).Required()
		_, err = p.Generate(ctx, "prompt", "")
		gt.Error(t, err).Is(model.ErrMalformedResponse)
	})

	t.Run("session error is upstream", func(t *testing.T) {
		client := &mockLLMClient{session: &mockLLMSession{
			generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
				return nil, goerr.New("quota exceeded")
			},
		}}

		p, err := llm.NewVertex(client, "gemini")
		gt.NoError(t, err).Required()
		_, err = p.Generate(ctx, "prompt", "")
		gt.Error(t, err).Is(model.ErrUpstream)
	})

	t.Run("nil client", func(t *testing.T) {
		_, err := llm.NewVertex(nil, "gemini")
		gt.Error(t, err)
	})
}
