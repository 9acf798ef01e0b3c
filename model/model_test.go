package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ Model      = (*MockModel)(nil)
	_ Classifier = (*KeywordClassifier)(nil)
	_ Classifier = (*ModelClassifier)(nil)
)

func TestMockModel_CannedAndEchoResponses(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("known prompt", "canned answer")

	resp, err := m.Generate(context.Background(), Request{Prompt: "known prompt"})
	require.NoError(t, err)
	assert.Equal(t, "canned answer", resp.Content)

	resp, err = m.Generate(context.Background(), Request{Prompt: "something else"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: something else", resp.Content)

	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, Info{Name: "test", Provider: "mock"}, m.Info())
}

func TestMockModel_InjectedError(t *testing.T) {
	m := NewMockModel("test", "mock")
	wantErr := errors.New("model unavailable")
	m.FailWith(wantErr)

	_, err := m.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, wantErr)
}

func TestMockModel_DelayRespectsContext(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.DelayFor(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Generate(ctx, Request{Prompt: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
