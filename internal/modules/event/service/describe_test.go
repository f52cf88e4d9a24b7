package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	text string
	err  error
}

func (f fakePages) Article(context.Context, string) (string, error) {
	return f.text, f.err
}

type fakeModel struct {
	prompt string
	out    string
	err    error
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func (f *fakeModel) Close() error { return nil }

const scraped = "Five bands play the old pier every Saturday in March.\n\nTickets are free."

func TestPageDescriber_WithoutModelUsesFirstParagraph(t *testing.T) {
	d := NewPageDescriber(fakePages{text: scraped}, nil)

	got, err := d.Describe(context.Background(), "Jazz", "https://x/jazz")
	require.NoError(t, err)
	assert.Equal(t, "Five bands play the old pier every Saturday in March.", got)
}

func TestPageDescriber_SummarisesWithModel(t *testing.T) {
	model := &fakeModel{out: "  <b>Jazz</b> on the pier every Saturday.  "}
	d := NewPageDescriber(fakePages{text: scraped}, model)

	got, err := d.Describe(context.Background(), "Jazz", "https://x/jazz")
	require.NoError(t, err)
	assert.Equal(t, "Jazz on the pier every Saturday.", got)
	assert.True(t, strings.Contains(model.prompt, "Tickets are free."))
	assert.True(t, strings.Contains(model.prompt, `"Jazz"`))
}

func TestPageDescriber_EmptyPage(t *testing.T) {
	model := &fakeModel{}
	d := NewPageDescriber(fakePages{}, model)

	got, err := d.Describe(context.Background(), "Jazz", "https://x/jazz")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, model.prompt)
}

func TestPageDescriber_Errors(t *testing.T) {
	_, err := NewPageDescriber(fakePages{err: errors.New("404")}, nil).Describe(context.Background(), "a", "b")
	assert.Error(t, err)

	_, err = NewPageDescriber(fakePages{text: scraped}, &fakeModel{err: errors.New("quota")}).Describe(context.Background(), "a", "b")
	assert.Error(t, err)
}
