package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	t.Run("JSON array output", func(t *testing.T) {
		s := &Suggester{LLM: &fakeChatter{content: `["How do keys expire?", "What about persistence?"]`}}
		got := s.Suggest(context.Background(), "q", "a", "ctx")
		assert.Equal(t, []string{"How do keys expire?", "What about persistence?"}, got)
	})

	t.Run("line based fallback with bullets", func(t *testing.T) {
		s := &Suggester{LLM: &fakeChatter{content: "1. First question?\n- Second question?\n* Third question?"}}
		got := s.Suggest(context.Background(), "q", "a", "ctx")
		assert.Equal(t, []string{"First question?", "Second question?", "Third question?"}, got)
	})

	t.Run("duplicates dropped and capped", func(t *testing.T) {
		s := &Suggester{LLM: &fakeChatter{content: "a?\na?\nb?\nc?\nd?\ne?\nf?"}, Max: 3}
		got := s.Suggest(context.Background(), "q", "a", "ctx")
		assert.Equal(t, []string{"a?", "b?", "c?"}, got)
	})

	t.Run("LLM failure is silent", func(t *testing.T) {
		s := &Suggester{LLM: &fakeChatter{err: errors.New("down")}}
		assert.Nil(t, s.Suggest(context.Background(), "q", "a", "ctx"))
	})
}

func TestParseSuggestionsEmpty(t *testing.T) {
	assert.Nil(t, parseSuggestions("  "))
}
