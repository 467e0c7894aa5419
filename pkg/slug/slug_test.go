package slug_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		opts []slug.Option
		want string
	}{
		{"Job Application Tracker", nil, "job-application-tracker"},
		{"  AI-powered   CV Import!! ", nil, "ai-powered-cv-import"},
		{"Café Crème à Lisboa", nil, "cafe-creme-a-lisboa"},
		{"São João 2024", nil, "sao-joao-2024"},
		{"Rails & Hotwire", []slug.Option{slug.Replace(map[string]string{"&": "and"})}, "rails-and-hotwire"},
		{"snake case please", []slug.Option{slug.Separator("_")}, "snake_case_please"},
		{"a very long project title here", []slug.Option{slug.MaxLength(12)}, "a-very-long"},
		{"日本語", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slug.Make(tt.in, tt.opts...))
		})
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()

	existing := map[string]bool{"tracker": true, "tracker-1": true}
	taken := func(_ context.Context, s string) (bool, error) { return existing[s], nil }

	got, err := slug.Unique(context.Background(), "tracker", taken)
	require.NoError(t, err)
	assert.Equal(t, "tracker-2", got)

	got, err = slug.Unique(context.Background(), "portfolio", taken)
	require.NoError(t, err)
	assert.Equal(t, "portfolio", got)

	boom := errors.New("db down")
	_, err = slug.Unique(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
