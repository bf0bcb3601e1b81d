package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RichardoC/athena/internal/models"
)

func TestLocalTone(t *testing.T) {
	tests := []struct {
		mode  models.Mode
		input string
		want  string
	}{
		{models.ModeMean, "How do I fix my DNS for deploy?", deployReply.mean},
		{models.ModeNice, "my CNAME is broken", deployReply.nice},
		{models.ModeMean, "Review my PORTFOLIO", designReply.mean},
		{models.ModeNice, "a mascot idea", designReply.nice},
		{models.ModeMean, "hello", genericReply.mean},
		{models.ModeNice, "hello", genericReply.nice},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalTone(tt.mode, tt.input))
		})
	}
}

func TestLocalTone_Deterministic(t *testing.T) {
	first := LocalTone(models.ModeNice, "fix my hero section")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, LocalTone(models.ModeNice, "fix my hero section"))
	}
}
