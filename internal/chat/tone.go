package chat

import (
	"github.com/dlclark/regexp2"

	"github.com/RichardoC/athena/internal/models"
)

// FallbackNote is appended to local replies when MarkFallback is set.
const FallbackNote = " (local fallback)"

var (
	deployPattern = regexp2.MustCompile(`deploy|dns|render|cname|domain`, regexp2.IgnoreCase)
	designPattern = regexp2.MustCompile(`portfolio|design|hero|mascot`, regexp2.IgnoreCase)
)

type phrasing struct{ mean, nice string }

var (
	deployReply = phrasing{
		mean: "Check DNS, add the subdomain's CNAME/A, verify on the host, and inspect logs. Don't skip certs.",
		nice: "Start with your DNS records, add the subdomain CNAME, verify the host, and confirm TLS. I can walk you step-by-step.",
	}
	designReply = phrasing{
		mean: "Make a bold hero, reduce sections, add one playful interaction, then ship and iterate.",
		nice: "Love that! Try a bold hero, playful micro-interactions, and focused sections. Want a layout sketch?",
	}
	genericReply = phrasing{
		mean: "Be specific about which part you want fixed and I'll give a short plan.",
		nice: "Tell me which part you'd like help with and I'll break it down gently.",
	}
)

// LocalTone picks a canned reply from keywords in input. It is deterministic.
func LocalTone(mode models.Mode, input string) string {
	p := genericReply
	switch {
	case matches(deployPattern, input):
		p = deployReply
	case matches(designPattern, input):
		p = designReply
	}
	if mode == models.ModeNice {
		return p.nice
	}
	return p.mean
}

func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}
