package prompt_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/service/prompt"
)

func TestBuild(t *testing.T) {
	t.Run("includes request and context", func(t *testing.T) {
		out := prompt.Build("Create a contact form shortcode", "Use nonces.\n\nEscape output.")
		gt.String(t, out).Contains("Create a contact form shortcode")
		gt.String(t, out).Contains("## Reference material")
		gt.String(t, out).Contains("Use nonces.\n\nEscape output.")
		gt.String(t, out).Contains("Plugin Name:")
	})

	t.Run("omits reference section when context is empty", func(t *testing.T) {
		out := prompt.Build("Add a dashboard widget", "")
		gt.String(t, out).Contains("Add a dashboard widget")
		gt.Bool(t, strings.Contains(out, "## Reference material")).False()
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := prompt.Build("same request", "same context")
		b := prompt.Build("same request", "same context")
		gt.Value(t, a).Equal(b)
	})

	t.Run("trims surrounding whitespace of the request", func(t *testing.T) {
		out := prompt.Build("   padded request \n", "")
		gt.String(t, out).Contains("\npadded request\n")
	})
}

func TestEstimateTokens(t *testing.T) {
	gt.Number(t, prompt.EstimateTokens("")).Equal(0)
	gt.Number(t, prompt.EstimateTokens("abcd")).Equal(1)
	gt.Number(t, prompt.EstimateTokens("abcde")).Equal(2)
	gt.Number(t, prompt.EstimateTokens("日本語")).Equal(1)
}
