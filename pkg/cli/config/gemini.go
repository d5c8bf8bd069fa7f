package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Vertex AI Gemini client shared by the
// vertex-gemini provider and the default embedder
type Gemini struct {
	projectID string
	location  string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vertex-project",
			Usage:       "Google Cloud project ID for Gemini on Vertex AI",
			Category:    "Vertex AI",
			Sources:     cli.EnvVars("PLUGSMITH_VERTEX_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "vertex-location",
			Usage:       "Google Cloud location for Gemini on Vertex AI",
			Category:    "Vertex AI",
			Value:       "us-central1",
			Sources:     cli.EnvVars("PLUGSMITH_VERTEX_LOCATION"),
			Destination: &g.location,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	}
}

// Configure creates a new Gemini LLM client from the configured flags.
// Returns nil if projectID is not configured (Vertex AI features are disabled).
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("project_id", g.projectID), goerr.V("location", g.location))
	}

	return client, nil
}
