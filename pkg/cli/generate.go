package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
	"github.com/plugsmith/plugsmith/pkg/service/plugin"
	"github.com/plugsmith/plugsmith/pkg/usecase"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdGenerate() *cli.Command {
	var prompt string
	var provider string
	var apiKey string
	var outDir string
	var extract bool
	var publicURL string
	var app appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "prompt",
			Aliases:     []string{"p"},
			Usage:       "Description of the plugin. Remaining arguments are used when empty",
			Destination: &prompt,
		},
		&cli.StringFlag{
			Name:        "provider",
			Usage:       "Use a single provider instead of the failover order",
			Destination: &provider,
		},
		&cli.StringFlag{
			Name:        "api-key",
			Usage:       "API key overriding the configured credential of --provider",
			Destination: &apiKey,
		},
		&cli.StringFlag{
			Name:        "out-dir",
			Aliases:     []string{"o"},
			Usage:       "Directory where the archive and blueprint are written",
			Value:       ".",
			Destination: &outDir,
		},
		&cli.BoolFlag{
			Name:        "extract",
			Usage:       "Also write the unpacked plugin directory",
			Destination: &extract,
		},
		&cli.StringFlag{
			Name:        "public-url",
			Usage:       "Base URL written into the blueprint",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("PLUGSMITH_PUBLIC_URL"),
			Destination: &publicURL,
		},
	}
	flags = append(flags, app.Flags()...)

	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Generate one plugin and write it to disk",
		ArgsUsage: "[prompt...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if prompt == "" {
				prompt = strings.Join(c.Args().Slice(), " ")
			}

			uc, closer, err := app.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			req := model.NewGenerationRequest(prompt)
			req.ProviderID = types.ProviderID(provider)
			req.APIKey = apiKey

			out, err := uc.Generate(ctx, req, publicURL)
			if err != nil {
				return goerr.Wrap(err, "failed to generate plugin")
			}

			paths, err := writeOutput(ctx, uc, out, outDir, extract)
			if err != nil {
				return err
			}

			logging.Default().Info("Plugin written",
				"name", out.PluginName,
				"slug", out.PluginSlug,
				"model", out.ModelUsed,
				"files", paths,
			)
			printSummary(os.Stdout, out, paths)
			return nil
		},
	}
}

// writeOutput writes the archive, its blueprint and optionally the unpacked
// plugin directory under outDir. It returns the written paths.
func writeOutput(ctx context.Context, uc *usecase.UseCases, out *usecase.GenerateOutput, outDir string, extract bool) ([]string, error) {
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("path", outDir))
	}

	descriptor, err := uc.GetObject(ctx, types.BlueprintKey(out.PluginSlug))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read stored blueprint")
	}

	archivePath := filepath.Join(outDir, types.ArchiveKey(out.PluginSlug).String())
	blueprintPath := filepath.Join(outDir, types.BlueprintKey(out.PluginSlug).String())
	paths := []string{archivePath, blueprintPath}

	if err := os.WriteFile(archivePath, out.Archive, 0600); err != nil {
		return nil, goerr.Wrap(err, "failed to write archive", goerr.V("path", archivePath))
	}
	if err := os.WriteFile(blueprintPath, descriptor.Data, 0600); err != nil {
		return nil, goerr.Wrap(err, "failed to write blueprint", goerr.V("path", blueprintPath))
	}

	if !extract {
		return paths, nil
	}

	bundle, err := plugin.Unpack(out.Archive)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unpack archive")
	}

	root := filepath.Join(outDir, out.PluginSlug.String())
	for _, f := range bundle.Files {
		path := filepath.Join(root, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, goerr.Wrap(err, "failed to create plugin directory", goerr.V("path", path))
		}
		if err := os.WriteFile(path, []byte(f.Content), 0600); err != nil {
			return nil, goerr.Wrap(err, "failed to write plugin file", goerr.V("path", path))
		}
	}
	paths = append(paths, root)

	return paths, nil
}

// printSummary writes a human readable report of the generated plugin to w.
// Colors are disabled automatically when w is not a terminal.
func printSummary(w io.Writer, out *usecase.GenerateOutput, paths []string) {
	title := color.New(color.FgGreen, color.Bold)
	label := color.New(color.Faint)
	link := color.New(color.FgCyan)

	title.Fprintf(w, "✔ %s (%s)\n", out.PluginName, out.PluginSlug)
	label.Fprint(w, "  model:      ")
	fmt.Fprintln(w, out.ModelUsed)
	label.Fprint(w, "  files:      ")
	fmt.Fprintln(w, len(out.Files))
	label.Fprint(w, "  playground: ")
	link.Fprintln(w, out.PlaygroundURL)
	for _, p := range paths {
		label.Fprint(w, "  wrote:      ")
		fmt.Fprintln(w, p)
	}
}
