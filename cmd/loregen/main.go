// Command loregen runs a single generation round against the configured LLM
// endpoint, standing in for the host editor: it seeds an in-memory journal
// with one entry, generates a sub-page for a subject and prints the created
// page plus the cross-linked source content.
//
// Configuration comes from the environment (optionally via .env); see the
// settings.Key* constants for the recognized keys and envstore.EnvName for
// the variable naming.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/leofalp/loregen/core/generate"
	"github.com/leofalp/loregen/core/pipeline"
	"github.com/leofalp/loregen/providers/journal"
	"github.com/leofalp/loregen/providers/journal/memjournal"
	"github.com/leofalp/loregen/providers/settings"
	"github.com/leofalp/loregen/providers/settings/envstore"
)

func main() {
	subject := flag.String("subject", "", "subject to generate an entry for (required)")
	model := flag.String("model", "", "model identifier override")
	pageFile := flag.String("page", "", "file with the source page HTML")
	templateFile := flag.String("template", "", "file with the content template HTML")
	listModels := flag.Bool("list-models", false, "list available models and exit")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	store := envstore.New(".env")
	config := pipeline.FromStore(store)
	config.Logger = logger
	pipe := pipeline.New(config)

	ctx := context.Background()

	if *listModels {
		models, err := pipe.ListModels(ctx)
		if err != nil {
			logger.Error("listing models failed", "error", err)
			os.Exit(1)
		}
		for _, m := range models {
			fmt.Println(m)
		}
		return
	}

	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	pageHTML := readFileOr(*pageFile, defaultPageHTML)
	templateHTML := readFileOr(*templateFile, defaultTemplateHTML)

	registry := memjournal.New()
	registry.AddEntry(journal.Entry{ID: "demo", Name: "Demo Journal"})

	gen := generate.New(pipe, registry, logger)
	outcome, err := gen.Generate(ctx, generate.GenerateOptions{
		ContextOptions: generate.ContextOptions{
			Subject:        *subject,
			JournalEntryID: "demo",
			OriginalTitle:  "Demo Journal",
			PageHTML:       pageHTML,
		},
		Model:         chooseModel(*model, store),
		TemplateHTML:  templateHTML,
		GlobalContext: settings.GetString(store, settings.KeyGlobalContext, ""),
	})
	if err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("generation complete",
		"page", outcome.Page.ID, "tries", outcome.Tries, "took", outcome.GenerationTime)
	fmt.Printf("--- new page %q ---\n%s\n", outcome.Page.Name, outcome.Page.Content)
	fmt.Printf("--- updated source content ---\n%s\n", outcome.UpdatedContent)
}

func chooseModel(flagModel string, store settings.Store) string {
	if flagModel != "" {
		return flagModel
	}
	return settings.GetString(store, settings.KeyModel, "")
}

func readFileOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("reading input file failed", "path", path, "error", err)
		os.Exit(1)
	}
	return string(data)
}

const defaultPageHTML = `<section><h1>Demo Journal</h1><p>An unexplored region waiting for detail.</p></section>`

const defaultTemplateHTML = `<section><h2>Overview</h2><p>Summary of the subject.</p><h2>Details</h2><p>Granular description.</p></section>`
