// Package pipeline wires collaborators and the analysis engine into the
// prune subcommand.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"csscull/analyze"
	"csscull/css"
	"csscull/dom"
	"csscull/fetch"
	"csscull/render"
	"csscull/state"
)

// Run renders the HTML entry points, loads the stylesheet sources, prunes
// unused rules and writes the result. It is the action of the prune command.
func Run(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	log := env.Log

	entries := cmd.Args().Slice()
	if len(entries) == 0 {
		return errors.New("no HTML entry points to analyze")
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.SkipFailed = cmd.Bool("skip-failed")

	ignoreEntries := append([]string{}, env.Cfg.Analysis.Ignore...)
	ignoreEntries = append(ignoreEntries, cmd.StringSlice("ignore")...)
	ignore, err := analyze.ParseIgnoreList(ignoreEntries)
	if err != nil {
		return fmt.Errorf("unable to prepare ignore list: %w", err)
	}

	timeout := time.Duration(env.Cfg.Render.Timeout) * time.Second
	if cmd.IsSet("timeout") {
		timeout = time.Duration(cmd.Int("timeout")) * time.Second
	}
	renderer := render.New(env.Cfg.Render.Command, env.Cfg.Render.Args, timeout, env.Cfg.Render.BenignDiagnostics, log)

	// Render every entry point, preserving order. A failure aborts the run
	// unless the caller asked to analyze without the failed page.
	var doms []*dom.Document
	for _, entry := range entries {
		doc, err := renderer.Render(ctx, entry)
		if err != nil {
			if env.SkipFailed {
				log.Warn("Entry point excluded from analysis", zap.String("entry", entry), zap.Error(err))
				continue
			}
			return err
		}
		if markup, err := doc.HTML(); err == nil {
			env.Rpt.StorePage(entry, markup)
		}
		doms = append(doms, doc)
	}
	if len(doms) == 0 {
		return errors.New("no entry point rendered successfully")
	}

	sources := cmd.StringSlice("css")
	if len(sources) == 0 {
		for _, href := range doms[0].StylesheetLinks(env.Cfg.Analysis.ExtraMedia) {
			sources = append(sources, resolveSource(entries[0], href))
		}
		log.Info("Discovered stylesheet links", zap.Int("count", len(sources)), zap.String("page", entries[0]))
	}
	if len(sources) == 0 {
		return errors.New("no stylesheet sources given or discovered")
	}

	contents, err := fetch.NewLoader(log).Load(ctx, sources)
	if err != nil {
		return fmt.Errorf("unable to load stylesheet sources: %w", err)
	}

	parser := css.NewParser(log)
	analyzer := analyze.New(log)

	var out bytes.Buffer
	for i, data := range contents {
		sheet := parser.Parse(data, sources[i])
		pruned := analyzer.Prune(sheet, doms, ignore)
		log.Info("Pruned stylesheet",
			zap.String("source", sources[i]),
			zap.Int("rules", countRules(sheet.Nodes)),
			zap.Int("kept", countRules(pruned.Nodes)))
		if i > 0 {
			out.WriteString("\n")
		}
		if _, err := pruned.WriteTo(&out); err != nil {
			return fmt.Errorf("unable to serialize pruned stylesheet: %w", err)
		}
	}

	env.Rpt.StoreData("pruned.css", out.Bytes())

	return writeOutput(cmd.String("output"), out.Bytes(), env.Overwrite, log)
}

// resolveSource makes a discovered stylesheet href loadable: absolute URLs
// pass through, otherwise the href is resolved against the page it was
// found on.
func resolveSource(page, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://") {
		base, err := url.Parse(page)
		if err != nil {
			return href
		}
		ref, err := url.Parse(href)
		if err != nil {
			return href
		}
		return base.ResolveReference(ref).String()
	}
	if filepath.IsAbs(href) {
		return href
	}
	return filepath.Join(filepath.Dir(page), filepath.FromSlash(href))
}

// countRules counts Rule nodes, descending into conditional blocks.
func countRules(nodes []css.Node) int {
	n := 0
	for _, node := range nodes {
		switch {
		case node.Rule != nil:
			n++
		case node.Block != nil:
			n += countRules(node.Block.Nodes)
		}
	}
	return n
}

func writeOutput(dest string, data []byte, overwrite bool, log *zap.Logger) error {
	if dest == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("destination %s already exists (use --overwrite)", dest)
		}
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", dest, err)
	}
	log.Info("Wrote pruned stylesheet", zap.String("destination", dest), zap.Int("bytes", len(data)))
	return nil
}
