package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"partcss/dom"
	"partcss/match"
	"partcss/resolve"
	"partcss/state"
)

// loadDocument reads the source document and builds a resolver over it with
// the configured pre-filter hints declared.
func loadDocument(ctx context.Context, cmd *cli.Command) (*dom.Document, *resolve.Resolver, error) {
	env := state.EnvFromContext(ctx)

	if cmd.NArg() == 0 {
		return nil, nil, fmt.Errorf("no source document specified")
	}
	src := cmd.Args().First()

	f, err := os.Open(src)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open source: %w", err)
	}

	doc, err := dom.Parse(f, env.Log)
	if err != nil {
		return nil, nil, multierr.Append(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return nil, nil, fmt.Errorf("unable to close source: %w", err)
	}

	r := resolve.New(doc, env.Log)
	for _, h := range env.Cfg.Hints {
		r.Scopes().DeclareHints(h.Type, match.Hints{
			ConstantClasses: h.ConstantClasses,
			ConstantAttrs:   h.ConstantAttrs,
		})
	}
	env.Log.Debug("Loaded document", zap.String("source", src), zap.Int("hints", len(env.Cfg.Hints)))
	if env.Log.Core().Enabled(zap.DebugLevel) {
		env.Log.Debug("Scope tree", zap.String("tree", doc.DumpScopes()))
	}
	return doc, r, nil
}

// writeDocument sends the processed document to the destination argument,
// or to stdout when none was given.
func writeDocument(cmd *cli.Command, doc *dom.Document) error {
	if cmd.NArg() < 2 {
		_, err := doc.WriteTo(os.Stdout)
		return err
	}
	dst, err := os.Create(cmd.Args().Get(1))
	if err != nil {
		return fmt.Errorf("unable to create destination: %w", err)
	}
	if _, err := doc.WriteTo(dst); err != nil {
		return multierr.Append(err, dst.Close())
	}
	return dst.Close()
}

// runTransform rewrites every scope's part rules, leaving resolution to the
// consuming runtime.
func runTransform(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	doc, r, err := loadDocument(ctx, cmd)
	if err != nil {
		return err
	}

	var total int
	for _, h := range doc.ScopeHosts() {
		decls := r.Declarations(h)
		total += len(decls)
	}
	env.Log.Info("Transformed scopes", zap.Int("scopes", len(doc.ScopeHosts())), zap.Int("declarations", total))

	return writeDocument(cmd, doc)
}

// runResolve transforms and applies resolved part styling to every scope
// host in the document.
func runResolve(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	doc, r, err := loadDocument(ctx, cmd)
	if err != nil {
		return err
	}

	tick := env.NextTick()
	for _, h := range doc.ScopeHosts() {
		r.Apply(h, tick)
	}
	env.Log.Info("Applied part styling", zap.Int("scopes", len(doc.ScopeHosts())), zap.Uint64("tick", tick))

	return writeDocument(cmd, doc)
}
