package pdf

import (
	"bytes"
	"fmt"
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// copyStrategy is one tier of the writer copy fallback. Strategies run in
// order, most complete first, advancing only when the prior tier fails.
// prepare mutates a freshly parsed context before it is finalized; finalize
// validates and optimizes it.
type copyStrategy struct {
	name     string
	prepare  func(ctx *model.Context) error
	finalize func(ctx *model.Context) error
}

func defaultCopyStrategies() []copyStrategy {
	return []copyStrategy{
		{
			// Full copy: annotations, form fields and beads intact.
			name:     "full",
			prepare:  func(*model.Context) error { return nil },
			finalize: finalizeContext,
		},
		{
			// /Annots and /B are the usual sources of structural breakage.
			name: "no-annots",
			prepare: func(ctx *model.Context) error {
				return stripPageEntries(ctx, "Annots", "B")
			},
			finalize: finalizeContext,
		},
		{
			// Page-only copy: no annotations, no form fields, no outline.
			name: "pages-only",
			prepare: func(ctx *model.Context) error {
				if err := stripPageEntries(ctx, "Annots", "B"); err != nil {
					return err
				}
				rootDict, err := ctx.Catalog()
				if err != nil {
					return err
				}
				rootDict.Delete("AcroForm")
				rootDict.Delete("Outlines")
				return nil
			},
			finalize: finalizeContext,
		},
	}
}

// buildWriter produces a writable context from the source bytes, attempting
// each strategy in turn. Every tier starts from a fresh parse so that a
// failed attempt cannot leak partial mutation into the next one. Only
// failure of the last tier is fatal.
func buildWriter(src []byte, strategies []copyStrategy) (*model.Context, error) {
	var lastErr error
	for i, s := range strategies {
		ctx, err := applyCopyStrategy(src, s)
		if err != nil {
			lastErr = err
			if i < len(strategies)-1 {
				log.Printf("copy strategy %q failed: %v, trying %q", s.name, err, strategies[i+1].name)
			}
			continue
		}
		return ctx, nil
	}
	return nil, fmt.Errorf("all copy strategies failed: %w", lastErr)
}

func applyCopyStrategy(src []byte, s copyStrategy) (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(src), relaxedConfiguration())
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx); err != nil {
		return nil, err
	}
	if err := s.finalize(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

func finalizeContext(ctx *model.Context) error {
	if err := api.ValidateContext(ctx); err != nil {
		return err
	}
	return api.OptimizeContext(ctx)
}

// stripPageEntries removes the named entries from every page dict reachable
// from the page tree.
func stripPageEntries(ctx *model.Context, keys ...string) error {
	walkPages(ctx, func(_ types.IndirectRef, page types.Dict) {
		for _, k := range keys {
			page.Delete(k)
		}
	})
	return nil
}
