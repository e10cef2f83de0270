package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Default encoder qualities.
const (
	DisplayQuality   = 80
	ThumbnailQuality = 60
)

// Kind names a derivative variant.
type Kind string

const (
	KindDisplay   Kind = "display"
	KindThumbnail Kind = "thumbnail"
)

// Derivative describes one stored variant.
type Derivative struct {
	Kind   Kind
	Ref    Ref
	Width  int
	Height int
	Size   int64
}

// Result is the outcome of a successful Generate. Name is the display
// derivative's file name, the value persisted on the product.
type Result struct {
	BaseID    string
	Name      string
	Display   Derivative
	Thumbnail Derivative
}

// Refs returns the storage refs of both derivatives.
func (r *Result) Refs() []Ref {
	return []Ref{r.Display.Ref, r.Thumbnail.Ref}
}

type variant struct {
	kind    Kind
	area    string
	suffix  string
	box     Box
	quality int
}

// Generator turns an accepted upload into a display and a thumbnail derivative.
type Generator struct {
	store    Store
	encoder  Encoder
	variants []variant
	newID    func() string
	log      zerolog.Logger
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithQualities overrides the display and thumbnail encoder qualities.
func WithQualities(display, thumbnail int) GeneratorOption {
	return func(g *Generator) {
		for i := range g.variants {
			switch g.variants[i].kind {
			case KindDisplay:
				if display > 0 {
					g.variants[i].quality = display
				}
			case KindThumbnail:
				if thumbnail > 0 {
					g.variants[i].quality = thumbnail
				}
			}
		}
	}
}

// WithIDFunc replaces the base identifier source.
func WithIDFunc(fn func() string) GeneratorOption {
	return func(g *Generator) { g.newID = fn }
}

func NewGenerator(store Store, encoder Encoder, log zerolog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		store:   store,
		encoder: encoder,
		variants: []variant{
			{kind: KindDisplay, area: AreaOptimized, box: DisplayBox, quality: DisplayQuality},
			{kind: KindThumbnail, area: AreaThumbnails, suffix: "-thumb", box: ThumbnailBox, quality: ThumbnailQuality},
		},
		newID: uuid.NewString,
		log:   log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate decodes src, writes both derivatives under one fresh base id and
// discards the original. On error nothing generated remains in the store and
// the original is left for the caller.
func (g *Generator) Generate(ctx context.Context, src Source) (*Result, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open original: %w", ErrProcessing, err)
	}
	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrProcessing, err)
	}

	id := g.newID()
	res := &Result{BaseID: id, Name: id + "." + g.encoder.Extension()}
	var written []Ref
	for _, v := range g.variants {
		if err := ctx.Err(); err != nil {
			g.rollback(written)
			return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
		}
		d, err := g.render(ctx, img, id, v)
		if err != nil {
			g.rollback(written)
			return nil, err
		}
		written = append(written, d.Ref)
		switch v.kind {
		case KindDisplay:
			res.Display = d
		case KindThumbnail:
			res.Thumbnail = d
		}
	}

	if err := src.Discard(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		g.log.Warn().Err(err).Str("base_id", id).Msg("failed to discard original upload")
	}
	return res, nil
}

func (g *Generator) render(ctx context.Context, img image.Image, id string, v variant) (Derivative, error) {
	out := fit(img, v.box)
	var buf bytes.Buffer
	if err := g.encoder.Encode(&buf, out, v.quality); err != nil {
		return Derivative{}, fmt.Errorf("%w: encode %s: %w", ErrProcessing, v.kind, err)
	}
	ref := Ref{Area: v.area, Name: id + v.suffix + "." + g.encoder.Extension()}
	size := int64(buf.Len())
	if err := g.store.Put(ctx, ref.Area, ref.Name, &buf, size, g.encoder.ContentType()); err != nil {
		return Derivative{}, fmt.Errorf("%w: write %s: %w", ErrProcessing, v.kind, err)
	}
	b := out.Bounds()
	return Derivative{Kind: v.kind, Ref: ref, Width: b.Dx(), Height: b.Dy(), Size: size}, nil
}

// rollback removes derivatives written by a failed Generate. It runs on a
// fresh context so a cancelled request still cleans up.
func (g *Generator) rollback(refs []Ref) {
	for _, ref := range refs {
		if err := g.store.Remove(context.Background(), ref.Area, ref.Name); err != nil {
			g.log.Error().Err(err).Str("area", ref.Area).Str("name", ref.Name).Msg("failed to roll back derivative")
		}
	}
}
