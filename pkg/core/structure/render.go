package structure

import (
	"context"

	"github.com/peterbourgon/mergemap"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer        = otel.Tracer("molbank/structure")
	renderCounter metric.Int64Counter
)

func init() {
	var err error
	renderCounter, err = otel.Meter("molbank/structure").Int64Counter("structure.render",
		metric.WithDescription("structure render operations by mode and outcome"))
	if err != nil {
		otel.Handle(err)
	}
}

// Render runs one render operation against a ready engine. Every engine
// handle it creates is released before it returns.
func Render(ctx context.Context, eng Engine, req *RenderRequest, surfaces *Surfaces) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "structure.Render", trace.WithAttributes(
		attribute.Bool("svg_mode", req.SVGMode),
		attribute.Bool("substructure", req.SubStructure != ""),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
		countRender(ctx, req, err)
	}()

	mol, err := eng.GetMol(req.Structure)
	if err != nil {
		if mol != nil {
			mol.Delete()
		}
		return nil, code.InvalidStructureErr.WithErr(err)
	}
	defer mol.Delete()

	var query Query
	if req.SubStructure != "" {
		q, qErr := eng.GetQMol(req.SubStructure)
		switch {
		case qErr != nil:
			if q != nil {
				q.Delete()
			}
			logger.Warnf(ctx, "substructure %q ignored err: %+v", req.SubStructure, qErr)
		default:
			query = q
			defer q.Delete()
		}
	}

	var hl *Highlight
	if query != nil {
		matches, mErr := mol.SubstructMatches(query)
		if mErr != nil {
			logger.Warnf(ctx, "substructure match fail err: %+v", mErr)
		} else if len(matches) > 0 {
			hl = union(matches)
		}
	}

	opts := mergeOptions(req, hl)
	if req.SVGMode {
		svg, err := mol.SVG(opts)
		if err != nil {
			return nil, code.RenderErr.WithErr(err)
		}
		return &Result{SVG: svg, Options: opts}, nil
	}

	if surfaces == nil {
		surfaces = DefaultSurfaces()
	}
	dst, ok := surfaces.Get(req.SurfaceID)
	if !ok {
		return nil, code.SurfaceNotFoundErr.WithMsgf("surface %q", req.SurfaceID)
	}
	if err := mol.Draw(dst, opts); err != nil {
		return nil, code.RenderErr.WithErr(err)
	}
	return &Result{Options: opts}, nil
}

// mergeOptions overlays defaults < extra < highlights.
func mergeOptions(req *RenderRequest, hl *Highlight) map[string]any {
	opts := map[string]any{
		"width":               req.Width,
		"height":              req.Height,
		"bondLineWidth":       1,
		"addStereoAnnotation": true,
	}
	if len(req.Extra) > 0 {
		opts = mergemap.Merge(opts, copyMap(req.Extra))
	}
	if hl != nil && !hl.empty() {
		opts = mergemap.Merge(opts, map[string]any{
			"atoms": hl.Atoms,
			"bonds": hl.Bonds,
		})
	}
	return opts
}

// copyMap keeps Merge from aliasing nested maps owned by the caller.
func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			out[k] = copyMap(m)
			continue
		}
		out[k] = v
	}
	return out
}

func countRender(ctx context.Context, req *RenderRequest, err error) {
	if renderCounter == nil {
		return
	}
	c, _ := code.Parse(err)
	mode := "pixel"
	if req.SVGMode {
		mode = "vector"
	}
	renderCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Int("code", c.Int()),
	))
}
