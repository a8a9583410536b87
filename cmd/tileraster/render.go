package main

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/tileraster"
)

// render draws every frame of cfg and writes the images.
func render(cfg *Config, logger *slog.Logger) error {
	backend, err := cfg.backend()
	if err != nil {
		return err
	}
	mesh, err := buildMesh(&cfg.Scene)
	if err != nil {
		return err
	}

	p := tileraster.New(
		tileraster.WithBackend(backend),
		tileraster.WithWorkers(cfg.Workers),
		tileraster.WithMaxVertices(max(len(mesh.Indices), 3)),
		tileraster.WithMaxTileEntries(cfg.MaxTileEntries),
		tileraster.WithDebugReadback(cfg.Debug),
		tileraster.WithLogger(logger),
		tileraster.WithLabel("demo"),
	)
	defer p.Close()

	if err := p.Init(cfg.Width, cfg.Height, 1); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := p.SetAttribute(0, 12, gputypes.VertexFormatFloat32x3); err != nil {
		return err
	}
	if err := p.SetNormalAttribute(0); err != nil {
		return err
	}
	if err := p.CreateVertexShaderLayout(); err != nil {
		return err
	}

	vb, err := p.CreateVertexBuffer(mesh.VertexBytes(), len(mesh.Positions), tileraster.MeshStride)
	if err != nil {
		return err
	}
	ib, err := p.CreateIndexBuffer(mesh.IndexBytes(), len(mesh.Indices), gputypes.IndexFormatUint32)
	if err != nil {
		return err
	}
	color, err := p.CreateTarget(tileraster.KindColor)
	if err != nil {
		return err
	}
	depth, err := p.CreateTarget(tileraster.KindDepth)
	if err != nil {
		return err
	}
	if err := p.SetVertexBuffer(vb); err != nil {
		return err
	}
	if err := p.SetIndexBuffer(ib); err != nil {
		return err
	}
	if err := p.SetRenderTargets(color, depth); err != nil {
		return err
	}

	for i := range cfg.Frames {
		t := float32(i) * cfg.Step
		p.SetUniforms(frameUniforms(cfg, t))
		p.ClearFloat(color, cfg.Scene.Background)
		p.ClearDepth(depth, 1)
		if err := p.DrawIndexed(len(mesh.Indices)); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if cfg.Debug {
			st := p.LastFrameStats()
			logger.Debug("frame stats",
				"frame", i,
				"triangles", st.Triangles,
				"tile_entries", st.TileEntries,
				"dropped", st.Dropped)
		}

		if err := writeTarget(color, cfg.framePath(cfg.Output, i)); err != nil {
			return err
		}
		if cfg.DepthOutput != "" {
			if err := writeTarget(depth, cfg.framePath(cfg.DepthOutput, i)); err != nil {
				return err
			}
		}
		logger.Info("frame written", "frame", i, "output", cfg.framePath(cfg.Output, i))
	}
	return nil
}

func writeTarget(t *tileraster.Target, path string) error {
	img, err := t.Image()
	if err != nil {
		return fmt.Errorf("read %s target: %w", t.Kind(), err)
	}
	if err := writeImage(path, img); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
