// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/inkboard/content"
	"github.com/gogpu/inkboard/internal/config"
	"github.com/gogpu/inkboard/internal/telemetry"
	"github.com/gogpu/inkboard/render"
	"github.com/gogpu/inkboard/visual"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build text children concurrently and write the composite as PNG",
		Long: `Open a board, build --children text blocks concurrently, each on its own
worker loop, then composite them top to bottom on the host loop and write the
result to --output as a PNG.`,
		Args: cobra.NoArgs,
		RunE: runDemo,
	}

	cmd.Flags().IntP("children", "n", 0, "Number of children to build")
	cmd.Flags().String("text", "", "Text of each child")
	cmd.Flags().Int("scale", 0, "Integer text scale")
	cmd.Flags().Int("padding", 0, "Padding around each text block")
	cmd.Flags().Int("gap", 0, "Vertical gap between children")
	cmd.Flags().StringP("output", "o", "", "PNG output path")
	return cmd
}

func applyDemoFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("children") {
		cfg.Children, _ = f.GetInt("children")
	}
	if f.Changed("text") {
		cfg.Text, _ = f.GetString("text")
	}
	if f.Changed("scale") {
		cfg.Scale, _ = f.GetInt("scale")
	}
	if f.Changed("padding") {
		cfg.Padding, _ = f.GetInt("padding")
	}
	if f.Changed("gap") {
		cfg.Gap, _ = f.GetInt("gap")
	}
	if f.Changed("output") {
		cfg.Output, _ = f.GetString("output")
	}
	return cfg.Validate()
}

func runDemo(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyDemoFlags(cmd, &cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	tp, shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "inkboard")
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, shutdown(sctx))
	}()

	raster := render.NewRaster(render.WithGap(cfg.Gap), render.WithBackground(color.White))
	board, err := visual.Open(ctx,
		visual.WithHostName(cfg.HostName),
		visual.WithHostLoopOptions(cfg.LoopOptions()...),
		visual.WithRegistryOptions(cfg.RegistryOptions()...),
		visual.WithHostOptions(
			visual.WithCompositor(raster),
			visual.WithTracerProvider(tp),
		),
	)
	if err != nil {
		return err
	}
	defer board.Close()

	start := time.Now()
	tb := content.TextBlock{
		Text:    cfg.Text,
		Color:   color.Black,
		Scale:   cfg.Scale,
		Padding: cfg.Padding,
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range cfg.Children {
		wg.Go(func() {
			if _, err := board.Host().BuildChild(ctx, tb.Factory(), cfg.NameHint); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("build children: %w", err)
	}

	target := render.NewPixmapTarget(0, 0)
	var drawn int
	var compErr error
	if err := board.Host().Do(ctx, func(h *visual.Host) {
		drawn, compErr = raster.Composite(h, target)
	}); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	if compErr != nil {
		return compErr
	}

	if err := writePNG(cfg.Output, target); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "built %d children on %d worker loops in %v\n",
		drawn, board.Registry().Len(), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(cmd.OutOrStdout(), "composited %dx%d after %d invalidations to %s\n",
		target.Width(), target.Height(), raster.Invalidations(), cfg.Output)
	return nil
}

func writePNG(path string, target *render.PixmapTarget) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write png: %w", cerr)
		}
	}()

	if err := png.Encode(f, target.Image()); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
