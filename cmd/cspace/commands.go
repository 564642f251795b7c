package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/absfs/absfs"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/num/quat"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/codec"
	"github.com/absfs/cspace/internal/config"
	"github.com/absfs/cspace/internal/qstream"
	"github.com/absfs/cspace/scene"
	"github.com/absfs/cspace/vfs"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	fsys absfs.Filer
	// resolve maps command-line paths to fsys names; nil keeps them as is.
	resolve func(string) (string, error)

	configPath string
	logLevel   string

	config config.Config
	logger *slog.Logger
	opts   *cspace.Options
}

func newRootCmd(fsys absfs.Filer, resolve func(string) (string, error)) *cobra.Command {
	a := &app{fsys: fsys, resolve: resolve}
	root := &cobra.Command{
		Use:               "cspace",
		Short:             "Inspect and convert configuration space files",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.AddCommand(a.inspectCmd(), a.recompressCmd(), a.sceneCmd())
	return root
}

func (a *app) path(name string) (string, error) {
	if a.resolve == nil {
		return name, nil
	}
	return a.resolve(name)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path != "" {
		var err error
		if path, err = a.path(path); err != nil {
			return err
		}
	}
	c, err := config.Load(a.fsys, path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		c.Log.Level = a.logLevel
		if err := c.Validate(); err != nil {
			return err
		}
	}
	a.config = c

	if a.logger, err = c.Log.Logger(cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.opts, err = c.Options(a.logger)
	return err
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.csp",
		Short: "Print the kind, resolution and voxel histogram of a configuration space file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runInspect,
	}
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	name, err := a.path(args[0])
	if err != nil {
		return err
	}
	data, err := vfs.ReadFile(a.fsys, name)
	if err != nil {
		return err
	}
	obj, err := cspace.ReadObject(bytes.NewReader(data), a.opts)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:       %s (%s)\n", args[0], humanize.Bytes(uint64(len(data))))
	fmt.Fprintf(out, "kind:       %s\n", obj.Kind())

	// only rasters load, so the payload is a raster payload
	r := qstream.NewReader(bytes.NewReader(data))
	r.Uint32()
	r.Uint32()
	blob := r.Bytes()
	s := obj.Raster()
	raw := uint64(s.Resolution()) * uint64(s.Resolution()) * uint64(s.Resolution())
	algo, _ := codec.DetectBlobAlgorithm(blob)
	fmt.Fprintf(out, "resolution: %d\n", s.Resolution())
	fmt.Fprintf(out, "voxels:     %s in %s (%.1f%% saved, %s)\n",
		humanize.Bytes(raw), humanize.Bytes(uint64(len(blob))),
		codec.GetCompressionPercentage(int64(raw), int64(len(blob))), algo)

	h := s.Histogram()
	for t := 0; t < cspace.NumVoxelTypes; t++ {
		fmt.Fprintf(out, "  %-10s %12s  %6.2f%%\n", cspace.VoxelType(t),
			humanize.Comma(int64(h[t])), 100*float64(h[t])/float64(h.Total()))
	}
	return nil
}

func (a *app) recompressCmd() *cobra.Command {
	var algorithm string
	var level int
	cmd := &cobra.Command{
		Use:   "recompress IN.csp OUT.csp",
		Short: "Rewrite a configuration space file with another compression algorithm",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("algorithm") {
				algorithm = a.config.Codec.Algorithm
			}
			if !cmd.Flags().Changed("level") {
				level = a.config.Codec.Level
			}
			return a.runRecompress(cmd.OutOrStdout(), args[0], args[1], algorithm, level)
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "zlib, gzip, zstd, lz4, brotli or snappy (default from config)")
	cmd.Flags().IntVar(&level, "level", 0, "compression level, 0 for the algorithm default")
	return cmd
}

func (a *app) runRecompress(out io.Writer, in, dst, algorithm string, level int) error {
	algo, err := codec.ParseAlgorithm(algorithm)
	if err != nil {
		return fmt.Errorf("%w: %q", err, algorithm)
	}
	c, err := codec.New(&codec.Config{Algorithm: algo, Level: level, MaxDecodedSize: a.config.Codec.MaxDecodedSize})
	if err != nil {
		return err
	}
	if in, err = a.path(in); err != nil {
		return err
	}
	if dst, err = a.path(dst); err != nil {
		return err
	}

	obj, err := cspace.LoadObject(a.fsys, in, a.opts)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	opts := *a.opts
	opts.Codec = c
	if err := cspace.SaveObject(a.fsys, dst, obj, &opts); err != nil {
		return fmt.Errorf("%s: %w", dst, err)
	}

	before, err := a.fsys.Stat(in)
	if err != nil {
		return err
	}
	after, err := a.fsys.Stat(dst)
	if err != nil {
		return err
	}
	a.logger.Debug("recompressed configuration space", "in", in, "out", dst, "algorithm", algo, "level", level)
	fmt.Fprintf(out, "%s: %s -> %s (%s)\n", dst,
		humanize.Bytes(uint64(before.Size())), humanize.Bytes(uint64(after.Size())), algo)
	return nil
}

func (a *app) sceneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scene FILE.arr",
		Short: "Print the objects and motion of a scene archive",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runScene,
	}
}

func (a *app) runScene(cmd *cobra.Command, args []string) error {
	name, err := a.path(args[0])
	if err != nil {
		return err
	}
	s, err := scene.LoadArchive(a.fsys, name)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "objects: %d\n", len(s.Objects))
	for i, o := range s.Objects {
		fmt.Fprintf(out, "  %d: %s, %d primitives, rotating=%t visible=%t color=#%02x%02x%02x\n",
			i, o.Kind, o.Len(), o.Rotating, o.Visible, o.Color.R, o.Color.G, o.Color.B)
	}
	fmt.Fprintf(out, "begin:   %s\n", formatQuat(s.Motion.Begin()))
	fmt.Fprintf(out, "end:     %s\n", formatQuat(s.Motion.End()))

	p, err := s.Problem()
	if err != nil {
		fmt.Fprintf(out, "problem: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "problem: %s, movable %d, obstacles %d\n", p.Kind, geometryLen(p.Movable), geometryLen(p.Obstacles))
	if e, err := s.Exact(); err == nil {
		note := ""
		if e.Truncated {
			note = " (truncated)"
		}
		fmt.Fprintf(out, "exact:   scaled by 10^%d%s\n", e.Digits, note)
	}
	return nil
}

func geometryLen(g scene.Geometry) int {
	return len(g.Balls) + len(g.Triangles)
}

func formatQuat(q quat.Number) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f, %.6f)", q.Real, q.Imag, q.Jmag, q.Kmag)
}
