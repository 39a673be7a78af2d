// Command framedump inspects video files and dumps decoded frames as PNGs.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pion/logging"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/harshabose/videodecoder"
	"github.com/harshabose/videodecoder/pkg/mp4probe"
	"github.com/harshabose/videodecoder/pkg/probe"
)

func main() {
	app := &cli.App{
		Name:  "framedump",
		Usage: "inspect video files and dump decoded frames",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "trace, debug, info, warn or error"},
		},
		Commands: []*cli.Command{infoCommand(), dumpCommand()},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context, scope string) logging.LeveledLogger {
	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = parseLogLevel(c.String("log-level"))
	return factory.NewLogger(scope)
}

func parseLogLevel(s string) logging.LogLevel {
	switch s {
	case "trace":
		return logging.LogLevelTrace
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print video stream metadata as yaml",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "mp4", Usage: "parse MP4 boxes directly instead of opening the stream with FFmpeg"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one input file", 2)
			}
			path := c.Args().First()

			var info any
			var err error
			if c.Bool("mp4") {
				info, err = mp4probe.File(path)
			} else {
				info, err = probe.File(path)
			}
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(info)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
}

// dumpConfig holds dump defaults, optionally loaded from a yaml file and
// overridden by flags.
type dumpConfig struct {
	OutDir string  `yaml:"out_dir"`
	Count  int     `yaml:"count"`
	Skip   int     `yaml:"skip"`
	Scale  float64 `yaml:"scale"`
	Loop   bool    `yaml:"loop"`
}

// validateDumpConfig rejects combinations that would never terminate.
func validateDumpConfig(cfg dumpConfig) error {
	if cfg.Loop && cfg.Count <= 0 {
		return errors.New("--loop requires a positive --count, otherwise the dump never ends")
	}
	return nil
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "decode frames and write them as PNG files",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "yaml file with dump defaults"},
			&cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Value: "frames", Usage: "directory for dumped frames"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "stop after this many frames (0 = all)"},
			&cli.IntFlag{Name: "skip", Usage: "skip this many frames before the first dump"},
			&cli.Float64Flag{Name: "scale", Usage: "resample factor for dumped frames (0 or 1 = off)"},
			&cli.BoolFlag{Name: "loop", Usage: "rewind at end of stream instead of stopping (needs --count)"},
		},
		Action: runDump,
	}
}

func runDump(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one input file", 2)
	}
	path := c.Args().First()
	log := newLogger(c, "framedump")

	cfg, err := loadDumpConfig(c)
	if err != nil {
		return err
	}
	if err := validateDumpConfig(cfg); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	options := []videodecoder.Option{videodecoder.WithLogger(log)}
	if cfg.Loop {
		options = append(options, videodecoder.WithLoop())
	}

	decoder, err := videodecoder.CreateVideoDecoder(ctx, videodecoder.FromPath(path), options...)
	if err != nil {
		return err
	}
	defer decoder.Close()

	dimensions := decoder.Dimensions()
	log.Infof("%s: %dx%d %s", path, dimensions.Width, dimensions.Height, decoder.CodecName())

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}

	if cfg.Skip > 0 {
		decoder.Skip(cfg.Skip)
	}

	written := 0
	for cfg.Count == 0 || written < cfg.Count {
		frame, err := decoder.NextFrame(ctx)
		if errors.Is(err, videodecoder.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}

		if err := writeFrame(cfg, frame); err != nil {
			return err
		}
		written++
	}

	log.Infof("wrote %d frames to %s", written, cfg.OutDir)
	return nil
}

func writeFrame(cfg dumpConfig, frame *videodecoder.Frame) error {
	var img image.Image
	var err error

	if cfg.Scale > 0 && cfg.Scale != 1 {
		dimensions := frame.Dimensions()
		img, err = frame.ScaledImage(
			int(float64(dimensions.Width)*cfg.Scale),
			int(float64(dimensions.Height)*cfg.Scale),
		)
	} else {
		img, err = frame.Image()
	}
	if err != nil {
		return err
	}

	name := filepath.Join(cfg.OutDir, fmt.Sprintf("frame_%06d.png", frame.Index()))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

func loadDumpConfig(c *cli.Context) (dumpConfig, error) {
	cfg := dumpConfig{OutDir: "frames"}

	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if c.IsSet("out-dir") || cfg.OutDir == "" {
		cfg.OutDir = c.String("out-dir")
	}
	if c.IsSet("count") {
		cfg.Count = c.Int("count")
	}
	if c.IsSet("skip") {
		cfg.Skip = c.Int("skip")
	}
	if c.IsSet("scale") {
		cfg.Scale = c.Float64("scale")
	}
	if c.IsSet("loop") {
		cfg.Loop = c.Bool("loop")
	}

	return cfg, nil
}
