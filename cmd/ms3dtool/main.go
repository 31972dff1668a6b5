// ms3dtool is a CLI utility for inspecting and converting MilkShape 3D
// skeletal models.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/skelmesh/internal/assets"
	"github.com/Faultbox/skelmesh/internal/config"
	"github.com/Faultbox/skelmesh/internal/logger"
	"github.com/Faultbox/skelmesh/pkg/loader"
)

// errUsage marks bad command-line arguments; usage has been printed.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ms3dtool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	a := newApp(cfg, stdout, stderr, logger.Log)

	command, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "info":
		err = a.cmdInfo(cmdArgs)
	case "joints", "tree":
		err = a.cmdJoints(cmdArgs)
	case "dump":
		err = a.cmdDump(cmdArgs)
	case "export", "x":
		err = a.cmdExport(cmdArgs)
	case "pose":
		err = a.cmdPose(cmdArgs)
	case "watch":
		err = a.cmdWatch(ctx, cmdArgs)
	case "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ms3dtool - MilkShape 3D skeletal model utility

Usage:
  ms3dtool [flags] <command> [args]

Commands:
  info <file.ms3d>             Show header, counts, bounds and repaired issues
  joints <file.ms3d>           Print the joint hierarchy with keyframe counts
  dump <file.ms3d>             Dump the decoded records
  export <file.ms3d> [output]  Convert to glb, gltf or obj
  pose <file.ms3d> <frame>     Print joint positions at an animation frame
  watch <dir>                  Reload models in dir whenever they change

Flags:
  -config <path>       Config file (default ./ms3dtool.yaml or user config dir)
  -log-level <level>   debug, info, warn or error
  -log-file <path>     Also write JSON logs to a rotated file
  -format <fmt>        Export format: glb, gltf or obj
  -out <dir>           Export output directory
  -frame <n>           Pose exports at this frame (obj only)
  -texture-dir <dir>   Extra texture search directory (repeatable)

Examples:
  ms3dtool info models/hero.ms3d
  ms3dtool -format obj -frame 12 export models/hero.ms3d
  ms3dtool -log-level debug watch models/`)
}

// app holds what every command needs.
type app struct {
	cfg      *config.Config
	out      io.Writer
	errOut   io.Writer
	log      *zap.Logger
	textures *assets.TextureCache
	loader   *loader.MS3DLoader
}

func newApp(cfg *config.Config, out, errOut io.Writer, log *zap.Logger) *app {
	textures := assets.NewTextureCache(assets.NewManager(cfg.Loader.TextureDirs...), log.Named("textures"))
	return &app{
		cfg:      cfg,
		out:      out,
		errOut:   errOut,
		log:      log,
		textures: textures,
		loader: loader.NewMS3DLoader(
			loader.WithLogger(log.Named("loader")),
			loader.WithTextureResolver(textures),
			loader.WithMaxLoggedIssues(cfg.Loader.MaxIssues),
		),
	}
}

func (a *app) usage(line string) error {
	fmt.Fprintf(a.errOut, "Usage: ms3dtool %s\n", line)
	return errUsage
}
