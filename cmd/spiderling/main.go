// spiderling - terminal scene viewer with rasterized and ray traced output.
// Loads a YAML scene or a single GLB/GLTF model.
//
// Controls:
//
//	Mouse drag  - Rotate scene (yaw/pitch)
//	Click       - Pick the object under the cursor
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Shift+←/→   - Pan camera
//	M           - Switch between raster and trace mode
//	G           - Toggle floor grid
//	R           - Reset rotation
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/render"
)

type options struct {
	mode     string
	fps      int
	bg       string
	snapshot string
	width    int
	height   int
	workers  int
	debug    bool
	logFile  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "spiderling [scene.yaml | model.glb]",
		Short: "Terminal 3D scene viewer",
		Long: "spiderling renders a YAML scene or a GLB/GLTF model in the terminal, either\n" +
			"through a software rasterizer or by casting one ray per pixel.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", string(ModeRaster), "Render mode (raster or trace)")
	f.IntVar(&opts.fps, "fps", 60, "Target FPS")
	f.StringVar(&opts.bg, "bg", "30,30,40", "Background color (R,G,B)")
	f.StringVar(&opts.snapshot, "snapshot", "", "Render one frame to this PNG file and exit")
	f.IntVar(&opts.width, "width", 320, "Snapshot width in pixels")
	f.IntVar(&opts.height, "height", 240, "Snapshot height in pixels")
	f.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Goroutines used for ray casting")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	f.StringVar(&opts.logFile, "log", "", "Write log output to this file")
	return cmd
}

func run(ctx context.Context, path string, opts *options) error {
	mode, err := ParseMode(opts.mode)
	if err != nil {
		return err
	}
	bg, err := parseColor(opts.bg)
	if err != nil {
		return err
	}
	if opts.fps < 1 {
		return fmt.Errorf("fps must be positive, got %d", opts.fps)
	}

	log := logging.Logger(logging.NewDefaultLogger("spiderling", opts.debug))
	if opts.logFile != "" {
		file, err := os.Create(opts.logFile)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer file.Close()
		log = logging.NewLogger(file, "spiderling", opts.debug)
	}

	world, err := LoadWorld(path, log)
	if err != nil {
		return err
	}

	if opts.snapshot != "" {
		r := NewRenderer(world, mode, opts.workers, opts.width, opts.height, bg, log)
		if err := r.Snapshot(ctx, NewRotationState(opts.fps).Matrix(), opts.snapshot); err != nil {
			return err
		}
		log.Infof("wrote %s (%dx%d, %s)", opts.snapshot, opts.width, opts.height, mode)
		return nil
	}

	// Output to the terminal would tear the alt screen.
	if opts.logFile == "" {
		log = logging.NewNopLogger()
	}
	return view(ctx, world, mode, opts, bg, log)
}

func parseColor(s string) (render.Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return render.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return render.RGB(r, g, b), nil
}
