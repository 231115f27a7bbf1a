package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/logging"
)

// CobraProfiler hangs pprof and span-timing flags off a command tree.
// Wire AddFlags onto the root command and PreRun/PostRun into its
// persistent hooks.
type CobraProfiler struct {
	cpuFile    *os.File
	cpuPath    string
	heapPath   string
	spanTiming bool
}

// NewCobraProfiler creates an idle profiler.
func NewCobraProfiler() *CobraProfiler {
	return &CobraProfiler{}
}

// AddFlags registers the profiling flags. They are hidden; profiling is
// a development aid, not part of the user surface.
func (p *CobraProfiler) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&p.cpuPath, "cpu-profile", "", "Write a CPU profile to the given file")
	cmd.PersistentFlags().StringVar(&p.heapPath, "heap-profile", "", "Write a heap profile to the given file on exit")
	cmd.PersistentFlags().BoolVar(&p.spanTiming, "timing", false, "Print a span timing summary on exit")
	for _, name := range []string{"cpu-profile", "heap-profile", "timing"} {
		_ = cmd.PersistentFlags().MarkHidden(name)
	}
}

// PreRun starts profiling per the parsed flags. Use as a
// PersistentPreRunE hook.
func (p *CobraProfiler) PreRun(cmd *cobra.Command, args []string) error {
	if p.spanTiming {
		Enable()
	}
	if p.cpuPath != "" {
		f, err := os.Create(p.cpuPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrCodeInternal, "failed to create CPU profile %s", p.cpuPath)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to start CPU profile")
		}
		p.cpuFile = f
	}
	return nil
}

// PostRun finalizes profile files and prints the timing summary. Use as
// a PersistentPostRun hook.
func (p *CobraProfiler) PostRun(cmd *cobra.Command, args []string) {
	log := logging.NewLogger("profiling")

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		log.WithField("path", p.cpuPath).Info("CPU profile written")
	}

	if p.heapPath != "" {
		f, err := os.Create(p.heapPath)
		if err != nil {
			log.WithError(err).Warn("Failed to create heap profile")
		} else {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.WithError(err).Warn("Failed to write heap profile")
			} else {
				log.WithField("path", p.heapPath).Info("Heap profile written")
			}
			f.Close()
		}
	}

	if p.spanTiming {
		Summarize(os.Stderr)
	}
}
