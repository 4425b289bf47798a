package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/warmaster/warmaster/internal/chain"
	"github.com/warmaster/warmaster/internal/cli"
	"github.com/warmaster/warmaster/internal/config"
	"github.com/warmaster/warmaster/internal/logging"
	"github.com/warmaster/warmaster/internal/master"
	"github.com/warmaster/warmaster/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Config  string `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	Logs    bool   `help:"Save detailed mastering reports"`

	Preset    string  `default:"clean" help:"Mastering preset: clean, club, warm, bright, heavy"`
	Intensity float64 `default:"55" help:"Processing intensity (0-100)"`
	Target    string  `help:"Loudness target: spotify, youtube, apple, club, radio, streaming_safe, default"`
	Tier      string  `help:"Quality tier: free, plus, pro"`

	Low        float64 `default:"0" help:"Low shelf gain in dB (-12 to +12)"`
	Mid        float64 `default:"0" help:"Mid band gain in dB (-12 to +12)"`
	Presence   float64 `default:"0" help:"Presence band gain in dB (-12 to +12)"`
	Air        float64 `default:"0" help:"Air band gain in dB (-12 to +12)"`
	Glue       float64 `default:"0" help:"Glue compression amount (0-100)"`
	Width      float64 `default:"100" help:"Stereo width (50-150, 100 is unchanged)"`
	Saturation float64 `default:"0" help:"Saturation drive (0-100)"`
	Trim       float64 `default:"0" help:"Output trim in dB (-12 to +6)"`

	Preview int      `default:"0" help:"Also render a preview clip of this many seconds (5-60)"`
	Files   []string `arg:"" name:"files" help:"Audio files to master" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("warmaster"),
		kong.Description("Configurable audio mastering pipeline"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "warmaster-")
		if err != nil {
			cli.PrintError(fmt.Sprintf("work directory: %v", err))
			os.Exit(1)
		}
	}

	store := master.NewMemoryStore(cfg.StoreTTL())
	svc := master.NewService(cfg.Runner(), store, workDir)

	// Open debug log file
	debugLog, _ := os.Create("warmaster-debug.log")
	defer debugLog.Close()
	log := func(format string, args ...interface{}) {
		if debugLog != nil {
			fmt.Fprintf(debugLog, format+"\n", args...)
		}
	}
	svc.Pipeline.Log = log

	targetName := cliArgs.Target
	if targetName == "" {
		targetName = cfg.DefaultTarget
	}
	tierName := cliArgs.Tier
	if tierName == "" {
		tierName = cfg.DefaultTier
	}

	knobs := chain.Knobs{
		Low:        cliArgs.Low,
		Mid:        cliArgs.Mid,
		Presence:   cliArgs.Presence,
		Air:        cliArgs.Air,
		Glue:       cliArgs.Glue,
		Width:      cliArgs.Width,
		Saturation: cliArgs.Saturation,
		OutputTrim: cliArgs.Trim,
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(cliArgs.Files)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start mastering in background
	go func() {
		for i, inputPath := range cliArgs.Files {
			fileStartTime := time.Now()

			log("[MAIN] Sending FileStartMsg for file %d: %s", i, inputPath)
			model.ProgressChan <- ui.FileStartMsg{
				FileIndex: i,
				FileName:  inputPath,
			}

			// Forward pass transitions to the UI and track timings
			ph := &progressHandler{
				ch:  model.ProgressChan,
				log: log,
			}
			svc.Pipeline.Progress = ph.callback

			req := master.Request{
				InputPath: inputPath,
				Preset:    chain.ParsePreset(cliArgs.Preset),
				Intensity: cliArgs.Intensity,
				Knobs:     knobs,
				Target:    targetName,
				Tier:      master.ParseTier(tierName),
			}

			log("[MAIN] Starting CreateMaster for %s", inputPath)
			m, err := svc.CreateMaster(context.Background(), req)
			if err != nil {
				log("[MAIN] CreateMaster failed: %v", err)
				model.ProgressChan <- ui.FileCompleteMsg{
					FileIndex: i,
					Error:     err,
				}
				continue
			}

			if cliArgs.Preview > 0 {
				previewPath, err := svc.Preview(context.Background(), m.Record.ID, cliArgs.Preview)
				if err != nil {
					log("[MAIN] Preview failed: %v", err)
				} else {
					log("[MAIN] Preview written: %s", previewPath)
				}
			}

			// Generate mastering report if --logs flag is set
			if cliArgs.Logs {
				duration, _ := svc.Pipeline.Engine.Duration(context.Background(), inputPath)
				reportData := logging.ReportData{
					InputPath:    inputPath,
					OutputPath:   m.Record.MasterPath,
					StartTime:    fileStartTime,
					EndTime:      time.Now(),
					DecodeTime:   ph.passTime[1],
					MeasureTime:  ph.passTime[2],
					RenderTime:   ph.passTime[3],
					Request:      req,
					Chain:        chain.Compile(req.Preset, req.Intensity, req.Knobs),
					Result:       m.Result,
					DurationSecs: duration,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					log("[MAIN] Failed to generate report: %v", err)
				}
			}

			inputLUFS := 0.0
			outputLUFS := 0.0
			if m.Result.Measurement != nil {
				inputLUFS = m.Result.Measurement.Integrated
			}
			if m.Result.Output != nil {
				outputLUFS = m.Result.Output.OutputIntegrated
			}

			log("[MAIN] Sending FileCompleteMsg for file %d", i)
			model.ProgressChan <- ui.FileCompleteMsg{
				FileIndex:  i,
				OutputPath: m.Record.MasterPath,
				Target:     m.Result.Profile.Name,
				TwoPass:    m.Result.TwoPass,
				Truncated:  m.Result.Truncated,
				InputLUFS:  inputLUFS,
				OutputLUFS: outputLUFS,
			}
		}

		log("[MAIN] Sending AllCompleteMsg")
		model.ProgressChan <- ui.AllCompleteMsg{}
	}()

	// Run the program
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// progressHandler forwards pipeline pass transitions to the UI
type progressHandler struct {
	ch  chan tea.Msg
	log func(string, ...interface{})

	passStart [4]time.Time
	passTime  [4]time.Duration
}

func (ph *progressHandler) callback(pass int, passName string, progress float64) {
	ph.log("[MAIN] Sending ProgressMsg: Pass %d (%s), Progress %.1f%%", pass, passName, progress*100)

	// Track pass timing
	if pass >= 1 && pass <= 3 {
		if progress == 0.0 {
			ph.passStart[pass] = time.Now()
		} else if progress == 1.0 && !ph.passStart[pass].IsZero() {
			ph.passTime[pass] = time.Since(ph.passStart[pass])
		}
	}

	ph.ch <- ui.ProgressMsg{
		Pass:     pass,
		PassName: passName,
		Progress: progress,
	}
}
