package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mechalab/steplab/internal/config"
	"github.com/mechalab/steplab/internal/device"
	"github.com/mechalab/steplab/internal/host"
	"github.com/mechalab/steplab/internal/metrics"
	"github.com/mechalab/steplab/internal/plant"
	"github.com/mechalab/steplab/internal/tui"
)

var (
	configFile string
	port       string
	baud       int
	kp         float64
	periodMS   int
	setpoint   int
	outPath    string
	live       bool
	preset     string
	// simulate plant parameters
	maxRate        float64
	timeConstantMS int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "steplab",
		Short: "motor step-response capture and analysis",
	}

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "run a step response on the attached board",
		RunE:  runCapture,
	}
	captureCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	captureCmd.Flags().StringVar(&port, "port", config.DefaultPort, "serial port")
	captureCmd.Flags().IntVar(&baud, "baud", config.DefaultBaud, "baud rate")
	captureCmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	captureCmd.Flags().IntVar(&periodMS, "period", config.DefaultPeriodMS, "task period (ms)")
	captureCmd.Flags().IntVar(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint for metrics")
	captureCmd.Flags().StringVar(&outPath, "out", "", "write captured data to CSV")
	captureCmd.Flags().BoolVar(&live, "live", false, "live terminal view")
	captureCmd.Flags().StringVar(&preset, "preset", "", "tuning preset")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run the full exchange against a simulated board",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	simulateCmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	simulateCmd.Flags().IntVar(&periodMS, "period", config.DefaultPeriodMS, "task period (ms)")
	simulateCmd.Flags().IntVar(&setpoint, "setpoint", config.DefaultSetpoint, "first task setpoint")
	simulateCmd.Flags().StringVar(&outPath, "out", "", "write captured data to CSV")
	simulateCmd.Flags().Float64Var(&maxRate, "max-rate", plant.DefaultMaxRate, "motor speed at full duty (counts/s)")
	simulateCmd.Flags().IntVar(&timeConstantMS, "tau", int(plant.DefaultTimeConstant/time.Millisecond), "motor time constant (ms)")
	simulateCmd.Flags().StringVar(&preset, "preset", "", "tuning preset")

	plotCmd := &cobra.Command{
		Use:   "plot [csv]",
		Short: "plot a captured run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint for metrics")

	rootCmd.AddCommand(captureCmd, simulateCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyConfig resolves the effective config: defaults, then preset, then
// config file, then CLI flags, each layer overriding the last.
func applyConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	// normalize the file/preset layer before flags so an explicit flag value
	// (including --setpoint 0) is taken verbatim
	cfg.Normalize()
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("baud") {
		cfg.Baud = baud
	}
	if cmd.Flags().Changed("kp") {
		cfg.Kp = kp
	}
	if cmd.Flags().Changed("period") {
		cfg.PeriodMS = periodMS
	}
	if cmd.Flags().Changed("setpoint") {
		cfg.Setpoint = setpoint
	}
	if cmd.Flags().Changed("max-rate") {
		cfg.Plant.MaxRate = maxRate
	}
	if cmd.Flags().Changed("tau") {
		cfg.Plant.TimeConstantMS = timeConstantMS
	}
	return cfg, nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := applyConfig(cmd)
	if err != nil {
		return err
	}

	tr, err := host.OpenSerial(cfg.Port, cfg.Baud)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cfg.Port, err)
	}
	defer tr.Close()

	color.Cyan("capturing from %s (kp=%g, period=%dms)", cfg.Port, cfg.Kp, cfg.PeriodMS)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var data *host.Dataset
	if live {
		data, err = runWithView(ctx, tr, cfg)
	} else {
		bar := progressbar.NewOptions(cfg.DataPoints,
			progressbar.OptionSetDescription("capturing"),
			progressbar.OptionShowCount(),
		)
		sess := host.NewSession(tr, cfg.Kp, cfg.PeriodMS,
			host.WithSampleObserver(func(x, y float64) { _ = bar.Add(1) }),
		)
		data, err = sess.Run(ctx)
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return err
	}

	color.Green("captured %d samples", data.Len())
	return finishRun(data, cfg.Setpoint)
}

// runWithView streams samples into the terminal view while the session runs.
func runWithView(ctx context.Context, tr host.Transport, cfg *config.Config) (*host.Dataset, error) {
	samples := make(chan tui.Sample, cfg.DataPoints+16)
	sess := host.NewSession(tr, cfg.Kp, cfg.PeriodMS,
		host.WithSampleObserver(func(x, y float64) {
			samples <- tui.Sample{TimeMS: x, Position: y}
		}),
	)

	g, ctx := errgroup.WithContext(ctx)

	var data *host.Dataset
	g.Go(func() error {
		defer close(samples)
		d, err := sess.Run(ctx)
		data = d
		return err
	})

	view := tea.NewProgram(tui.NewModel(samples, cfg.Kp, cfg.PeriodMS, cfg.Setpoint))
	if _, err := view.Run(); err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := applyConfig(cmd)
	if err != nil {
		return err
	}

	params := plant.Params{
		MaxRate:      cfg.Plant.MaxRate,
		TimeConstant: time.Duration(cfg.Plant.TimeConstantMS) * time.Millisecond,
	}
	motor1 := plant.NewSimMotor(params)
	motor2 := plant.NewSimMotor(params)

	lb := host.NewLoopback()
	prog := device.NewProgram(lb.DeviceEnd(), nil,
		device.TaskSpec{
			Name:          "Motor_Task_1",
			Priority:      1,
			Setpoint:      cfg.Setpoint,
			DataPoints:    cfg.DataPoints,
			EmitTelemetry: true,
			Actuator:      motor1,
			Sensor:        motor1,
		},
		device.TaskSpec{
			Name:       "Motor_Task_2",
			Priority:   2,
			Setpoint:   cfg.Setpoint2,
			DataPoints: cfg.DataPoints,
			Actuator:   motor2,
			Sensor:     motor2,
		},
	)

	color.Cyan("simulating step response (kp=%g, period=%dms, setpoint=%d)",
		cfg.Kp, cfg.PeriodMS, cfg.Setpoint)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	devCtx, stopDevice := context.WithCancel(ctx)
	defer stopDevice()

	var data *host.Dataset
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return prog.Run(devCtx)
	})
	g.Go(func() error {
		defer stopDevice()
		hostEnd := lb.HostEnd()
		// closing our end after the run unblocks the device if the exchange
		// died partway through
		defer hostEnd.Close()
		sess := host.NewSession(hostEnd, cfg.Kp, cfg.PeriodMS)
		d, err := sess.Run(ctx)
		data = d
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	color.Green("simulated %d samples", data.Len())
	return finishRun(data, cfg.Setpoint)
}

func plotRun(cmd *cobra.Command, args []string) error {
	data, err := host.LoadCSV(args[0])
	if err != nil {
		return err
	}
	return finishRun(data, setpoint)
}

// finishRun optionally saves the dataset, then plots it and prints the step
// metrics.
func finishRun(data *host.Dataset, setpoint int) error {
	if outPath != "" {
		if err := data.SaveCSV(outPath); err != nil {
			return err
		}
		color.Green("saved %s", outPath)
	}

	if data.Len() > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(data.Y,
			asciigraph.Width(70),
			asciigraph.Height(16),
			asciigraph.Caption("position (encoder counts)"),
		))
	}

	summary := metrics.Summarize(data.X, data.Y, float64(setpoint))
	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	for _, name := range []string{"rise_time", "overshoot_pct", "settling_time", "steady_state_error"} {
		_ = table.Append(name, strconv.FormatFloat(summary[name], 'g', 6, 64))
	}
	return table.Render()
}
