package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/lin71008/RollerCoasters/config"
	"github.com/lin71008/RollerCoasters/notify"
	"github.com/lin71008/RollerCoasters/profile"
	"github.com/lin71008/RollerCoasters/session"
	"github.com/lin71008/RollerCoasters/store"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/lin71008/RollerCoasters/train"
	"github.com/lin71008/RollerCoasters/tui"
	"github.com/lin71008/RollerCoasters/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	defer zap.S().Sync()
	level := zap.LevelFlag("log-level", zap.InfoLevel, "set log level")
	var confPath string

	rootCmd := &cobra.Command{
		Use:           "rollercoaster",
		Short:         "Edit closed roller coaster tracks and run a train on them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(*level)
			dev, err := cfg.Build()
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(dev)
			return nil
		},
	}
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	loadConf := func() (config.Config, error) {
		if confPath == "" {
			return config.Default(), nil
		}
		return config.Load(confPath)
	}

	rootCmd.AddCommand(runCmd(loadConf))
	rootCmd.AddCommand(profileCmd(loadConf))
	rootCmd.AddCommand(tracksCmd(loadConf))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type confLoader func() (config.Config, error)

func runCmd(loadConf confLoader) *cobra.Command {
	var (
		useTUI  bool
		trackID string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a session, serving it over HTTP and optionally in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConf()
			if err != nil {
				return err
			}
			var load *session.LoadTrack
			if trackID != "" {
				id, err := uuid.Parse(trackID)
				if err != nil {
					return fmt.Errorf("track id: %w", err)
				}
				load = &session.LoadTrack{ID: id}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, conf, load, useTUI)
		},
	}
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show the session in the terminal")
	cmd.Flags().StringVar(&trackID, "track", "", "load this stored track on start")
	return cmd
}

func run(ctx context.Context, conf config.Config, load *session.LoadTrack, useTUI bool) error {
	st, err := store.Open(conf.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	snaps := notify.NewMultiplexer[session.Snapshot]("snapshots")
	requests := make(chan session.Request)
	s := session.New(conf, st, snaps)
	zap.S().Infof("session %s", s.ID)

	errs := make(chan error, 3)
	workers := 0
	spawn := func(f func() error) {
		workers++
		go func() { errs <- f() }()
	}
	// wait stops every worker once one returns and collects the first error
	wait := func(err error) error {
		cancel()
		for ; workers > 0; workers-- {
			if werr := <-errs; err == nil {
				err = werr
			}
		}
		return err
	}

	spawn(func() error { return s.Run(ctx, requests) })
	if load != nil {
		if err := session.Send(ctx, requests, *load); err != nil {
			return wait(fmt.Errorf("load track %s: %w", load.ID, err))
		}
	}
	srv := web.NewServer(conf, snaps, requests)
	spawn(func() error { return srv.ListenAndServe(ctx) })
	if useTUI {
		spawn(func() error { return tui.Main(ctx, snaps, requests) })
	}

	select {
	case <-ctx.Done():
		return wait(nil)
	case err := <-errs:
		workers--
		return wait(err)
	}
}

func profileCmd(loadConf confLoader) *cobra.Command {
	var (
		trackID string
		out     string
		ticks   int
		show    bool
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Simulate a lap and chart its elevation and speed to a PNG or the terminal",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			conf, err := loadConf()
			if err != nil {
				return err
			}
			tr := *track.New()
			if trackID != "" {
				id, err := uuid.Parse(trackID)
				if err != nil {
					return fmt.Errorf("track id: %w", err)
				}
				st, err := store.Open(conf.DB)
				if err != nil {
					return err
				}
				defer st.Close()
				tr, err = st.Load(id)
				if err != nil {
					return err
				}
			}
			p := train.Params{
				Mode:      conf.Mode,
				Direction: 1,
				Speed:     conf.Speed,
				ArcLength: conf.ArcLength,
				Physics:   conf.Physics,
				Cars:      make([]float64, train.ClampCars(conf.Cars)),
			}
			samples, err := profile.Lap(tr, p, ticks)
			if err != nil {
				return err
			}
			if show {
				img, err := profile.Image(samples)
				if err != nil {
					return err
				}
				return tui.ShowImage(fmt.Sprintf("lap profile, %d ticks", ticks), img)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := profile.Render(samples, f); err != nil {
				f.Close()
				return err
			}
			zap.S().Infof("wrote %d samples to %s", len(samples), out)
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&trackID, "track", "", "stored track to profile (the default ring when empty)")
	cmd.Flags().StringVarP(&out, "out", "o", "profile.png", "output PNG path")
	cmd.Flags().IntVar(&ticks, "ticks", 600, "number of ticks to simulate")
	cmd.Flags().BoolVar(&show, "show", false, "show the chart in the terminal instead of writing a file")
	return cmd
}

func tracksCmd(loadConf confLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Manage stored tracks",
	}
	withStore := func(f func(st *store.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			conf, err := loadConf()
			if err != nil {
				return err
			}
			st, err := store.Open(conf.DB)
			if err != nil {
				return err
			}
			defer st.Close()
			return f(st, args)
		}
	}
	parseID := func(args []string) (uuid.UUID, error) {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return uuid.Nil, fmt.Errorf("track id: %w", err)
		}
		return id, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored track IDs",
		Args:  cobra.NoArgs,
		RunE: withStore(func(st *store.Store, _ []string) error {
			ids, err := st.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Print a stored track as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(st *store.Store, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			tr, err := st.Load(id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tr)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Store the default ring under a new ID",
		Args:  cobra.NoArgs,
		RunE: withStore(func(st *store.Store, _ []string) error {
			id := uuid.New()
			if err := st.Save(id, *track.New()); err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored track",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(st *store.Store, args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			return st.Delete(id)
		}),
	})
	return cmd
}
