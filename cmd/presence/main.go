package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/oomph-ac/presence"
	"github.com/oomph-ac/presence/settings"
	"github.com/oomph-ac/presence/status"
	"github.com/spf13/cobra"
)

// The following program manages the npcs and servers of a data folder from the command line.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "presence",
		Short:         "Manage presence npcs and the servers they link to",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path of the settings file")
	cmd.AddCommand(
		newNPCCmd(&configPath),
		newStatusCmd(&configPath),
		newWatchCmd(&configPath),
	)
	return cmd
}

// console prints command replies to stdout.
type console struct{}

// Message ...
func (console) Message(msg string) {
	fmt.Println(msg)
}

// load reads the settings and builds a Presence from them.
func load(configPath string) (*presence.Presence, settings.Settings, error) {
	s, err := settings.Load(configPath)
	if err != nil {
		return nil, s, err
	}
	log := s.Logger()
	if s.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: s.Sentry.DSN}); err != nil {
			log.Errorf("unable to initialise sentry: %v", err)
		}
	}
	return presence.New(presence.Config{Settings: s, Log: log}), s, nil
}

func newNPCCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:                "npc <command> [args...]",
		Short:              "Run an npc command as the console",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := load(*configPath)
			if err != nil {
				return err
			}
			p.Load()
			p.Execute(console{}, strings.Join(args, " "))
			return nil
		},
	}
}

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Ping every registered server once and print its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := load(*configPath)
			if err != nil {
				return err
			}
			p.Load()
			statuses := p.Poller().Poll(cmd.Context())
			for _, srv := range p.Servers().All() {
				fmt.Println(formatStatus(srv, statuses[srv.Name]))
			}
			return nil
		},
	}
}

func formatStatus(srv status.Server, st status.Status) string {
	if !st.Online {
		return fmt.Sprintf("%s (%v): offline", srv.Name, srv.Address)
	}
	return fmt.Sprintf("%s (%v): online, %d/%d", srv.Name, srv.Address, st.Players, st.Max)
}

func newWatchCmd(configPath *string) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep polling the registered servers and log their status until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, s, err := load(*configPath)
			if err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)
			log := s.Logger()

			if stats {
				viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(s.Stats.Address))
				mgr := statsview.New()
				go mgr.Start()
				defer mgr.Stop()
				log.Infof("runtime statistics available at http://%s/debug/statsview", s.Stats.Address)
			}

			p.Start(ctx)
			if !p.Poller().Running() {
				log.Warnf("no servers registered in %s, nothing to watch", s.ServerFile())
				return nil
			}

			t := time.NewTicker(s.PollInterval())
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-t.C:
					for _, srv := range p.Servers().All() {
						log.WithField("server", srv.Name).Info(formatStatus(srv, p.Snapshot().Get(srv.Name)))
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "serve runtime statistics while watching")
	return cmd
}
