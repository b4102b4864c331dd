package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/channel"
	"github.com/qdu-future/paramtune/lib/config"
	"github.com/qdu-future/paramtune/lib/document"
	"github.com/qdu-future/paramtune/lib/parambus"
	"github.com/qdu-future/paramtune/lib/params"
	"github.com/qdu-future/paramtune/lib/paramsync"
	"github.com/qdu-future/paramtune/lib/session"
	"github.com/qdu-future/paramtune/lib/tui"
	"github.com/qdu-future/paramtune/lib/util"
	"github.com/qdu-future/paramtune/lib/util/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	log = logger.GetGoI2PLogger()

	version = "dev"

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// app carries what every subcommand needs after configuration is loaded.
type app struct {
	cfg   config.ParamTuneConfig
	store *document.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "paramtune",
		Short: "Tune a running robot's parameters and save them to its YAML config",
		Long: titleStyle.Render("paramtune") + `

Edits the numeric parameters of remote modules live over TCP and writes the
edited values back into the robot's configuration document.

` + dimStyle.Render("Run 'paramtune [command] --help' for more information."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(); err != nil {
				return err
			}
			a.cfg = config.CurrentConfig()
			if err := config.Validate(a.cfg); err != nil {
				return err
			}
			if a.store == nil {
				a.store = document.NewOsStore()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEdit(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.paramtune/config.yaml)")
	flags.String("document", "", "YAML document to edit")
	flags.String("host", "", "remote host")
	flags.Int("port", 0, "remote port")
	viper.BindPFlag("document", flags.Lookup("document"))
	viper.BindPFlag("remote.host", flags.Lookup("host"))
	viper.BindPFlag("remote.port", flags.Lookup("port"))

	root.AddCommand(
		&cobra.Command{
			Use:   "edit",
			Short: "Open the interactive editor",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runEdit(cmd)
			},
		},
		&cobra.Command{
			Use:   "list [tag]",
			Short: "List editable parameters per module",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runList(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
			},
		},
		newSetCmd(a),
		&cobra.Command{
			Use:   "show <tag>",
			Short: "Ask a remote module to print its parameters",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s := a.open(cmd.Context(), cmd.ErrOrStderr(), true)
				defer s.Close()
				if err := s.Show(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ show sent to "+args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Run a parameter server seeded from the document",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runServe(cmd.OutOrStdout())
			},
		},
	)
	return root
}

func newSetCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "set <tag> <path> <value>",
		Short: "Apply one parameter value on the remote module",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.open(cmd.Context(), cmd.ErrOrStderr(), true)
			defer s.Close()

			v, err := s.Set(args[0], args[1], args[2])
			if err != nil && !(save && errors.Is(err, paramsync.ErrNotConnected)) {
				return err
			}
			out := cmd.OutOrStdout()
			if err == nil {
				fmt.Fprintf(out, "%s %s %s = %s\n", successStyle.Render("✓"), args[0], args[1], v)
			} else {
				s.Engine().SetText(s.Engine().Lookup(args[0], params.ParsePath(args[1])), args[2])
				fmt.Fprintln(out, dimStyle.Render(args[0]+" is offline, saving only"))
			}
			if !save {
				return nil
			}
			report, err := s.Save()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s saved %s (%d changed)\n", successStyle.Render("✓"), s.Path(), len(report.Changed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also write the value into the document")
	return cmd
}

// open starts a session on the configured document. Dial failures and a
// degraded document are reported on w; the session opens anyway.
func (a *app) open(ctx context.Context, w io.Writer, dial bool) *session.Session {
	if ctx == nil {
		ctx = context.Background()
	}
	var dialer session.Dialer
	if dial {
		dialer = channel.Dial
	}
	if !util.CheckFileExists(a.cfg.Document) {
		fmt.Fprintln(w, dimStyle.Render(a.cfg.Document+" does not exist yet; saving will create it"))
	}
	s := session.Open(ctx, a.cfg, a.store, dialer)
	if warn := s.Document().Warning(); warn != nil {
		fmt.Fprintln(w, errorStyle.Render("warning: ")+warn.Error())
	}
	for _, m := range s.Modules() {
		if m.DialErr != nil {
			fmt.Fprintln(w, errorStyle.Render(m.Tag+" offline: ")+m.DialErr.Error())
		}
	}
	return s
}

func (a *app) runEdit(cmd *cobra.Command) error {
	s := a.open(cmd.Context(), cmd.ErrOrStderr(), true)
	util.RegisterCloser(s)
	defer util.CloseAll()
	return tui.Run(s)
}

func (a *app) runList(w, errw io.Writer, args []string) error {
	s := a.open(context.Background(), errw, false)
	defer s.Close()

	for _, m := range s.Modules() {
		if len(args) == 1 && m.Tag != args[0] {
			continue
		}
		header := fmt.Sprintf("%s (%s/%s)", m.Tag, m.ID, m.Name)
		fmt.Fprintln(w, titleStyle.Render(header))
		if !m.Linked {
			fmt.Fprintln(w, dimStyle.Render("  not found in document"))
			continue
		}
		for _, b := range m.Bindings {
			fmt.Fprintf(w, "  %-32s %-6s %-12s -> %s\n", b.Path(), b.Type(), b.Text(), b.Command)
		}
		for _, sk := range m.Skipped {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  %-32s %s (not editable)", sk.Path, sk.Kind)))
		}

		descs := make([]params.Descriptor, 0, len(m.Bindings))
		for _, b := range m.Bindings {
			descs = append(descs, b.Descriptor)
		}
		for _, c := range params.FindCollisions(descs, params.ResolveCommandName) {
			paths := make([]string, 0, len(c.Paths))
			for _, p := range c.Paths {
				paths = append(paths, p.String())
			}
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("  command %q is shared by %s", c.Command, strings.Join(paths, ", "))))
		}
	}

	if len(args) == 0 {
		for _, e := range s.Document().Modules() {
			if !a.configured(e) {
				fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%s/%s (no module tag configured)", e.ID, e.Name)))
			}
		}
	}
	return nil
}

func (a *app) configured(e document.ModuleEntry) bool {
	for _, m := range a.cfg.Modules {
		if m.ID == e.ID || (m.Name != "" && m.Name == e.Name) {
			return true
		}
	}
	return false
}

func (a *app) runServe(w io.Writer) error {
	bus := parambus.NewBus()
	tables := make(map[string]*parambus.Table, len(a.cfg.Modules))
	doc := a.store.Load(a.cfg.Document)
	for _, m := range a.cfg.Modules {
		g, _ := document.FindModuleSubtree(doc, m.ID, m.Name)
		tables[m.Tag] = parambus.TableFromGroup(m.Tag, g)
		bus.Register(m.Tag, tables[m.Tag])
	}

	server, err := parambus.NewServer(&parambus.ServerConfig{
		ListenAddr:        a.cfg.Server.ListenAddress,
		MaxLinesPerSecond: a.cfg.Server.MaxLinesPerSecond,
	}, bus)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintln(w, successStyle.Render("✓ serving on "+server.Addr().String()))

	signals.RegisterReloadHandler(func() {
		doc := a.store.Load(a.cfg.Document)
		for _, m := range a.cfg.Modules {
			g, _ := document.FindModuleSubtree(doc, m.ID, m.Name)
			tables[m.Tag].Reset(g)
		}
		log.WithField("document", a.cfg.Document).Info("parameters_reloaded")
	})
	signals.RegisterInterruptHandler(func() {
		server.Stop()
		signals.StopHandle()
	})

	signals.Handle()
	return nil
}
