// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for pdcli using the Cobra
// library. It defines the root command, which loads the configuration and
// starts the interactive shell, plus the version and config subcommands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/paradrop/pdcli/buildvars"
	"github.com/paradrop/pdcli/client"
	"github.com/paradrop/pdcli/internal/config"
	"github.com/paradrop/pdcli/internal/i18n"
	"github.com/paradrop/pdcli/internal/logging"
	"github.com/paradrop/pdcli/internal/shell"
	"github.com/paradrop/pdcli/internal/terminal"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// ErrNoGUID is returned when neither -g nor DEVID names a developer id.
var ErrNoGUID = errors.New("no developer id")

// newClient builds the API client for a session. Tests replace it.
var newClient = func(cfg client.Config) client.Client {
	return client.NewHTTPClient(cfg)
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}

		// If the flag is set but the value is empty, do nothing.
		if path == "" {
			return nil, nil
		}

		// Make sure the user-provided file exists to avoid unwanted behavior.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

// loadConfig reads the configuration for cmd and applies the language and
// verbosity settings.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return config.Config{}, err
	}
	c, err := config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	if err != nil {
		return c, fmt.Errorf("error loading config: %w", err)
	}
	if c.Language == "" {
		c.Language = "en"
	}
	i18n.Init(c.Language)
	logging.SetDebug(c.Verbose)
	return c, nil
}

// NewRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdcli",
		Short: "pdcli is an interactive shell for the ParaDrop API.",
		Long: `pdcli connects to a ParaDrop API server and opens a command shell.
Sign in with "login <user>", then list and manage access points and
chutes. Type "help" inside the shell for the list of commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}
	cmd.Version = compositeVersion()
	cmd.SetVersionTemplate("{{.Version}}\n")

	applyDefaultFlags(cmd.PersistentFlags())
	cmd.Flags().BoolP("version", "V", false, "Print version and exit")

	cmd.AddCommand(newVersionCmd(), newConfigCmd())
	return cmd
}

// applyDefaultFlags defines the flags every pdcli command understands. The
// names match the config keys so viper can bind them directly.
func applyDefaultFlags(flags *pflag.FlagSet) {
	flags.StringP("addr", "a", "paradrop.org", "Address of the API server")
	flags.IntP("port", "p", 10000, "Port of the API server")
	flags.StringP("guid", "g", "", "Developer id (defaults to $DEVID)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "config file")
	flags.String("language", "en", `Message language ("en", "de")`)
}

func runShell(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("guid") && c.GUID != "" && c.GUID == os.Getenv("DEVID") {
		logging.Infof("%s", i18n.T("cli.guid_from_env", c.GUID))
	}
	if c.GUID == "" {
		logging.Warnf("%s", i18n.T("cli.no_guid"))
		return ErrNoGUID
	}

	cc := client.Config{Addr: c.Addr, Port: c.Port, DevID: c.GUID, Timeout: c.Timeout}
	logging.Infof("%s", i18n.T("cli.connecting", cc.BaseURL()))

	in := cmd.InOrStdin()
	sh, err := shell.New(shell.Config{
		In:          in,
		Out:         cmd.OutOrStdout(),
		Err:         cmd.ErrOrStderr(),
		Terminal:    terminalFor(in),
		Client:      newClient(cc),
		Prompt:      c.Prompt,
		HistorySize: c.HistorySize,
		StateDir:    c.StateDir,
		StateEnv:    c.StateEnv,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return sh.Run(ctx)
}

// terminalFor returns the raw-mode controller for in when it is a file.
func terminalFor(in io.Reader) terminal.Terminal {
	if f, ok := in.(*os.File); ok {
		return terminal.New(int(f.Fd()))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Fprintf(cmd.OutOrStdout(), "pdcli %s\n", v)
			if c != "" && c != "dev" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", c)
			}
			if d != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", d)
			}
		},
	}
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the pdcli configuration",
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the location of the user config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetBool("system")
			path, err := config.GetConfigPath(system)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.config_path", path))
			return nil
		},
	}

	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write the effective configuration to the config file",
		Long: `Resolves defaults, config files, environment and flags, then stores
the result so later runs start with the same settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			system, _ := cmd.Flags().GetBool("system")
			if err := config.WriteConfigFile(&c, system); err != nil {
				return err
			}
			path, err := config.GetConfigPath(system)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.config_written", path))
			return nil
		},
	}

	for _, c := range []*cobra.Command{pathCmd, writeCmd} {
		c.Flags().Bool("system", false, "Use the system-wide config location")
	}
	cfgCmd.AddCommand(pathCmd, writeCmd)
	return cfgCmd
}

// compositeVersion joins version, commit and build date into one line.
func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime. This helper is separated to make unit testing straightforward.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
			ok = true
		}
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// If Main doesn't contain the version (some build paths), try to
		// find our module in the dependencies and use that version.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/paradrop/pdcli" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort, if no version was discovered, but a gitCommit was
	// provided via ldflags, show that to aid support.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
