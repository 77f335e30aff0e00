// Package cli provides an embeddable Cobra command tree for managing cached
// whisper.cpp models.
package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	models "github.com/transcribee/whispercpp"
	"github.com/transcribee/whispercpp/lazy"
)

// NewCommand creates a Cobra command tree for model management.
// The returned command should be added to a parent CLI's root command.
//
// Commands provided:
//   - models list [--remote]
//   - models pull <model> [--force]
//   - models path <model>
//   - models remove <model> [--yes]
//   - models info [model]
//
// Global flags: --json, --quiet, --verbose
func NewCommand(cfg models.Config, opts ...models.ManagerOption) *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "models",
		Short:        "Manage whisper.cpp models",
		Long:         "Download, locate, and remove pretrained whisper.cpp models in the local cache.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// The manager is built on first use so that the logger reflects the
	// parsed --quiet and --verbose flags.
	mgr := lazy.New(nil, "manager", "models.Manager", func() (models.Manager, error) {
		logger := newLogger(cmd.ErrOrStderr(), quiet, verbose)
		all := append([]models.ManagerOption{models.WithLogger(logger)}, opts...)
		m, err := models.NewManager(cfg, all...)
		if err != nil {
			return nil, lazy.NotFound("no data directory: %v", err)
		}
		return m, nil
	},
		lazy.WithRegistry(nil),
		lazy.WithLogger(nil),
		lazy.WithError(nil, "cannot open the whisper.cpp model cache"),
	)

	cmd.AddCommand(listCmd(mgr, &jsonOutput))
	cmd.AddCommand(pullCmd(mgr, &quiet))
	cmd.AddCommand(pathCmd(mgr))
	cmd.AddCommand(removeCmd(mgr, &quiet))
	cmd.AddCommand(infoCmd(mgr, &jsonOutput))

	return cmd
}

// newLogger returns a text logger on w whose level follows the global flags.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func listCmd(mgr *lazy.Module[models.Manager], jsonOutput *bool) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models",
		Long:  "List cached models, or every downloadable model with --remote.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mgr.Get()
			if err != nil {
				return err
			}

			if remote {
				return outputRemoteModels(cmd.OutOrStdout(), m.ListAvailable(), *jsonOutput)
			}

			installed, err := m.ListInstalled(cmd.Context())
			if err != nil {
				return err
			}
			return outputInstalledModels(cmd.OutOrStdout(), installed, *jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "List every model in the catalog")
	return cmd
}

func pullCmd(mgr *lazy.Module[models.Manager], quiet *bool) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull <model>",
		Short: "Download a model",
		Long:  "Download a model into the local cache unless it is already there.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseModelID(args[0])
			if err != nil {
				return err
			}

			m, err := mgr.Get()
			if err != nil {
				return err
			}

			var opts []models.DownloadOption
			if force {
				opts = append(opts, models.WithForce())
			}
			if !*quiet {
				opts = append(opts, models.WithProgress(newProgressPrinter(cmd.OutOrStdout())))
			}

			path, err := m.Download(cmd.Context(), id, opts...)
			if err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is available at %s\n", id, path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Force re-download even if already cached")
	return cmd
}

func pathCmd(mgr *lazy.Module[models.Manager]) *cobra.Command {
	return &cobra.Command{
		Use:   "path <model>",
		Short: "Print path to a cached model",
		Long:  "Print the filesystem path to a cached model's weights file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseModelID(args[0])
			if err != nil {
				return err
			}

			m, err := mgr.Get()
			if err != nil {
				return err
			}

			path, err := m.Path(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func removeCmd(mgr *lazy.Module[models.Manager], quiet *bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove a cached model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseModelID(args[0])
			if err != nil {
				return err
			}

			// Confirmation prompt
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Remove %s? [y/N]: ", id)
				if !confirmPrompt(cmd.InOrStdin()) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			m, err := mgr.Get()
			if err != nil {
				return err
			}

			if err := m.Remove(cmd.Context(), id); err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func infoCmd(mgr *lazy.Module[models.Manager], jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info [model]",
		Short: "Show cache or model information",
		Long:  "Show the cache directory and free space, or details about one model.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mgr.Get()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				installed, err := m.ListInstalled(cmd.Context())
				if err != nil {
					return err
				}
				return outputCacheInfo(cmd.OutOrStdout(), newCacheInfo(m.Dir(), installed), *jsonOutput)
			}

			id, err := models.ParseModelID(args[0])
			if err != nil {
				return err
			}
			return outputModelInfo(cmd, m, id, *jsonOutput)
		},
	}
}

// confirmPrompt reads from stdin and returns true only if the user types 'y' or 'Y'.
// Returns false for empty input or any other response (default is no).
func confirmPrompt(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return response == "y" || response == "yes"
	}
	return false
}

// Output helpers

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputInstalledModels(w io.Writer, installed []models.InstalledModel, asJSON bool) error {
	if asJSON {
		return writeJSON(w, installed)
	}

	if len(installed) == 0 {
		fmt.Fprintln(w, "No models installed")
		return nil
	}

	tbl := tablewriter.NewWriter(w)
	tbl.Header("Model", "Size", "Downloaded", "Path")
	for _, m := range installed {
		tbl.Append([]string{
			m.ID.String(),
			models.FormatSize(m.Size),
			m.ModTime.Format("2006-01-02 15:04"),
			m.Path,
		})
	}
	return tbl.Render()
}

func outputRemoteModels(w io.Writer, remote []models.RemoteModel, asJSON bool) error {
	if asJSON {
		return writeJSON(w, remote)
	}

	tbl := tablewriter.NewWriter(w)
	tbl.Header("Model", "Size", "Languages", "File")
	for _, m := range remote {
		langs := "English"
		if m.Multilingual {
			langs = "Multilingual"
		}
		tbl.Append([]string{m.ID.String(), m.SizeLabel, langs, m.FileName})
	}
	return tbl.Render()
}

func outputModelInfo(cmd *cobra.Command, m models.Manager, id models.ModelID, asJSON bool) error {
	type modelInfo struct {
		models.RemoteModel
		Installed bool   `json:"installed"`
		Path      string `json:"path"`
	}

	var info modelInfo
	for _, r := range m.ListAvailable() {
		if r.ID == id {
			info.RemoteModel = r
		}
	}

	path, err := m.Path(cmd.Context(), id)
	switch {
	case err == nil:
		info.Installed = true
		info.Path = path
	case errors.Is(err, models.ErrNotInstalled):
		info.Path, _ = m.ModelPath(id)
	default:
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(w, info)
	}

	fmt.Fprintf(w, "Model:        %s\n", info.ID)
	fmt.Fprintf(w, "Size:         %s\n", info.SizeLabel)
	fmt.Fprintf(w, "Multilingual: %t\n", info.Multilingual)
	fmt.Fprintf(w, "URL:          %s\n", info.URL)
	fmt.Fprintf(w, "Installed:    %t\n", info.Installed)
	fmt.Fprintf(w, "Path:         %s\n", info.Path)
	return nil
}
