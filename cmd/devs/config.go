// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"devs-cli/internal/config"
	"devs-cli/internal/issue"
	"devs-cli/internal/profile"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `devs config` command tree.
func newConfigCommand(s *session) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage devs configuration",
		Long: `Manage devs configuration.

Configuration is stored in:
  - Linux: ~/.config/devs/config.cue
  - macOS: ~/Library/Application Support/devs/config.cue
  - Windows: %APPDATA%\devs\config.cue

The catalog locale is a user preference kept next to it in ` + profile.FileName + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), s, cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig("")
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(s, cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nKeys: " + profile.KeyLocale + ", " + strings.Join(config.Keys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), s, cmd.OutOrStdout(), args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, s *session, w io.Writer) error {
	res, err := config.LoadResult(ctx, config.LoadOptions{ConfigFilePath: s.configFile})
	if err != nil {
		renderServiceError(s.app.stderr, s.logger, newServiceError(err, issue.ConfigLoadFailedId, ""))
		return err
	}
	cfg := res.Config

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if res.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), res.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Template"), orNone(s.inv.TemplatePath))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("catalog"))
	fmt.Fprintf(w, "  url: %s\n", valueStyle.Render(cfg.Catalog.URL))
	fmt.Fprintf(w, "  locale: %s\n", valueStyle.Render(s.locale))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("history"))
	fmt.Fprintf(w, "  enabled: %s\n", valueStyle.Render(fmt.Sprint(cfg.History.Enabled)))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("delegate"))
	fmt.Fprintf(w, "  plugin_prefix: %s\n", valueStyle.Render(cfg.Delegate.PluginPrefix))
	return nil
}

func showConfigPath(s *session, w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath := s.configFile
	if cfgPath == "" {
		if cfgPath, err = config.FilePath(cfgDir); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", cfgPath)
	fmt.Fprintf(w, "Profile: %s\n", filepath.Join(cfgDir, profile.FileName))
	return nil
}

// setConfigValue routes the locale to the user profile and every other key to
// the config file.
func setConfigValue(ctx context.Context, s *session, w io.Writer, key, value string) error {
	if key == profile.KeyLocale {
		if err := s.app.Profile.Set(key, value); err != nil {
			renderServiceError(s.app.stderr, s.logger, newServiceError(err, issue.ProfileWriteFailedId, ""))
			return err
		}
		fmt.Fprintf(w, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
		return nil
	}

	cfg, err := s.app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: s.configFile})
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if ok, errs := cfg.IsValid(); !ok {
		return errs[0]
	}

	path := s.configFile
	if path != "" {
		err = config.SaveFile(path, cfg)
	} else {
		path, err = config.Save("", cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(w, "%s Set %s = %s (%s)\n", SuccessStyle.Render("✓"), key, value, path)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return SubtitleStyle.Render("(none)")
	}
	return s
}
