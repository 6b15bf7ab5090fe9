package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/grokvibe/internal/api"
	"github.com/kalambet/grokvibe/internal/completion"
	"github.com/kalambet/grokvibe/internal/config"
	"github.com/kalambet/grokvibe/internal/preference"
	"github.com/kalambet/grokvibe/internal/vibe"
)

// --- vibe ---

var vibeCmd = &cobra.Command{
	Use:   "vibe",
	Short: "Inspect and manage default vibes",
}

var vibeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available vibes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, v := range vibe.All() {
			if v == vibe.Default {
				fmt.Fprintf(out, "%s (default)\n", v)
				continue
			}
			fmt.Fprintln(out, v)
		}
		return nil
	},
}

var vibeUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users with a stored default vibe",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		prefs, closeFn, err := openPreferences(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		if prefs.Backend() == "none" {
			printWarning("No preference store configured; set REDIS_URL or GROKVIBE_PREFERENCES_DB.")
			return nil
		}
		entries, err := prefs.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored vibes.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.UserID, e.Vibe)
		}
		return nil
	},
}

var vibeGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show a user's default vibe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		prefs, closeFn, err := openPreferences(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		fmt.Fprintln(cmd.OutOrStdout(), prefs.Vibe(cmd.Context(), args[0]))
		return nil
	},
}

var vibeSetCmd = &cobra.Command{
	Use:   "set <user-id> <vibe>",
	Short: "Set a user's default vibe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, ok := vibe.Parse(args[1])
		if !ok {
			return fmt.Errorf("unknown vibe %q (valid: %s)", args[1], vibe.Names())
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		prefs, closeFn, err := openPreferences(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		if !prefs.SetVibe(cmd.Context(), args[0], v) {
			return fmt.Errorf("could not store vibe in %s backend", prefs.Backend())
		}
		printSuccess("Default vibe for %s set to %s", args[0], v)
		return nil
	},
}

var vibeUnsetCmd = &cobra.Command{
	Use:   "unset <user-id>",
	Short: "Remove a user's stored default vibe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		prefs, closeFn, err := openPreferences(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		err = prefs.ClearVibe(cmd.Context(), args[0])
		if errors.Is(err, preference.ErrNotFound) {
			printWarning("No stored vibe for %s", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		printSuccess("Default vibe for %s reset to %s", args[0], vibe.Default)
		return nil
	},
}

func init() {
	vibeCmd.AddCommand(vibeListCmd)
	vibeCmd.AddCommand(vibeUnsetCmd)
	vibeCmd.AddCommand(vibeUsersCmd)
	vibeCmd.AddCommand(vibeGetCmd)
	vibeCmd.AddCommand(vibeSetCmd)
}

// --- prompt ---

var promptCmd = &cobra.Command{
	Use:   "prompt <text>",
	Short: "Print the prompt for a rewrite, or send it with --send",
	Long: `Print the prompt grokvibe would send for a rewrite.

Examples:
  grokvibe prompt --vibe nerdy "the deploy is done"
  grokvibe prompt --reverse "innit bruv"
  grokvibe prompt --vibe cyberpunk --send "meeting at noon"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("vibe")
		reverse, _ := cmd.Flags().GetBool("reverse")
		send, _ := cmd.Flags().GetBool("send")

		v := vibe.Default
		if name != "" {
			parsed, ok := vibe.Parse(name)
			if !ok {
				return fmt.Errorf("unknown vibe %q (valid: %s)", name, vibe.Names())
			}
			v = parsed
		}

		text := strings.Join(args, " ")
		prompt := vibe.BuildPrompt(text, v, reverse)
		if !send {
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := completion.NewClient(cfg.Completion.APIKey, cfg.Completion.URL, cfg.Completion.Model)
		printStep("Sending to %s", cfg.Completion.Model)
		out, ok := client.Complete(cmd.Context(), prompt)
		if !ok {
			return errors.New("completion unavailable")
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	promptCmd.Flags().String("vibe", "", "vibe to rewrite in (default pro)")
	promptCmd.Flags().Bool("reverse", false, "translate back into plain English")
	promptCmd.Flags().Bool("send", false, "send the prompt to the completion API")
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the rewrite and vibe tools over MCP (stdio)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		prefs, closeFn, err := openPreferences(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Preferences: prefs,
			Completer:   completion.NewClient(cfg.Completion.APIKey, cfg.Completion.URL, cfg.Completion.Model),
			Version:     version,
		})
		return server.NewStdioServer(mcpSrv).Listen(cmd.Context(), os.Stdin, os.Stdout)
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(out, "  %s = %s  (%s)\n", boldColor.Sprint(k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a value from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value in the config file. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
