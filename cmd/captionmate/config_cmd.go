package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the captionmate configuration",
		Long: `Commands for managing the configuration file.

The config file is stored at ~/.config/captionmate/config.yaml, or the
path given by the CAPTIONMATE_CONFIG environment variable.

Examples:
  captionmate config init
  captionmate config show
  captionmate config set nas.host 192.168.1.10
  captionmate config get ai.model`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

// resolveConfigPath is the write location: --config wins over the default.
func resolveConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}

			if _, statErr := os.Stat(path); statErr == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			ui.SuccessMsg("created config file: %s", path)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Set your NAS host:     captionmate config set nas.host <host>")
			fmt.Println("  2. Set the NAS user:      captionmate config set nas.username <user>")
			fmt.Println("  3. Verify the connection: captionmate nas test")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path, _ := resolveConfigPath()
			fmt.Printf("Config file: %s\n", path)

			ui.Section("nas")
			fmt.Printf("Protocol: %s\n", cfg.NAS.Protocol)
			fmt.Printf("Host:     %s\n", cfg.NAS.Host)
			fmt.Printf("Port:     %d\n", cfg.NAS.Port)
			fmt.Printf("Username: %s\n", cfg.NAS.Username)
			fmt.Printf("Password: %s\n", maskSecret(cfg.NAS.Password))

			ui.Section("subtitles")
			fmt.Printf("Languages: %v\n", cfg.Subtitles.Languages)
			fmt.Printf("Formats:   %v\n", cfg.Subtitles.Formats)

			ui.Section("opensubtitles")
			fmt.Printf("API Key:    %s\n", maskSecret(cfg.OpenSubtitles.APIKey))
			fmt.Printf("User Agent: %s\n", cfg.OpenSubtitles.UserAgent)
			fmt.Printf("Username:   %s\n", cfg.OpenSubtitles.Username)
			fmt.Printf("Password:   %s\n", maskSecret(cfg.OpenSubtitles.Password))

			ui.Section("scanning")
			fmt.Printf("Extensions: %v\n", cfg.Scanning.VideoExtensions)
			fmt.Printf("Recursive:  %v\n", cfg.Scanning.Recursive)

			ui.Section("ai")
			fmt.Printf("Enabled:   %v\n", cfg.AI.Enabled)
			fmt.Printf("Provider:  %s\n", cfg.AI.Provider)
			fmt.Printf("Endpoint:  %s\n", cfg.AI.Endpoint)
			fmt.Printf("Model:     %s\n", cfg.AI.Model)
			fmt.Printf("API Key:   %s\n", maskSecret(cfg.AI.APIKey))
			fmt.Printf("Threshold: %.2f\n", cfg.AI.Threshold)

			if problems := cfg.Validate(); len(problems) > 0 {
				fmt.Println()
				for _, p := range problems {
					ui.WarningMsg("%s", p)
				}
			}

			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("(file does not exist)")
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a value by dot-notation key and write the config file.

Examples:
  captionmate config set nas.host 192.168.1.10
  captionmate config set ai.enabled true
  captionmate config set subtitles.languages "zh-cn, en"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}

			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			ui.SuccessMsg("%s = %s", args[0], args[1])
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
