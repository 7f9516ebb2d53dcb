package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/ui"
)

func newNASCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nas",
		Short: "Inspect the NAS connection and its shares",
		Long: `Commands for working with the configured NAS directly.

Examples:
  captionmate nas test                 # verify the SMB connection
  captionmate nas ls /                 # list shares
  captionmate nas ls /Media/Movies     # list a directory
  captionmate nas tree /Media --depth 2`,
	}

	cmd.AddCommand(newNASTestCmd())
	cmd.AddCommand(newNASLsCmd())
	cmd.AddCommand(newNASTreeCmd())

	return cmd
}

// withNAS connects, runs fn, and closes the session.
func withNAS(ctx context.Context, fn func(*nas.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.NAS.Host == "" {
		return fmt.Errorf("no NAS host configured (run 'captionmate config init' first)")
	}

	client := nas.NewClient(cfg.NAS)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	return fn(client)
}

func newNASTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the SMB connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Connecting to %s as %s...\n", cfg.NAS.Address(), cfg.NAS.Username)
			return withNAS(cmd.Context(), func(client *nas.Client) error {
				shares, err := client.ListShares()
				if err != nil {
					return err
				}
				ui.SuccessMsg("connected, %d share(s) visible", len(shares))
				for _, share := range shares {
					fmt.Printf("  /%s\n", share)
				}
				return nil
			})
		},
	}
}

func newNASLsCmd() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "ls <path>",
		Short: "List a NAS directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNAS(cmd.Context(), func(client *nas.Client) error {
				entries, err := client.ListDirectory(args[0], pattern)
				if err != nil {
					return err
				}

				table := ui.NewTable("NAME", "SIZE", "MODIFIED")
				for _, entry := range entries {
					name := entry.Name
					if entry.IsDir {
						name += "/"
					}
					modified := ""
					if !entry.ModifiedTime.IsZero() {
						modified = entry.ModifiedTime.Format("2006-01-02 15:04")
					}
					table.AddRow(name, entry.SizeHuman(), modified)
				}
				table.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "glob filter for file names, e.g. '*.srt'")

	return cmd
}

func newNASTreeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree <path>",
		Short: "Show a NAS directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNAS(cmd.Context(), func(client *nas.Client) error {
				root, err := client.Tree(args[0], depth)
				if err != nil {
					return err
				}
				fmt.Println(ui.Path(args[0]))
				printTree(root.Children, "")
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 2, "maximum depth to descend")

	return cmd
}

func printTree(nodes []nas.TreeNode, prefix string) {
	for i, node := range nodes {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(nodes)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}

		name := node.Entry.Name
		if node.Entry.IsDir {
			name = ui.Path(name + "/")
		} else if strings.HasSuffix(name, ".srt") || strings.HasSuffix(name, ".ass") {
			name = ui.Subtitle(name)
		}
		fmt.Println(prefix + connector + name)

		printTree(node.Children, childPrefix)
	}
}
