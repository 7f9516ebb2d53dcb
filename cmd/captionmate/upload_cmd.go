package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/ui"
)

func newUploadCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "upload <local-file> <nas-path>",
		Short: "Upload a local subtitle file to the NAS",
		Long: `Copy a local file to a share-qualified NAS path. Parent directories
are created as needed.

Examples:
  captionmate upload movie.srt /Media/Movies/Movie.2023/movie.srt
  captionmate upload fixed.ass /Media/TV/Show/fixed.ass --overwrite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			localPath, remotePath := args[0], args[1]

			info, err := os.Stat(localPath)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", localPath, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", localPath)
			}

			if dryRun {
				ui.InfoMsg("dry run: would upload %s (%s) to %s",
					localPath, ui.FormatBytes(info.Size()), remotePath)
				return nil
			}

			return withNAS(cmd.Context(), func(client *nas.Client) error {
				if err := client.Upload(localPath, remotePath, overwrite); err != nil {
					return err
				}
				ui.SuccessMsg("uploaded %s (%s)", remotePath, ui.FormatBytes(info.Size()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the remote file if it exists")

	return cmd
}
