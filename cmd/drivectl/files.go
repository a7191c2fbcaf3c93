package main

import (
	"github.com/spf13/cobra"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/handler"
)

func newListCmd(c *cli) *cobra.Command {
	var foldersOnly bool

	cmd := &cobra.Command{
		Use:   "list [folder-id]",
		Short: "List the children of a folder (default: the storage root)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := handler.ListOptions{FolderID: adapter.RootFolderID, FoldersOnly: foldersOnly}
			if len(args) == 1 {
				opts.FolderID = args[0]
			}
			return runList(cmd, c, opts)
		},
	}
	cmd.Flags().BoolVar(&foldersOnly, "folders", false, "Only list folders")
	return cmd
}

func runList(cmd *cobra.Command, c *cli, opts handler.ListOptions) error {
	a, err := c.application(cmd.Context())
	if err != nil {
		return err
	}
	_, err = a.Files.List(cmd.Context(), opts)
	return err
}

func newUploadCmd(c *cli) *cobra.Command {
	var opts handler.UploadOptions

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file and print its id and shareable link",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return runUpload(cmd, c, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.ParentID, "parent", "p", "", "Parent folder id (default: the storage root)")
	cmd.Flags().BoolVar(&opts.Private, "private", false, "Do not create an anyone-with-the-link permission")
	return cmd
}

func runUpload(cmd *cobra.Command, c *cli, opts handler.UploadOptions) error {
	a, err := c.application(cmd.Context())
	if err != nil {
		return err
	}
	_, err = a.Files.Upload(cmd.Context(), opts)
	return err
}

// downloadFlags are shared by the download command and the legacy root flags.
type downloadFlags struct {
	dest           string
	skipExisting   bool
	forceOverwrite bool
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dest, "dest", ".", "Local directory to download into")
	cmd.Flags().BoolVar(&f.skipExisting, "skip-existing", false, "Skip files that already exist locally")
	cmd.Flags().BoolVar(&f.forceOverwrite, "force-overwrite", false, "Replace files that already exist locally")
}

func (f *downloadFlags) options(id string) handler.DownloadOptions {
	return handler.DownloadOptions{
		ID:             id,
		Dest:           f.dest,
		SkipExisting:   f.skipExisting,
		ForceOverwrite: f.forceOverwrite,
	}
}

func newDownloadCmd(c *cli) *cobra.Command {
	flags := &downloadFlags{}

	cmd := &cobra.Command{
		Use:   "download <file-or-folder-id>",
		Short: "Download a file, or a folder and everything under it",
		Long: `Download a file, or a folder and everything under it.

A folder is recreated as <dest>/<folder title>/ with one local directory per
remote sub-folder. The first existing local file aborts the download (exit
code 2) unless --skip-existing or --force-overwrite is given. Files written
before the abort are kept.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, c, flags.options(args[0]))
		},
	}
	flags.register(cmd)
	return cmd
}

func runDownload(cmd *cobra.Command, c *cli, opts handler.DownloadOptions) error {
	a, err := c.application(cmd.Context())
	if err != nil {
		return err
	}
	_, err = a.Files.Download(cmd.Context(), opts)
	return err
}
