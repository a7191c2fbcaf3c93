package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jun/drivectl/internal/adapter"
	"github.com/jun/drivectl/internal/handler"
)

// legacyFlags keeps the single-dash action flags working on the root command:
//
//	drivectl -l [folder-id]
//	drivectl -u <path> [-p <parent-id>]
//	drivectl -d <id> [--skip-existing | --force-overwrite]
type legacyFlags struct {
	list     string
	upload   string
	parent   string
	download string
	dl       downloadFlags
}

func (l *legacyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&l.list, "list-files", "l", "", "List a folder (default: the storage root)")
	cmd.Flags().Lookup("list-files").NoOptDefVal = adapter.RootFolderID
	cmd.Flags().StringVarP(&l.upload, "upload-file", "u", "", "Upload a local file")
	cmd.Flags().StringVarP(&l.parent, "parent-folder", "p", "", "Parent folder id for --upload-file")
	cmd.Flags().StringVarP(&l.download, "download-file", "d", "", "Download a file or folder by id")
	l.dl.register(cmd)
}

func (l *legacyFlags) run(cmd *cobra.Command, c *cli, args []string) error {
	var actions []string
	for _, name := range []string{"list-files", "upload-file", "download-file"} {
		if cmd.Flags().Changed(name) {
			actions = append(actions, "--"+name)
		}
	}

	switch len(actions) {
	case 0:
		return fmt.Errorf("%w: no action given", handler.ErrUsage)
	case 1:
	default:
		return fmt.Errorf("%w: %v cannot be combined", handler.ErrUsage, actions)
	}

	// "-l <folder-id>" arrives as a positional argument because the flag value is optional
	if len(args) > 0 && (actions[0] != "--list-files" || l.list != adapter.RootFolderID || len(args) > 1) {
		return fmt.Errorf("%w: unexpected arguments %v", handler.ErrUsage, args)
	}

	switch actions[0] {
	case "--list-files":
		folderID := l.list
		if len(args) == 1 {
			folderID = args[0]
		}
		return runList(cmd, c, handler.ListOptions{FolderID: folderID})
	case "--upload-file":
		return runUpload(cmd, c, handler.UploadOptions{Path: l.upload, ParentID: l.parent})
	default:
		return runDownload(cmd, c, l.dl.options(l.download))
	}
}
