package cmd

import (
	"github.com/spf13/cobra"

	"parqcel/windows"
)

var guiCmd = &cobra.Command{
	Use:   "gui [file]",
	Short: "Open the desktop editor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		windows.Run(session, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
