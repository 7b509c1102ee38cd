package cmd

import "github.com/spf13/cobra"

var (
	quiet          bool
	verbose        bool
	descriptorPath string
	logsDir        string
)

func descriptorInit(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&descriptorPath, "descriptor", "d", "build.sbt", "path to the sbt build descriptor")
}

func logsInit(cmd *cobra.Command) {
	cmd.Flags().StringVar(&logsDir, "logs", "logs", "directory for per-attempt publish logs")
}
