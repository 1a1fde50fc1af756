package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ValentinKolb/dCaps/cmd/serve"
	"github.com/ValentinKolb/dCaps/cmd/status"
	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dcaps",
		Short: "concurrent capitalising echo server",
		Long: fmt.Sprintf(`dCaps (v%s)

A small concurrent TCP server that echoes every chunk it receives in upper
case, with a Unix domain control socket reporting the current user count.`, Version),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dCaps",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dCaps v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(status.StatusCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(ExitCode(err))
	}
}

// ExitCode prints err to stderr and returns the process exit status for it
func ExitCode(err error) int {
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var fatal *common.FatalError
	if errors.As(err, &fatal) {
		return fatal.Code
	}
	return common.ExitCodeFor(err)
}
