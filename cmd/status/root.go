package status

import (
	"fmt"
	"time"

	cmdUtil "github.com/ValentinKolb/dCaps/cmd/util"
	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/ValentinKolb/dCaps/service/transport/unix"
	"github.com/ValentinKolb/dCaps/service/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	StatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the status line of a running dCaps server",
		Long:  `Connect to the control socket of a running dCaps server and print the status line it sends. The socket path can also be set via DCAPS_SOCKET.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmdUtil.BindCommandFlags(cmd)
		},
		RunE: run,
	}
)

func init() {
	cmdUtil.SetupSocketFlag(StatusCmd, common.DefaultSocketPath)

	key := "timeout"
	StatusCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("The timeout in seconds for connecting and reading"))

	key = "count"
	StatusCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Print only the number of connected users"))
}

func run(cmd *cobra.Command, _ []string) error {
	timeout := time.Duration(viper.GetInt("timeout")) * time.Second

	line, err := unix.ReadStatus(viper.GetString("socket"), timeout)
	if err != nil {
		return err
	}

	if !viper.GetBool("count") {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), line)
		return nil
	}

	users, err := worker.ParseStatus(line)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), users)
	return nil
}
