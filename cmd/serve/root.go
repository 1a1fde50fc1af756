package serve

import (
	"fmt"

	cmdUtil "github.com/ValentinKolb/dCaps/cmd/util"
	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/ValentinKolb/dCaps/service/server"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cmd")

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start the dCaps server",
		Long: `Start the dCaps server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DCAPS_<flag> (e.g. DCAPS_PORT=4000)

On startup the server prints the bound port and the control socket path. Connect to the control socket (e.g. dcaps status) to read the current user count.

Exit status: 0 on a normal exit, 1 usage, 2 auth file, 3 log file, 4 port, 5 interface, 6 bind, 7 listen, 8 control socket path too long, 9 accept. SIGINT and SIGTERM remove the control socket and exit with 128 + the signal number (130 for SIGINT, not the bare signal number 2, which is the auth file status).`,
		Args:    cobra.NoArgs,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "port"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("TCP port of the data channel (1-65534), 0 selects an ephemeral port"))

	key = "interface"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Host name or IPv4 address of the interface to bind, empty binds all interfaces"))

	cmdUtil.SetupSocketFlag(ServeCmd, common.DefaultSocketPath)

	key = "auth-file"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("File whose first line is the admin secret. The secret is loaded but not yet enforced on the control socket"))

	key = "log-file"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("File that receives a copy of all log output (truncated on startup)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, common.DefaultBufferSize, cmdUtil.WrapString("Read size of a connection worker in bytes, every read is answered with one write"))

	key = "max-connections"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Maximum number of concurrently served data connections, 0 means unlimited"))

	key = "greeting"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional line written to every data connection right after accept (e.g. 'Welcome...')"))

	key = "admin-timeout"
	ServeCmd.PersistentFlags().Int64(key, common.DefaultAdminTimeoutSecond, cmdUtil.WrapString("Write timeout in seconds for the status line on the control socket"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address on which GET /metrics is served in Prometheus format (e.g. localhost:9100), empty disables it"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Port = viper.GetInt("port")
	serveCmdConfig.Interface = viper.GetString("interface")
	serveCmdConfig.SocketPath = viper.GetString("socket")
	serveCmdConfig.AuthFile = viper.GetString("auth-file")
	serveCmdConfig.LogFile = viper.GetString("log-file")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.BufferSize = viper.GetInt("buffer-size")
	serveCmdConfig.MaxConnections = viper.GetInt("max-connections")
	serveCmdConfig.AdminTimeoutSecond = viper.GetInt64("admin-timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")

	if greeting := viper.GetString("greeting"); greeting != "" {
		serveCmdConfig.Greeting = greeting + "\n"
	}

	if err := serveCmdConfig.Validate(); err != nil {
		return common.NewFatalError(err)
	}

	// load the admin secret
	if serveCmdConfig.AuthFile != "" {
		secret, err := common.LoadSecret(serveCmdConfig.AuthFile)
		if err != nil {
			return common.NewFatalError(err)
		}
		serveCmdConfig.Secret = secret
	}

	return nil
}

// run starts the dCaps server and blocks until it terminates
func run(cmd *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig); err != nil {
		return common.NewFatalError(err)
	}

	serv := server.NewServer(serveCmdConfig)
	if err := serv.Start(); err != nil {
		Logger.Errorf("startup failed: %v", err)
		return err
	}

	if err := serv.Run(cmd.Context()); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
