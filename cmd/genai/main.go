package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ravindranath-sawane/Zero-To-GenAI/cmd/genai/cmds"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
)

var rootCmd = &cobra.Command{
	Use:           "genai",
	Short:         "genai is a set of small front-ends around a hosted chat model",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// reinitialize the logger because we can now parse --log-level and co
		// from the command line flag
		if err := initLogger(); err != nil {
			return err
		}
		return settings.LoadDotEnv(".env")
	},
}

type logConfig struct {
	WithCaller bool
	Level      string
	LogFormat  string
	LogFile    string
}

func initLogger() error {
	return InitLogger(&logConfig{
		Level:      viper.GetString("log-level"),
		LogFile:    viper.GetString("log-file"),
		LogFormat:  viper.GetString("log-format"),
		WithCaller: viper.GetBool("with-caller"),
	})
}

func initViper(rootCmd *cobra.Command, configPath string) error {
	viper.SetEnvPrefix("genai")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.genai")

		xdgConfigPath, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(xdgConfigPath + "/genai")
		}
	}

	err := viper.ReadInConfig()
	// if the file does not exist, continue normally
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; ignore error
	} else if err != nil {
		return err
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return err
	}
	if err := viper.BindEnv(settings.APIKeyName, settings.APIKeyEnv, "GENAI_OPENAI_API_KEY"); err != nil {
		return err
	}

	if err := initLogger(); err != nil {
		return err
	}

	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Msg("Loaded configuration")

	return nil
}

func InitLogger(config *logConfig) error {
	if config.WithCaller {
		log.Logger = log.With().Caller().Logger()
	}
	// default is json
	var logWriter io.Writer
	if config.LogFormat == "text" {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	} else {
		logWriter = os.Stderr
	}

	if config.LogFile != "" {
		logWriter = io.MultiWriter(
			logWriter,
			zerolog.ConsoleWriter{
				NoColor: true,
				Out: &lumberjack.Logger{
					Filename:   config.LogFile,
					MaxSize:    10, // megabytes
					MaxBackups: 3,
					MaxAge:     28, // days
				},
			})
	}

	log.Logger = log.Output(logWriter)

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// logging flags
	rootCmd.PersistentFlags().Bool("with-caller", false, "Log caller")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (json, text)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file (default: stderr)")

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./config.yaml or ~/.genai/config.yaml)")
	rootCmd.PersistentFlags().String("ai-settings", "", "YAML file with chat and client settings")

	// ai flags
	rootCmd.PersistentFlags().String(settings.APIKeyName, "", "OpenAI API key (default $OPENAI_API_KEY)")
	rootCmd.PersistentFlags().String("engine", settings.DefaultEngine, "Model to use ('echo' answers offline)")
	rootCmd.PersistentFlags().Float64("temperature", settings.DefaultTemperature, "Sampling temperature")
	rootCmd.PersistentFlags().Int("max-tokens", 0, "Maximum response tokens (0: command default)")
	rootCmd.PersistentFlags().Bool("stream", false, "Stream the response as it is generated")
	rootCmd.PersistentFlags().String("base-url", settings.DefaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().Duration("timeout", settings.DefaultTimeout, "How long to wait for the API to start responding")

	// parse the flags one time just to catch --config
	configFile := ""
	for idx, arg := range os.Args {
		if arg == "--config" && len(os.Args) > idx+1 {
			configFile = os.Args[idx+1]
		} else if strings.HasPrefix(arg, "--config=") {
			configFile = strings.TrimPrefix(arg, "--config=")
		}
	}

	if err := initViper(rootCmd, configFile); err != nil {
		panic(err)
	}

	app := cmds.NewApp(viper.GetViper())
	rootCmd.AddCommand(
		cmds.NewAskCommand(app),
		cmds.NewChatCommand(app),
		cmds.NewResearchCommand(app),
		cmds.NewServeCommand(app),
		cmds.NewTokensCommand(),
	)
}
