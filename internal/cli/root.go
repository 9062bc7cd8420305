package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "epea",
	Short: "Epea - Homeric formula deviation detection",
	Long: `Epea estimates, for a corpus of epic verse, how expected each occurrence
of a recurring formulaic phrase is given the character it describes, and
flags occurrences whose formula choice is statistically surprising.

Given a catalogue of formulae attributed to characters and the full list of
character mentions, it builds a probability model of formula choice per
character, scores every mention by information-theoretic surprisal, and
ranks the outliers.

Epea measures expectation, not meaning: whether a deviation carries
narrative significance is the philologist's call.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Epea.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("epea v0.2.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.epea/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.epea")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match EPEA_*
	// (engine.alpha -> EPEA_ENGINE_ALPHA)
	viper.SetEnvPrefix("EPEA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindFlags exposes the command's flags to viper under their config-file
// keys, so flag values participate in the documented resolution order:
// flags over environment over config file over defaults.
func bindFlags(cmd *cobra.Command) {
	for key, name := range map[string]string{
		"engine.alpha":               "alpha",
		"engine.min_mentions":        "min-mentions",
		"engine.surprisal_threshold": "threshold",
		"engine.top_k":               "top-k",
		"engine.lenient":             "lenient",
		"output.json_path":           "json",
		"output.text_path":           "txt",
		"concurrency.workers":        "concurrency",
		"llm.provider":               "llm-provider",
		"llm.model":                  "llm-model",
	} {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

// mergedConfig resolves configuration values from viper (changed flags,
// EPEA_* environment, config file) over the built-in defaults. A bound but
// unchanged flag does not count as set, so its default never shadows the
// config file. API keys come from the environment separately, never through
// viper.
func mergedConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("engine.alpha") {
		cfg.Engine.Alpha = viper.GetFloat64("engine.alpha")
	}
	if viper.IsSet("engine.min_mentions") {
		cfg.Engine.MinMentions = viper.GetInt("engine.min_mentions")
	}
	if viper.IsSet("engine.surprisal_threshold") {
		cfg.Engine.SurprisalThreshold = viper.GetFloat64("engine.surprisal_threshold")
	}
	if viper.IsSet("engine.top_k") {
		cfg.Engine.TopK = viper.GetInt("engine.top_k")
	}
	if viper.IsSet("engine.lenient") {
		cfg.Engine.Lenient = viper.GetBool("engine.lenient")
	}

	if viper.IsSet("output.json_path") {
		cfg.Output.JSONPath = viper.GetString("output.json_path")
	}
	if viper.IsSet("output.text_path") {
		cfg.Output.TextPath = viper.GetString("output.text_path")
	}

	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}

	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}
	if viper.IsSet("llm.timeout_seconds") {
		cfg.LLM.TimeoutSeconds = viper.GetInt("llm.timeout_seconds")
	}
	if viper.IsSet("llm.requests_per_minute") {
		cfg.LLM.RequestsPerMinute = viper.GetInt("llm.requests_per_minute")
	}

	return cfg
}
