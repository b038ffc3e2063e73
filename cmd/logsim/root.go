// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/db47h/logsim/internal/translate"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

var rootCmd = &cobra.Command{
	Use:   "logsim",
	Short: "Logic circuit simulator",
	Long: "logsim compiles circuit descriptions (DEVICES, INIT, CONNECTIONS and MONITOR sections)\n" +
		"and simulates them tick by tick.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if lang := viper.GetString("lang"); lang != "" {
			tag, err := language.Parse(lang)
			if err != nil {
				return err
			}
			translate.SetLanguage(tag)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: .logsim.yaml in the current or home directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Int("iterations", 2, "Settle passes per tick, per device")
	rootCmd.PersistentFlags().String("color", "auto", "Colorize output: auto, always or never")
	rootCmd.PersistentFlags().String("lang", "", "Message language (default: system locale)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("iterations", rootCmd.PersistentFlags().Lookup("iterations"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("lang", rootCmd.PersistentFlags().Lookup("lang"))
}

func initConfig() {
	viper.SetEnvPrefix("LOGSIM")
	viper.AutomaticEnv()

	if cfg := viper.GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.SetConfigName(".logsim")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("config: %v", err)
		}
	} else if viper.GetBool("verbose") {
		log.Printf("using config file %s", viper.ConfigFileUsed())
	}
}

// colorize reports whether output to f should use ANSI colors.
//
func colorize(f *os.File) bool {
	switch viper.GetString("color") {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)
