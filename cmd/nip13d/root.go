package main

import (
	"strings"

	"github.com/spf13/viper"
)

// envReplacer replaces `-` with `_`.
// This is used to map a flag like `--my-param` to an environment variable like `MY_PARAM`.
var envReplacer = strings.NewReplacer("-", "_")

func init() {
	viper.SetEnvPrefix("NIP13D")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(envReplacer)
}
