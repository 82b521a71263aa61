package main

import (
	"github.com/spf13/pflag"
)

// bind makes the flag the highest precedence source of the config key.
func bind(flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
