// Command ipsae scores the interfaces of predicted protein complexes from
// a structure file and its predicted aligned error (PAE) matrix.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
