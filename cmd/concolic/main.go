package main

import (
	"fmt"
	"os"
)

func main() {
	err := newRootCmd().Execute()

	err, exitCode := innerErrorAndExitCode(err)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if exitCode != exitCodeSuccess {
		os.Exit(exitCode)
	}
}
