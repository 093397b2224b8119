package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/andy/billcalc/internal/cli"
)

func main() {
	// .env is optional; LOG_LEVEL and BILLCALC_* may come from the shell
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	err := cli.Execute()
	if cerr := cli.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
