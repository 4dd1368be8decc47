// Command tirelog manages a tire-logger logbook and moves it between
// machines with merge-safe JSON imports and exports.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/OscarFredriksson/tire-logger/internal/cli"
)

func main() {
	// A .env file is optional; TIRELOG_* variables may come from the shell.
	_ = godotenv.Load()
	os.Exit(cli.Execute())
}
