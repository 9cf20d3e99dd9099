// Command safetyctl computes safety analytics over local exports without
// running the server.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"safety-analytics-go/internal/logger"
)

func main() {
	_ = godotenv.Load()

	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}
	if err := newApp(os.Stdout).Run(context.Background(), args); err != nil {
		logger.New().WithComponent("safetyctl").WithError(err).Fatal("command failed")
	}
}
