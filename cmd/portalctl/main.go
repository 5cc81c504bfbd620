package main

import (
	"context"
	"os"

	"github.com/indokarya/registration-portal/cmd/portalctl/cmds"
	"github.com/indokarya/registration-portal/internal/logger"
)

func main() {
	logger.InitSlog()

	if err := cmds.Execute(context.Background()); err != nil {
		logger.Logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
