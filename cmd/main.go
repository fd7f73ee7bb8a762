package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/smsinbox/server/internal/app"
)

func main() {
	srv, err := app.NewServer()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	if err := srv.Run(); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
