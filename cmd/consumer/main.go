package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/app"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
