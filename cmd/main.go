package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"fable/pkg/config"
	"fable/pkg/enhance"
	"fable/pkg/generate"
	"fable/pkg/inference"
	"fable/pkg/queue"
	"fable/pkg/retry"
	"fable/pkg/safety"
	"fable/pkg/server"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	textProvider := inference.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
	if cfg.OpenAIKey == "" {
		textProvider.ChangeBaseURL("http://localhost:1234/v1")
		textProvider.SetModel("")
	}

	imageProvider, err := inference.NewGeminiImageProvider(ctx, cfg.GeminiKey, cfg.ImageModel)
	if err != nil {
		log.Fatalf("failed to initialize image provider: %v", err)
	}

	imageQueue := queue.New(imageProvider, cfg.QueueWorkers, cfg.QueueDepth)
	imageQueue.Start()
	defer imageQueue.Stop()

	policy := retry.Policy{MaxAttempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}
	validator := safety.New(safety.DefaultRules())

	stories := generate.NewStoryGenerator(textProvider, validator, policy)
	illustrations := generate.NewIllustrationGenerator(imageQueue, validator, enhance.New(), policy, cfg.ImageModel)

	srv := server.NewServer(ctx, cfg, stories, illustrations)
	srv.Echo.Logger.SetLevel(log.INFO)

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}
