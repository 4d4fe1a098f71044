package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"brainbox/handler"
	appconfig "brainbox/internal/config"
	"brainbox/internal/integrations/paramstore"
	"brainbox/internal/repository"
	"brainbox/internal/responder"
	"brainbox/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	appCfg, err := appconfig.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if appCfg.StateTable == "" {
		slog.Error("required environment variable is not set", "key", "STATE_TABLE")
		os.Exit(1)
	}

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	if appCfg.ParamPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		appCfg, err = appCfg.ApplyParams(ctx, ssmClient)
		if err != nil {
			slog.Error("failed to load parameters", "err", err)
			os.Exit(1)
		}
	}

	kv, err := repository.NewDynamoKV(awsdynamodb.NewFromConfig(cfg), appCfg.StateTable)
	if err != nil {
		slog.Error("failed to create state client", "err", err)
		os.Exit(1)
	}
	store, err := repository.NewTranscriptStore(kv, appCfg.StorageKey, slog.Default())
	if err != nil {
		slog.Error("failed to create transcript store", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	chat, err := usecase.NewChatService(responder.New(), store, usecase.Options{
		ThinkingDelay:    appCfg.ThinkingDelay,
		MaxMessageLength: appCfg.MaxMessageLength,
	})
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	if err := chat.Restore(ctx); err != nil {
		slog.Error("failed to restore transcript", "err", err)
		os.Exit(1)
	}

	// The handler reloads the transcript before each request, but writes
	// still replace the whole array. Run the function with reserved
	// concurrency 1 so two instances never write at the same time.
	h, err := handler.NewHandler(chat)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
