package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/kelseyhightower/envconfig"

	"catalog-skill/handler"
	"catalog-skill/internal/integrations/catalog"
	"catalog-skill/internal/integrations/paramstore"
	"catalog-skill/internal/repository"
	"catalog-skill/internal/usecase"
)

type appConfig struct {
	ParamPrefix     string `envconfig:"PARAM_PREFIX" required:"true"`
	StateTable      string `envconfig:"STATE_TABLE" required:"true"`
	CatalogBaseURL  string `envconfig:"CATALOG_BASE_URL"`
	LookupThreshold int    `envconfig:"LOOKUP_THRESHOLD" default:"3"`
}

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	var cfg appConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// ---- AWS SDK config ----
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	applicationID, err := paramstore.FetchApplicationID(ctx, ssmClient, cfg.ParamPrefix+"/app-id")
	if err != nil {
		slog.Error("failed to fetch skill application id", "err", err)
		os.Exit(1)
	}

	turnStore, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.StateTable)
	if err != nil {
		slog.Error("failed to create turn store", "err", err)
		os.Exit(1)
	}

	var catalogOpts []catalog.Option
	if cfg.CatalogBaseURL != "" {
		catalogOpts = append(catalogOpts, catalog.WithBaseURL(cfg.CatalogBaseURL))
	}
	catalogClient := catalog.New(catalogOpts...)

	// ---- Handler ----
	skill, err := usecase.NewSkillService(catalogClient, cfg.LookupThreshold)
	if err != nil {
		slog.Error("failed to create skill service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(skill, turnStore, applicationID)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
