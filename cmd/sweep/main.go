package main

import (
	"context"
	"os"

	lambdaEvents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/lineops/lineops/internal/dynamodb/records"
	"github.com/lineops/lineops/internal/dynamodb/tenants"
	"github.com/lineops/lineops/internal/dynamodb/token"
	"github.com/lineops/lineops/internal/logging"
	"github.com/lineops/lineops/internal/reset"
	snsServices "github.com/lineops/lineops/internal/sns/services"
	"go.uber.org/zap"
)

// Triggered by the platform scheduler on "0 3 * * *" in the operating
// timezone. The event payload is empty; invocation time is the only
// input.
func HandleRequest(ctx context.Context, event lambdaEvents.CloudWatchEvent) error {
	logger, err := logging.FromEnv("sweep")
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	tableName := os.Getenv("TABLE_NAME")
	client := dynamodb.NewFromConfig(cfg)
	marshaler := token.NewSealed(os.Getenv("TOKEN_SECRET"))
	sweeper := reset.NewSweeper(
		records.NewRecordService(tableName, *client, marshaler),
		tenants.NewTenantService(tableName, *client, marshaler),
		logger,
	)
	if topicArn := os.Getenv("TOPIC_ARN"); topicArn != "" {
		sweeper.Publisher = &snsServices.RunReportSNSService{
			Sns:      *sns.NewFromConfig(cfg),
			TopicArn: topicArn,
		}
	}

	// Per-tenant failures are logged and carried in the run report. Only
	// a failed tenant enumeration errors the invocation, so the scheduler
	// does not retry a run that mostly landed.
	if _, err := sweeper.RunDailyReset(ctx); err != nil {
		logger.Error("Daily reset aborted", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
