package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/lineops/lineops/internal/dynamodb/records"
	"github.com/lineops/lineops/internal/dynamodb/tenants"
	"github.com/lineops/lineops/internal/dynamodb/token"
	"github.com/lineops/lineops/internal/logging"
	"github.com/lineops/lineops/internal/reset"
	snsServices "github.com/lineops/lineops/internal/sns/services"
	"github.com/lineops/lineops/internal/timewindow"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepd is the self-hosted alternative to the scheduled function: the
// same daily reset on an in-process cron, for stacks that do not run on
// the serverless platform.
func main() {
	logger, err := logging.FromEnv("sweepd")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	tzName := os.Getenv("OPERATING_TZ")
	if tzName == "" {
		tzName = "Europe/London"
	}
	location, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Fatal("Unknown OPERATING_TZ", zap.String("tz", tzName), zap.Error(err))
	}

	cronSpec := os.Getenv("CRON_SPEC")
	if cronSpec == "" {
		cutoff := strconv.Itoa(timewindow.DefaultCutoffHour)
		if raw := os.Getenv("CUTOFF_HOUR"); raw != "" {
			cutoff = raw
		}
		cronSpec = "0 " + cutoff + " * * *"
	}

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
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

	scheduler := cron.New(cron.WithLocation(location))
	if _, err := scheduler.AddFunc(cronSpec, func() {
		if _, err := sweeper.RunDailyReset(context.Background()); err != nil {
			logger.Error("Daily reset aborted", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Invalid cron spec", zap.String("spec", cronSpec), zap.Error(err))
	}

	scheduler.Start()
	logger.Info("Scheduler started", zap.String("spec", cronSpec), zap.String("tz", tzName))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down, waiting for running jobs")
	<-scheduler.Stop().Done()
}
