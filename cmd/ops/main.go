package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	nameData "github.com/lineops/lineops/internal/dynamodb/names"
	recordData "github.com/lineops/lineops/internal/dynamodb/records"
	tenantData "github.com/lineops/lineops/internal/dynamodb/tenants"
	"github.com/lineops/lineops/internal/dynamodb/token"
	"github.com/lineops/lineops/internal/logging"
	"github.com/lineops/lineops/internal/marker"
	"github.com/lineops/lineops/internal/reset"
	"github.com/lineops/lineops/internal/routes"
	"github.com/lineops/lineops/internal/routes/filters"
	"github.com/lineops/lineops/internal/routes/lists"
	"github.com/lineops/lineops/internal/routes/names"
	"github.com/lineops/lineops/internal/routes/tenants"
	"github.com/lineops/lineops/internal/timewindow"
	"go.uber.org/zap"
)

type App struct {
	Router routes.Router
	Logger *zap.Logger
}

func operatingLocation(logger *zap.Logger) *time.Location {
	name := os.Getenv("OPERATING_TZ")
	if name == "" {
		name = "Europe/London"
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("Unknown OPERATING_TZ, falling back to UTC", zap.String("tz", name), zap.Error(err))
		return time.UTC
	}
	return location
}

func cutoffHour() int {
	if raw := os.Getenv("CUTOFF_HOUR"); raw != "" {
		if hour, err := strconv.Atoi(raw); err == nil && hour >= 0 && hour <= 23 {
			return hour
		}
	}
	return timewindow.DefaultCutoffHour
}

func NewApp() App {
	logger, err := logging.FromEnv("ops")
	if err != nil {
		panic(err)
	}
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	tableName := os.Getenv("TABLE_NAME")
	client := dynamodb.NewFromConfig(cfg)
	marshaler := token.NewSealed(os.Getenv("TOKEN_SECRET"))

	recordService := recordData.NewRecordService(tableName, *client, marshaler)
	tenantService := tenantData.NewTenantService(tableName, *client, marshaler)

	sweeper := reset.NewSweeper(recordService, tenantService, logger)
	// Without MARKER_DIR the markers live in container memory; a cold
	// start may run one extra checklist reset, which the flag semantics
	// tolerate.
	var markers marker.Store = marker.NewMemoryStore()
	if dir := os.Getenv("MARKER_DIR"); dir != "" {
		badgerStore, err := marker.Open(dir)
		if err != nil {
			logger.Fatal("Failed to open marker store", zap.String("dir", dir), zap.Error(err))
		}
		markers = badgerStore
	}
	lazy := reset.NewLazySweeper(recordService, markers, logger)
	lazy.CutoffHour = cutoffHour()
	lazy.Location = operatingLocation(logger)

	router := routes.NewRouter(
		[]filters.RequestFilter{
			filters.DefaultCorsFilter(),
			&filters.ApiKeyFilter{Key: os.Getenv("API_KEY")},
		},
		tenants.NewRoute(tenantService, sweeper),
		names.NewRoute(nameData.NewNameListService(tableName, *client)),
		lists.NewRoute(recordService, lazy),
	)
	return App{
		Router: *router,
		Logger: logger,
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	app := NewApp()
	defer app.Logger.Sync()
	lambda.Start(app.HandleRequest)
}
