package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/lineops/lineops/internal/notifications"
)

type RunReportSNSService struct {
	Sns      sns.Client
	TopicArn string
}

func (n *RunReportSNSService) PublishRunReport(report notifications.RunReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Daily reset: %d tenants, %d failures", report.Tenants, len(report.Failures))
	_, err = n.Sns.Publish(context.TODO(), &sns.PublishInput{
		TopicArn: aws.String(n.TopicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
	})
	return err
}
