package data

import (
	"context"
	"time"
)

// RegistryScope is the site-wide namespace the tenant registry lives
// under; tenants are not themselves tenant-scoped.
const RegistryScope = "global"

type TenantDTO struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	Name       string    `dynamodbav:"name"`
	TimeZone   *string   `dynamodbav:"timeZone,omitempty"`
	CreateTime time.Time `dynamodbav:"createTime"`
	UpdateTime time.Time `dynamodbav:"updateTime"`
}

type TenantInputDTO struct {
	Name     *string `dynamodbav:"name"`
	TimeZone *string `dynamodbav:"timeZone"`
}

// TenantRepository enumerates and manages restaurant namespaces. Tenants
// are created out of band and never deleted by the reset subsystem.
// ListAll drains the full registry with no batching limit.
type TenantRepository interface {
	Repository[TenantDTO, TenantInputDTO]
	ListAll(ctx context.Context) ([]TenantDTO, error)
}
