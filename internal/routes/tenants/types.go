package tenants

import (
	"time"

	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/reset"
)

type Tenant struct {
	Id         string    `json:"tenantId"`
	Name       string    `json:"name"`
	TimeZone   *string   `json:"timeZone,omitempty"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

func NewTenant(tenant data.TenantDTO) Tenant {
	return Tenant{
		Id:         tenant.SK,
		Name:       tenant.Name,
		TimeZone:   tenant.TimeZone,
		CreateTime: tenant.CreateTime,
		UpdateTime: tenant.UpdateTime,
	}
}

type TenantInput struct {
	Name     *string `json:"name,omitempty"`
	TimeZone *string `json:"timeZone,omitempty"`
}

func (ti *TenantInput) ToData() data.TenantInputDTO {
	return data.TenantInputDTO{
		Name:     ti.Name,
		TimeZone: ti.TimeZone,
	}
}

// ResetResult is the manual trigger's confirmation body.
type ResetResult struct {
	TenantId string `json:"tenantId"`
	Deleted  int    `json:"deleted"`
	Reset    int    `json:"reset"`
	Message  string `json:"message"`
}

func NewResetResult(summary reset.TenantSummary) ResetResult {
	return ResetResult{
		TenantId: summary.TenantId,
		Deleted:  summary.Deleted,
		Reset:    summary.Reset,
		Message:  "reset complete",
	}
}
