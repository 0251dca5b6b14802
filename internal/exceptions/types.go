package exceptions

import (
	"fmt"
	"sort"
	"strings"
)

type ServiceError struct {
	StatusCode int
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 404,
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

type InvalidInputError struct {
	Message string
}

func (ie *InvalidInputError) Error() string {
	return ie.Message
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

type InternalServerError struct {
	Message string
}

func (ise *InternalServerError) Error() string {
	return ise.Message
}

func (ise *InternalServerError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Cause:      ise,
	}
}

func InternalServer(message string) *InternalServerError {
	return &InternalServerError{
		Message: message,
	}
}

// MissingParameterError covers operational endpoints invoked without a
// required parameter, like the manual reset trigger without a tenant id.
type MissingParameterError struct {
	Name string
}

func (mpe *MissingParameterError) Error() string {
	return fmt.Sprintf("Missing required parameter: %s", mpe.Name)
}

func (mpe *MissingParameterError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 400,
		Cause:      mpe,
	}
}

func MissingParameter(name string) *MissingParameterError {
	return &MissingParameterError{
		Name: name,
	}
}

// StoreUnavailableError wraps a failed record-store call.
type StoreUnavailableError struct {
	Op       string
	Resource string
	Cause    error
}

func (sue *StoreUnavailableError) Error() string {
	return fmt.Sprintf("Store call %s failed for %s: %s", sue.Op, sue.Resource, sue.Cause)
}

func (sue *StoreUnavailableError) Unwrap() error {
	return sue.Cause
}

func (sue *StoreUnavailableError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 502,
		Cause:      sue,
	}
}

func StoreUnavailable(op string, resource string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{
		Op:       op,
		Resource: resource,
		Cause:    cause,
	}
}

// TenantEnumerationError means the daily reset could not list tenants at
// all; nothing was attempted.
type TenantEnumerationError struct {
	Cause error
}

func (tee *TenantEnumerationError) Error() string {
	return fmt.Sprintf("Failed to enumerate tenants: %s", tee.Cause)
}

func (tee *TenantEnumerationError) Unwrap() error {
	return tee.Cause
}

func (tee *TenantEnumerationError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 502,
		Cause:      tee,
	}
}

func TenantEnumeration(cause error) *TenantEnumerationError {
	return &TenantEnumerationError{
		Cause: cause,
	}
}

// PartialResetError aggregates list-type failures for one tenant while
// other list types completed. Fault isolation keeps these from aborting
// the run; the manual trigger surfaces them to the operator.
type PartialResetError struct {
	TenantId string
	Failures map[string]error
}

func (pre *PartialResetError) Error() string {
	lists := make([]string, 0, len(pre.Failures))
	for list := range pre.Failures {
		lists = append(lists, list)
	}
	sort.Strings(lists)
	return fmt.Sprintf("Reset partially failed for tenant %s on lists: %s", pre.TenantId, strings.Join(lists, ", "))
}

func (pre *PartialResetError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: 500,
		Cause:      pre,
	}
}

func PartialReset(tenantId string, failures map[string]error) *PartialResetError {
	return &PartialResetError{
		TenantId: tenantId,
		Failures: failures,
	}
}
