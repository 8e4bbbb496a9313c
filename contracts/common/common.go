// Package common holds the conventions every domain contract is built from:
// the audit field set, shared response maps and request header shapes.
package common

import (
	"net/http"

	"carehub/pkg/domain"
	"carehub/pkg/envelope"
	"carehub/pkg/schema"
)

// ContractVersion identifies the contract schema version for compatibility checks.
// Bump on breaking changes to the shapes below; consumers can pin or roll forward.
const ContractVersion = "v1.0.0"

// BaseEntity carries the identity and audit members of every entity.
type BaseEntity struct {
	ID        domain.ID        `json:"id"`
	CreatedAt domain.Timestamp `json:"created_at"`
	UpdatedAt domain.Timestamp `json:"updated_at"`
}

// Entity declares a domain entity with id first and the audit timestamps
// last, around the given fields.
func Entity(name string, fields ...schema.Field) *schema.Object {
	all := make([]schema.Field, 0, len(fields)+3)
	all = append(all, schema.Required(schema.FieldID, schema.ID()))
	all = append(all, fields...)
	all = append(all,
		schema.Required(schema.FieldCreatedAt, schema.Timestamp()),
		schema.Required(schema.FieldUpdatedAt, schema.Timestamp()),
	)
	return schema.DefineEntity(name, all...)
}

// IDParam is the path parameter map for /:id routes.
func IDParam() map[string]schema.Schema {
	return map[string]schema.Schema{"id": schema.ID()}
}

// AuthHeaders is the shape of the bearer header sent to staff-only routes.
// Token verification is not part of the contract.
var AuthHeaders = schema.Shape(
	schema.Required("Authorization", schema.String().Pattern(`^Bearer [A-Za-z0-9\-._~+/]+=*$`)),
)

var errorEnvelope = envelope.ErrorSchema()

// Responses declares status -> success schema pairs plus an error envelope for
// each error status.
func Responses(success map[int]*schema.Object, errorStatuses ...int) map[int]*schema.Object {
	out := make(map[int]*schema.Object, len(success)+len(errorStatuses)+1)
	for status, s := range success {
		out[status] = s
	}
	for _, status := range errorStatuses {
		out[status] = errorEnvelope
	}
	out[http.StatusInternalServerError] = errorEnvelope
	return out
}

// Single declares a 200 response carrying one entity.
func Single(entity schema.Schema, errorStatuses ...int) map[int]*schema.Object {
	return Responses(map[int]*schema.Object{http.StatusOK: envelope.SuccessSchema(entity)}, errorStatuses...)
}

// Created declares a 201 response carrying the created entity.
func Created(entity schema.Schema, errorStatuses ...int) map[int]*schema.Object {
	return Responses(map[int]*schema.Object{http.StatusCreated: envelope.SuccessSchema(entity)}, errorStatuses...)
}

// CursorList declares a 200 cursor page of entity.
func CursorList(entity schema.Schema) map[int]*schema.Object {
	return Responses(map[int]*schema.Object{http.StatusOK: envelope.CursorPageSchema(entity)}, http.StatusBadRequest)
}

// OffsetList declares a 200 offset page of entity.
func OffsetList(entity schema.Schema) map[int]*schema.Object {
	return Responses(map[int]*schema.Object{http.StatusOK: envelope.OffsetPageSchema(entity)}, http.StatusBadRequest)
}

// NoContent declares a 200 response whose data is null.
func NoContent(errorStatuses ...int) map[int]*schema.Object {
	return Responses(map[int]*schema.Object{http.StatusOK: envelope.SuccessSchema(nil)}, errorStatuses...)
}
