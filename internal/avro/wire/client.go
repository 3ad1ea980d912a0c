package wire

import (
	"context"
	"errors"
	"fmt"
)

// Well-known registry error codes, matching the Confluent Schema
// Registry REST API's error_code field.
const (
	ErrCodeSubjectOrVersionNotFound = 40401
	ErrCodeSchemaIncompatible       = 40901
)

// RegistryError reports a failure surfaced by a RegistryClient, carrying
// the well-known numeric code the Confluent API uses so callers (in
// particular the auto-registration path below) can branch on it without
// string matching.
type RegistryError struct {
	Code    int
	Message string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("schema registry: %s (code %d)", e.Message, e.Code)
}

// IsNotFound reports whether err is a RegistryError for a missing
// subject or version.
func IsNotFound(err error) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.Code == ErrCodeSubjectOrVersionNotFound
}

// IsIncompatible reports whether err is a RegistryError for a schema
// rejected as incompatible with an existing one.
func IsIncompatible(err error) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.Code == ErrCodeSchemaIncompatible
}

// RegistryClient is the schema-registry collaborator the wire adapter
// drives. Two concrete implementations live alongside it: httpclient.go
// (a net/http client against the Confluent REST contract) and
// localclient.go (an in-process adapter over *schema.Registry).
type RegistryClient interface {
	// GetSchema fetches the JSON schema registered under id.
	GetSchema(ctx context.Context, id int32) (string, error)
	// GetLatestSchema fetches the latest version registered for subject.
	GetLatestSchema(ctx context.Context, subject string) (id int32, version int, schemaJSON string, err error)
	// GetSchemaByVersion fetches one specific version registered for subject.
	GetSchemaByVersion(ctx context.Context, subject string, version int) (string, error)
	// GetSchemaID looks up the id already assigned to schemaJSON under subject.
	GetSchemaID(ctx context.Context, subject string, schemaJSON string) (int32, error)
	// RegisterSchema registers schemaJSON under subject, returning its id.
	RegisterSchema(ctx context.Context, subject string, schemaJSON string) (int32, error)
}
