package wire

import (
	"context"
	"strconv"
	"strings"

	"schemaregistry/internal/schema"
	"schemaregistry/internal/schema/types"
)

// LocalClient adapts an in-process *schema.Registry to the
// RegistryClient interface, used by the embedded/test-mode server path
// where the wire adapter and the registry share a process.
type LocalClient struct {
	registry   *schema.Registry
	schemaType types.SchemaType
}

// NewLocalClient constructs a LocalClient over r, registering and
// looking up schemas as the given schemaType (normally types.Avro).
func NewLocalClient(r *schema.Registry, schemaType types.SchemaType) *LocalClient {
	return &LocalClient{registry: r, schemaType: schemaType}
}

func (c *LocalClient) GetSchema(_ context.Context, id int32) (string, error) {
	s, err := c.registry.GetSchema(int(id))
	if err != nil {
		return "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: err.Error()}
	}
	return s.Schema, nil
}

func (c *LocalClient) GetLatestSchema(_ context.Context, subject string) (int32, int, string, error) {
	s, err := c.registry.GetSchemaBySubjectVersion(subject, "latest")
	if err != nil {
		return 0, 0, "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: err.Error()}
	}
	return int32(s.ID), s.Version, s.Schema, nil
}

func (c *LocalClient) GetSchemaByVersion(_ context.Context, subject string, version int) (string, error) {
	s, err := c.registry.GetSchemaBySubjectVersion(subject, strconv.Itoa(version))
	if err != nil {
		return "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: err.Error()}
	}
	return s.Schema, nil
}

func (c *LocalClient) GetSchemaID(_ context.Context, subject string, schemaJSON string) (int32, error) {
	s, err := c.registry.LookupSchema(subject, schemaJSON, c.schemaType)
	if err != nil {
		return 0, &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: err.Error()}
	}
	return int32(s.ID), nil
}

func (c *LocalClient) RegisterSchema(_ context.Context, subject string, schemaJSON string) (int32, error) {
	id, err := c.registry.RegisterSchema(subject, schemaJSON, c.schemaType)
	if err != nil {
		if strings.Contains(err.Error(), "incompatible") {
			return 0, &RegistryError{Code: ErrCodeSchemaIncompatible, Message: err.Error()}
		}
		return 0, err
	}
	return int32(id), nil
}
