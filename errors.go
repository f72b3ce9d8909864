package relmeta

import (
	"errors"

	"gorm.io/relmeta/schema"
)

var (
	// ErrReferencedColumnNotFound a join column references a column its target entity doesn't declare
	ErrReferencedColumnNotFound = schema.ErrReferencedColumnNotFound
	// ErrUnsupportedRelation relation without a target entity
	ErrUnsupportedRelation = schema.ErrUnsupportedRelation
	// ErrUnsupportedDataType unsupported data type
	ErrUnsupportedDataType = schema.ErrUnsupportedDataType
	// ErrModelValueRequired model value required
	ErrModelValueRequired = errors.New("model value required")
	// ErrUnknownEntity entity not registered
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrRegistered another entity is registered under the same name
	ErrRegistered = errors.New("registered")
)
