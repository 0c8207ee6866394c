package rootnroll

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	ast := assert.New(t)

	// struct
	ast.NotNil(defaultValidator.Validate(CreateServerParams{}))
	ast.Nil(defaultValidator.Validate(CreateServerParams{ImageID: "3"}))

	// struct ptr
	ast.NotNil(defaultValidator.Validate(&CreateServerParams{ImageID: "3", Memory: -64}))
	ast.Nil(defaultValidator.Validate(&CreateServerParams{ImageID: "3", Memory: 64}))
	ast.Nil(defaultValidator.Validate((*CreateServerParams)(nil)))

	// slice
	ast.NotNil(defaultValidator.Validate([]SandboxFile{{Name: "a"}, {}}))
	ast.Nil(defaultValidator.Validate([]SandboxFile{{Name: "a"}, {Name: "b"}}))

	// dive
	ast.NotNil(defaultValidator.Validate(CreateSandboxParams{Profile: "p", Files: []SandboxFile{{}}}))
	ast.Nil(defaultValidator.Validate(CreateSandboxParams{Profile: "p", Files: []SandboxFile{{Name: "a"}}}))

	// nested ptr
	ast.NotNil(defaultValidator.Validate(CreateSandboxParams{Profile: "p", Limits: &SandboxLimits{Memory: -1}}))

	err := defaultValidator.Validate(CreateSandboxParams{})
	ast.True(errors.Is(err, ErrInvalidParams))
}
