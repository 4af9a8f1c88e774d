package people

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.CanRequest("teacher"))
	assert.True(t, c.CanRequest("Teacher"))
	assert.True(t, c.CanRequest("coordinator"))
	assert.False(t, c.CanRequest("student"))
	assert.False(t, c.CanRequest("janitor"))
	assert.NotEmpty(t, c.RelationshipTypes)
}

func TestIsEligibleRequester(t *testing.T) {
	svc := NewService(NewMemoryRepository(), Catalog{})
	ctx := context.Background()

	teacher, err := svc.Create(ctx, CreateRequest{DisplayName: "Ana Ruiz", Role: "teacher"})
	require.NoError(t, err)
	student, err := svc.Create(ctx, CreateRequest{DisplayName: "Leo", Role: "student"})
	require.NoError(t, err)

	ok, err := svc.IsEligibleRequester(ctx, teacher.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsEligibleRequester(ctx, student.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsEligibleRequester(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCustomCatalog(t *testing.T) {
	catalog := Catalog{Roles: []Role{{Code: "student", Name: "Student", CanRequest: true}}}
	svc := NewService(NewMemoryRepository(), catalog)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateRequest{DisplayName: "Leo", Role: "student"})
	require.NoError(t, err)
	ok, err := svc.IsEligibleRequester(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, CreateRequest{DisplayName: "Ana", Role: "teacher"})
	assert.True(t, errors.Is(err, ErrUnknownRole))
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), DefaultCatalog())
	ctx := context.Background()
	email := "Ana@School.Edu "

	_, err := svc.Create(ctx, CreateRequest{DisplayName: " ", Role: "teacher"})
	assert.True(t, errors.Is(err, ErrEmptyName))

	p, err := svc.Create(ctx, CreateRequest{DisplayName: "Ana", Email: &email, Role: "TEACHER"})
	require.NoError(t, err)
	require.NotNil(t, p.Email)
	assert.Equal(t, "ana@school.edu", *p.Email)
	assert.Equal(t, "teacher", p.Role)

	_, err = svc.Create(ctx, CreateRequest{DisplayName: "Ana 2", Email: &email, Role: "teacher"})
	assert.True(t, errors.Is(err, ErrEmailTaken))
}
