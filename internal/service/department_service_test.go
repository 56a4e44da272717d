package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestDepartmentCreate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	parent := env.deptA.ID.String()
	dept, err := env.departments.Create(ctx, env.admin, CreateDepartmentDTO{
		Code: "A-1", Sigla: "A1", Name: "Infrastructure", ParentID: &parent,
	})
	require.NoError(t, err)
	require.NotNil(t, dept.ParentID)
	assert.Equal(t, parent, *dept.ParentID)
	require.NotNil(t, dept.Count)
	assert.Zero(t, dept.Count.Users)

	_, err = env.departments.Create(ctx, env.admin, CreateDepartmentDTO{Code: "A-1", Name: "Other"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = env.departments.Create(ctx, env.admin, CreateDepartmentDTO{Code: "A-2", Name: "Infrastructure"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	missing := uuid.NewString()
	_, err = env.departments.Create(ctx, env.admin, CreateDepartmentDTO{Code: "A-3", Name: "Orphan", ParentID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	parentView, err := env.departments.Get(ctx, env.deptA.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, parentView.Count.Children)
	assert.EqualValues(t, 3, parentView.Count.Users)
	require.Len(t, parentView.Children, 1)
	assert.Equal(t, "A-1", parentView.Children[0].Code)
}

func TestDepartmentUpdate_RejectsLoop(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	root := testutil.CreateDepartment(t, env.db, "ROOT", nil)
	mid := testutil.CreateDepartment(t, env.db, "MID", &root.ID)
	leaf := testutil.CreateDepartment(t, env.db, "LEAF", &mid.ID)

	_, err := env.departments.Update(ctx, env.admin, root.ID, UpdateDepartmentDTO{ParentID: strPtr(leaf.ID.String())})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "loop")

	_, err = env.departments.Update(ctx, env.admin, mid.ID, UpdateDepartmentDTO{ParentID: strPtr(mid.ID.String())})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	got, err := env.departments.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	// Moving a leaf elsewhere is fine, and so is clearing the parent.
	moved, err := env.departments.Update(ctx, env.admin, leaf.ID, UpdateDepartmentDTO{ParentID: strPtr(root.ID.String())})
	require.NoError(t, err)
	assert.Equal(t, root.ID.String(), *moved.ParentID)

	cleared, err := env.departments.Update(ctx, env.admin, leaf.ID, UpdateDepartmentDTO{ParentID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.ParentID)
}

func TestDepartmentUpdate_DuplicateName(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.departments.Update(context.Background(), env.admin, env.deptB.ID, UpdateDepartmentDTO{Name: strPtr(env.deptA.Name)})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestDepartmentDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	err := env.departments.Delete(ctx, env.admin, env.deptA.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	still, err := env.departments.Get(ctx, env.deptA.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive)

	empty := testutil.CreateDepartment(t, env.db, "EMPTY", nil)
	require.NoError(t, env.departments.Delete(ctx, env.admin, empty.ID))

	gone, err := env.departments.Get(ctx, empty.ID)
	require.NoError(t, err, "soft delete keeps the row")
	assert.False(t, gone.IsActive)

	assert.True(t, apperr.Is(env.departments.Delete(ctx, env.admin, uuid.New()), apperr.KindNotFound))
}

func TestDepartmentDelete_BlockedByRequests(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	lonely := testutil.CreateDepartment(t, env.db, "REQ", nil)
	_, err := env.requests.Create(ctx, env.admin, CreateRequestDTO{
		Description:  "Monitors",
		DepartmentID: strPtr(lonely.ID.String()),
		Items:        []RequestItemInput{item("Monitor", 1, "700")},
	})
	require.NoError(t, err)

	err = env.departments.Delete(ctx, env.admin, lonely.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestDepartmentUpdate_DeactivateChecksDependents(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.newRequest(t, env.requester)

	inactive := false
	_, err := env.departments.Update(ctx, env.admin, env.deptA.ID, UpdateDepartmentDTO{IsActive: &inactive})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	still, err := env.departments.Get(ctx, env.deptA.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive)

	empty := testutil.CreateDepartment(t, env.db, "EMPTY", nil)
	res, err := env.departments.Update(ctx, env.admin, empty.ID, UpdateDepartmentDTO{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, res.IsActive)

	active := true
	res, err = env.departments.Update(ctx, env.admin, empty.ID, UpdateDepartmentDTO{IsActive: &active})
	require.NoError(t, err)
	assert.True(t, res.IsActive)
}

func TestDepartmentImport(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.types.Create(ctx, env.admin, DepartmentTypeDTO{Code: "DIR", Name: "Directorate"})
	require.NoError(t, err)

	rows := []DepartmentImportRow{
		{Code: "CHILD", Name: "Child unit", ParentCode: "PARENT", TypeCode: "DIR"}, // row 2, parent comes later
		{Code: "PARENT", Name: "Parent unit", ParentCode: "A"},                     // row 3, parent already stored
		{Code: "PARENT", Name: "Parent again"},                                     // row 4, duplicate code
		{Code: "NONAME"},                                                           // row 5, missing name
		{Code: "STRAY", Name: "Stray unit", ParentCode: "NOPE", TypeCode: "XX"},    // row 6, two warnings
		{Code: "B", Name: "Clashes with stored"},                                   // row 7, stored code
	}

	result, err := env.departments.Import(ctx, env.admin, rows)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 6, result.Total)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 3, result.Skipped)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Equal(t, 7, result.Errors[2].Row)

	require.Len(t, result.Warnings, 2)
	for _, w := range result.Warnings {
		assert.Equal(t, 6, w.Row)
	}

	var child, parent model.Department
	require.NoError(t, env.db.First(&child, "code = ?", "CHILD").Error)
	require.NoError(t, env.db.First(&parent, "code = ?", "PARENT").Error)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
	require.NotNil(t, child.TypeID)
	require.NotNil(t, parent.ParentID)
	assert.Equal(t, env.deptA.ID, *parent.ParentID)

	var stray model.Department
	require.NoError(t, env.db.First(&stray, "code = ?", "STRAY").Error)
	assert.Nil(t, stray.ParentID)
	assert.Nil(t, stray.TypeID)
}

func TestDepartmentImport_CycleInBatch(t *testing.T) {
	env := newTestEnv(t, nil)

	result, err := env.departments.Import(context.Background(), env.admin, []DepartmentImportRow{
		{Code: "X", Name: "X unit", ParentCode: "Y"},
		{Code: "Y", Name: "Y unit", ParentCode: "X"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 3, result.Warnings[0].Row)
	assert.Contains(t, result.Warnings[0].Warning, "loop")
}

func TestDepartmentTypeDelete_InUse(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	typ, err := env.types.Create(ctx, env.admin, DepartmentTypeDTO{Code: "SEC", Name: "Section"})
	require.NoError(t, err)

	_, err = env.types.Create(ctx, env.admin, DepartmentTypeDTO{Code: "SEC", Name: "Dup"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = env.departments.Update(ctx, env.admin, env.deptB.ID, UpdateDepartmentDTO{TypeID: strPtr(typ.ID.String())})
	require.NoError(t, err)

	assert.True(t, apperr.Is(env.types.Delete(ctx, env.admin, typ.ID), apperr.KindConflict))

	_, err = env.departments.Update(ctx, env.admin, env.deptB.ID, UpdateDepartmentDTO{TypeID: strPtr("")})
	require.NoError(t, err)
	require.NoError(t, env.types.Delete(ctx, env.admin, typ.ID))
}
