package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/repository"
)

func TestCatalog_ItemSearchWarnsOnExclusions(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	hw, err := env.catalog.CreateItemType(ctx, LookupDTO{Name: "Hardware"})
	require.NoError(t, err)
	hwID := hw.ID.String()

	_, err = env.catalog.CreateItem(ctx, ItemDTO{Name: "Notebook 14in", ItemTypeID: &hwID})
	require.NoError(t, err)
	_, err = env.catalog.CreateItem(ctx, ItemDTO{Name: "Docking station"})
	require.NoError(t, err)
	_, err = env.catalog.CreateExclusion(ctx, ItemExclusionDTO{Name: "notebook", Reason: "Bought through the central contract"})
	require.NoError(t, err)

	res, err := env.catalog.SearchItems(ctx, ItemSearchQuery{Search: "Notebook"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Data, 1)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Bought through the central contract", res.Warnings[0].Reason)

	res, err = env.catalog.SearchItems(ctx, ItemSearchQuery{Search: "docking"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	assert.Empty(t, res.Warnings)

	res, err = env.catalog.SearchItems(ctx, ItemSearchQuery{ItemTypeID: hwID}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestCatalog_Lookups(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	ct, err := env.catalog.CreateContractType(ctx, LookupDTO{Name: "Service"})
	require.NoError(t, err)

	inactive := false
	updated, err := env.catalog.UpdateContractType(ctx, ct.ID, LookupDTO{Name: "Services", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err := env.catalog.ListContractTypes(ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := env.catalog.ListContractTypes(ctx, "serv", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.catalog.CreateAcquisitionType(ctx, LookupDTO{Name: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	missing := "not-a-uuid"
	_, err = env.catalog.CreateItemCategory(ctx, LookupDTO{Name: "Laptops", ItemTypeID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSettings_Update(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	out, err := env.settings.Update(ctx, env.admin, UpdateSettingsDTO{Settings: []SettingDTO{
		{Key: "plan_year", Value: "2026"},
		{Key: "max_items", Value: "50", Description: "Items per request"},
	}})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = env.settings.Update(ctx, env.admin, UpdateSettingsDTO{Settings: []SettingDTO{{Key: "plan_year", Value: "2027"}}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, s := range out {
		if s.Key == "plan_year" {
			assert.Equal(t, "2027", s.Value)
		}
	}

	logs, total, err := env.audit.GetAuditLogs(ctx, repository.AuditFilter{Action: model.ActionUpdateSetting}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 3)
}
