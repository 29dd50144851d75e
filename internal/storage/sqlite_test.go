package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodscout/internal/common"
	"prodscout/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createTestProject(t *testing.T, store *SQLiteStorage) *model.Project {
	t.Helper()
	project := &model.Project{
		Name:                  "Coffee market entry",
		Description:           "Instant coffee competitive research",
		TargetProductName:     "cà phê hòa tan",
		TargetProductCategory: "đồ uống",
		TargetBudgetRange:     500000,
		Currency:              "VND",
	}
	require.NoError(t, store.SaveProject(context.Background(), project))
	require.NotEmpty(t, project.ID)
	return project
}

func createTestProducts(count int) []model.Product {
	products := make([]model.Product, count)
	for i := 0; i < count; i++ {
		rating := 4.0 + float64(i%10)/10
		reviews := 100 * (i + 1)
		products[i] = model.Product{
			Name:        fmt.Sprintf("Cà phê hòa tan #%d", i+1),
			URL:         fmt.Sprintf("https://tiki.vn/ca-phe-p%d.html", i+1),
			Platform:    model.PlatformTiki,
			Price:       float64(50000 + i*1000),
			Rating:      &rating,
			ReviewCount: &reviews,
			Keywords:    []string{"cà phê", "hòa tan"},
		}
	}
	return products
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)

	// Running migrations again against a current schema is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveAndGetProject(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	project := createTestProject(t, store)

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.Name, got.Name)
	assert.Equal(t, project.TargetProductName, got.TargetProductName)
	assert.Equal(t, project.TargetBudgetRange, got.TargetBudgetRange)
	assert.Equal(t, "VND", got.Currency)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.Complete())
}

func TestSaveProjectUpdatesExisting(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	project := createTestProject(t, store)
	project.Status = "active"
	project.TargetBudgetRange = 750000
	require.NoError(t, store.SaveProject(ctx, project))

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, 750000.0, got.TargetBudgetRange)

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestGetProjectNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetProject(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveProjectValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.SaveProject(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	err = store.SaveProject(ctx, &model.Project{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidProject)
}

func TestImportProducts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	project := createTestProject(t, store)

	result, err := store.ImportProducts(ctx, project.ID, createTestProducts(3))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported())
	assert.Zero(t, result.Skipped())
	assert.Len(t, result.ImportedIDs, 3)

	products, err := store.ListProducts(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.Equal(t, project.ID, p.ProjectID)
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.ImportedAt.IsZero())
		assert.Equal(t, []string{"cà phê", "hòa tan"}, p.Keywords)
		require.NotNil(t, p.Rating)
	}
}

func TestImportProductsSkipsDuplicateURLs(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	project := createTestProject(t, store)

	first, err := store.ImportProducts(ctx, project.ID, createTestProducts(3))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported())

	// Re-importing the same URLs plus one new product only adds the new one.
	batch := createTestProducts(4)
	second, err := store.ImportProducts(ctx, project.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Imported())
	assert.Equal(t, 3, second.SkippedDuplicates)
	assert.Zero(t, second.SkippedErrors)

	products, err := store.ListProducts(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestImportProductsSameURLDifferentProjects(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	projectA := createTestProject(t, store)
	projectB := &model.Project{Name: "Second project", TargetProductName: "cà phê"}
	require.NoError(t, store.SaveProject(ctx, projectB))

	batch := createTestProducts(2)
	resultA, err := store.ImportProducts(ctx, projectA.ID, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, resultA.Imported())

	// Uniqueness is scoped to the project, not global.
	resultB, err := store.ImportProducts(ctx, projectB.ID, createTestProducts(2))
	require.NoError(t, err)
	assert.Equal(t, 2, resultB.Imported())
	assert.Zero(t, resultB.SkippedDuplicates)
}

func TestImportProductsSkipsInvalidProducts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	project := createTestProject(t, store)

	products := createTestProducts(2)
	products = append(products,
		model.Product{URL: "https://tiki.vn/no-name-p9.html", Platform: model.PlatformTiki},
		model.Product{Name: "No URL", Platform: model.PlatformTiki},
		model.Product{Name: "No platform", URL: "https://example.com/x"},
	)

	result, err := store.ImportProducts(ctx, project.ID, products)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported())
	assert.Equal(t, 3, result.SkippedErrors)
	assert.Zero(t, result.SkippedDuplicates)
}

func TestImportProductsEmptyBatch(t *testing.T) {
	store := createTestStorage(t)
	project := createTestProject(t, store)

	result, err := store.ImportProducts(context.Background(), project.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Imported())
	assert.Zero(t, result.Skipped())
}

func TestGetProduct(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	project := createTestProject(t, store)

	result, err := store.ImportProducts(ctx, project.ID, createTestProducts(1))
	require.NoError(t, err)
	require.Len(t, result.ImportedIDs, 1)

	got, err := store.GetProduct(ctx, result.ImportedIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Cà phê hòa tan #1", got.Name)
	assert.Equal(t, model.PlatformTiki, got.Platform)
	require.NotNil(t, got.ReviewCount)
	assert.Equal(t, 100, *got.ReviewCount)

	_, err = store.GetProduct(ctx, "missing-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveAndListTasks(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	project := createTestProject(t, store)

	result, err := store.ImportProducts(ctx, project.ID, createTestProducts(1))
	require.NoError(t, err)
	productID := result.ImportedIDs[0]

	tasks := []model.MarketingTask{
		{
			Name:           "Khảo sát giá",
			Description:    "So sánh giá 10 sản phẩm cùng phân khúc.",
			TaskType:       model.TaskTypePricingStrategy,
			Priority:       "high",
			MarketingFocus: "research",
			EstimatedHours: 3,
		},
		{
			Name:           "Phân tích đánh giá",
			Description:    "Nhóm các phàn nàn phổ biến trong 100 đánh giá gần nhất.",
			TaskType:       model.TaskTypeCompetitiveAnalysis,
			Priority:       "medium",
			MarketingFocus: "analysis",
			EstimatedHours: 2.5,
		},
	}
	require.NoError(t, store.SaveTasks(ctx, productID, tasks))

	got, err := store.ListTasks(ctx, productID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Khảo sát giá", got[0].Name)
	assert.Equal(t, productID, got[0].ProductID)
	assert.NotEmpty(t, got[0].ID)
	assert.InDelta(t, 2.5, got[1].EstimatedHours, 0.001)
}

func TestSaveTasksIsAllOrNothing(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	project := createTestProject(t, store)

	result, err := store.ImportProducts(ctx, project.ID, createTestProducts(1))
	require.NoError(t, err)
	productID := result.ImportedIDs[0]

	tasks := []model.MarketingTask{
		{
			Name:           "Valid task",
			Description:    "Fine.",
			TaskType:       model.TaskTypeMarketingResearch,
			Priority:       "low",
			MarketingFocus: "research",
			EstimatedHours: 1,
		},
		{
			Name:        "Broken task",
			Description: "Invalid type.",
			TaskType:    "world_domination",
			Priority:    "high",
		},
	}
	err = store.SaveTasks(ctx, productID, tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTask)

	// The valid task must not have been persisted either.
	got, err := store.ListTasks(ctx, productID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidationGuards(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetProject(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = store.ImportProducts(ctx, "", nil)
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = store.ListProducts(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)

	err = store.SaveTasks(ctx, "", nil)
	assert.ErrorIs(t, err, ErrEmptyString)
}
