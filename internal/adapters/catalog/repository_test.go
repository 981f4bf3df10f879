// internal/adapters/catalog/repository_test.go
package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/adapters/catalog"
	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/test/helpers"
)

func TestNewBundledRepository(t *testing.T) {
	repo, err := catalog.NewBundledRepository(helpers.TestLogger())
	require.NoError(t, err)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, domain.ID("1"), all[0].ID, "catalog order is document order")

	tee, err := repo.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Essential Cotton Tee", tee.Name)
	assert.Equal(t, "29.99", tee.Price.StringFixed(2))
	require.NotNil(t, tee.OriginalPrice)
	assert.Equal(t, "39.99", tee.OriginalPrice.StringFixed(2))
	assert.Equal(t, "/images/products/essential-tee-1.jpg", tee.ImageRef())

	_, err = repo.FindByID(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRepository_FindAllReturnsCopy(t *testing.T) {
	repo, err := catalog.NewBundledRepository(helpers.TestLogger())
	require.NoError(t, err)

	first, _ := repo.FindAll(context.Background())
	first[0].Name = "changed"

	second, _ := repo.FindAll(context.Background())
	assert.Equal(t, "Essential Cotton Tee", second[0].Name)
}

func TestNewRepository_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		errorContains string
	}{
		{name: "not_json", doc: `{`, errorContains: "failed to decode catalog"},
		{name: "missing_id", doc: `[{"name":"x","price":1}]`, errorContains: "has no id"},
		{name: "duplicate_id", doc: `[{"id":1,"price":1},{"id":"1","price":2}]`, errorContains: "duplicate product id 1"},
		{name: "negative_price", doc: `[{"id":"a","price":-1}]`, errorContains: "negative price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.NewRepository(strings.NewReader(tt.doc), helpers.TestLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestNewFileRepository(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/catalog.json",
		[]byte(`[{"id":"sku-1","name":"Sock","price":"4.50","sizes":["M"],"colors":["Red"],"inStock":true}]`), 0o644))

	repo, err := catalog.NewFileRepository(fsys, "/etc/catalog.json", helpers.TestLogger())
	require.NoError(t, err)

	svc := services.NewCatalogService(repo, helpers.TestLogger())
	sel, err := svc.Resolve(context.Background(), "sku-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "M", sel.Size)
	assert.Equal(t, "Red", sel.Color)
	assert.Equal(t, "4.5", sel.Product.UnitPrice.String())

	_, err = catalog.NewFileRepository(fsys, "/missing.json", helpers.TestLogger())
	assert.Error(t, err)
}
