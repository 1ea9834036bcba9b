package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agave/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_YAML(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
products:
  - sku: AGV-001
    name: Jarabe 250ml
    cost: 7.10
    price: 9.82
  - sku: AGV-003
    cost: 48
    target_margin: 0.38
`)
	src := NewFileSource(path)
	assert.Equal(t, "file:"+path, src.Name())

	products, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "AGV-001", products[0].SKU)
	assert.Equal(t, 9.82, products[0].Price)
	require.NotNil(t, products[1].TargetMargin)
	assert.Equal(t, model.Fraction(0.38), *products[1].TargetMargin)
}

func TestFileSource_JSON(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"products":[{"sku":"X","cost":10,"currency":"USD"}]}`)
	products, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "USD", products[0].Currency)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background())
	assert.Error(t, err)

	_, err = NewFileSource(writeFile(t, "catalog.csv", "sku,cost")).Load(context.Background())
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = NewFileSource(writeFile(t, "bad.json", "{")).Load(context.Background())
	assert.ErrorContains(t, err, "decode catalog")
}

func TestHTTPSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"sku":"A","cost":7.1,"price":9.82},{"sku":"B","cost":3}]`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "")
	products, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "B", products[1].SKU)
	assert.Equal(t, "http:"+srv.URL, src.Name())
}

func TestHTTPSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "").Load(context.Background())
	assert.ErrorContains(t, err, "status 502")
}

func TestReprice(t *testing.T) {
	custom := model.Fraction(0.38)
	products := []model.Product{
		{SKU: "A", Cost: 7.10, Price: 9.82},
		{SKU: "B", Cost: 7.10, Price: 8.00},
		{SKU: "C", Cost: -1},
		{SKU: "D", Cost: 48, TargetMargin: &custom},
	}
	r := NewRepricer(model.DefaultRangeTable(), model.DefaultReferenceMargins(), 0.27, nil)
	reports := r.Reprice(products)
	require.Len(t, reports, 3, "negative cost row is skipped")

	a := reports[0]
	assert.Equal(t, 9.73, a.Calculation.RecommendedPrice)
	require.NotNil(t, a.Classification)
	assert.Equal(t, "Bueno", a.Classification.Category)
	require.NotNil(t, a.Comparison)
	assert.Equal(t, -0.09, a.Comparison.Difference)
	assert.False(t, a.BelowMinimum)

	b := reports[1]
	assert.Equal(t, "Muy Bajo", b.Classification.Category)
	assert.True(t, b.BelowMinimum)

	d := reports[2]
	assert.Equal(t, "D", d.Product.SKU)
	assert.Equal(t, model.Fraction(0.38), d.Calculation.TargetMargin)
	assert.Equal(t, 77.42, d.Calculation.RecommendedPrice)
	assert.Nil(t, d.Classification)
	assert.Nil(t, d.Comparison)
}

func TestSummarize(t *testing.T) {
	r := NewRepricer(model.DefaultRangeTable(), model.DefaultReferenceMargins(), 0.27, nil)
	reports := r.Reprice([]model.Product{
		{SKU: "A", Cost: 7.10, Price: 9.82},
		{SKU: "B", Cost: 7.10, Price: 8.00},
		{SKU: "C", Cost: 7.10, Price: 8.90},
		{SKU: "D", Cost: 7.10},
	})

	s := Summarize(reports)
	assert.Equal(t, 4, s.Products)
	assert.Equal(t, 3, s.Priced)
	assert.Equal(t, map[string]int{"Bueno": 1, "Muy Bajo": 1, "Aceptable": 1}, s.ByCategory)
	assert.Equal(t, []string{"B", "C"}, s.BelowMinimum)
}
