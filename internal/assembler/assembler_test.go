package assembler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/price-export/internal/client"
	"github.com/ginjaninja78/price-export/internal/types"
)

// fakeSource serves canned products and quantities and records every call.
type fakeSource struct {
	products   map[string]*client.ProductAttributes
	quantities map[string]int // storeID + "/" + productID
	productErr error

	productCalls   []string
	inventoryCalls []string
}

func (f *fakeSource) FetchProduct(ctx context.Context, productID string) (*client.ProductAttributes, error) {
	f.productCalls = append(f.productCalls, productID)
	if f.productErr != nil {
		return nil, f.productErr
	}
	attrs, ok := f.products[productID]
	if !ok {
		return nil, &client.StatusError{URL: "/products/" + productID, Status: http.StatusNotFound}
	}
	return attrs, nil
}

func (f *fakeSource) FetchStoreQuantity(ctx context.Context, storeID, productID string) (int, error) {
	f.inventoryCalls = append(f.inventoryCalls, storeID+"/"+productID)
	return f.quantities[storeID+"/"+productID], nil
}

func strPtr(s string) *string { return &s }

func cents(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func ids(records []*types.ProductRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestAssemble_PreservesConfiguredOrder(t *testing.T) {
	src := &fakeSource{products: map[string]*client.ProductAttributes{
		"3": {Name: strPtr("Three")},
		"1": {Name: strPtr("One")},
		"2": {Name: strPtr("Two")},
	}}

	catalog, stats, err := New(src, nil).Assemble(context.Background(), []string{"2", "3", "1", "2"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "3", "1", "2"}, ids(catalog.Records()))
	assert.Equal(t, Stats{Requested: 4, Found: 4}, stats)
	assert.Equal(t, []string{"2", "3", "1", "2"}, src.productCalls)
}

func TestAssemble_NoStoresNoInventoryRequests(t *testing.T) {
	src := &fakeSource{products: map[string]*client.ProductAttributes{
		"1": {Name: strPtr("One")},
	}}

	catalog, _, err := New(src, nil).Assemble(context.Background(), []string{"1"}, nil)
	require.NoError(t, err)

	assert.Empty(t, src.inventoryCalls)
	assert.Empty(t, catalog.StoreIDs)
	assert.Empty(t, catalog.Records()[0].Quantities)
}

func TestAssemble_QuantitiesPerStore(t *testing.T) {
	src := &fakeSource{
		products: map[string]*client.ProductAttributes{
			"1": {Name: strPtr("One")},
			"2": {Name: strPtr("Two")},
		},
		quantities: map[string]int{"10/1": 3, "20/1": 7, "10/2": 1},
	}

	catalog, _, err := New(src, nil).Assemble(context.Background(), []string{"1", "2"}, []string{"10", "20"})
	require.NoError(t, err)

	assert.Equal(t, []string{"10/1", "20/1", "10/2", "20/2"}, src.inventoryCalls)

	one, ok := catalog.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, 3, one.Quantity("10"))
	assert.Equal(t, 7, one.Quantity("20"))

	two, ok := catalog.Lookup("2")
	require.True(t, ok)
	assert.Equal(t, 1, two.Quantity("10"))
	assert.Equal(t, 0, two.Quantity("20"))
}

func TestAssemble_DropsMissingProducts(t *testing.T) {
	src := &fakeSource{products: map[string]*client.ProductAttributes{
		"1": {Name: strPtr("One"), PriceInCents: cents(500)},
		"3": {Name: strPtr("Three")},
	}}
	core, logs := observer.New(zapcore.WarnLevel)

	catalog, stats, err := New(src, zap.New(core)).Assemble(context.Background(), []string{"1", "2", "3"}, []string{"10"})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, ids(catalog.Records()))
	assert.Equal(t, Stats{Requested: 3, Found: 2, Missing: 1}, stats)
	assert.NotContains(t, src.inventoryCalls, "10/2")

	_, ok := catalog.Lookup("2")
	assert.False(t, ok)

	warnings := logs.All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "2", warnings[0].ContextMap()["product_id"])
	assert.EqualValues(t, http.StatusNotFound, warnings[0].ContextMap()["status"])
}

func TestAssemble_KeepMissingAddsPlaceholder(t *testing.T) {
	src := &fakeSource{products: map[string]*client.ProductAttributes{
		"1": {Name: strPtr("One")},
	}}

	asm := New(src, nil)
	asm.KeepMissing = true

	catalog, stats, err := asm.Assemble(context.Background(), []string{"2", "1"}, []string{"10"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "1"}, ids(catalog.Records()))
	assert.Equal(t, 1, stats.Missing)

	placeholder := catalog.Records()[0]
	assert.Equal(t, types.NotFoundName, placeholder.Name)
	assert.True(t, placeholder.Price.IsZero())
	assert.True(t, placeholder.PricePerLitre.IsZero())
	assert.Equal(t, map[string]int{"10": 0}, placeholder.Quantities)
	assert.Equal(t, []string{"10/1"}, src.inventoryCalls)
}

func TestAssemble_TransportErrorAborts(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{productErr: boom}

	_, _, err := New(src, nil).Assemble(context.Background(), []string{"1", "2"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"1"}, src.productCalls)
}

func TestAssemble_CancelledContext(t *testing.T) {
	src := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(src, nil).Assemble(ctx, []string{"1"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.productCalls)
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("1", &client.ProductAttributes{
		Name:                strPtr("Côte du Rhône"),
		PriceInCents:        cents(1099),
		RegularPriceInCents: cents(1299),
		PackageVolumeML:     cents(750),
		PricePerLiterCents:  cents(1465),
	})

	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, "Cote du Rhone", rec.Name)
	assert.Equal(t, "10.99", rec.Price.StringFixed(2))
	assert.Equal(t, "12.99", rec.RegularPrice.StringFixed(2))
	assert.Equal(t, "750", rec.PackageVolume.String())
	assert.Equal(t, "14.65", rec.PricePerLitre.StringFixed(2))
	assert.NotNil(t, rec.Quantities)
}

func TestNewRecord_MissingName(t *testing.T) {
	rec := NewRecord("7", &client.ProductAttributes{})
	assert.Equal(t, types.NotFoundName, rec.Name)
	assert.Equal(t, "0.00", rec.Price.StringFixed(2))
}

func TestCentsToAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1099, "10.99"},
		{500, "5.00"},
		{1, "0.01"},
		{0, "0.00"},
		{123456789, "1234567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CentsToAmount(cents(tt.cents)).StringFixed(2))
	}
}
