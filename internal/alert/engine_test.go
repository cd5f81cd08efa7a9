package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, stock, min, safe int64, max *int64) model.InventoryItem {
	return model.InventoryItem{
		ID: id, ProductID: "p-" + id, LocationID: "loc-1",
		CurrentStock: stock, MinStock: min, SafeStock: safe, MaxStock: max,
	}
}

func ptr(v int64) *int64 { return &v }

func TestDerive(t *testing.T) {
	cases := []struct {
		name string
		item model.InventoryItem
		want []model.AlertType
	}{
		{"out of stock", item("a", 0, 20, 30, nil), []model.AlertType{model.AlertOutOfStock}},
		{"low stock", item("b", 15, 20, 30, nil), []model.AlertType{model.AlertLowStock}},
		{"at minimum", item("c", 20, 20, 30, nil), []model.AlertType{model.AlertLowStock}},
		{"below safe stock", item("d", 25, 20, 30, nil), []model.AlertType{model.AlertBelowSafeStock}},
		{"healthy", item("e", 100, 20, 30, ptr(500)), nil},
		{"over max", item("f", 600, 20, 30, ptr(500)), []model.AlertType{model.AlertOverStock}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := Derive(&tc.item)
			var got []model.AlertType
			for _, a := range alerts {
				got = append(got, a.AlertType)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDerive_Severity(t *testing.T) {
	out := item("a", 0, 20, 30, nil)
	low := item("b", 5, 20, 30, nil)

	assert.Equal(t, model.SeverityCritical, Derive(&out)[0].Severity)
	assert.Equal(t, model.SeverityHigh, Derive(&low)[0].Severity)
	assert.Equal(t, int64(20), Derive(&low)[0].Threshold)
}

type fakeExpiry struct {
	alerts []model.Alert
	err    error
}

func (f fakeExpiry) ExpiringAlerts(context.Context, *model.InventoryItem) ([]model.Alert, error) {
	return f.alerts, f.err
}

func TestEngine_DeriveAll(t *testing.T) {
	expiring := model.Alert{InventoryItemID: "e", LocationID: "loc-1", AlertType: model.AlertExpiringSoon, Severity: model.SeverityMedium}
	engine := NewEngine(fakeExpiry{alerts: []model.Alert{expiring}})

	items := []model.InventoryItem{
		item("healthy", 100, 20, 30, nil),
		item("low", 10, 20, 30, nil),
		item("out", 0, 20, 30, nil),
	}

	alerts, err := engine.DeriveAll(context.Background(), items, Filters{})
	require.NoError(t, err)
	require.Len(t, alerts, 5)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, model.SeverityHigh, alerts[1].Severity)

	critical, err := engine.DeriveAll(context.Background(), items, Filters{Severity: model.SeverityCritical})
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "out", critical[0].InventoryItemID)

	none, err := engine.DeriveAll(context.Background(), items, Filters{LocationID: "elsewhere"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEngine_ExpiryError(t *testing.T) {
	engine := NewEngine(fakeExpiry{err: errors.New("lot service down")})
	it := item("a", 5, 1, 1, nil)

	_, err := engine.Derive(context.Background(), &it)
	assert.Error(t, err)
}
