package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/server/repositories/records"
	"github.com/dmitrijs2005/sellingcar/internal/server/services"
)

func TestLoad_Sample(t *testing.T) {
	ctx := context.Background()
	c, err := catalog.Default()
	require.NoError(t, err)
	rs := services.NewRecordService(c, records.NewMemoryRepository())

	require.NoError(t, Load(ctx, c, rs, Sample()))

	for _, tbl := range Sample() {
		d, err := c.Get(tbl.Resource)
		require.NoError(t, err, tbl.Resource)
		rows, err := rs.List(ctx, d)
		require.NoError(t, err)
		assert.Len(t, rows, len(tbl.Rows), tbl.Resource)
	}

	d, _ := c.Get("participates")
	rows, err := rs.List(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "Sara", rows[0]["customerName"])
	assert.Equal(t, "Iran Khodro", rows[0]["companyName"])
	assert.Equal(t, "SAIPA", rows[1]["companyName"])
}

func TestLoad_SkipsUnknownResource(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	rs := services.NewRecordService(c, records.NewMemoryRepository())

	err = Load(context.Background(), c, rs, []Table{{Resource: "boats", Rows: []map[string]any{{"x": 1}}}})
	assert.NoError(t, err)
}

func TestLoad_ReportsBadRow(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	rs := services.NewRecordService(c, records.NewMemoryRepository())

	err = Load(context.Background(), c, rs, []Table{{Resource: "cars", Rows: []map[string]any{{"productYear": "soon"}}}})
	assert.ErrorContains(t, err, "seed cars")
}
