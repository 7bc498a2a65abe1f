package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangePinsDayBounds(t *testing.T) {
	start := time.Date(2024, time.March, 5, 13, 45, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 9, 2, 0, 0, 0, time.UTC)

	from, to := DateRange(start, end)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.March, 9, 23, 59, 59, 0, time.UTC), to)
}

func TestDateRangeZeroValuesStayZero(t *testing.T) {
	from, to := DateRange(time.Time{}, time.Time{})
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func TestFilterBuildPlaceholderOrdering(t *testing.T) {
	from, to := DateRange(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	)
	f := Filter{ProductID: "p-1", WarehouseID: "w-1", CityKey: "bogota", From: from, To: to}

	b := f.build()
	args := b.Args()
	require.Len(t, args, 5)
	assert.Equal(t, "p-1", args[0])
	assert.Equal(t, "w-1", args[1])
	assert.Equal(t, "bogota", args[2])
	assert.Equal(t, from, args[3])
	assert.Equal(t, to, args[4])
	assert.Equal(t, 6, b.NextIndex())

	where := b.Where(outerAliases)
	assert.Equal(t,
		"WHERE oi.product_id = $1 AND oi.warehouse_id = $2 AND nc.normalized_city = $3 AND o.invoiced_date >= $4 AND o.invoiced_date <= $5",
		where,
	)
}

func TestFilterBuildSkipsUnsetFields(t *testing.T) {
	f := Filter{WarehouseID: "w-9"}
	b := f.build()

	require.Len(t, b.Args(), 1)
	assert.Equal(t, "WHERE oi.warehouse_id = $1", b.Where(outerAliases))
	assert.Equal(t, " AND oi.warehouse_id = $1", b.And(outerAliases))
}

func TestFilterBuildEmpty(t *testing.T) {
	b := Filter{}.build()
	assert.Empty(t, b.Args())
	assert.Equal(t, "", b.Where(outerAliases))
	assert.Equal(t, "", b.And(outerAliases))
	assert.Equal(t, 1, b.NextIndex())
}

// The percentage denominators re-render the same predicate sequence against a
// second alias set. Placeholders must line up so both renderings share one
// argument list.
func TestFilterBuildRendersBothAliasSets(t *testing.T) {
	f := Filter{ProductID: "p-1", CityKey: "cali"}
	b := f.build()

	outer := b.Where(outerAliases)
	denom := b.Where(denomAliases)
	assert.Equal(t, "WHERE oi.product_id = $1 AND nc.normalized_city = $2", outer)
	assert.Equal(t, "WHERE oi2.product_id = $1 AND nc2.normalized_city = $2", denom)
}

func TestNeedsCityJoin(t *testing.T) {
	assert.False(t, Filter{ProductID: "p"}.needsCityJoin())
	assert.True(t, Filter{CityKey: "bogota"}.needsCityJoin())
}
