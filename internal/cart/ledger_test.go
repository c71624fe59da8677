package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

func product(id, price string) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  "Car " + id,
		Price: money.ParsePrice(price),
		Image: "https://img.example.com/" + id + ".png",
	}
}

func TestLedger_AddItemTwice(t *testing.T) {
	l := NewLedger()
	p := product("1", "$9.99")

	l.AddItem(p)
	l.AddItem(p)

	require.Equal(t, 1, l.Len())
	line, ok := l.Line("1")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, l.TotalUSD().Equal(decimal.RequireFromString("19.98")), "got %s", l.TotalUSD())
}

func TestLedger_AddItemPreservesOrder(t *testing.T) {
	l := NewLedger()
	l.AddItem(product("a", "$1"))
	l.AddItem(product("b", "$2"))
	l.AddItem(product("a", "$1"))
	l.AddItem(product("c", "$3"))

	var ids []string
	for _, line := range l.Lines() {
		ids = append(ids, line.ProductID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestLedger_ItemCountTracksAddsAndRemovals(t *testing.T) {
	l := NewLedger()
	adds := []string{"1", "2", "1", "3", "2", "1"}
	for _, id := range adds {
		l.AddItem(product(id, "$1.00"))
	}
	assert.Equal(t, len(adds), l.ItemCount())
	assert.Equal(t, 3, l.Len())

	line, _ := l.Line("1")
	l.RemoveItem("1")
	assert.Equal(t, len(adds)-line.Quantity, l.ItemCount())
}

func TestLedger_UpdateQuantity(t *testing.T) {
	t.Run("sets the exact quantity", func(t *testing.T) {
		l := NewLedger()
		l.AddItem(product("1", "$2.00"))
		l.UpdateQuantity("1", 5)

		line, _ := l.Line("1")
		assert.Equal(t, 5, line.Quantity)
		assert.Equal(t, 5, l.ItemCount())
	})

	t.Run("non-positive quantities remove the line", func(t *testing.T) {
		for _, q := range []int{0, -1, -7} {
			updated := NewLedger()
			removed := NewLedger()
			for _, l := range []*Ledger{updated, removed} {
				l.AddItem(product("1", "$2.00"))
				l.AddItem(product("2", "$3.00"))
			}

			updated.UpdateQuantity("1", q)
			removed.RemoveItem("1")

			assert.Equal(t, removed.Lines(), updated.Lines(), "quantity %d", q)
		}
	})

	t.Run("only line updated to zero empties the cart", func(t *testing.T) {
		l := NewLedger()
		l.AddItem(product("1", "$2.00"))
		l.UpdateQuantity("1", 0)

		assert.True(t, l.IsEmpty())
		assert.Equal(t, 0, l.ItemCount())
	})

	t.Run("absent product is a no-op", func(t *testing.T) {
		l := NewLedger()
		l.AddItem(product("1", "$2.00"))
		l.UpdateQuantity("missing", 4)

		assert.Equal(t, 1, l.ItemCount())
	})
}

func TestLedger_RemoveAbsentIsNoop(t *testing.T) {
	l := NewLedger()
	l.AddItem(product("1", "$2.00"))
	before := l.Lines()

	l.RemoveItem("nope")
	l.RemoveItem("nope")

	assert.Equal(t, before, l.Lines())
}

func TestLedger_TotalUSD(t *testing.T) {
	t.Run("empty cart totals zero", func(t *testing.T) {
		l := NewLedger()
		assert.True(t, l.TotalUSD().IsZero())
		assert.True(t, money.Convert(l.TotalUSD(), money.USD).Equal(l.TotalUSD()))
	})

	t.Run("unparsable prices contribute zero", func(t *testing.T) {
		l := NewLedger()
		l.AddItem(product("1", "$10.00"))
		l.AddItem(product("2", "call us"))
		l.UpdateQuantity("2", 3)

		assert.True(t, l.TotalUSD().Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 4, l.ItemCount())
	})
}

func TestLedger_Clear(t *testing.T) {
	l := NewLedger()
	l.AddItem(product("1", "$2.00"))
	l.Clear()
	assert.True(t, l.IsEmpty())
	assert.Empty(t, l.Lines())
}

func TestLedger_LinesIsACopy(t *testing.T) {
	l := NewLedger()
	l.AddItem(product("1", "$2.00"))

	lines := l.Lines()
	lines[0].Quantity = 99

	line, _ := l.Line("1")
	assert.Equal(t, 1, line.Quantity)
}

func TestLedger_JSON(t *testing.T) {
	l := NewLedger()
	l.AddItem(product("1", "$9.99"))
	l.AddItem(product("2", "$8.49"))
	l.UpdateQuantity("2", 3)

	data, err := json.Marshal(l)
	require.NoError(t, err)

	restored := NewLedger()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, l.ItemCount(), restored.ItemCount())
	assert.True(t, l.TotalUSD().Equal(restored.TotalUSD()))

	t.Run("repairs invariants of a stored snapshot", func(t *testing.T) {
		raw := `[{"product_id":"1","price":"1","quantity":2},{"product_id":"2","price":"1","quantity":0},{"product_id":"1","price":"1","quantity":1}]`
		repaired := NewLedger()
		require.NoError(t, json.Unmarshal([]byte(raw), repaired))

		assert.Equal(t, 1, repaired.Len())
		assert.Equal(t, 3, repaired.ItemCount())
	})
}
