package sales

import (
	"testing"

	"api_fiado/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestKVStorage_CreateAndListSales(t *testing.T) {
	st, _ := newTestStorage(t)

	assert.Empty(t, st.ListSales(), "Expected a fresh store to have no sales")

	first := mustCreateSale(t, st, "Ana", "50.00")
	second := mustCreateSale(t, st, "Bea", "10.00")

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)

	sales := st.ListSales()
	require.Len(t, sales, 2)
	assert.Equal(t, first.ID, sales[0].ID)
	assert.Equal(t, "Ana", sales[0].BuyerName)
	assertAmount(t, "50.00", sales[0].TotalAmount)
	assert.Equal(t, day("2024-01-01"), sales[0].SaleDate)
}

func TestKVStorage_SharedIDSpace(t *testing.T) {
	st, _ := newTestStorage(t)

	sale := mustCreateSale(t, st, "Ana", "50")
	payment := mustCreatePayment(t, st, sale.ID, "10")
	other := mustCreateSale(t, st, "Bea", "20")

	assert.Equal(t, []int{1, 2, 3}, []int{sale.ID, payment.ID, other.ID})
}

func TestKVStorage_IgnoresCallerID(t *testing.T) {
	st, _ := newTestStorage(t)

	sale, err := st.CreateSale(Sale{ID: 99, BuyerName: "Ana", ItemQuantity: 1, TotalAmount: dec("5"), SaleDate: day("2024-01-01")})
	require.NoError(t, err)
	assert.Equal(t, 1, sale.ID)
}

func TestKVStorage_BlobLayout(t *testing.T) {
	st, mem := newTestStorage(t)

	sale := mustCreateSale(t, st, "Ana", "50.5")
	mustCreatePayment(t, st, sale.ID, "20")

	raw, ok, _ := mem.Get("sales")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1,"buyerName":"Ana","itemQuantity":1,"totalAmount":50.5,"saleDate":"2024-01-01"}]`, raw)

	raw, ok, _ = mem.Get("payments")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":2,"saleId":1,"paidAmount":20,"paymentDate":"2024-01-15"}]`, raw)

	raw, _, _ = mem.Get("nextId")
	assert.Equal(t, "3", raw)
}

func TestKVStorage_MalformedBlobReadsAsEmpty(t *testing.T) {
	st, mem := newTestStorage(t)
	require.NoError(t, mem.Set("sales", "{not json"))
	require.NoError(t, mem.Set("payments", `[{"id":"x"}]`))

	assert.NotNil(t, st.ListSales())
	assert.Empty(t, st.ListSales())
	assert.Empty(t, st.ListPayments())
}

func TestKVStorage_UnreadableSubstrate(t *testing.T) {
	f := &failingSubstrate{Memory: kv.NewMemory()}
	st := NewKVStorage(f, zaptest.NewLogger(t))
	mustCreateSale(t, st, "Ana", "50")

	f.failGet = true
	assert.Empty(t, st.ListSales(), "Expected list to degrade to empty")

	_, err := st.CreateSale(Sale{BuyerName: "Bea", ItemQuantity: 1, TotalAmount: dec("5"), SaleDate: day("2024-01-01")})
	assert.Error(t, err, "Expected mutation to refuse an unreadable substrate")

	f.failGet = false
	assert.Len(t, st.ListSales(), 1, "Expected stored data to be left intact")
}

func TestKVStorage_WriteFailurePropagates(t *testing.T) {
	f := &failingSubstrate{Memory: kv.NewMemory()}
	st := NewKVStorage(f, zaptest.NewLogger(t))
	sale := mustCreateSale(t, st, "Ana", "50")

	f.failSet = true
	_, err := st.CreateSale(Sale{BuyerName: "Bea", ItemQuantity: 1, TotalAmount: dec("5"), SaleDate: day("2024-01-01")})
	assert.ErrorIs(t, err, errDiskFull)

	err = st.DeleteSale(sale.ID)
	assert.ErrorIs(t, err, errDiskFull)

	f.failSet = false
	assert.Len(t, st.ListSales(), 1)
}

func TestKVStorage_UpdateSale(t *testing.T) {
	st, _ := newTestStorage(t)
	sale := mustCreateSale(t, st, "Ana", "50")

	name := "Ana Maria"
	total := dec("60")
	updated, err := st.UpdateSale(sale.ID, SalePatch{BuyerName: &name, TotalAmount: &total})
	require.NoError(t, err)

	assert.Equal(t, sale.ID, updated.ID)
	assert.Equal(t, "Ana Maria", updated.BuyerName)
	assert.Equal(t, 1, updated.ItemQuantity, "Expected untouched fields to be kept")
	assertAmount(t, "60", updated.TotalAmount)
	assert.Equal(t, updated, st.ListSales()[0])
}

func TestKVStorage_UpdateSale_NotFound(t *testing.T) {
	st, _ := newTestStorage(t)

	_, err := st.UpdateSale(7, SalePatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKVStorage_DeleteSaleCascades(t *testing.T) {
	st, _ := newTestStorage(t)
	ana := mustCreateSale(t, st, "Ana", "50")
	bea := mustCreateSale(t, st, "Bea", "20")
	mustCreatePayment(t, st, ana.ID, "10")
	mustCreatePayment(t, st, ana.ID, "5")
	kept := mustCreatePayment(t, st, bea.ID, "5")

	require.NoError(t, st.DeleteSale(ana.ID))

	sales := st.ListSales()
	require.Len(t, sales, 1)
	assert.Equal(t, bea.ID, sales[0].ID)

	payments := st.ListPayments()
	require.Len(t, payments, 1)
	assert.Equal(t, kept.ID, payments[0].ID)
	for _, p := range payments {
		assert.NotEqual(t, ana.ID, p.SaleID)
	}
}

func TestKVStorage_DeleteSaleIsIdempotent(t *testing.T) {
	st, mem := newTestStorage(t)
	sale := mustCreateSale(t, st, "Ana", "50")
	mustCreateSale(t, st, "Bea", "20")
	mustCreatePayment(t, st, sale.ID, "10")

	require.NoError(t, st.DeleteSale(sale.ID))
	salesOnce, _, _ := mem.Get("sales")
	paymentsOnce, _, _ := mem.Get("payments")

	require.NoError(t, st.DeleteSale(sale.ID))
	salesTwice, _, _ := mem.Get("sales")
	paymentsTwice, _, _ := mem.Get("payments")

	assert.Equal(t, salesOnce, salesTwice)
	assert.Equal(t, paymentsOnce, paymentsTwice)
}

func TestKVStorage_DeleteSaleRemovesOrphans(t *testing.T) {
	st, _ := newTestStorage(t)
	mustCreatePayment(t, st, 40, "10")

	require.NoError(t, st.DeleteSale(40))
	assert.Empty(t, st.ListPayments())
}

func TestKVStorage_DeletePayment(t *testing.T) {
	st, _ := newTestStorage(t)
	sale := mustCreateSale(t, st, "Ana", "50")
	p1 := mustCreatePayment(t, st, sale.ID, "10")
	p2 := mustCreatePayment(t, st, sale.ID, "5")

	require.NoError(t, st.DeletePayment(p1.ID))
	require.NoError(t, st.DeletePayment(1234), "Expected unknown id to be a no-op")

	payments := st.ListPayments()
	require.Len(t, payments, 1)
	assert.Equal(t, p2.ID, payments[0].ID)
}

func TestKVStorage_IDsNeverReused(t *testing.T) {
	st, _ := newTestStorage(t)
	sale := mustCreateSale(t, st, "Ana", "50")
	require.NoError(t, st.DeleteSale(sale.ID))

	next := mustCreateSale(t, st, "Bea", "20")
	assert.Greater(t, next.ID, sale.ID)
}

func TestKVStorage_LostCounterResumesAboveRecords(t *testing.T) {
	st, mem := newTestStorage(t)
	mustCreateSale(t, st, "Ana", "50")
	mustCreateSale(t, st, "Bea", "20")
	require.NoError(t, mem.Set("nextId", "garbage"))

	sale := mustCreateSale(t, st, "Cid", "10")
	assert.Equal(t, 3, sale.ID)
}

func TestKVStorage_PrefixedSubstrates(t *testing.T) {
	mem := kv.NewMemory()
	shopA := NewKVStorage(kv.WithPrefix(mem, "a:"), zaptest.NewLogger(t))
	shopB := NewKVStorage(kv.WithPrefix(mem, "b:"), zaptest.NewLogger(t))

	mustCreateSale(t, shopA, "Ana", "50")

	assert.Len(t, shopA.ListSales(), 1)
	assert.Empty(t, shopB.ListSales())
	assert.Equal(t, 1, mustCreateSale(t, shopB, "Bea", "5").ID)
}

func TestKVStorage_ReadsQuotedAmounts(t *testing.T) {
	st, mem := newTestStorage(t)
	require.NoError(t, mem.Set("sales", `[{"id":1,"buyerName":"Ana","itemQuantity":1,"totalAmount":"50.5","saleDate":"2024-01-01"}]`))
	require.NoError(t, mem.Set("payments", `[{"id":2,"saleId":1,"paidAmount":"20","paymentDate":"2024-01-15"}]`))

	got := st.ListSales()
	require.Len(t, got, 1)
	assertAmount(t, "50.5", got[0].TotalAmount)
	require.Len(t, st.ListPayments(), 1)
	assertAmount(t, "20", st.ListPayments()[0].PaidAmount)
}
