package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Balance is what has been paid against a sale and what is still owed.
type Balance struct {
	PaidTotal   decimal.Decimal `json:"paidTotal"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Settled reports whether nothing is owed. An overpaid sale counts as
// settled, not as a debt to refund.
func (b Balance) Settled() bool {
	return !b.Outstanding.IsPositive()
}

// CustomerStatus tells whether a customer still owes money.
type CustomerStatus string

const (
	StatusCurrent CustomerStatus = "current"
	StatusOwing   CustomerStatus = "owing"
)

// Customer is the per-buyer projection of the ledger.
type Customer struct {
	Name        string          `json:"name"`
	TotalSold   decimal.Decimal `json:"totalSold"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	SaleCount   int             `json:"saleCount"`
	Status      CustomerStatus  `json:"status"`
}

// Report is the ledger-wide summary.
type Report struct {
	TotalSold        decimal.Decimal `json:"totalSold"`
	TotalCollected   decimal.Decimal `json:"totalCollected"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	CustomerCount    int             `json:"customerCount"`
	SaleCount        int             `json:"saleCount"`
}

// SaleDetail is a sale with the payments made against it.
type SaleDetail struct {
	Sale        Sale            `json:"sale"`
	Payments    []Payment       `json:"payments"`
	PaidTotal   decimal.Decimal `json:"paidTotal"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Settled     bool            `json:"settled"`
}

// SaleBalance sums the payments referencing sale.
func SaleBalance(sale Sale, payments []Payment) Balance {
	paid := decimal.Zero
	for _, p := range payments {
		if p.SaleID == sale.ID {
			paid = paid.Add(p.PaidAmount)
		}
	}
	return Balance{
		PaidTotal:   paid,
		Outstanding: sale.TotalAmount.Sub(paid),
	}
}

// DescribeSale builds the detail view of sale from the full payment list.
func DescribeSale(sale Sale, payments []Payment) SaleDetail {
	own := []Payment{}
	for _, p := range payments {
		if p.SaleID == sale.ID {
			own = append(own, p)
		}
	}
	b := SaleBalance(sale, own)
	return SaleDetail{
		Sale:        sale,
		Payments:    own,
		PaidTotal:   b.PaidTotal,
		Outstanding: b.Outstanding,
		Settled:     b.Settled(),
	}
}

// CustomerSummary groups sales by exact buyer name and totals them, ordered
// by outstanding balance, highest first. Customers with equal balances keep
// the order in which they first appear. Payments whose sale no longer
// exists are not attributed to anyone.
func CustomerSummary(sales []Sale, payments []Payment) []Customer {
	customers := []Customer{}
	index := map[string]int{}
	buyerOf := make(map[int]string, len(sales))

	for _, sale := range sales {
		i, ok := index[sale.BuyerName]
		if !ok {
			i = len(customers)
			index[sale.BuyerName] = i
			customers = append(customers, Customer{
				Name:      sale.BuyerName,
				TotalSold: decimal.Zero,
				TotalPaid: decimal.Zero,
			})
		}
		customers[i].TotalSold = customers[i].TotalSold.Add(sale.TotalAmount)
		customers[i].SaleCount++
		buyerOf[sale.ID] = sale.BuyerName
	}

	for _, p := range payments {
		name, ok := buyerOf[p.SaleID]
		if !ok {
			continue
		}
		i := index[name]
		customers[i].TotalPaid = customers[i].TotalPaid.Add(p.PaidAmount)
	}

	for i := range customers {
		c := &customers[i]
		c.Outstanding = c.TotalSold.Sub(c.TotalPaid)
		c.Status = StatusOwing
		if !c.Outstanding.IsPositive() {
			c.Status = StatusCurrent
		}
	}

	sort.SliceStable(customers, func(a, b int) bool {
		return customers[a].Outstanding.GreaterThan(customers[b].Outstanding)
	})
	return customers
}

// GlobalReport totals the whole ledger. Unlike CustomerSummary, collected
// money includes payments whose sale no longer exists.
func GlobalReport(sales []Sale, payments []Payment) Report {
	r := Report{
		TotalSold:      decimal.Zero,
		TotalCollected: decimal.Zero,
		SaleCount:      len(sales),
	}
	buyers := map[string]struct{}{}
	for _, sale := range sales {
		r.TotalSold = r.TotalSold.Add(sale.TotalAmount)
		buyers[sale.BuyerName] = struct{}{}
	}
	for _, p := range payments {
		r.TotalCollected = r.TotalCollected.Add(p.PaidAmount)
	}
	r.TotalOutstanding = r.TotalSold.Sub(r.TotalCollected)
	r.CustomerCount = len(buyers)
	return r
}

// CustomerSales lists the sales of one buyer, matched exactly, with their
// payments and balances.
func CustomerSales(name string, sales []Sale, payments []Payment) []SaleDetail {
	details := []SaleDetail{}
	for _, sale := range sales {
		if sale.BuyerName == name {
			details = append(details, DescribeSale(sale, payments))
		}
	}
	return details
}

// SortByDateDesc returns a copy of sales, most recent sale date first.
func SortByDateDesc(sales []Sale) []Sale {
	out := make([]Sale, len(sales))
	copy(out, sales)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].SaleDate.After(out[b].SaleDate)
	})
	return out
}

// OrphanPayments returns the payments whose sale no longer exists.
func OrphanPayments(sales []Sale, payments []Payment) []Payment {
	known := make(map[int]struct{}, len(sales))
	for _, sale := range sales {
		known[sale.ID] = struct{}{}
	}
	orphans := []Payment{}
	for _, p := range payments {
		if _, ok := known[p.SaleID]; !ok {
			orphans = append(orphans, p)
		}
	}
	return orphans
}
