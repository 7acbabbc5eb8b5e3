package invoices

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/gstbill/gstbill/internal/dataset"
)

// Search returns invoices whose customer name, number, phone or payment mode label
// contains query, ignoring case. A blank query returns list unchanged.
func Search(list []Invoice, query string) []Invoice {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]Invoice, 0, len(list))
	for _, inv := range list {
		fields := []string{
			inv.CustomerName,
			strconv.Itoa(inv.InvoiceNumber),
			inv.CustomerPhone,
			inv.PaymentMode.Label(),
		}
		for _, f := range fields {
			if strings.Contains(fold.String(f), q) {
				out = append(out, inv)
				break
			}
		}
	}
	return out
}

// Filter applies every set criterion and sorts the result newest first by createdAt.
func Filter(list []Invoice, c Criteria) []Invoice {
	out := make([]Invoice, 0, len(list))
	month := ""
	if isSet(c.Month) && isSet(c.Year) {
		month = padMonth(c.Month)
	}
	for _, inv := range list {
		if isSet(c.Status) && string(inv.Status) != c.Status {
			continue
		}
		if isSet(c.PaymentMode) && string(inv.PaymentMode) != c.PaymentMode {
			continue
		}
		if isSet(c.Customer) && inv.CustomerName != c.Customer {
			continue
		}
		if isSet(c.Year) && (inv.Date == "" || !strings.HasPrefix(inv.Date, c.Year)) {
			continue
		}
		if month != "" && (len(inv.Date) < 7 || inv.Date[5:7] != month) {
			continue
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "all"
}

func padMonth(m string) string {
	m = strings.TrimSpace(m)
	if n, err := strconv.Atoi(m); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	return m
}

// ComputeStats totals grand totals by status. Partially paid unpaid invoices are also
// counted under PartialCount with their outstanding balance.
func ComputeStats(list []Invoice) Stats {
	var (
		st      Stats
		revenue = decimal.Zero
		paid    = decimal.Zero
		unpaid  = decimal.Zero
		partial = decimal.Zero
	)
	for _, inv := range list {
		grand := decimal.NewFromFloat(inv.GrandTotal)
		revenue = revenue.Add(grand)
		st.InvoiceCount++
		switch inv.Status {
		case dataset.StatusPaid:
			st.PaidCount++
			paid = paid.Add(grand)
		case dataset.StatusUnpaid:
			st.UnpaidCount++
			unpaid = unpaid.Add(grand)
		}
		if DisplayState(inv) == "partial" {
			st.PartialCount++
			partial = partial.Add(decimal.NewFromFloat(inv.BalanceDue))
		}
	}
	st.TotalRevenue = revenue.InexactFloat64()
	st.PaidAmount = paid.InexactFloat64()
	st.UnpaidAmount = unpaid.InexactFloat64()
	st.PartialBalance = partial.InexactFloat64()
	return st
}
