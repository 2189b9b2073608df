package domain

import "testing"

func TestSummarize(t *testing.T) {
	orders := []*Order{
		{Status: StatusShipped},
		{Status: StatusPendingApproval},
		{Status: StatusDelivered},
		{Status: "pending approval"},
		{Status: "SHIPPED"},
	}
	got := Summarize(orders)
	want := DashboardStats{Total: 5, Pending: 2, Shipped: 2}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil); got != (DashboardStats{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
}
