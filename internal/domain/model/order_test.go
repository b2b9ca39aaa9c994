package model

import "testing"

func TestOrderCompleted(t *testing.T) {
	order := &Order{Code: 1, Status: OrderStatusPending}
	if order.Completed() {
		t.Fatal("pending order reported completed")
	}
	order.Status = OrderStatusCompleted
	if !order.Completed() {
		t.Fatal("completed order reported pending")
	}
}
