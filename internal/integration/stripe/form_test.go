package stripe

import (
	"testing"
)

func TestFlattenFormPreservesOrder(t *testing.T) {
	type customerUpdate struct {
		Address string `form:"address"`
	}
	type params struct {
		LineItems      []SessionLineItemParams `form:"line_items"`
		CustomerUpdate customerUpdate          `form:"customer_update"`
	}

	encoded := EncodeForm(FlattenForm(params{
		LineItems: []SessionLineItemParams{
			{Price: "p1", Quantity: 2},
		},
		CustomerUpdate: customerUpdate{Address: "auto"},
	}))

	want := "line_items%5B0%5D%5Bprice%5D=p1&line_items%5B0%5D%5Bquantity%5D=2&customer_update%5Baddress%5D=auto"
	if encoded != want {
		t.Fatalf("unexpected encoding:\n got: %s\nwant: %s", encoded, want)
	}
}

func TestFlattenFormCheckoutSessionParams(t *testing.T) {
	values := FlattenForm(CheckoutSessionParams{
		Customer: "cus_123",
		Mode:     "payment",
		LineItems: []SessionLineItemParams{
			{Price: "price_1", Quantity: 1},
			{Price: "price_2", Quantity: 3},
		},
		BillingAddressCollection: "required",
		AllowPromotionCodes:      true,
		SuccessURL:               "https://shop.example/success",
		CancelURL:                "https://shop.example/cancel",
	})

	want := []FormValue{
		{"customer", "cus_123"},
		{"mode", "payment"},
		{"line_items[0][price]", "price_1"},
		{"line_items[0][quantity]", "1"},
		{"line_items[1][price]", "price_2"},
		{"line_items[1][quantity]", "3"},
		{"billing_address_collection", "required"},
		{"allow_promotion_codes", "true"},
		{"success_url", "https://shop.example/success"},
		{"cancel_url", "https://shop.example/cancel"},
	}

	if len(values) != len(want) {
		t.Fatalf("expected %d pairs, got %d: %v", len(want), len(values), values)
	}
	for i, fv := range values {
		if fv != want[i] {
			t.Errorf("pair %d: got %v, want %v", i, fv, want[i])
		}
	}
}

func TestFlattenFormOmitEmpty(t *testing.T) {
	type params struct {
		Name  string `form:"name"`
		Email string `form:"email,omitempty"`
	}

	values := FlattenForm(params{Name: "test"})

	if len(values) != 1 {
		t.Fatalf("expected 1 pair, got %d: %v", len(values), values)
	}
	if values[0].Key != "name" || values[0].Value != "test" {
		t.Errorf("unexpected pair: %v", values[0])
	}
}

func TestFlattenFormSortsMapKeys(t *testing.T) {
	values := FlattenForm(map[string]string{
		"zebra": "z",
		"alpha": "a",
		"mango": "m",
	})

	wantKeys := []string{"alpha", "mango", "zebra"}
	for i, fv := range values {
		if fv.Key != wantKeys[i] {
			t.Errorf("key %d: got %q, want %q", i, fv.Key, wantKeys[i])
		}
	}
}
