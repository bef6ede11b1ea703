package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckoutFlow(t *testing.T) {
	e := newEnv()
	intentHandler := NewCheckoutIntentHandler(e.checkout, nil)
	confirmHandler := NewCheckoutConfirmHandler(e.checkout, nil)

	rec := httptest.NewRecorder()
	intentHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/intent",
		jsonBody(t, CheckoutIntentRequest{
			ServiceID:    e.service.ID,
			StartsAt:     futureStart(10, 0),
			StaffID:      e.staff.ID,
			CustomerName: "Sam",
		})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("intent: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var intent CheckoutIntentResponse
	decodeJSON(t, rec, &intent)
	if intent.PaymentIntentID == "" || intent.Status != "requires_payment" {
		t.Fatalf("unexpected intent response: %+v", intent)
	}
	if intent.AmountCents != 3500 {
		t.Errorf("expected amount from catalog, got %d", intent.AmountCents)
	}

	rec = httptest.NewRecorder()
	confirmHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/confirm",
		jsonBody(t, CheckoutConfirmRequest{PaymentIntentID: intent.PaymentIntentID})))
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var confirm CheckoutConfirmResponse
	decodeJSON(t, rec, &confirm)
	if confirm.BookingID == "" || confirm.Status != "paid" {
		t.Fatalf("unexpected confirm response: %+v", confirm)
	}

	// confirming again returns the same booking
	rec = httptest.NewRecorder()
	confirmHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/confirm",
		jsonBody(t, CheckoutConfirmRequest{PaymentIntentID: intent.PaymentIntentID})))
	if rec.Code != http.StatusOK {
		t.Fatalf("re-confirm: expected 200, got %d", rec.Code)
	}
	var again CheckoutConfirmResponse
	decodeJSON(t, rec, &again)
	if again.BookingID != confirm.BookingID {
		t.Fatalf("expected the same booking id, got %s and %s", confirm.BookingID, again.BookingID)
	}
}

func TestCheckoutConfirmOverlapConflict(t *testing.T) {
	e := newEnv()
	intentHandler := NewCheckoutIntentHandler(e.checkout, nil)
	confirmHandler := NewCheckoutConfirmHandler(e.checkout, nil)

	newIntent := func() string {
		rec := httptest.NewRecorder()
		intentHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/intent",
			jsonBody(t, CheckoutIntentRequest{
				ServiceID: e.service.ID, StartsAt: futureStart(10, 0), StaffID: e.staff.ID,
			})))
		if rec.Code != http.StatusCreated {
			t.Fatalf("intent: expected 201, got %d", rec.Code)
		}
		var intent CheckoutIntentResponse
		decodeJSON(t, rec, &intent)
		return intent.PaymentIntentID
	}

	first, second := newIntent(), newIntent()

	rec := httptest.NewRecorder()
	confirmHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/confirm",
		jsonBody(t, CheckoutConfirmRequest{PaymentIntentID: first})))
	if rec.Code != http.StatusOK {
		t.Fatalf("first confirm: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	confirmHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/confirm",
		jsonBody(t, CheckoutConfirmRequest{PaymentIntentID: second})))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second confirm: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var errResp errorResponse
	decodeJSON(t, rec, &errResp)
	if errResp.Code != "overlap" {
		t.Errorf("expected overlap code, got %q", errResp.Code)
	}
}

func TestCheckoutIntentBadRequests(t *testing.T) {
	e := newEnv()
	intentHandler := NewCheckoutIntentHandler(e.checkout, nil)
	confirmHandler := NewCheckoutConfirmHandler(e.checkout, nil)

	rec := httptest.NewRecorder()
	intentHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/intent",
		jsonBody(t, CheckoutIntentRequest{StartsAt: futureStart(10, 0)})))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing service: expected 422, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	confirmHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/confirm",
		jsonBody(t, CheckoutConfirmRequest{})))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing intent id: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	confirmHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout/confirm",
		jsonBody(t, CheckoutConfirmRequest{PaymentIntentID: "missing"})))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown intent: expected 404, got %d", rec.Code)
	}
}
