package acceptance

import (
	"net/http"
	"testing"
)

type profileReply struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	VehiclePlate  string `json:"vehiclePlate"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
}

func TestProfileCreatedOnFirstAccess(t *testing.T) {
	ts := NewTestServer(t)

	w := ts.GET("/me", asUser("user-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var p profileReply
	decode(t, w, &p)
	if p.Email != "" || p.LoyaltyPoints != 0 {
		t.Errorf("expected an empty new profile, got %+v", p)
	}
}

func TestUpdateProfile(t *testing.T) {
	ts := NewTestServer(t)
	headers := asUser("user-1")

	w := ts.PUT("/me", map[string]interface{}{
		"email":        "driver@example.com",
		"name":         "Test Driver",
		"vehiclePlate": "DL 8C 1234",
	}, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var p profileReply
	decode(t, w, &p)
	if p.Email != "driver@example.com" || p.Name != "Test Driver" || p.VehiclePlate != "DL 8C 1234" {
		t.Errorf("profile not updated: %+v", p)
	}

	w = ts.GET("/me", headers)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	decode(t, w, &p)
	if p.Name != "Test Driver" {
		t.Errorf("expected persisted profile, got %+v", p)
	}
}

func TestCheckOutCreditsLoyaltyPoints(t *testing.T) {
	ts := NewTestServer(t)
	headers := asUser("user-1")

	// No prior /me call: the customer record is created on credit.
	b := createParkingBooking(t, ts, "user-1")

	if w := ts.POST("/bookings/"+b.ID+"/checkin", nil, headers); w.Code != http.StatusOK {
		t.Fatalf("checkin: expected 200, got %d", w.Code)
	}
	if w := ts.POST("/bookings/"+b.ID+"/checkout", nil, headers); w.Code != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d", w.Code)
	}

	w := ts.GET("/me", headers)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p profileReply
	decode(t, w, &p)
	// One point per currency unit of the completed booking.
	if p.LoyaltyPoints != 120 {
		t.Errorf("expected 120 loyalty points, got %d", p.LoyaltyPoints)
	}
}
