package qr

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Payload{
		RestaurantID: "rest-001",
		TableID:      "tbl-42",
		TableNumber:  "T07",
	}

	raw, err := Encode("https://dinetap.app", in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(raw, "/menu/rest-001") {
		t.Errorf("encoded URL missing menu path: %s", raw)
	}

	out, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}

func TestEncodeBaseWithTrailingSlash(t *testing.T) {
	raw, err := Encode("https://dinetap.app/", Payload{
		RestaurantID: "rest-001",
		TableID:      "tbl-1",
		TableNumber:  "T01",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(raw, "//menu") {
		t.Errorf("double slash in path: %s", raw)
	}
}

func TestEncodeRejectsMissingFields(t *testing.T) {
	cases := []Payload{
		{TableID: "tbl-1", TableNumber: "T01"},
		{RestaurantID: "rest-001", TableNumber: "T01"},
		{RestaurantID: "rest-001", TableID: "tbl-1"},
	}
	for _, p := range cases {
		if _, err := Encode("https://dinetap.app", p); err == nil {
			t.Errorf("Encode accepted incomplete payload %+v", p)
		}
	}
}

func TestEncodeRejectsRelativeBase(t *testing.T) {
	_, err := Encode("/menu", Payload{RestaurantID: "r", TableID: "t", TableNumber: "1"})
	if err == nil {
		t.Fatal("Encode accepted a relative base URL")
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	cases := []string{
		"not a url",
		"",
		"https://dinetap.app/",
		"https://dinetap.app/menu",
		"https://dinetap.app/orders/rest-001?table=T07&tableId=tbl-42",
		"https://dinetap.app/menu/rest-001",
		"https://dinetap.app/menu/rest-001?table=T07",
		"https://dinetap.app/menu/rest-001?tableId=tbl-42",
		"/menu/rest-001?table=T07&tableId=tbl-42",
	}
	for _, raw := range cases {
		p, err := Decode(raw)
		if err == nil {
			t.Errorf("Decode(%q) succeeded, want ErrParse", raw)
		}
		if p != (Payload{}) {
			t.Errorf("Decode(%q) returned a partial payload %+v", raw, p)
		}
	}
}

func TestDecodeIgnoresExtraQueryParams(t *testing.T) {
	p, err := Decode("https://dinetap.app/menu/rest-001?table=T07&tableId=tbl-42&utm_source=qr")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.RestaurantID != "rest-001" || p.TableID != "tbl-42" || p.TableNumber != "T07" {
		t.Errorf("unexpected payload: %+v", p)
	}
}
