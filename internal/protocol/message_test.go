package protocol

import "testing"

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"subscribe","phoneNumberId":"P1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != TypeSubscribe || msg.PhoneNumberID != "P1" {
		t.Fatalf("unexpected decode result: %+v", msg)
	}

	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed frame")
	}
}
