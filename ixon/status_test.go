package ixon

import (
	"strings"
	"testing"
)

func TestErrorBeneignCodes(t *testing.T) {
	if err := Error(CodeSuccess); err != nil {
		t.Errorf("DRV_SUCCESS decoded to %v", err)
	}
	if err := Error(uint(StatusIdle)); err != nil {
		t.Errorf("IDLE decoded to %v", err)
	}
}

func TestErrorPrintsSymbol(t *testing.T) {
	err := Error(20013)
	if err == nil {
		t.Fatal("DRV_ERROR_ACK decoded to nil")
	}
	if !strings.Contains(err.Error(), "DRV_ERROR_ACK") {
		t.Errorf("error does not carry the symbolic name: %v", err)
	}
	if !strings.Contains(err.Error(), "20013") {
		t.Errorf("error does not carry the code: %v", err)
	}
}

func TestErrorUnknownCode(t *testing.T) {
	err := Error(99999)
	if err == nil {
		t.Fatal("unknown code decoded to nil")
	}
	if !strings.Contains(err.Error(), "UNKNOWN_ERROR_CODE") {
		t.Errorf("unknown code not flagged: %v", err)
	}
}

func TestBeneignThermal(t *testing.T) {
	cases := []struct {
		code uint
		want bool
	}{
		{20034, true}, // DRV_TEMPERATURE_OFF
		{20036, true}, // DRV_TEMPERATURE_STABILIZED
		{20037, true}, // DRV_TEMPERATURE_NOT_REACHED
		{20040, true}, // DRV_TEMPERATURE_DRIFT
		{20013, false},
		{20033, false},
		{20041, false},
	}
	for _, tc := range cases {
		if got := BeneignThermal(Error(tc.code)); got != tc.want {
			t.Errorf("BeneignThermal(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
	if !BeneignThermal(nil) {
		t.Error("nil is not beneign")
	}
}

func TestEnumRejectsUnknownKey(t *testing.T) {
	if _, ok := ReadoutMode["NotAMode"]; ok {
		t.Error("bogus key resolved")
	}
	names := TriggerMode.Names()
	if len(names) != len(TriggerMode) {
		t.Errorf("Names returned %d entries, want %d", len(names), len(TriggerMode))
	}
}
