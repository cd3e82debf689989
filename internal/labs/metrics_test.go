package labs

import "testing"

func TestFlagFor(t *testing.T) {
	if got := FlagFor("hemoglobin", 11.5); got != FlagLow {
		t.Fatalf("expected low hemoglobin, got %s", got)
	}
	if got := FlagFor("hemoglobin", 13.0); got != FlagNormal {
		t.Fatalf("expected normal hemoglobin, got %s", got)
	}
	if got := FlagFor("triglycerides", 180); got != FlagHigh {
		t.Fatalf("expected high triglycerides, got %s", got)
	}
	if got := FlagFor("unknown_marker", 99); got != FlagNormal {
		t.Fatalf("unknown biomarkers default to normal, got %s", got)
	}
}

func TestNormalizeKeepsExplicitFlags(t *testing.T) {
	metrics := Normalize([]Metric{
		{Name: "Vitamin_D", Value: 45, Flag: FlagLow}, // extractor override wins
		{Name: "tsh", Value: 5.1},
		{Name: "ldl", Value: 80, Flag: FlagNormal},
	})

	if metrics[0].Name != "vitamin_d" || metrics[0].Flag != FlagLow {
		t.Fatalf("expected explicit low flag kept, got %+v", metrics[0])
	}
	if metrics[1].Flag != FlagHigh || metrics[1].Unit != "mIU/L" {
		t.Fatalf("expected derived high tsh with unit, got %+v", metrics[1])
	}
	if metrics[2].Flag != FlagNormal {
		t.Fatalf("expected in-range ldl to stay normal, got %+v", metrics[2])
	}
}
