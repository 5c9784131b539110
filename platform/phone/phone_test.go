package phone

import "testing"

func TestClassify_DefaultSeedIsInvalid(t *testing.T) {
	result := Classify(DefaultSeed)

	if result.Possible {
		t.Fatalf("expected seed %q to be impossible, got possible", DefaultSeed)
	}
	if result.Valid {
		t.Fatalf("expected seed %q to be invalid, got valid", DefaultSeed)
	}
}

func TestClassify_NoCountrySignal(t *testing.T) {
	for _, raw := range []string{"", "   ", "5551234", "abc", "202-555-0123"} {
		result := Classify(raw)
		if result.Possible || result.Valid {
			t.Fatalf("expected %q to classify {false,false}, got %+v", raw, result)
		}
	}
}

func TestClassify_ValidNumber(t *testing.T) {
	result := Classify("+12025550123")

	if !result.Possible {
		t.Fatalf("expected +12025550123 to be possible")
	}
	if !result.Valid {
		t.Fatalf("expected +12025550123 to be valid")
	}
}

func TestClassify_PossibleButNotValid(t *testing.T) {
	// Right length for the NANP but an unassignable area code.
	result := Classify("+11234567890")

	if result.Valid {
		t.Fatalf("expected +11234567890 to be invalid")
	}
}

func TestFormatAsYouType_BestEffort(t *testing.T) {
	formatted := FormatAsYouType("+12025550123")
	if formatted == "" {
		t.Fatalf("expected a non-empty rendering")
	}

	if got := FormatAsYouType(""); got != "" {
		t.Fatalf("expected empty input to stay empty, got %q", got)
	}
}

func TestFormatAsYouType_FallsBackToRaw(t *testing.T) {
	// No formatting rule applies; the raw input must survive.
	raw := "not a number"
	if got := FormatAsYouType(raw); got == "" {
		t.Fatalf("expected best-effort output for %q, got empty", raw)
	}
}
