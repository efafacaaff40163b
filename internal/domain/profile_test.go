package domain

import "testing"

func TestConfidenceForSource(t *testing.T) {
	cases := []struct {
		source ProfileSource
		want   ConfidenceLevel
	}{
		{SourceInferredFromBusinessInfo, ConfidenceLow},
		{SourceAnalyzedFromSamples, ConfidenceMedium},
		{SourceAnalyzedFromSNS, ConfidenceHigh},
		{SourceUserEdited, ConfidenceHigh},
	}
	for _, tc := range cases {
		if got := ConfidenceForSource(tc.source); got != tc.want {
			t.Fatalf("%s: ожидали %s, получили %s", tc.source, tc.want, got)
		}
	}
}

func TestCoerceBusinessType(t *testing.T) {
	if got := CoerceBusinessType("food"); got != BusinessTypeFood {
		t.Fatalf("известный тип должен сохраняться, получили %q", got)
	}
	for _, unknown := range []string{"beauty", "", "FOOD", "ресторан"} {
		if got := CoerceBusinessType(unknown); got != BusinessTypeService {
			t.Fatalf("%q должен приводиться к service, получили %q", unknown, got)
		}
	}
}

func TestNewMediaInfoDerivesCount(t *testing.T) {
	if media := NewMediaInfo(MediaTypeImage, nil); media != nil {
		t.Fatalf("без вложений медиа отсутствует, получили %+v", media)
	}
	media := NewMediaInfo(MediaTypeImage, []string{"a", "b", "c"})
	if media == nil || media.Count != 3 || media.Count != len(media.URLs) {
		t.Fatalf("Count должен равняться len(URLs): %+v", media)
	}
}
