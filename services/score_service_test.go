package services

import (
	"errors"
	"testing"
)

func TestValidateReview(t *testing.T) {
	full := ReviewInput{
		Implementation: 15,
		Innovation:     10,
		UserExperience: 10,
		Impact:         10,
		Presentation:   10,
		Completion:     5,
	}

	cases := []struct {
		name    string
		mutate  func(*ReviewInput)
		wantErr bool
	}{
		{name: "all criteria at maximum", mutate: func(*ReviewInput) {}},
		{name: "all zeros", mutate: func(in *ReviewInput) { *in = ReviewInput{} }},
		{name: "implementation over max", mutate: func(in *ReviewInput) { in.Implementation = 16 }, wantErr: true},
		{name: "completion over max", mutate: func(in *ReviewInput) { in.Completion = 6 }, wantErr: true},
		{name: "negative mark", mutate: func(in *ReviewInput) { in.Impact = -1 }, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := full
			tc.mutate(&input)

			err := validateReview(input)
			if tc.wantErr && !errors.Is(err, ErrInvalidReviewMarks) {
				t.Fatalf("want ErrInvalidReviewMarks, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
