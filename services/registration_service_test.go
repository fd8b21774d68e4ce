package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
)

func validInput() RegisterTeamInput {
	return RegisterTeamInput{
		TeamName:  "Night Owls",
		LeadName:  "Asha",
		LeadEmail: "asha@example.com",
		Lead: MemberInput{
			Name:               "Asha",
			RegistrationNumber: "22BCE0001",
			HostelBlock:        "Block A",
			Room:               "214",
		},
		Members: []MemberInput{
			{Name: "Ravi", RegistrationNumber: "22BCE0002", HostelBlock: "Block B", Room: "101"},
		},
		PaymentUPI:      "team@upi",
		PaymentTxnID:    "TXN123",
		PaymentProofKey: "payments/abc.png",
	}
}

func TestValidateRegisterInput(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*RegisterTeamInput)
		wantErr error
	}{
		{name: "valid", mutate: func(*RegisterTeamInput) {}},
		{
			name:    "missing team name",
			mutate:  func(in *RegisterTeamInput) { in.TeamName = "  " },
			wantErr: ErrTeamNameRequired,
		},
		{
			name:    "missing lead email",
			mutate:  func(in *RegisterTeamInput) { in.LeadEmail = "" },
			wantErr: ErrLeadEmailRequired,
		},
		{
			name:    "hostel resident without room",
			mutate:  func(in *RegisterTeamInput) { in.Members[0].Room = "" },
			wantErr: ErrRoomRequired,
		},
		{
			// Для Day's Scholar номер комнаты не требуется.
			name: "day scholar without room is fine",
			mutate: func(in *RegisterTeamInput) {
				in.Members[0].HostelBlock = models.DayScholar
				in.Members[0].Room = ""
			},
		},
		{
			name: "too many members",
			mutate: func(in *RegisterTeamInput) {
				for i := 0; i < MaxSquadMembers+1; i++ {
					in.Members = append(in.Members, MemberInput{
						Name:               "Extra",
						RegistrationNumber: "22BCE0100",
						HostelBlock:        models.DayScholar,
					})
				}
			},
			wantErr: ErrTooManyMembers,
		},
		{
			name:    "missing payment proof",
			mutate:  func(in *RegisterTeamInput) { in.PaymentProofKey = "" },
			wantErr: ErrPaymentProofRequired,
		},
		{
			name:    "member without registration number",
			mutate:  func(in *RegisterTeamInput) { in.Members[0].RegistrationNumber = "" },
			wantErr: ErrMemberFieldsRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			err := validateRegisterInput(input)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBuildStatus(t *testing.T) {
	openTime := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		settings   models.RegistrationSettings
		count      int
		wantClosed bool
	}{
		{name: "open below limit", settings: models.RegistrationSettings{Limit: 60, Version: 4}, count: 59, wantClosed: false},
		{name: "closed at limit", settings: models.RegistrationSettings{Limit: 60, Version: 5}, count: 60, wantClosed: true},
		{name: "closed over limit", settings: models.RegistrationSettings{Limit: 60}, count: 61, wantClosed: true},
		{name: "force closed wins", settings: models.RegistrationSettings{Limit: 60, ForceClosed: true}, count: 0, wantClosed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := buildStatus(&tc.settings, tc.count)
			if status.IsClosed != tc.wantClosed {
				t.Fatalf("want isClosed=%v, got %v", tc.wantClosed, status.IsClosed)
			}
			if status.Version != tc.settings.Version {
				t.Fatalf("version must be carried into the snapshot")
			}
			if status.Count != tc.count || status.Limit != tc.settings.Limit {
				t.Fatalf("snapshot must mirror count and limit")
			}
		})
	}

	t.Run("open time carried through", func(t *testing.T) {
		settings := models.RegistrationSettings{Limit: 60, OpenTime: &openTime}
		status := buildStatus(&settings, 0)
		if status.OpenTime == nil || !status.OpenTime.Equal(openTime) {
			t.Fatalf("open time must be carried into the snapshot")
		}
	})
}

func TestMemberToModel(t *testing.T) {
	member := memberToModel(MemberInput{
		Name:               "  Ravi  ",
		RegistrationNumber: " 22BCE0002 ",
		HostelBlock:        models.DayScholar,
		Room:               "  ",
	}, true)

	if member.Name != "Ravi" || member.RegistrationNumber != "22BCE0002" {
		t.Fatalf("fields must be trimmed: %+v", member)
	}
	if member.Room != nil {
		t.Fatalf("blank room must map to nil")
	}
	if !member.IsLead {
		t.Fatal("lead flag must be carried")
	}
}
