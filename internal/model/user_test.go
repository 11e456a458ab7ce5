package model

import "testing"

func TestUserBuilder_RoundTrip(t *testing.T) {
	user := NewUserBuilder().
		UID("uid-123").
		Email("a@b.co").
		DisplayName("Alex").
		Goals([]string{"run 5k", "sleep more"}).
		Build()

	if user.UID != "uid-123" {
		t.Errorf("UID = %q, want %q", user.UID, "uid-123")
	}
	if user.Email != "a@b.co" {
		t.Errorf("Email = %q, want %q", user.Email, "a@b.co")
	}
	if user.DisplayName != "Alex" {
		t.Errorf("DisplayName = %q, want %q", user.DisplayName, "Alex")
	}
	if len(user.Goals) != 2 || user.Goals[0] != "run 5k" {
		t.Errorf("Goals = %v", user.Goals)
	}
}

func TestUserBuilder_Defaults(t *testing.T) {
	user := NewUserBuilder().Build()

	if user.UID != "" || user.Email != "" || user.DisplayName != "" {
		t.Errorf("expected empty strings, got %+v", user)
	}
	if user.Goals == nil {
		t.Error("Goals should default to an empty slice, not nil")
	}
	if len(user.Goals) != 0 {
		t.Errorf("Goals should be empty, got %v", user.Goals)
	}
	if user.Profile != nil {
		t.Error("Profile should default to nil")
	}
}

func TestUserBuilder_NilGoalsNormalized(t *testing.T) {
	user := NewUserBuilder().UID("u").Goals(nil).Build()

	if user.Goals == nil {
		t.Error("nil goals input should be normalized to an empty slice")
	}
}

func TestUserBuilder_Profile(t *testing.T) {
	profile := &UserProfile{Age: 30, Gender: "f", HeightCm: 170, WeightKg: 60.5, FitnessLevel: "intermediate"}
	user := NewUserBuilder().UID("u").Profile(profile).Build()

	if user.Profile == nil || user.Profile.Age != 30 || user.Profile.WeightKg != 60.5 {
		t.Errorf("Profile = %+v", user.Profile)
	}
}
