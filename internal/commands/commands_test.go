package commands

import "testing"

func TestParseRoomID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"3.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseRoomID(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRoomID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseRoomID(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  string
	}{
		{"matching", "hunter2", "hunter2", ""},
		{"mismatch", "hunter2", "hunter3", "passwords do not match"},
		{"empty password", "", "hunter2", "password cannot be empty"},
		{"empty confirmation", "hunter2", "", "password cannot be empty"},
		{"both empty", "", "", "password cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewPassword(tt.password, tt.confirm)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateNewPassword() error = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ValidateNewPassword() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
