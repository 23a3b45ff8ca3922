package models

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co",
		"user+tag@example.org",
	}
	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
	}

	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestUserMerge(t *testing.T) {
	user := User{
		ID:      1,
		Name:    "Ana",
		Phone:   "555-0100",
		Address: "Old Street 1",
	}

	user.Merge(ProfileUpdate{Name: "Ana Maria", Birthday: "1990-04-01"})

	if user.Name != "Ana Maria" {
		t.Errorf("Name = %q, want %q", user.Name, "Ana Maria")
	}
	if user.Birthday != "1990-04-01" {
		t.Errorf("Birthday = %q, want %q", user.Birthday, "1990-04-01")
	}
	// Blank fields in the patch leave stored values alone.
	if user.Phone != "555-0100" {
		t.Errorf("Phone = %q, want unchanged", user.Phone)
	}
	if user.Address != "Old Street 1" {
		t.Errorf("Address = %q, want unchanged", user.Address)
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "supersecret"},
		},
		{
			name:    "missing name",
			req:     RegisterRequest{Email: "ana@example.com", Password: "supersecret"},
			wantErr: true,
		},
		{
			name:    "bad email",
			req:     RegisterRequest{Name: "Ana", Email: "not-an-email", Password: "supersecret"},
			wantErr: true,
		},
		{
			name:    "short password",
			req:     RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "short"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
