package validate

import (
	"errors"
	"testing"
)

func TestValidateLogin(t *testing.T) {
	v := New()
	tests := []struct {
		name string
		form LoginForm
		want Errors
	}{
		{"valid", LoginForm{Email: "a@b.com", Password: "whateverpw"}, nil},
		{"empty", LoginForm{}, Errors{"email": "Email is required", "password": "Password is required"}},
		{"bad email", LoginForm{Email: "nope", Password: "whateverpw"}, Errors{"email": "Invalid email address"}},
		{"short password", LoginForm{Email: "a@b.com", Password: "short"}, Errors{"password": "Password must be at least 8 characters"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var got Errors
			if !errors.As(err, &got) {
				t.Fatalf("expected Errors, got %T %v", err, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for field, msg := range tt.want {
				if got[field] != msg {
					t.Errorf("%s: got %q, want %q", field, got[field], msg)
				}
			}
		})
	}
}

func TestValidateRegister(t *testing.T) {
	v := New()
	valid := RegisterForm{Name: "Ada", Email: "ada@b.com", Password: "Secret12!", ConfirmPassword: "Secret12!"}
	if err := v.Validate(valid); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		field  string
		want   string
	}{
		{"short name", func(f *RegisterForm) { f.Name = "A" }, "name", "Name is too short"},
		{"no number", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "Secretss!", "Secretss!" }, "password", "Password must contain at least one number"},
		{"no upper", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "secret12!", "secret12!" }, "password", "Password must contain at least one uppercase letter"},
		{"no lower", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "SECRET12!", "SECRET12!" }, "password", "Password must contain at least one lowercase letter"},
		{"no special", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "Secret123", "Secret123" }, "password", "Password must contain at least one special character"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "Secret12?" }, "confirmPassword", "Passwords must match"},
		{"confirm missing", func(f *RegisterForm) { f.ConfirmPassword = "" }, "confirmPassword", "Confirm password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			var got Errors
			if !errors.As(v.Validate(form), &got) {
				t.Fatal("expected Errors")
			}
			if got[tt.field] != tt.want {
				t.Errorf("got %q, want %q (all: %v)", got[tt.field], tt.want, got)
			}
		})
	}
}

func TestErrorsString(t *testing.T) {
	e := Errors{"password": "p", "email": "e"}
	if got := e.Error(); got != "e; p" {
		t.Errorf("got %q", got)
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		label    string
	}{
		{"", 0, "Weak"},
		{"a", 1, "Weak"},
		{"abcdefgh", 2, "Medium"},
		{"Abcdefgh", 3, "Medium"},
		{"Abcdefg1", 4, "Strong"},
		{"Abcdefg1!", 5, "Strong"},
		{"Abcdefghij1!", 6, "Strong"},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := PasswordStrength(tt.password)
			if got != tt.score {
				t.Errorf("PasswordStrength(%q) = %d, want %d", tt.password, got, tt.score)
			}
			if l := StrengthLabel(got); l != tt.label {
				t.Errorf("StrengthLabel(%d) = %q, want %q", got, l, tt.label)
			}
		})
	}
}
