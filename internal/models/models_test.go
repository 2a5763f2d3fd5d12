package models

import "testing"

func TestModelFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "gemini-2.5-flash", want: Model25Flash.Name},
		{name: "fast", want: Model25Flash.Name},
		{name: "gemini-3.0-pro", want: Model30Pro.Name},
		{name: "pro", want: Model30Pro.Name},
		{name: "nonexistent-model", want: ModelUnspecified.Name},
		{name: "", want: ModelUnspecified.Name},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModelFromName(tt.name); got.Name != tt.want {
				t.Errorf("ModelFromName(%q) = %q, want %q", tt.name, got.Name, tt.want)
			}
		})
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", got)
	}
	if got := RoleModel.DisplayName(); got != "Gemini" {
		t.Errorf("RoleModel.DisplayName() = %q", got)
	}
}

func TestMessageConstructors(t *testing.T) {
	user := NewUserMessage("hello")
	if user.Role != RoleUser || user.Text != "hello" || user.Streaming {
		t.Errorf("NewUserMessage() = %+v", user)
	}

	reply := NewModelMessage("hi")
	if reply.Role != RoleModel || reply.Text != "hi" || reply.Streaming {
		t.Errorf("NewModelMessage() = %+v", reply)
	}

	placeholder := NewPlaceholder()
	if placeholder.Role != RoleModel || placeholder.Text != "" || !placeholder.Streaming {
		t.Errorf("NewPlaceholder() = %+v", placeholder)
	}

	if user.ID == reply.ID || reply.ID == placeholder.ID || user.ID == placeholder.ID {
		t.Error("constructors produced duplicate ids")
	}
}

func TestModelOutputAccessors(t *testing.T) {
	output := &ModelOutput{
		Candidates: []Candidate{
			{RCID: "rc_1", Text: "first"},
			{RCID: "rc_2", Text: "second", Thoughts: "thinking"},
		},
		Chosen: 1,
	}

	if output.Text() != "second" {
		t.Errorf("Text() = %q", output.Text())
	}
	if output.RCID() != "rc_2" {
		t.Errorf("RCID() = %q", output.RCID())
	}
	if output.Thoughts() != "thinking" {
		t.Errorf("Thoughts() = %q", output.Thoughts())
	}

	empty := &ModelOutput{}
	if empty.Text() != "" || empty.RCID() != "" || empty.Thoughts() != "" {
		t.Error("empty output accessors must return empty strings")
	}

	outOfRange := &ModelOutput{Candidates: []Candidate{{RCID: "rc_1", Text: "only"}}, Chosen: 5}
	if outOfRange.Text() != "only" {
		t.Errorf("out-of-range Chosen fell through: %q", outOfRange.Text())
	}
}
