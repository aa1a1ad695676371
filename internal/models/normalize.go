package models

import "strings"

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// Normalize trims the name. Passwords are never altered.
func (in *CreateUserInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in *LoginInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in *UpdateUserInput) Normalize() {
	in.Name = trimPtr(in.Name)
}

// Normalize trims title and description; a blank description becomes nil.
func (in *CreateTodoInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = trimPtr(in.Description)
	if in.Description != nil && *in.Description == "" {
		in.Description = nil
	}
}

// Normalize trims supplied fields. A supplied blank description stays as a
// pointer to "" so the update can tell "clear" apart from "not supplied".
func (in *UpdateTodoInput) Normalize() {
	in.Title = trimPtr(in.Title)
	in.Description = trimPtr(in.Description)
}
