package auth

import "testing"

func TestPrincipal_Allows(t *testing.T) {
	tests := []struct {
		role     Role
		method   Method
		required Role
		want     bool
	}{
		{RoleWorker, MethodWorkerSecret, RoleWorker, true},
		{RoleWorker, MethodWorkerSecret, RoleAdmin, false},
		{RoleAdmin, MethodWorkerSecret, RoleWorker, true},
		{RoleAdmin, MethodBearerToken, RoleWorker, false},
		{RoleAdmin, MethodBearerToken, RoleAdmin, true},
		{RoleAdmin, MethodWorkerSecret, RoleAdmin, true},
		{RoleNone, MethodWorkerSecret, RoleWorker, false},
		{RoleAdmin, MethodBearerToken, RoleNone, false},
	}
	for _, tt := range tests {
		if got := (Principal{Role: tt.role, Method: tt.method}).Allows(tt.required); got != tt.want {
			t.Errorf("Principal{%q, %q}.Allows(%q) = %v, want %v", tt.role, tt.method, tt.required, got, tt.want)
		}
	}
}
