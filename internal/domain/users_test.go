package domain_test

import (
	"testing"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestUserInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      domain.UserInput
		create  bool
		wantMsg string
	}{
		{"missing fields", domain.UserInput{Email: "a@b.c"}, true, "Campos obrigatórios: email, password, name, role."},
		{"short password", domain.UserInput{Email: "a@b.c", Password: "123", Name: "A", Role: domain.RoleGestor}, true, "Senha deve ter ao menos 8 caracteres."},
		{"associado without workspace", domain.UserInput{Email: "a@b.c", Password: "12345678", Name: "A", Role: domain.RoleAssociado}, true, "Associado precisa ter ao menos uma área vinculada."},
		{"default outside list", domain.UserInput{Email: "a@b.c", Password: "12345678", Name: "A", Role: domain.RoleAssociado, WorkspaceIDs: []string{"w1"}, DefaultWorkspaceID: "w2"}, true, "Área padrão deve existir nas áreas vinculadas."},
		{"update without password", domain.UserInput{Email: "a@b.c", Name: "A", Role: domain.RoleGestor}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate(tt.create)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestUserInput_Normalize(t *testing.T) {
	in := domain.UserInput{Email: "  Ana@LexFlow.App ", WorkspaceIDs: []string{"w1", " w1", "", "w2"}}
	in.Normalize()
	assert.Equal(t, "ana@lexflow.app", in.Email)
	assert.Equal(t, []string{"w1", "w2"}, in.WorkspaceIDs)
}

func TestMembershipDiff(t *testing.T) {
	remove, add := domain.MembershipDiff([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"a"}, remove)
	assert.Equal(t, []string{"c"}, add)
}
