package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/tourism-portal/internal/model"
)

func TestAfterLogin(t *testing.T) {
	admin := model.Identity{ID: "a", IsAdmin: true, AccountType: model.AccountProvider}
	guide := model.Identity{ID: "g", AccountType: model.AccountProvider}
	tourist := model.Identity{ID: "t"}

	tests := []struct {
		name    string
		id      model.Identity
		pending string
		from    string
		want    string
	}{
		{"admin beats pending course", admin, "c1", "/explore", AdminDashboardPath},
		{"provider beats pending course", guide, "c1", "", ProviderHomePath},
		{"pending course beats from", tourist, "c1", "/explore", "/courses/c1"},
		{"from is honoured", tourist, "", "/booking/e1?participants=2", "/booking/e1?participants=2"},
		{"external from is ignored", tourist, "", "https://evil.example/x", HomePath},
		{"protocol-relative from is ignored", tourist, "", "//evil.example", HomePath},
		{"login loop is ignored", tourist, "", "/login?from=/x", HomePath},
		{"nothing goes home", tourist, "", "", HomePath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AfterLogin(tt.id, tt.pending, tt.from))
		})
	}
}

func TestAfterRegister(t *testing.T) {
	assert.Equal(t, ProviderHomePath, AfterRegister(model.Identity{AccountType: model.AccountProvider}))
	assert.Equal(t, HomePath, AfterRegister(model.Identity{AccountType: model.AccountTourist}))
	assert.Equal(t, HomePath, AfterRegister(model.Identity{IsAdmin: true}))
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/tourist/profile", LocalPath("/tourist/profile"))
	assert.Empty(t, LocalPath("tourist/profile"))
	assert.Empty(t, LocalPath("/\\evil.example"))
	assert.Empty(t, LocalPath("/register"))
}
