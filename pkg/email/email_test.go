package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantLocal  string
		wantDomain string
		wantOK     bool
	}{
		{name: "plain address", address: "student@uni.edu", wantLocal: "student", wantDomain: "uni.edu", wantOK: true},
		{name: "empty address", address: "", wantOK: false},
		{name: "no at sign", address: "student.uni.edu", wantOK: false},
		{name: "two at signs", address: "weird@a@example.com", wantOK: false},
		{name: "empty domain", address: "student@", wantLocal: "student", wantDomain: "", wantOK: true},
		{name: "empty local part", address: "@uni.edu", wantLocal: "", wantDomain: "uni.edu", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, domain, ok := SplitAddress(tt.address)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLocal, local)
			assert.Equal(t, tt.wantDomain, domain)
		})
	}
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "EXAMPLE.COM", Domain("a@EXAMPLE.COM"))
	assert.Empty(t, Domain("a@b@example.com"))
}
