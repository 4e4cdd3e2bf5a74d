package domain

import (
	"testing"

	"github.com/smallbiznis/invoicedesk/internal/postal"
	"github.com/stretchr/testify/assert"
)

func TestResolveBusinessInfo_NamePrecedence(t *testing.T) {
	profile := &CompanyProfile{CompanyName: "Acme"}
	settings := &InvoiceSettings{BusinessName: "Old Co"}

	assert.Equal(t, "Acme", ResolveBusinessInfo(profile, settings).Name)
	assert.Equal(t, "Old Co", ResolveBusinessInfo(nil, settings).Name)
	assert.Equal(t, "", ResolveBusinessInfo(nil, nil).Name)
	assert.Equal(t, BusinessInfo{}, ResolveBusinessInfo(nil, nil))
}

func TestResolveBusinessInfo_PerFieldFallback(t *testing.T) {
	profile := &CompanyProfile{CompanyName: "Acme", Email: "  "}
	settings := &InvoiceSettings{
		BusinessEmail: "billing@old.co",
		BusinessPhone: "555-0000",
		LogoURL:       "https://old.co/logo.png",
	}

	info := ResolveBusinessInfo(profile, settings)
	assert.Equal(t, "billing@old.co", info.Email)
	assert.Equal(t, "555-0000", info.Phone)
	assert.Equal(t, "https://old.co/logo.png", info.LogoURL)
}

func TestResolveBusinessInfo_Address(t *testing.T) {
	settings := &InvoiceSettings{BusinessAddress: "PO Box 1\nNowhere"}

	withStreet := &CompanyProfile{Address: postal.Address{Street: "1 Loop", City: "Cupertino", State: "CA", Zip: "95014", Country: "USA"}}
	assert.Equal(t, "1 Loop\nCupertino, CA 95014\nUSA", ResolveBusinessInfo(withStreet, settings).Address)

	countryOnly := &CompanyProfile{Address: postal.Address{Country: "USA"}}
	assert.Equal(t, "PO Box 1\nNowhere", ResolveBusinessInfo(countryOnly, settings).Address)

	assert.Equal(t, "", ResolveBusinessInfo(countryOnly, nil).Address)
}

func TestResolveBusinessInfo_Phone(t *testing.T) {
	assert.Equal(t, "+1 555-0100", ResolveBusinessInfo(&CompanyProfile{Phone: "555-0100", PhoneCountryCode: "+1"}, nil).Phone)
	assert.Equal(t, "+44 20 7946 0000", ResolveBusinessInfo(&CompanyProfile{Phone: "20 7946 0000", PhoneCountryCode: "44"}, nil).Phone)
	assert.Equal(t, "555-0100", ResolveBusinessInfo(&CompanyProfile{Phone: "555-0100"}, nil).Phone)
	assert.Equal(t, "", ResolveBusinessInfo(&CompanyProfile{PhoneCountryCode: "+1"}, nil).Phone)
}

func TestCurrencySymbol(t *testing.T) {
	cases := map[string]string{
		"EUR": "€",
		"eur": "€",
		"GBP": "£",
		"CAD": "CA$",
		"AUD": "A$",
		"USD": "$",
		"XYZ": "$",
		"":    "$",
	}
	for code, want := range cases {
		assert.Equal(t, want, CurrencySymbol(code), code)
	}
}
