package domain

import "strings"

// ResolveBusinessInfo merges both sources field by field: a non-empty
// profile value wins, then the settings value, then "".
func ResolveBusinessInfo(profile *CompanyProfile, settings *InvoiceSettings) BusinessInfo {
	var p CompanyProfile
	if profile != nil {
		p = *profile
	}
	var s InvoiceSettings
	if settings != nil {
		s = *settings
	}

	info := BusinessInfo{
		Name:    firstNonEmpty(p.CompanyName, s.BusinessName),
		LogoURL: firstNonEmpty(p.LogoURL, s.LogoURL),
		Email:   firstNonEmpty(p.Email, s.BusinessEmail),
		Phone:   firstNonEmpty(composePhone(p.PhoneCountryCode, p.Phone), s.BusinessPhone),
	}

	if p.Address.HasStreetOrCity() {
		info.Address = p.Address.Compose()
	} else {
		info.Address = strings.TrimSpace(s.BusinessAddress)
	}
	return info
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"GBP": "£",
	"CAD": "CA$",
	"AUD": "A$",
}

// CurrencySymbol maps a currency code to its display symbol. Anything not
// in the table, including an empty code, renders as "$".
func CurrencySymbol(code string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return symbol
	}
	return "$"
}

func composePhone(dialCode, phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	dialCode = strings.TrimSpace(dialCode)
	if dialCode == "" {
		return phone
	}
	if !strings.HasPrefix(dialCode, "+") {
		dialCode = "+" + dialCode
	}
	return dialCode + " " + phone
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
