// Package postal holds the postal address shape shared by clients and company profiles.
package postal

import "strings"

type Address struct {
	Street  string `gorm:"column:street" json:"street"`
	Street2 string `gorm:"column:street2" json:"street2"`
	City    string `gorm:"column:city" json:"city"`
	State   string `gorm:"column:state" json:"state"`
	Zip     string `gorm:"column:zip" json:"zip"`
	Country string `gorm:"column:country" json:"country"`
}

// HasStreetOrCity reports whether the address carries enough to be composed.
func (a Address) HasStreetOrCity() bool {
	return strings.TrimSpace(a.Street) != "" || strings.TrimSpace(a.City) != ""
}

// Lines returns street, street2, "city, state zip" and country, skipping empty parts.
func (a Address) Lines() []string {
	lines := make([]string, 0, 4)
	for _, part := range []string{a.Street, a.Street2, a.localityLine(), a.Country} {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, part)
		}
	}
	return lines
}

// Compose joins Lines with newlines.
func (a Address) Compose() string {
	return strings.Join(a.Lines(), "\n")
}

func (a Address) Normalize() Address {
	return Address{
		Street:  strings.TrimSpace(a.Street),
		Street2: strings.TrimSpace(a.Street2),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Zip:     strings.TrimSpace(a.Zip),
		Country: strings.TrimSpace(a.Country),
	}
}

func (a Address) localityLine() string {
	city := strings.TrimSpace(a.City)
	stateZip := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.Zip))
	switch {
	case city != "" && stateZip != "":
		return city + ", " + stateZip
	case city != "":
		return city
	default:
		return stateZip
	}
}
