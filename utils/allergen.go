package utils

import "strings"

// AllergenMatch reports whether an ingredient and an allergy entry refer
// to the same thing. Matching is a case-sensitive substring check in
// either direction: "계란" flags "계란후라이" and "계란찜", and a long
// allergy entry still flags its short ingredient form. Loose on purpose;
// "우유" vs "두유" shows why equality in one direction is not enough but
// containment is.
func AllergenMatch(ingredient, allergy string) bool {
	ingredient = strings.TrimSpace(ingredient)
	allergy = strings.TrimSpace(allergy)
	if ingredient == "" || allergy == "" {
		return false
	}
	return strings.Contains(ingredient, allergy) || strings.Contains(allergy, ingredient)
}

// FindAllergens returns the ingredients that match any entry in the
// allergy list, preserving ingredient order, each at most once.
func FindAllergens(ingredients, allergies []string) []string {
	var hits []string
	for _, ing := range ingredients {
		for _, al := range allergies {
			if AllergenMatch(ing, al) {
				hits = append(hits, ing)
				break
			}
		}
	}
	return hits
}
