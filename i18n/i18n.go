// Package i18n holds the user-facing message catalog.
package i18n

import "strings"

const defaultLang = "fr"

var catalog = map[string]map[string]string{
	"en": {
		"required":          "Required",
		"too_short":         "Too short",
		"too_long":          "Too long",
		"invalid_email":     "Invalid email address",
		"invalid_url":       "Invalid URL",
		"mismatch":          "Passwords do not match",
		"out_of_range":      "Out of range",
		"invalid_choice":    "Invalid choice",
		"welcome":           "Welcome!",
		"signed_out":        "You have been signed out.",
		"patient_linked":    "Patient linked.",
		"already_linked":    "Patient is already linked.",
		"patient_not_found": "No patient with that email.",
		"journal_saved":     "Journal entry saved.",
		"journal_deleted":   "Journal entry deleted.",
		"mood_saved":        "Mood check-in saved.",
		"alert_sent":        "Alert sent to your therapist.",
		"alert_recorded":    "Alert recorded. No therapist is linked yet.",
		"alert_resolved":    "Alert resolved.",
		"resource_saved":    "Resource saved.",
		"resource_deleted":  "Resource deleted.",
	},
	"fr": {
		"required":          "Requis",
		"too_short":         "Trop court",
		"too_long":          "Trop long",
		"invalid_email":     "Adresse e-mail invalide",
		"invalid_url":       "URL invalide",
		"mismatch":          "Les mots de passe ne correspondent pas",
		"out_of_range":      "Hors limites",
		"invalid_choice":    "Choix invalide",
		"welcome":           "Bienvenue !",
		"signed_out":        "Vous êtes déconnecté.",
		"patient_linked":    "Patient associé.",
		"already_linked":    "Ce patient est déjà associé.",
		"patient_not_found": "Aucun patient avec cet e-mail.",
		"journal_saved":     "Entrée de journal enregistrée.",
		"journal_deleted":   "Entrée de journal supprimée.",
		"mood_saved":        "Humeur enregistrée.",
		"alert_sent":        "Alerte envoyée à votre thérapeute.",
		"alert_recorded":    "Alerte enregistrée. Aucun thérapeute associé.",
		"alert_resolved":    "Alerte résolue.",
		"resource_saved":    "Ressource enregistrée.",
		"resource_deleted":  "Ressource supprimée.",
	},
}

// DetectLanguage picks "en" when the Accept-Language header starts with it,
// otherwise the default language.
func DetectLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first = strings.ToLower(strings.TrimSpace(first))
	if strings.HasPrefix(first, "en") {
		return "en"
	}
	return defaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T translates code, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if s, ok := msgs[code]; ok {
			return s
		}
	}
	if s, ok := catalog[defaultLang][code]; ok {
		return s
	}
	return code
}

// TranslateAll maps every value of fields through T.
func TranslateAll(lang string, fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, code := range fields {
		out[k] = T(lang, code)
	}
	return out
}
