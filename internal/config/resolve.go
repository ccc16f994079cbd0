package config

import "strings"

// Candidate env names for the settings the static site historically supplied
// through several build systems. Order matters: earlier names win.
var (
	CheckoutURLKeys = []string{
		"STRIPE_CHECKOUT_URL",
		"VITE_STRIPE_CHECKOUT_URL",
		"CHECKOUT_URL",
	}
	SupabaseURLKeys = []string{
		"SUPABASE_URL",
		"VITE_SUPABASE_URL",
		"NEXT_PUBLIC_SUPABASE_URL",
	}
	SupabaseKeyKeys = []string{
		"SUPABASE_ANON_KEY",
		"VITE_SUPABASE_ANON_KEY",
		"NEXT_PUBLIC_SUPABASE_ANON_KEY",
		"SUPABASE_KEY",
	}
)

// FirstNonBlank returns the first candidate key whose looked-up value is
// non-empty after trimming whitespace, or "" when none qualify. Absence is a
// valid result; callers decide how a missing setting degrades.
func FirstNonBlank(lookup func(string) string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
	}
	return ""
}
