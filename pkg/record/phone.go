package record

import "strings"

// NormalizePhone restores the leading zero that some providers strip from
// domestic numbers. A string of exactly 10 digits starting with 2-9 is a
// domestic number missing its trunk prefix and gets "0" prepended. Anything
// else, including formatted or international numbers, passes through with
// only surrounding whitespace trimmed.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	if len(phone) != 10 || !allDigits(phone) {
		return phone
	}
	if phone[0] >= '2' && phone[0] <= '9' {
		return "0" + phone
	}
	return phone
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
