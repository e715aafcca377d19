package checkout

import "strings"

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// ParseLocale maps a locale hint (query value or Accept-Language header) to a
// supported locale. Anything that is not Arabic falls back to English.
func ParseLocale(raw string) Locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "ar") {
		return LocaleArabic
	}
	return LocaleEnglish
}

var messages = map[Locale]map[string]string{
	LocaleEnglish: {
		"fullName.too_short":       "Full name must be at least 2 characters",
		"email.required":           "Email is required",
		"email.invalid_format":     "Please enter a valid email address",
		"phone.required":           "Phone number is required",
		"phone.invalid_format":     "Phone number must be +9665XXXXXXXX or 05XXXXXXXX",
		"orderType.required":       "Please choose an order type",
		"orderType.invalid_choice": "Order type must be individual or business",
		"businessName.required":    "Business name is required for business orders",
		"businessName.too_short":   "Business name must be at least 2 characters",
	},
	LocaleArabic: {
		"fullName.too_short":       "يجب أن يتكون الاسم الكامل من حرفين على الأقل",
		"email.required":           "البريد الإلكتروني مطلوب",
		"email.invalid_format":     "يرجى إدخال بريد إلكتروني صحيح",
		"phone.required":           "رقم الجوال مطلوب",
		"phone.invalid_format":     "يجب أن يكون رقم الجوال بالصيغة +9665XXXXXXXX أو 05XXXXXXXX",
		"orderType.required":       "يرجى اختيار نوع الطلب",
		"orderType.invalid_choice": "نوع الطلب يجب أن يكون فرد أو شركة",
		"businessName.required":    "اسم الشركة مطلوب للطلبات التجارية",
		"businessName.too_short":   "يجب أن يتكون اسم الشركة من حرفين على الأقل",
	},
}

var fallbackMessages = map[Locale]string{
	LocaleEnglish: "Invalid value",
	LocaleArabic:  "قيمة غير صالحة",
}

func message(locale Locale, field string, kind FieldErrorKind) string {
	table, ok := messages[locale]
	if !ok {
		locale = LocaleEnglish
		table = messages[LocaleEnglish]
	}
	if msg, ok := table[field+"."+string(kind)]; ok {
		return msg
	}
	return fallbackMessages[locale]
}
