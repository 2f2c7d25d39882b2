package team

import "time"

// Seed returns the default roster, stamped with createdAt.
func Seed(createdAt time.Time) []Member {
	return []Member{
		{
			ID:           "1",
			Name:         "علی غارسی",
			Role:         "جوشکار",
			Color:        Orange,
			CreatedAt:    createdAt,
			Bio:          "متخصص جوشکاری با بیش از ۱۰ سال تجربه در صنعت فایبرگلاس",
			Experience:   "۱۰",
			Skills:       []string{"جوشکاری آرگون", "جوشکاری CO2", "برشکاری", "ساخت سازه‌های فلزی"},
			Description:  "علی غارسی یکی از باتجربه‌ترین جوشکاران کارگاه است که در زمینه جوشکاری انواع فلزات و ساخت سازه‌های فلزی تخصص دارد. ایشان با دقت و ظرافت بالا، کیفیت کار را در اولویت قرار می‌دهد.",
			Achievements: []string{"بیش از ۵۰۰ پروژه موفق", "گواهینامه جوشکاری حرفه‌ای", "برنده جایزه بهترین جوشکار سال ۱۴۰۰"},
		},
		{
			ID:           "2",
			Name:         "میلاد غارسی",
			Role:         "فایبر و جوشکاری",
			Color:        Blue,
			CreatedAt:    createdAt,
			Bio:          "متخصص کار با فایبرگلاس و جوشکاری صنعتی",
			Experience:   "۸",
			Skills:       []string{"کار با فایبرگلاس", "ساخت قالب", "جوشکاری", "رزین‌کاری"},
			Description:  "میلاد غارسی در زمینه کار با فایبرگلاس و ساخت قطعات کامپوزیتی تخصص دارد. ترکیب مهارت‌های فایبرکاری و جوشکاری او را به یک نیروی چندمنظوره و ارزشمند تبدیل کرده است.",
			Achievements: []string{"تخصص در ساخت قطعات سفارشی", "آموزش بیش از ۲۰ کارآموز", "همکاری در پروژه‌های صنعتی بزرگ"},
		},
		{
			ID:           "3",
			Name:         "علی محمدآبادی",
			Role:         "بازاریاب و طراح",
			Color:        Purple,
			CreatedAt:    createdAt,
			Bio:          "متخصص بازاریابی و طراحی محصولات فایبرگلاس",
			Experience:   "۵",
			Skills:       []string{"بازاریابی دیجیتال", "طراحی محصول", "مذاکره فروش", "طراحی گرافیک"},
			Description:  "علی محمدآبادی مسئول بازاریابی و طراحی محصولات کارگاه است. ایشان با شناخت نیازهای بازار و مشتریان، در توسعه محصولات جدید و جذب مشتری نقش کلیدی دارد.",
			Achievements: []string{"افزایش ۱۵۰٪ فروش در سال گذشته", "طراحی بیش از ۳۰ محصول جدید", "ایجاد شبکه گسترده مشتریان"},
		},
		{
			ID:           "4",
			Name:         "غلامرضا موسی",
			Role:         "نقاش",
			Color:        Emerald,
			CreatedAt:    createdAt,
			Bio:          "متخصص رنگ‌آمیزی و پوشش‌دهی قطعات فایبرگلاس",
			Experience:   "۱۲",
			Skills:       []string{"رنگ‌آمیزی صنعتی", "پوشش ژل‌کوت", "پولیش و براق‌کاری", "ترمیم رنگ"},
			Description:  "غلامرضا موسی با بیش از ۱۲ سال تجربه در رنگ‌آمیزی صنعتی، مسئول مرحله نهایی تولید یعنی رنگ‌آمیزی و پرداخت قطعات است. کار او تضمین‌کننده زیبایی و دوام محصولات نهایی است.",
			Achievements: []string{"استاد رنگ‌آمیزی با کیفیت بالا", "تخصص در رنگ‌های خاص و سفارشی", "صفر درصد برگشتی به دلیل کیفیت رنگ"},
		},
	}
}
