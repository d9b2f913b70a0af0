package notify

import (
	"fmt"

	"github.com/ibadahth/salah-notify/internal/line"
)

// Bilingual prayer labels. Thai first to match the site's primary audience.
var prayerLabelsTH = map[Prayer]string{
	Fajr:    "ฟัจร์",
	Dhuhr:   "ซุฮร์",
	Asr:     "อัศร์",
	Maghrib: "มัฆริบ",
	Isha:    "อิชาอ์",
}

var prayerLabelsEN = map[Prayer]string{
	Fajr:    "Fajr",
	Dhuhr:   "Dhuhr",
	Asr:     "Asr",
	Maghrib: "Maghrib",
	Isha:    "Isha",
}

// prayerMessage builds the fixed-format reminder: prayer label in both
// scripts, the clock time, and the user's location label.
func prayerMessage(p Prayer, clockTime string, prefs *Preferences) []line.Message {
	text := fmt.Sprintf(
		"🕌 ใกล้ถึงเวลาละหมาด%sแล้ว\n%s prayer is coming up\n⏰ %s น.\n📍 %s",
		prayerLabelsTH[p], prayerLabelsEN[p], clockTime, prefs.LocationLabel,
	)
	return []line.Message{line.NewText(text)}
}

// Fixed broadcast texts. No per-user variation beyond the two languages
// being sent together.
const (
	morningAdhkarText = "🌅 อัซการยามเช้า\nMorning Adhkar\n\n" +
		"เริ่มต้นวันใหม่ด้วยการรำลึกถึงอัลลอฮ์\n" +
		"Begin your day with the remembrance of Allah."

	eveningAdhkarText = "🌇 อัซการยามเย็น\nEvening Adhkar\n\n" +
		"ปิดท้ายวันด้วยการรำลึกถึงอัลลอฮ์\n" +
		"Close your day with the remembrance of Allah."

	quranReminderText = "📖 ถึงเวลาอ่านอัลกุรอานประจำวันแล้ว\n" +
		"Time for your daily Quran reading.\n\n" +
		"แม้เพียงหนึ่งอายะฮ์ก็มีค่า\nEven a single verse counts."
)

func fixedBroadcastMessage(b Broadcast) []line.Message {
	var text string
	switch b {
	case MorningAdhkar:
		text = morningAdhkarText
	case EveningAdhkar:
		text = eveningAdhkarText
	case QuranReminder:
		text = quranReminderText
	}
	return []line.Message{line.NewText(text)}
}

func wisdomMessage(w *Wisdom) []line.Message {
	text := fmt.Sprintf("💡 สาระธรรมประจำวัน\nDaily Wisdom\n\n%s\n\n%s", w.TextTH, w.TextEN)
	if w.Source != "" {
		text += "\n\n— " + w.Source
	}
	return []line.Message{line.NewText(text)}
}
